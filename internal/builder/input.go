package builder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"
)

// ReadFENs reads one FEN per line. Blank lines and lines starting with '#'
// are ignored.
func ReadFENs(r io.Reader) ([]string, error) {
	var fens []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fens = append(fens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading FENs: %w", err)
	}
	return fens, nil
}

// ReadPGN returns the FEN of every position of every game in r, in game
// order. Games that fail to parse are skipped.
func ReadPGN(r io.Reader) ([]string, error) {
	var fens []string

	scanner := bufio.NewScanner(r)
	// Increase buffer size for long movetext lines.
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var game strings.Builder
	flush := func() {
		if game.Len() == 0 {
			return
		}
		if gameFENs, err := gameFENs(game.String()); err == nil {
			fens = append(fens, gameFENs...)
		}
		game.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "[Event ") {
			flush()
		}
		game.WriteString(line)
		game.WriteByte('\n')
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PGN: %w", err)
	}
	return fens, nil
}

func gameFENs(pgn string) ([]string, error) {
	opt, err := chess.PGN(strings.NewReader(pgn))
	if err != nil {
		return nil, err
	}
	positions := chess.NewGame(opt).Positions()
	fens := make([]string, 0, len(positions))
	for _, pos := range positions {
		fens = append(fens, pos.String())
	}
	return fens, nil
}
