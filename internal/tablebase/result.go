package tablebase

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is the tablebase verdict for a position.
type Result struct {
	// WDL is win (2), cursed win (1), draw (0), blessed loss (-1) or loss
	// (-2) for the side to move. Nil if unknown.
	WDL *int `json:"wdl"`
	DTZ *int `json:"dtz"`
	DTM *int `json:"dtm"`

	Checkmate            bool `json:"checkmate"`
	Stalemate            bool `json:"stalemate"`
	InsufficientMaterial bool `json:"insufficient_material"`

	// Moves are ranked best first, in the order the API listed them.
	Moves MoveList `json:"moves"`
}

// Move is one legal move and the verdict for the position it leads to,
// from the opponent's point of view.
type Move struct {
	UCI string `json:"uci"`
	SAN string `json:"san"`

	WDL *int `json:"wdl"`
	DTZ *int `json:"dtz"`
	DTM *int `json:"dtm"`

	Zeroing   bool `json:"zeroing"`
	Checkmate bool `json:"checkmate"`
	Stalemate bool `json:"stalemate"`
}

// MoveList is a ranked list of moves. The API encodes it as a JSON object
// keyed by UCI move whose key order is the ranking; an array of moves
// carrying their own "uci" field is accepted as well.
type MoveList []Move

// UCI returns the UCI strings of the moves, in order.
func (l MoveList) UCI() []string {
	out := make([]string, len(l))
	for i, m := range l {
		out[i] = m.UCI
	}
	return out
}

// UnmarshalJSON decodes the moves object token by token so that key order
// survives.
func (l *MoveList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var moves []Move
		if err := json.Unmarshal(data, &moves); err != nil {
			return err
		}
		*l = moves
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if tok != json.Delim('{') {
		return fmt.Errorf("tablebase: moves: unexpected %v", tok)
	}

	moves := MoveList{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tablebase: moves: unexpected key %v", tok)
		}
		var m Move
		if err := dec.Decode(&m); err != nil {
			return fmt.Errorf("tablebase: moves[%s]: %w", key, err)
		}
		if m.UCI == "" {
			m.UCI = key
		}
		moves = append(moves, m)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = moves
	return nil
}
