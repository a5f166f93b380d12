// Package diskstore implements a disk-based filesystem storage backend.
package diskstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/discochess/syzygymoves/internal/codec"
	"github.com/discochess/syzygymoves/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a disk-based filesystem storage backend.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a new disk store rooted at the given directory.
// The directory must exist. The codec handles compression/decompression.
func New(root string, codec codec.Codec) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{
		root:  root,
		codec: codec,
	}, nil
}

// ReadTable reads and decompresses the table for signature.
func (s *Store) ReadTable(ctx context.Context, signature string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(s.TablePath(signature))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading table: %w", err)
	}

	return store.Decode(bytes.NewReader(compressed), s.codec)
}

// WriteTable compresses data and writes it as the table for signature,
// replacing any existing table. The file is renamed into place once
// complete.
func (s *Store) WriteTable(signature string, data []byte) (err error) {
	dir := filepath.Join(s.root, store.TablesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating tables directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".table-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w, err := s.codec.Writer(tmp)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing table: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.TablePath(signature)); err != nil {
		return fmt.Errorf("renaming table: %w", err)
	}
	return nil
}

// Signatures lists the signatures of the tables present on disk.
func (s *Store) Signatures() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, store.TablesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	suffix := store.TableName("", s.codec)
	var sigs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		sigs = append(sigs, name[:len(name)-len(suffix)])
	}
	return sigs, nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// TablePath returns the filesystem path for a table.
func (s *Store) TablePath(signature string) string {
	return filepath.Join(s.root, store.TablesDir, store.TableName(signature, s.codec))
}
