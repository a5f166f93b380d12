// Package store defines the storage backend interface for reading book tables.
//
// A book holds one table per material signature (see fen.Material.Signature),
// stored under tables/<signature>.jsonl plus the codec's extension.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/discochess/syzygymoves/internal/codec"
)

// ErrNotFound is returned when a table does not exist in the store.
var ErrNotFound = errors.New("store: table not found")

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// ReadTable reads the decompressed content of the table for the given
	// material signature.
	ReadTable(ctx context.Context, signature string) ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}

// TablesDir is the directory holding tables, relative to a book root.
const TablesDir = "tables"

// TableName returns the file name of the table for signature.
func TableName(signature string, c codec.Codec) string {
	name := signature + ".jsonl"
	if ext := c.Extension(); ext != "" {
		name += "." + ext
	}
	return name
}

// TableKey returns the slash-separated object key of a table below prefix.
// A non-empty prefix must end in "/".
func TableKey(prefix, signature string, c codec.Codec) string {
	return prefix + TablesDir + "/" + TableName(signature, c)
}

// Decode reads all of r through c's decompressor.
func Decode(r io.Reader, c codec.Codec) ([]byte, error) {
	decompressor, err := c.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer decompressor.Close()

	data, err := io.ReadAll(decompressor)
	if err != nil {
		return nil, fmt.Errorf("decompressing table: %w", err)
	}
	return data, nil
}

// NormalizePrefix returns prefix without a leading slash and with exactly
// one trailing slash, or "" for an empty prefix.
func NormalizePrefix(prefix string) string {
	for len(prefix) > 0 && prefix[0] == '/' {
		prefix = prefix[1:]
	}
	for len(prefix) > 0 && prefix[len(prefix)-1] == '/' {
		prefix = prefix[:len(prefix)-1]
	}
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
