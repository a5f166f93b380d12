// Package codec compresses and decompresses book tables.
package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrUnknownCodec is returned by ByName for an unsupported name.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it. Closing the writer
	// flushes it but does not close w.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
	// Name returns the name accepted by ByName.
	Name() string
}

// ByName returns the codec called name: "zstd", "gzip" or "none".
// The empty string selects zstd.
func ByName(name string) (Codec, error) {
	switch name {
	case "zstd", "":
		return Zstd{}, nil
	case "gzip":
		return Gzip{}, nil
	case "none":
		return None{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

var (
	_ Codec = Zstd{}
	_ Codec = Gzip{}
	_ Codec = None{}
)

// Zstd implements zstd compression.
type Zstd struct{}

// Reader wraps r to decompress zstd data.
func (Zstd) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

// Writer wraps w to compress data with zstd.
func (Zstd) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (Zstd) Extension() string { return "zst" }
func (Zstd) Name() string      { return "zstd" }

// Gzip implements gzip compression.
type Gzip struct{}

// Reader wraps r to decompress gzip data.
func (Gzip) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Writer wraps w to compress data with gzip.
func (Gzip) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

func (Gzip) Extension() string { return "gz" }
func (Gzip) Name() string      { return "gzip" }

// None stores data uncompressed.
type None struct{}

// Reader returns r as a ReadCloser whose Close is a no-op.
func (None) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w as a WriteCloser whose Close is a no-op.
func (None) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (None) Extension() string { return "" }
func (None) Name() string      { return "none" }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
