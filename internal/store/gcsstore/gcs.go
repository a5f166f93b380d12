// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/discochess/syzygymoves/internal/codec"
	"github.com/discochess/syzygymoves/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	prefix string
	codec  codec.Codec

	clientOpts []option.ClientOption

	// open returns a reader for an object key.
	open func(ctx context.Context, key string) (io.ReadCloser, error)
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	s := &Store{codec: c}
	for _, opt := range opts {
		opt(s)
	}

	client, err := storage.NewClient(ctx, s.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	s.client = client

	bucket := client.Bucket(bucketName)
	s.open = func(ctx context.Context, key string) (io.ReadCloser, error) {
		return bucket.Object(key).NewReader(ctx)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = store.NormalizePrefix(prefix)
	}
}

// WithClientOptions passes options such as credentials or an emulator
// endpoint to the storage client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *Store) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// ReadTable reads and decompresses the table for signature.
func (s *Store) ReadTable(ctx context.Context, signature string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := s.open(ctx, s.tableKey(signature))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading table %s: %w", signature, err)
	}
	defer reader.Close()

	return store.Decode(reader, s.codec)
}

// Close releases resources.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) tableKey(signature string) string {
	return store.TableKey(s.prefix, signature, s.codec)
}
