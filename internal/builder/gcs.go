package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/discochess/syzygymoves/internal/store"
)

// GCSUploader publishes a book directory to Google Cloud Storage in the
// layout gcsstore reads.
type GCSUploader struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	logger *zap.Logger
}

// NewGCSUploader creates a new GCS uploader.
// gcsPath should be in the format "gs://bucket/prefix".
func NewGCSUploader(ctx context.Context, gcsPath string, logger *zap.Logger, opts ...option.ClientOption) (*GCSUploader, error) {
	bucket, prefix, err := parseGCSPath(gcsPath)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GCSUploader{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: prefix,
		logger: logger,
	}, nil
}

// parseGCSPath parses "gs://bucket/prefix" into bucket and prefix.
func parseGCSPath(gcsPath string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(gcsPath, "gs://") {
		return "", "", errors.New("invalid GCS path: must start with gs://")
	}

	path := strings.TrimPrefix(gcsPath, "gs://")
	parts := strings.SplitN(path, "/", 2)
	if parts[0] == "" {
		return "", "", errors.New("invalid GCS path: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) > 1 {
		prefix = store.NormalizePrefix(parts[1])
	}
	return bucket, prefix, nil
}

// Upload uploads the tables and manifest of localDir.
// Tables are uploaded first (overwriting), then the manifest, then tables
// no longer present locally are deleted.
func (u *GCSUploader) Upload(ctx context.Context, localDir string, progress ProgressFunc) error {
	tablesDir := filepath.Join(localDir, store.TablesDir)

	entries, err := os.ReadDir(tablesDir)
	if err != nil {
		return fmt.Errorf("reading tables directory: %w", err)
	}

	uploaded := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		localPath := filepath.Join(tablesDir, entry.Name())
		key := u.prefix + store.TablesDir + "/" + entry.Name()
		if err := u.uploadFile(ctx, localPath, key); err != nil {
			return fmt.Errorf("uploading %s: %w", entry.Name(), err)
		}

		uploaded[entry.Name()] = true
		if progress != nil {
			progress(Progress{
				Phase:         "upload",
				TablesWritten: len(uploaded),
				TablesTotal:   len(entries),
			})
		}
	}

	manifestPath := filepath.Join(localDir, ManifestFilename)
	if _, err := os.Stat(manifestPath); err == nil {
		if err := u.uploadFile(ctx, manifestPath, u.prefix+ManifestFilename); err != nil {
			return fmt.Errorf("uploading manifest: %w", err)
		}
	}

	// Stale tables are harmless to readers; failing to delete them is logged only.
	if err := u.cleanStaleTables(ctx, uploaded); err != nil {
		u.logger.Warn("failed to clean stale tables", zap.Error(err))
	}

	u.logger.Info("book uploaded", zap.Int("tables", len(uploaded)), zap.String("prefix", u.prefix))
	return nil
}

// cleanStaleTables deletes table objects that aren't in the new build.
func (u *GCSUploader) cleanStaleTables(ctx context.Context, current map[string]bool) error {
	prefix := u.prefix + store.TablesDir + "/"
	it := u.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}

		if current[strings.TrimPrefix(attrs.Name, prefix)] {
			continue
		}
		if err := u.bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("deleting stale table %s: %w", attrs.Name, err)
		}
		u.logger.Debug("deleted stale table", zap.String("object", attrs.Name))
	}
	return nil
}

func (u *GCSUploader) uploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := u.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// Close releases resources.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}
