// Package gcs archives fetched raw HTML in Google Cloud Storage, keyed by
// candidate, so extraction can be replayed without refetching.
package gcs

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

// Config locates the archive bucket.
type Config struct {
	Bucket string
}

// BlobStore writes one object per fetched candidate page.
type BlobStore struct {
	client *storage.Client
	bucket string
}

// New creates a GCS-backed archive.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// PutObject uploads the raw page under the given path and returns its gs://
// URI. Archived pages are small, so the upload is a single request rather
// than a resumable session.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	key, err := objectKey(path)
	if err != nil {
		return "", err
	}

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.ChunkSize = 0
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write archive object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize archive object %s: %w", key, err)
	}
	return objectURI(s.bucket, key), nil
}

// objectKey normalizes an archive path into a bucket object key. Leading and
// trailing slashes are stripped so prefixes compose without doubled
// separators.
func objectKey(path string) (string, error) {
	key := strings.Trim(strings.TrimSpace(path), "/")
	if key == "" {
		return "", fmt.Errorf("object path is required")
	}
	return key, nil
}

func objectURI(bucket, key string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, key)
}
