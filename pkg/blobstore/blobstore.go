package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/fgiubilesi-cpu/sgic/pkg/config"
	"github.com/google/uuid"
)

// Store uploads evidence photos to a GCS bucket and returns publicly
// resolvable URLs. Uploading and persisting the URL on the checklist item
// are two separate phases: a failure in between leaves an unreferenced
// object in the bucket and the whole flow can simply be retried.
type Store struct {
	client *storage.Client
	bucket string
}

var store *Store

// Initialize creates the global evidence store
func Initialize(ctx context.Context, cfg *config.BlobConfig) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	store = &Store{client: client, bucket: cfg.Bucket}
	return nil
}

// GetStore returns the global evidence store, or nil when evidence
// storage is not configured
func GetStore() *Store {
	return store
}

// Upload writes the object and returns its public URL
func (s *Store) Upload(ctx context.Context, objectKey, contentType string, r io.Reader) (string, error) {
	if s == nil {
		return "", errors.New("evidence storage not configured")
	}

	w := s.client.Bucket(s.bucket).Object(objectKey).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write evidence object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize evidence object: %w", err)
	}

	return s.PublicURL(objectKey), nil
}

// PublicURL returns the publicly resolvable URL for an object key
func (s *Store) PublicURL(objectKey string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectKey)
}

// EvidenceObjectKey builds an object key namespaced by audit and item id
// so uploads from different items can never collide.
func EvidenceObjectKey(auditID, itemID uint, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("audits/%d/items/%d/%s%s", auditID, itemID, uuid.New().String(), ext)
}
