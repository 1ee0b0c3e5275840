package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"cafestaff/logger"
)

// GCSStore keeps assets as objects under prefix in a Cloud Storage bucket.
type GCSStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSStore(ctx context.Context, log *logger.Logger, bucket, prefix string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("missing bucket name")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	log.With("service", "GCSStore").Info("Object storage initialized", "bucket", bucket, "prefix", prefix)
	return &GCSStore{
		log:    log.With("service", "GCSStore"),
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) key(ref string) string {
	if s.prefix == "" {
		return ref
	}
	return path.Join(s.prefix, ref)
}

func (s *GCSStore) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	ref := NewRef(filename)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(s.key(ref)).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if ct := contentTypeForRef(ref); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		s.log.Warn("GCS write failed", "bucket", s.bucket, "object", s.key(ref), "error", err)
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		s.log.Warn("GCS write failed", "bucket", s.bucket, "object", s.key(ref), "error", err)
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return ref, nil
}

func (s *GCSStore) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := checkRef(ref); err != nil {
		return nil, err
	}
	rc, err := s.client.Bucket(s.bucket).Object(s.key(ref)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		s.log.Warn("GCS read failed", "bucket", s.bucket, "object", s.key(ref), "error", err)
		return nil, fmt.Errorf("failed to read GCS object %q: %w", ref, err)
	}
	return rc, nil
}

func (s *GCSStore) Delete(ctx context.Context, ref string) error {
	if err := checkRef(ref); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.Bucket(s.bucket).Object(s.key(ref)).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrNotFound
		}
		s.log.Warn("GCS delete failed", "bucket", s.bucket, "object", s.key(ref), "error", err)
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", ref, s.bucket, err)
	}
	return nil
}

func contentTypeForRef(ref string) string {
	switch strings.ToLower(path.Ext(ref)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return ""
	}
}
