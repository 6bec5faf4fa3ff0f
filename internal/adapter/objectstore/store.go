// Package objectstore uploads finished archives to an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/couchcryptid/power-curve-service/internal/config"
)

// ContentType is stored with every archive object.
const ContentType = "application/zip"

// Store writes archives to one bucket.
// It implements pipeline.ArchiveSink.
type Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewStore creates a client for the configured endpoint. No request is made
// until EnsureBucket or StoreArchive is called.
func NewStore(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg.ArchiveBucket == "" {
		return nil, errors.New("archive bucket is not configured")
	}
	endpoint := strings.TrimPrefix(cfg.MinioEndpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return &Store{client: client, bucket: cfg.ArchiveBucket, logger: logger}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("created archive bucket", "bucket", s.bucket)
	return nil
}

// CheckReadiness reports whether the bucket is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	if !exists {
		return fmt.Errorf("object store: bucket %s does not exist", s.bucket)
	}
	return nil
}

// StoreArchive uploads an archive under its name.
func (s *Store) StoreArchive(ctx context.Context, name string, body io.Reader, size int64) error {
	info, err := s.client.PutObject(ctx, s.bucket, name, body, size, minio.PutObjectOptions{
		ContentType: ContentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s to %s: %w", name, s.bucket, err)
	}
	s.logger.Info("archive uploaded", "bucket", s.bucket, "key", info.Key, "bytes", info.Size)
	return nil
}

// Bucket is the bucket archives are written to.
func (s *Store) Bucket() string { return s.bucket }
