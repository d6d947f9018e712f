package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOService implements PhotoStorage using MinIO.
type MinIOService struct {
	client      *minio.Client
	maxFileSize int64
	publicURL   string
}

// NewMinIOService creates a new MinIO storage service.
func NewMinIOService(cfg Config) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOService{
		client:      client,
		maxFileSize: cfg.GetMinIOMaxFileSize(),
		publicURL:   publicBaseURL(cfg),
	}, nil
}

func publicBaseURL(cfg Config) string {
	if base := strings.TrimRight(cfg.GetMinIOPublicURL(), "/"); base != "" {
		return base
	}
	scheme := "http"
	if cfg.GetMinIOUseSSL() {
		scheme = "https"
	}
	return scheme + "://" + cfg.GetMinIOEndpoint()
}

// EnsureBucketExists creates the bucket if it doesn't exist.
func (s *MinIOService) EnsureBucketExists(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	return nil
}

// UploadFile uploads a file directly to storage from an io.Reader and returns the file key.
func (s *MinIOService) UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	fileKey := objectKey(folder, fileName)

	_, err := s.client.PutObject(ctx, bucket, fileKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", fileKey, err)
	}
	return fileKey, nil
}

// DownloadFile downloads a file directly from storage.
// The caller is responsible for closing the returned io.ReadCloser.
func (s *MinIOService) DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, bucket, fileKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object %s: %w", fileKey, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, "", fmt.Errorf("failed to stat object %s: %w", fileKey, err)
	}
	return obj, info.ContentType, nil
}

// ObjectURL builds the public reference persisted on the lead.
func (s *MinIOService) ObjectURL(bucket, fileKey string) string {
	return buildObjectURL(s.publicURL, bucket, fileKey)
}

// ParseObjectURL is the inverse of ObjectURL.
func (s *MinIOService) ParseObjectURL(rawURL string) (string, string, bool) {
	return parseObjectURL(s.publicURL, rawURL)
}

// objectKey keeps the extension and makes the name unique within folder.
func objectKey(folder, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return path.Join(folder, uuid.NewString()+ext)
}

func buildObjectURL(base, bucket, fileKey string) string {
	escaped := make([]string, 0, 4)
	for _, segment := range strings.Split(fileKey, "/") {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return base + "/" + bucket + "/" + strings.Join(escaped, "/")
}

func parseObjectURL(base, rawURL string) (string, string, bool) {
	prefix := base + "/"
	if base == "" || !strings.HasPrefix(rawURL, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(rawURL, prefix)
	bucket, escapedKey, found := strings.Cut(rest, "/")
	if !found || bucket == "" || escapedKey == "" {
		return "", "", false
	}
	key, err := url.PathUnescape(escapedKey)
	if err != nil {
		return "", "", false
	}
	return bucket, key, true
}
