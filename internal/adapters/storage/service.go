// Package storage stores lead photos in an S3-compatible bucket and resolves
// the public URLs it hands out back to object keys.
package storage

import (
	"context"
	"io"
)

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOPublicURL() string
	IsMinIOEnabled() bool
}

// PhotoStorage is what the lead pipeline needs from object storage.
type PhotoStorage interface {
	// UploadFile stores the reader under folder and returns the object key.
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	// DownloadFile returns the object body and its stored content type.
	DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, string, error)
	ObjectURL(bucket, fileKey string) string
	ParseObjectURL(rawURL string) (bucket, key string, ok bool)
	EnsureBucketExists(ctx context.Context, bucket string) error
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}
