package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"couvreur_backend/internal/adapters/storage"
	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/platform/logger"
	"couvreur_backend/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentUploads = 4

var (
	errStorageDisabled   = errors.New("photo storage not configured")
	errReferenceRejected = errors.New("photo reference outside allowed locations")
)

// PhotoReferences accepts client-supplied photo URLs. Anything it refuses is
// dropped before the lead is stored, so the analyzer never fetches it.
type PhotoReferences interface {
	Allows(uri string) bool
}

// PhotoUpload is one file attached to a submission.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// ObjectStore is the storage slice used for uploads.
type ObjectStore interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	ObjectURL(bucket, fileKey string) string
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// PhotoUploader stores submission photos and returns their public references.
type PhotoUploader struct {
	store   ObjectStore
	bucket  string
	log     *logger.Logger
	metrics *metrics.PipelineMetrics
}

// NewPhotoUploader returns an uploader. A nil store rejects every upload as a
// recovered failure.
func NewPhotoUploader(store ObjectStore, bucket string, log *logger.Logger, m *metrics.PipelineMetrics) *PhotoUploader {
	return &PhotoUploader{store: store, bucket: bucket, log: log, metrics: m}
}

// Upload stores files in parallel under the lead folder. Failed files are
// logged and left out; the order of the survivors is kept.
func (u *PhotoUploader) Upload(ctx context.Context, leadID uuid.UUID, files []PhotoUpload) []string {
	slots := make([]string, len(files))
	log := u.log.WithContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUploads)
	for i, f := range files {
		g.Go(func() error {
			ref, err := u.uploadOne(gctx, leadID, f)
			u.metrics.ObservePhotoUpload(err == nil)
			if err != nil {
				log.RecoveredFailure("photo_upload", err, "file", f.FileName, "index", i)
				return nil
			}
			slots[i] = ref
			return nil
		})
	}
	_ = g.Wait()

	refs := make([]string, 0, len(files))
	for _, ref := range slots {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

func (u *PhotoUploader) uploadOne(ctx context.Context, leadID uuid.UUID, f PhotoUpload) (string, error) {
	if u == nil || u.store == nil {
		return "", errStorageDisabled
	}
	contentType := storage.NormalizeContentType(f.ContentType)
	if err := u.store.ValidateContentType(contentType); err != nil {
		return "", err
	}
	if err := u.store.ValidateFileSize(f.Size); err != nil {
		return "", err
	}
	if f.Open == nil {
		return "", fmt.Errorf("photo %q has no content", f.FileName)
	}

	body, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer body.Close()

	key, err := u.store.UploadFile(ctx, u.bucket, leadID.String(), path.Base(f.FileName), contentType, body, f.Size)
	if err != nil {
		return "", err
	}
	return u.store.ObjectURL(u.bucket, key), nil
}

// collectPhotos merges client-side references with uploaded files, capped at
// domain.MaxPhotos. Files past the cap are never uploaded. References are kept
// only when s.refs allows them.
func (s *Service) collectPhotos(ctx context.Context, leadID uuid.UUID, refs []string, uploads []PhotoUpload) []string {
	refs = s.allowedReferences(ctx, refs)
	photos := make([]string, 0, domain.MaxPhotos)
	for _, ref := range refs {
		if len(photos) == domain.MaxPhotos {
			break
		}
		photos = append(photos, ref)
	}

	room := domain.MaxPhotos - len(photos)
	if dropped := len(refs) + len(uploads) - domain.MaxPhotos; dropped > 0 {
		s.log.WithContext(ctx).Info("photos over limit ignored", "dropped", dropped, "limit", domain.MaxPhotos)
	}
	if len(uploads) > room {
		uploads = uploads[:room]
	}
	if len(uploads) == 0 {
		return photos
	}
	if s.photos == nil {
		for range uploads {
			s.log.WithContext(ctx).RecoveredFailure("photo_upload", errStorageDisabled)
		}
		return photos
	}
	return append(photos, s.photos.Upload(ctx, leadID, uploads)...)
}

func (s *Service) allowedReferences(ctx context.Context, refs []string) []string {
	kept := refs[:0:0]
	for _, ref := range refs {
		if s.refs != nil && s.refs.Allows(ref) {
			kept = append(kept, ref)
			continue
		}
		s.log.WithContext(ctx).RecoveredFailure("photo_reference", errReferenceRejected, "reference", ref)
	}
	return kept
}
