package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// maxPhotoBytes bounds a single fetched photo.
const maxPhotoBytes = 15 << 20

// ErrPhotoNotAllowed is returned for references outside the lead-photos bucket
// and the allowed hosts.
var ErrPhotoNotAllowed = errors.New("photo reference not allowed")

// ImageData is one photo ready to be sent to a vision model.
type ImageData struct {
	MIMEType string
	Data     []byte
	Source   string
}

// ObjectReader resolves photo references that point into our own bucket.
type ObjectReader interface {
	// ParseObjectURL reports the bucket and key behind a public object URL.
	ParseObjectURL(rawURL string) (bucket, key string, ok bool)
	DownloadFile(ctx context.Context, bucket, key string) (io.ReadCloser, string, error)
}

// PhotoFetcher loads photo bytes for a reference.
type PhotoFetcher interface {
	Fetch(ctx context.Context, uri string) (ImageData, error)
}

// HTTPFetcher reads photos from the lead-photos bucket through the object store.
// Plain HTTP is only used for hosts passed to NewHTTPFetcher; any other
// reference is refused before a request leaves the process.
type HTTPFetcher struct {
	client       *http.Client
	objects      ObjectReader
	bucket       string
	allowedHosts map[string]struct{}
}

// NewHTTPFetcher creates a fetcher. objects may be nil when storage is disabled.
// allowedHosts are compared against the host:port of a reference.
func NewHTTPFetcher(client *http.Client, objects ObjectReader, bucket string, allowedHosts ...string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts[h] = struct{}{}
		}
	}
	return &HTTPFetcher{client: client, objects: objects, bucket: bucket, allowedHosts: hosts}
}

// Allows reports whether Fetch would accept uri.
func (f *HTTPFetcher) Allows(uri string) bool {
	if _, ok := f.ownObject(uri); ok {
		return true
	}
	return f.hostAllowed(uri)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) (ImageData, error) {
	if key, ok := f.ownObject(uri); ok {
		return f.fetchObject(ctx, uri, f.bucket, key)
	}
	if !f.hostAllowed(uri) {
		return ImageData{}, fmt.Errorf("%w: %s", ErrPhotoNotAllowed, uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return ImageData{}, fmt.Errorf("build photo request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return ImageData{}, fmt.Errorf("fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ImageData{}, fmt.Errorf("fetch photo: unexpected status %d", resp.StatusCode)
	}
	data, err := readLimited(resp.Body)
	if err != nil {
		return ImageData{}, err
	}
	return ImageData{
		MIMEType: detectContentType(resp.Header.Get("Content-Type"), data),
		Data:     data,
		Source:   uri,
	}, nil
}

// ownObject returns the key of a reference into the lead-photos bucket.
func (f *HTTPFetcher) ownObject(uri string) (string, bool) {
	if f.objects == nil || f.bucket == "" {
		return "", false
	}
	bucket, key, ok := f.objects.ParseObjectURL(uri)
	if !ok || bucket != f.bucket {
		return "", false
	}
	return key, true
}

func (f *HTTPFetcher) hostAllowed(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	_, ok := f.allowedHosts[strings.ToLower(u.Host)]
	return ok
}

func (f *HTTPFetcher) fetchObject(ctx context.Context, uri, bucket, key string) (ImageData, error) {
	reader, contentType, err := f.objects.DownloadFile(ctx, bucket, key)
	if err != nil {
		return ImageData{}, fmt.Errorf("download photo object: %w", err)
	}
	defer reader.Close()

	data, err := readLimited(reader)
	if err != nil {
		return ImageData{}, err
	}
	return ImageData{
		MIMEType: detectContentType(contentType, data),
		Data:     data,
		Source:   uri,
	}, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("photo is empty")
	}
	return data, nil
}

// detectContentType prefers the declared image type, then sniffs, then assumes JPEG.
func detectContentType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return "image/jpeg"
}
