package storage

import (
	"strings"
	"testing"
)

type minioConfig struct {
	publicURL string
	useSSL    bool
}

func (c minioConfig) GetMinIOEndpoint() string   { return "minio.internal:9000" }
func (c minioConfig) GetMinIOAccessKey() string  { return "access" }
func (c minioConfig) GetMinIOSecretKey() string  { return "secret" }
func (c minioConfig) GetMinIOUseSSL() bool       { return c.useSSL }
func (c minioConfig) GetMinIOMaxFileSize() int64 { return 1024 }
func (c minioConfig) GetMinIOPublicURL() string  { return c.publicURL }
func (c minioConfig) IsMinIOEnabled() bool       { return true }

func TestObjectURLRoundTrip(t *testing.T) {
	svc, err := NewMinIOService(minioConfig{publicURL: "https://cdn.chevalier-couvreur.com/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref := svc.ObjectURL("lead-photos", "leads/2025/photo toit.jpg")
	if ref != "https://cdn.chevalier-couvreur.com/lead-photos/leads/2025/photo%20toit.jpg" {
		t.Fatalf("unexpected url %q", ref)
	}

	bucket, key, ok := svc.ParseObjectURL(ref)
	if !ok || bucket != "lead-photos" || key != "leads/2025/photo toit.jpg" {
		t.Fatalf("unexpected parse result %q %q %v", bucket, key, ok)
	}

	if _, _, ok := svc.ParseObjectURL("https://images.example.com/lead-photos/a.jpg"); ok {
		t.Fatal("expected foreign host to be rejected")
	}
}

func TestPublicBaseURLDefaultsToEndpoint(t *testing.T) {
	if got := publicBaseURL(minioConfig{useSSL: true}); got != "https://minio.internal:9000" {
		t.Fatalf("unexpected base %q", got)
	}
}

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := objectKey("leads/abc", "Toiture.JPG")
	if !strings.HasPrefix(key, "leads/abc/") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestValidation(t *testing.T) {
	if err := validateContentType("image/HEIC"); err != nil {
		t.Fatalf("expected heic to be allowed: %v", err)
	}
	if err := validateContentType("application/pdf"); err == nil {
		t.Fatal("expected pdf to be rejected")
	}
	if err := validateFileSize(0, 1024); err == nil {
		t.Fatal("expected empty file to be rejected")
	}
	if err := validateFileSize(2048, 1024); err == nil {
		t.Fatal("expected oversize file to be rejected")
	}
}
