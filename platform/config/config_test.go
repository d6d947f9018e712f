package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoad_DefaultsAndWildcardCORS(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/couvreur")
	t.Setenv("CORS_ORIGINS", "https://chevalier-couvreur.com, *")
	t.Setenv("AI_TIMEOUT", "30s")
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("EMAIL_PROVIDER", "resend")
	t.Setenv("AI_PROVIDER", "gateway")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatal("expected wildcard origin to enable allow-all CORS")
	}
	if cfg.GetAITimeout() != 30*time.Second {
		t.Fatalf("expected AI timeout 30s, got %s", cfg.GetAITimeout())
	}
	if cfg.IsEmailConfigured() {
		t.Fatal("expected email to be unconfigured without RESEND_API_KEY")
	}
	if cfg.EmailCredentialKey() != "RESEND_API_KEY" {
		t.Fatalf("unexpected credential key %q", cfg.EmailCredentialKey())
	}
}

func TestLoad_RejectsUnknownProviders(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/couvreur")
	t.Setenv("AI_PROVIDER", "gateway")
	t.Setenv("EMAIL_PROVIDER", "pigeon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown email provider")
	}
}

func TestEmailConfiguredPerProvider(t *testing.T) {
	cfg := &Config{EmailProvider: "smtp", SMTPHost: "smtp.example.com"}
	if !cfg.IsEmailConfigured() || cfg.EmailCredentialKey() != "SMTP_HOST" {
		t.Fatal("expected smtp provider to be configured by SMTP_HOST")
	}

	cfg = &Config{EmailProvider: "sendgrid"}
	if cfg.IsEmailConfigured() {
		t.Fatal("expected sendgrid without key to be unconfigured")
	}
}
