// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for the operator dashboard.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetSubmitRatePerMinute() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinIOPublicURL() string
	GetMinioBucketLeadPhotos() string
	IsMinIOEnabled() bool
}

// VisionConfig provides settings for the roof photo analysis model.
type VisionConfig interface {
	GetAIProvider() string
	GetAIGatewayURL() string
	GetAIAPIKey() string
	GetAIModel() string
	GetGeminiAPIKey() string
	GetAITimeout() time.Duration
	GetPhotoFetchTimeout() time.Duration
	GetPhotoAllowedHosts() []string
	IsVisionEnabled() bool
}

// EmailConfig provides settings for outbound email delivery.
type EmailConfig interface {
	GetEmailProvider() string
	GetResendAPIKey() string
	GetSendGridAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	// EmailCredentialKey names the credential the selected provider requires.
	EmailCredentialKey() string
	IsEmailConfigured() bool
}

// NotificationConfig provides settings for the lead notification messages.
type NotificationConfig interface {
	GetOperatorEmail() string
	GetCompanyPhone() string
	GetAppBaseURL() string
}

// SchedulerConfig provides settings for the asynq notification queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	JWTAccessSecret      string
	CORSAllowAll         bool
	CORSOrigins          []string
	SubmitRatePerMinute  int
	AppBaseURL           string
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinIOMaxFileSize     int64
	MinIOPublicURL       string
	MinioBucketLeadPhoto string
	AIProvider           string
	AIGatewayURL         string
	AIAPIKey             string
	AIModel              string
	GeminiAPIKey         string
	AITimeout            time.Duration
	PhotoFetchTimeout    time.Duration
	PhotoAllowedHosts    []string
	EmailProvider        string
	ResendAPIKey         string
	SendGridAPIKey       string
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFromName        string
	EmailFromAddress     string
	OperatorEmail        string
	CompanyPhone         string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string         { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool       { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string    { return c.CORSOrigins }
func (c *Config) GetSubmitRatePerMinute() int { return c.SubmitRatePerMinute }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64      { return c.MinIOMaxFileSize }
func (c *Config) GetMinIOPublicURL() string       { return c.MinIOPublicURL }
func (c *Config) GetMinioBucketLeadPhotos() string { return c.MinioBucketLeadPhoto }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

// VisionConfig implementation
func (c *Config) GetAIProvider() string               { return c.AIProvider }
func (c *Config) GetAIGatewayURL() string             { return c.AIGatewayURL }
func (c *Config) GetAIAPIKey() string                 { return c.AIAPIKey }
func (c *Config) GetAIModel() string                  { return c.AIModel }
func (c *Config) GetGeminiAPIKey() string             { return c.GeminiAPIKey }
func (c *Config) GetAITimeout() time.Duration         { return c.AITimeout }
func (c *Config) GetPhotoFetchTimeout() time.Duration { return c.PhotoFetchTimeout }
func (c *Config) GetPhotoAllowedHosts() []string       { return c.PhotoAllowedHosts }
func (c *Config) IsVisionEnabled() bool {
	if c.AIProvider == "gemini" {
		return c.GeminiAPIKey != ""
	}
	return c.AIAPIKey != ""
}

// EmailConfig implementation
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetResendAPIKey() string     { return c.ResendAPIKey }
func (c *Config) GetSendGridAPIKey() string   { return c.SendGridAPIKey }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

func (c *Config) EmailCredentialKey() string {
	switch c.EmailProvider {
	case "smtp":
		return "SMTP_HOST"
	case "sendgrid":
		return "SENDGRID_API_KEY"
	default:
		return "RESEND_API_KEY"
	}
}

func (c *Config) IsEmailConfigured() bool {
	switch c.EmailProvider {
	case "smtp":
		return c.SMTPHost != ""
	case "sendgrid":
		return c.SendGridAPIKey != ""
	default:
		return c.ResendAPIKey != ""
	}
}

// NotificationConfig implementation
func (c *Config) GetOperatorEmail() string { return c.OperatorEmail }
func (c *Config) GetCompanyPhone() string  { return c.CompanyPhone }
func (c *Config) GetAppBaseURL() string    { return c.AppBaseURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		SubmitRatePerMinute:  mustInt(getEnv("SUBMIT_RATE_PER_MINUTE", "10")),
		AppBaseURL:           getEnv("APP_BASE_URL", "http://localhost:5173"),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:     mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinIOPublicURL:       strings.TrimRight(getEnv("MINIO_PUBLIC_URL", ""), "/"),
		MinioBucketLeadPhoto: getEnv("MINIO_BUCKET_LEAD_PHOTOS", "lead-photos"),
		AIProvider:           strings.ToLower(getEnv("AI_PROVIDER", "gateway")),
		AIGatewayURL:         getEnv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1"),
		AIAPIKey:             getEnv("AI_API_KEY", ""),
		AIModel:              getEnv("AI_MODEL", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		AITimeout:            mustDuration(getEnv("AI_TIMEOUT", "45s")),
		PhotoFetchTimeout:    mustDuration(getEnv("PHOTO_FETCH_TIMEOUT", "10s")),
		PhotoAllowedHosts:    splitCSV(getEnv("PHOTO_ALLOWED_HOSTS", "")),
		EmailProvider:        strings.ToLower(getEnv("EMAIL_PROVIDER", "resend")),
		ResendAPIKey:         getEnv("RESEND_API_KEY", ""),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Chevalier Couvreur"),
		EmailFromAddress:     getEnv("EMAIL_FROM_ADDRESS", "estimation@chevalier-couvreur.com"),
		OperatorEmail:        getEnv("OPERATOR_EMAIL", "francis@chevalier-couvreur.com"),
		CompanyPhone:         getEnv("COMPANY_PHONE", "+14505551234"),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "notifications"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	switch cfg.AIProvider {
	case "gateway", "gemini":
	default:
		return nil, fmt.Errorf("AI_PROVIDER must be gateway or gemini, got %q", cfg.AIProvider)
	}
	switch cfg.EmailProvider {
	case "resend", "smtp", "sendgrid":
	default:
		return nil, fmt.Errorf("EMAIL_PROVIDER must be resend, smtp or sendgrid, got %q", cfg.EmailProvider)
	}
	if cfg.IsEmailConfigured() && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is configured")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
