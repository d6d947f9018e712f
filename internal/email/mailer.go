// Package email delivers transactional mail through Resend, SendGrid or SMTP.
package email

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"couvreur_backend/platform/config"
)

// Message is one outbound email.
type Message struct {
	FromName string
	To       string
	ToName   string
	Subject  string
	HTML     string
	Text     string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NoopMailer drops every message.
type NoopMailer struct{}

func (NoopMailer) Send(context.Context, Message) error { return nil }

// NewMailer picks the provider named by EMAIL_PROVIDER. When the provider has no
// credential it returns NoopMailer; callers check cfg.IsEmailConfigured first.
func NewMailer(cfg config.EmailConfig) (Mailer, error) {
	if !cfg.IsEmailConfigured() {
		return NoopMailer{}, nil
	}

	switch cfg.GetEmailProvider() {
	case "smtp":
		return NewSMTPMailer(SMTPConfig{
			Host:      cfg.GetSMTPHost(),
			Port:      cfg.GetSMTPPort(),
			Username:  cfg.GetSMTPUsername(),
			Password:  cfg.GetSMTPPassword(),
			FromName:  cfg.GetEmailFromName(),
			FromEmail: cfg.GetEmailFromAddress(),
		}), nil
	case "sendgrid":
		return NewSendGridMailer(cfg.GetSendGridAPIKey(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	case "resend", "":
		return NewResendMailer(ResendConfig{
			APIKey:    cfg.GetResendAPIKey(),
			FromName:  cfg.GetEmailFromName(),
			FromEmail: cfg.GetEmailFromAddress(),
		}, &http.Client{Timeout: 10 * time.Second}), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}

func fromName(msg Message, fallback string) string {
	if msg.FromName != "" {
		return msg.FromName
	}
	return fallback
}
