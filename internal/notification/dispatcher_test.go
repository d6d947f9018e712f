package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"couvreur_backend/internal/email"
	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/platform/logger"

	"github.com/google/uuid"
)

type testConfig struct {
	configured bool
}

func (c testConfig) GetOperatorEmail() string { return "francis@chevalier-couvreur.com" }
func (c testConfig) GetCompanyPhone() string { return "+14505551234" }
func (c testConfig) GetAppBaseURL() string { return "https://chevalier-couvreur.com" }
func (c testConfig) IsEmailConfigured() bool { return c.configured }
func (c testConfig) EmailCredentialKey() string { return "RESEND_API_KEY" }

type testMailer struct {
	mu   sync.Mutex
	sent []email.Message
	fail map[string]error
}

func (m *testMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[msg.To]; err != nil {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testLead() domain.Lead {
	roofAge := "15"
	return domain.Lead{
		ID:          uuid.New(),
		FullName:    "Marie Tremblay",
		Phone:       "+14505551234",
		Email:       "marie@example.com",
		Address:     "12 rue des Érables, Laval",
		ProjectType: domain.ProjectResidential,
		RoofAge:     &roofAge,
		Photos:      []string{"https://cdn.example.com/lead-photos/a.jpg"},
	}
}

var testEstimate = domain.Estimate{Low: 7097, Mid: 8349, High: 9601, Timeline: "1-2 jours", Confidence: 50}

func TestDispatch_SkippedWhenNotConfigured(t *testing.T) {
	mailer := &testMailer{}
	d := NewDispatcher(mailer, testConfig{configured: false}, logger.Discard(), nil)

	res := d.Dispatch(context.Background(), testLead(), testEstimate)

	if res.EmailsSent {
		t.Fatal("expected emailsSent=false")
	}
	if res.Reason != "RESEND_API_KEY not configured" {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
	if res.Customer != nil || res.Operator != nil || len(mailer.sent) != 0 {
		t.Fatal("expected no send attempt")
	}
}

func TestDispatch_BothSent(t *testing.T) {
	mailer := &testMailer{}
	d := NewDispatcher(mailer, testConfig{configured: true}, logger.Discard(), nil)

	res := d.Dispatch(context.Background(), testLead(), testEstimate)

	if !res.EmailsSent || !res.Customer.Sent || !res.Operator.Sent {
		t.Fatalf("expected both messages sent, got %+v %+v", res.Customer, res.Operator)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mailer.sent))
	}
	for _, msg := range mailer.sent {
		if msg.To == "francis@chevalier-couvreur.com" && !strings.Contains(msg.HTML, "15 ans") {
			t.Fatal("expected operator alert to carry roof age")
		}
	}
}

func TestDispatch_CustomerFailureDoesNotBlockOperator(t *testing.T) {
	mailer := &testMailer{fail: map[string]error{"marie@example.com": errors.New("mailbox unavailable")}}
	d := NewDispatcher(mailer, testConfig{configured: true}, logger.Discard(), nil)

	res := d.Dispatch(context.Background(), testLead(), testEstimate)

	if res.Customer.Sent || res.Customer.Error != "mailbox unavailable" {
		t.Fatalf("expected customer failure, got %+v", res.Customer)
	}
	if !res.Operator.Sent {
		t.Fatalf("expected operator alert sent, got %+v", res.Operator)
	}
}

func TestDispatch_OperatorFailureDoesNotBlockCustomer(t *testing.T) {
	mailer := &testMailer{fail: map[string]error{"francis@chevalier-couvreur.com": errors.New("rate limited")}}
	d := NewDispatcher(mailer, testConfig{configured: true}, logger.Discard(), nil)

	res := d.Dispatch(context.Background(), testLead(), testEstimate)

	if !res.Customer.Sent {
		t.Fatalf("expected customer email sent, got %+v", res.Customer)
	}
	if res.Operator.Sent || res.Operator.Error == "" {
		t.Fatalf("expected operator failure, got %+v", res.Operator)
	}
}

func TestAsyncQueue_DispatchesAfterCancel(t *testing.T) {
	mailer := &testMailer{}
	d := NewDispatcher(mailer, testConfig{configured: true}, logger.Discard(), nil)
	q := NewAsyncQueue(d, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	if err := q.Enqueue(ctx, testLead(), testEstimate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	q.Wait()

	if len(mailer.sent) != 2 {
		t.Fatalf("expected both messages despite cancellation, got %d", len(mailer.sent))
	}
}
