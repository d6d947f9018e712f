// Package notification sends the customer confirmation and the operator alert
// for a priced lead. Delivery problems are reported in the Result and logged,
// never returned as errors.
package notification

import (
	"context"
	"strings"

	"couvreur_backend/internal/email"
	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/platform/config"
	"couvreur_backend/platform/logger"
	"couvreur_backend/platform/metrics"
	"couvreur_backend/platform/phone"

	"golang.org/x/sync/errgroup"
)

const (
	messageCustomer = "customer"
	messageOperator = "operator"
)

// Config is the configuration slice the dispatcher reads.
type Config interface {
	config.NotificationConfig
	IsEmailConfigured() bool
	EmailCredentialKey() string
}

// Outcome is the delivery result of one message.
type Outcome struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Result reports what happened to both messages. When delivery is not
// configured EmailsSent is false, Reason is set and no send was attempted.
type Result struct {
	EmailsSent bool
	Reason     string
	Customer   *Outcome
	Operator   *Outcome
}

// Dispatcher formats and sends the two lead messages.
type Dispatcher struct {
	mailer  email.Mailer
	cfg     Config
	log     *logger.Logger
	metrics *metrics.PipelineMetrics
}

func NewDispatcher(mailer email.Mailer, cfg Config, log *logger.Logger, m *metrics.PipelineMetrics) *Dispatcher {
	return &Dispatcher{mailer: mailer, cfg: cfg, log: log, metrics: m}
}

// Dispatch sends both messages independently and concurrently.
func (d *Dispatcher) Dispatch(ctx context.Context, lead domain.Lead, est domain.Estimate) Result {
	log := d.log.WithContext(ctx).WithLeadID(lead.ID.String())

	if !d.cfg.IsEmailConfigured() {
		reason := d.cfg.EmailCredentialKey() + " not configured"
		log.Info("notifications skipped", "reason", reason)
		d.metrics.ObserveNotification(messageCustomer, "skipped")
		d.metrics.ObserveNotification(messageOperator, "skipped")
		return Result{EmailsSent: false, Reason: reason}
	}

	var customer, operator Outcome
	g := new(errgroup.Group)
	g.Go(func() error {
		customer = d.send(ctx, log, messageCustomer, lead.Email, lead.FullName, func() (email.Message, error) {
			return email.RenderCustomerEstimate(customerData(lead, est, d.cfg.GetCompanyPhone()))
		})
		return nil
	})
	g.Go(func() error {
		operator = d.send(ctx, log, messageOperator, d.cfg.GetOperatorEmail(), "", func() (email.Message, error) {
			return email.RenderOperatorAlert(operatorData(lead, est, d.cfg.GetAppBaseURL()))
		})
		return nil
	})
	_ = g.Wait()

	return Result{EmailsSent: true, Customer: &customer, Operator: &operator}
}

func (d *Dispatcher) send(ctx context.Context, log *logger.Logger, kind, to, toName string, render func() (email.Message, error)) Outcome {
	msg, err := render()
	if err == nil {
		msg.To = to
		msg.ToName = toName
		err = d.mailer.Send(ctx, msg)
	}
	if err != nil {
		log.RecoveredFailure("notification", err, "message", kind)
		d.metrics.ObserveNotification(kind, "failed")
		return Outcome{Sent: false, Error: err.Error()}
	}
	d.metrics.ObserveNotification(kind, "sent")
	return Outcome{Sent: true}
}

func customerData(lead domain.Lead, est domain.Estimate, companyPhone string) email.CustomerEstimateData {
	return email.CustomerEstimateData{
		FullName:     lead.FullName,
		Low:          est.Low,
		Mid:          est.Mid,
		High:         est.High,
		Timeline:     est.Timeline,
		CompanyPhone: companyPhone,
		PhoneDisplay: phone.Display(companyPhone),
	}
}

func operatorData(lead domain.Lead, est domain.Estimate, baseURL string) email.OperatorAlertData {
	data := email.OperatorAlertData{
		FullName:             lead.FullName,
		Phone:                lead.Phone,
		Email:                lead.Email,
		Address:              lead.Address,
		ProjectType:          string(lead.ProjectType),
		PropertyType:         deref(lead.PropertyType),
		RoofType:             deref(lead.RoofType),
		AccessDifficulty:     deref(lead.AccessDifficulty),
		Issues:               lead.RoofIssues,
		PreferredContactTime: deref(lead.PreferredContactTime),
		Mid:                  est.Mid,
		Timeline:             est.Timeline,
		PhotoCount:           len(lead.Photos),
	}
	if age := deref(lead.RoofAge); age != "" {
		data.RoofAge = age + " ans"
	}
	if baseURL != "" {
		data.DashboardURL = strings.TrimRight(baseURL, "/") + "/admin/leads/" + lead.ID.String()
	}
	return data
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
