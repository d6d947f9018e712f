// Package service runs the estimate pipeline for a lead: intake validation,
// photo storage, photo analysis, pricing, persistence and notification handoff.
package service

import (
	"context"
	"errors"
	"strings"

	"couvreur_backend/internal/events"
	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/internal/leads/pricing"
	"couvreur_backend/internal/leads/repository"
	"couvreur_backend/internal/leads/transport"
	"couvreur_backend/internal/notification"
	"couvreur_backend/platform/apperr"
	"couvreur_backend/platform/logger"
	"couvreur_backend/platform/metrics"
	"couvreur_backend/platform/phone"
	"couvreur_backend/platform/sanitize"
	"couvreur_backend/platform/validator"

	"github.com/google/uuid"
)

// Submission outcomes recorded on the submissions counter.
const (
	outcomeInvalid   = "invalid"
	outcomeFailed    = "failed"
	outcomeCompleted = "completed"
)

const (
	msgInvalidSubmission = "invalid submission"
	msgLeadNotFound      = "lead not found"
	msgSaveFailed        = "failed to save submission"
	msgEstimateFailed    = "failed to save estimate"
)

// LeadRepository is the data access the pipeline needs.
type LeadRepository interface {
	Insert(ctx context.Context, l *domain.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateEstimate(ctx context.Context, id uuid.UUID, analysis *domain.PhotoAnalysis, est domain.Estimate) error
}

// PhotoAnalyzer assesses a roof from photo references. It never fails.
type PhotoAnalyzer interface {
	Analyze(ctx context.Context, uris []string) domain.PhotoAnalysis
}

// NotificationQueue hands a priced lead to the notification dispatcher
// without blocking the caller on delivery.
type NotificationQueue interface {
	Enqueue(ctx context.Context, lead domain.Lead, est domain.Estimate) error
}

// Notifier dispatches synchronously.
type Notifier interface {
	Dispatch(ctx context.Context, lead domain.Lead, est domain.Estimate) notification.Result
}

// Deps groups the collaborators of Service. Photos, Queue and Notifier may be nil.
// A nil References drops every client-supplied photo URL.
type Deps struct {
	Repo       LeadRepository
	Analyzer   PhotoAnalyzer
	Photos     *PhotoUploader
	References PhotoReferences
	Queue      NotificationQueue
	Notifier   Notifier
	Bus        events.Bus
	Validator  *validator.Validator
	Log        *logger.Logger
	Metrics    *metrics.PipelineMetrics
}

// Service is the estimate orchestrator.
type Service struct {
	repo     LeadRepository
	analyzer PhotoAnalyzer
	photos   *PhotoUploader
	refs     PhotoReferences
	queue    NotificationQueue
	notifier Notifier
	bus      events.Bus
	val      *validator.Validator
	log      *logger.Logger
	metrics  *metrics.PipelineMetrics
}

func New(d Deps) *Service {
	return &Service{
		repo:     d.Repo,
		analyzer: d.Analyzer,
		photos:   d.Photos,
		refs:     d.References,
		queue:    d.Queue,
		notifier: d.Notifier,
		bus:      d.Bus,
		val:      d.Validator,
		log:      d.Log,
		metrics:  d.Metrics,
	}
}

// SubmitResult is what the submitter gets back.
type SubmitResult struct {
	LeadID     uuid.UUID
	Estimate   domain.Estimate
	Analysis   *domain.PhotoAnalysis
	PhotoCount int
}

// Submit runs the whole pipeline for a new submission. Only validation and
// persistence failures are returned; everything else degrades.
func (s *Service) Submit(ctx context.Context, req transport.SubmitLeadRequest, uploads []PhotoUpload) (SubmitResult, error) {
	if err := s.val.Struct(req); err != nil {
		s.metrics.ObserveSubmission(outcomeInvalid)
		return SubmitResult{}, apperr.Validation(msgInvalidSubmission).WithDetails(validator.FieldErrors(err))
	}

	lead := newLead(req)
	lead.ID = uuid.New()
	ctx = context.WithValue(ctx, logger.LeadIDKey, lead.ID.String())
	log := s.log.WithContext(ctx)

	lead.Photos = s.collectPhotos(ctx, lead.ID, req.Photos, uploads)

	if err := s.repo.Insert(ctx, &lead); err != nil {
		log.DatabaseError("insert lead", err)
		s.metrics.ObserveSubmission(outcomeFailed)
		return SubmitResult{}, apperr.Internal(msgSaveFailed, err).WithOp("leads.Submit")
	}

	s.publish(ctx, events.LeadSubmitted{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		ProjectType: string(lead.ProjectType),
		PhotoCount:  len(lead.Photos),
	})

	// The lead exists now; finish even if the client goes away.
	work := context.WithoutCancel(ctx)

	est, err := s.estimate(work, &lead)
	if err != nil {
		s.metrics.ObserveSubmission(outcomeFailed)
		return SubmitResult{}, err
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(work, lead, est); err != nil {
			log.RecoveredFailure("notification_queue", err)
		}
	}

	s.metrics.ObserveSubmission(outcomeCompleted)
	log.Info("lead submitted",
		"photos", len(lead.Photos),
		"mid", est.Mid,
		"confidence", est.Confidence,
		"analyzed", lead.Analysis != nil)

	return SubmitResult{
		LeadID:     lead.ID,
		Estimate:   est,
		Analysis:   lead.Analysis,
		PhotoCount: len(lead.Photos),
	}, nil
}

// Estimate recomputes and stores the estimate of an existing lead. It sends nothing.
func (s *Service) Estimate(ctx context.Context, leadID uuid.UUID) (domain.Estimate, *domain.PhotoAnalysis, error) {
	lead, err := s.load(ctx, leadID)
	if err != nil {
		return domain.Estimate{}, nil, err
	}

	ctx = context.WithValue(ctx, logger.LeadIDKey, lead.ID.String())
	est, err := s.estimate(ctx, &lead)
	if err != nil {
		return domain.Estimate{}, nil, err
	}
	return est, lead.Analysis, nil
}

// Notify dispatches both messages for a lead and waits for the outcome.
func (s *Service) Notify(ctx context.Context, leadID uuid.UUID, est domain.Estimate) (notification.Result, error) {
	lead, err := s.load(ctx, leadID)
	if err != nil {
		return notification.Result{}, err
	}
	if s.notifier == nil {
		return notification.Result{EmailsSent: false, Reason: "notifications not configured"}, nil
	}
	return s.notifier.Dispatch(ctx, lead, est), nil
}

// estimate runs analysis when the lead has photos, prices it and stores the
// result on the lead row and on lead.
func (s *Service) estimate(ctx context.Context, lead *domain.Lead) (domain.Estimate, error) {
	var analysis *domain.PhotoAnalysis
	if len(lead.Photos) > 0 && s.analyzer != nil {
		result := s.analyzer.Analyze(ctx, lead.Photos)
		analysis = &result
	} else {
		s.metrics.ObserveAnalysis(metrics.AnalysisSkipped)
	}

	est := pricing.Estimate(pricing.DeclaredFromLead(lead), analysis)

	if err := s.repo.UpdateEstimate(ctx, lead.ID, analysis, est); err != nil {
		s.log.WithContext(ctx).DatabaseError("update estimate", err)
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Estimate{}, apperr.NotFound(msgLeadNotFound)
		}
		return domain.Estimate{}, apperr.Internal(msgEstimateFailed, err).WithOp("leads.estimate")
	}

	lead.Analysis = analysis
	lead.Estimate = &est
	confidence := est.Confidence
	lead.ConfidenceScore = &confidence

	s.metrics.ObserveEstimate(est.Mid)
	s.publish(ctx, events.EstimateCompleted{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		Mid:         est.Mid,
		Confidence:  est.Confidence,
		HasAnalysis: analysis != nil,
	})
	return est, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("get lead", err)
		return domain.Lead{}, apperr.Internal("failed to load lead", err)
	}
	return lead, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}

func newLead(req transport.SubmitLeadRequest) domain.Lead {
	projectType := domain.ProjectType(strings.ToLower(strings.TrimSpace(req.ProjectType)))
	if projectType == "" {
		projectType = domain.ProjectResidential
	}

	return domain.Lead{
		FullName:             sanitize.Text(req.FullName),
		Phone:                phone.NormalizeE164(req.Phone),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		PreferredContactTime: sanitize.TextPtr(req.PreferredContactTime),
		ProjectType:          projectType,
		PropertyType:         sanitize.TextPtr(req.PropertyType),
		YearBuilt:            req.YearBuilt,
		Address:              sanitize.Text(req.Address),
		RoofType:             sanitize.TextPtr(req.RoofType),
		RoofAge:              sanitize.TextPtr(req.RoofAge),
		AccessDifficulty:     sanitize.TextPtr(req.AccessDifficulty),
		RoofIssues:           sanitize.List(req.RoofIssues),
		DesiredTimeline:      sanitize.TextPtr(req.DesiredTimeline),
		Budget:               sanitize.TextPtr(req.Budget),
		Consent:              req.Consent,
		Status:               domain.StatusNew,
	}
}
