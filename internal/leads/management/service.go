// Package management serves the operator dashboard: listing leads, reading one,
// moving it between pipeline statuses and summarizing the board.
package management

import (
	"context"
	"errors"

	"couvreur_backend/internal/events"
	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/internal/leads/repository"
	"couvreur_backend/internal/leads/transport"
	"couvreur_backend/platform/apperr"
	"couvreur_backend/platform/metrics"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	msgLeadNotFound  = "lead not found"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Status, error)
	List(ctx context.Context, p repository.ListParams) ([]domain.Lead, int, error)
	Stats(ctx context.Context) (repository.Stats, error)
}

// Service handles dashboard operations.
type Service struct {
	repo     Repository
	eventBus events.Bus
	metrics  *metrics.PipelineMetrics
}

// New creates a new lead management service.
func New(repo Repository, eventBus events.Bus, m *metrics.PipelineMetrics) *Service {
	return &Service{repo: repo, eventBus: eventBus, metrics: m}
}

// List returns leads newest first.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	leads, total, err := s.repo.List(ctx, repository.ListParams{
		Status: domain.Status(req.Status),
		Limit:  limit,
		Offset: req.Offset,
	})
	if err != nil {
		return transport.LeadListResponse{}, apperr.Internal("failed to list leads", err)
	}

	return transport.LeadListResponse{
		Items:  transport.ToLeadResponses(leads),
		Total:  total,
		Limit:  limit,
		Offset: req.Offset,
	}, nil
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}
	return transport.ToLeadResponse(lead), nil
}

// UpdateStatus moves a lead to status. Estimate fields are never touched.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, changedBy string) (transport.LeadResponse, error) {
	if !domain.IsKnownStatus(status) {
		return transport.LeadResponse{}, apperr.Validation("unknown status")
	}

	previous, err := s.repo.UpdateStatus(ctx, id, domain.Status(status))
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapRepoError(err)
	}

	if previous != lead.Status {
		s.metrics.ObserveStatusChange(string(lead.Status))
		if s.eventBus != nil {
			s.eventBus.Publish(ctx, events.LeadStatusChanged{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    id,
				OldStatus: string(previous),
				NewStatus: string(lead.Status),
				ChangedBy: changedBy,
			})
		}
	}

	return transport.ToLeadResponse(lead), nil
}

// Stats summarizes the board.
func (s *Service) Stats(ctx context.Context) (transport.LeadStatsResponse, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return transport.LeadStatsResponse{}, apperr.Internal("failed to load stats", err)
	}
	return transport.LeadStatsResponse{
		Total:      st.Total,
		New:        st.New,
		InProgress: st.InProgress,
		Won:        st.Won,
		Lost:       st.Lost,
		WonValue:   st.WonValue,
	}, nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return apperr.Internal("lead store failure", err)
}
