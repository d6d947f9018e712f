package management

import (
	"context"
	"testing"

	"couvreur_backend/internal/events"
	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/internal/leads/repository"
	"couvreur_backend/internal/leads/transport"
	"couvreur_backend/platform/apperr"
	"couvreur_backend/platform/logger"

	"github.com/google/uuid"
)

type boardRepo struct {
	leads      map[uuid.UUID]domain.Lead
	lastParams repository.ListParams
}

func (r *boardRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

func (r *boardRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status) (domain.Status, error) {
	l, ok := r.leads[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	prev := l.Status
	l.Status = status
	r.leads[id] = l
	return prev, nil
}

func (r *boardRepo) List(_ context.Context, p repository.ListParams) ([]domain.Lead, int, error) {
	r.lastParams = p
	out := make([]domain.Lead, 0, len(r.leads))
	for _, l := range r.leads {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (r *boardRepo) Stats(context.Context) (repository.Stats, error) {
	return repository.Stats{Total: 3, New: 1, InProgress: 1, Won: 1, WonValue: 8349}, nil
}

func TestUpdateStatus_PublishesChangeAndKeepsEstimate(t *testing.T) {
	id := uuid.New()
	est := domain.Estimate{Low: 7097, Mid: 8349, High: 9601, Timeline: "1-2 jours", Confidence: 50}
	repo := &boardRepo{leads: map[uuid.UUID]domain.Lead{
		id: {ID: id, Status: domain.StatusNew, Estimate: &est},
	}}
	bus := events.NewInMemoryBus(logger.Discard())
	var got events.LeadStatusChanged
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got = e.(events.LeadStatusChanged)
		return nil
	}))
	svc := New(repo, bus, nil)

	resp, err := svc.UpdateStatus(context.Background(), id, "quoted", "operator-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.Wait()

	if resp.Status != "quoted" {
		t.Fatalf("expected quoted, got %s", resp.Status)
	}
	if resp.Estimate == nil || resp.Estimate.Mid != 8349 {
		t.Fatal("expected estimate untouched by status change")
	}
	if got.OldStatus != "new" || got.NewStatus != "quoted" || got.ChangedBy != "operator-1" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	svc := New(&boardRepo{leads: map[uuid.UUID]domain.Lead{}}, nil, nil)

	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), "archived", "op"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), "won", "op"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestList_DefaultsLimit(t *testing.T) {
	repo := &boardRepo{leads: map[uuid.UUID]domain.Lead{}}
	svc := New(repo, nil, nil)

	resp, err := svc.List(context.Background(), transport.ListLeadsRequest{Status: "won"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastParams.Limit != defaultListLimit || repo.lastParams.Status != domain.StatusWon {
		t.Fatalf("unexpected params %+v", repo.lastParams)
	}
	if resp.Items == nil {
		t.Fatal("expected empty, non-nil items")
	}
}

func TestStats(t *testing.T) {
	svc := New(&boardRepo{}, nil, nil)
	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.InProgress != 1 || st.WonValue != 8349 {
		t.Fatalf("unexpected stats %+v", st)
	}
}
