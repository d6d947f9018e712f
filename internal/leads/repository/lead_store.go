package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"couvreur_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("lead not found")

// DBTX is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LeadStore persists leads in Postgres.
type LeadStore struct {
	db DBTX
}

func New(db DBTX) *LeadStore {
	return &LeadStore{db: db}
}

const leadColumns = `
	id, full_name, phone, email, preferred_contact_time,
	project_type, property_type, year_built, address,
	roof_type, roof_age, access_difficulty, roof_issues, desired_timeline, budget, consent,
	photos, ai_analysis, confidence_score,
	estimate_low, estimate_mid, estimate_high, estimate_timeline,
	status, created_at, updated_at`

// Insert stores a new lead. ID, status and timestamps are filled in on l.
func (r *LeadStore) Insert(ctx context.Context, l *domain.Lead) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = domain.StatusNew
	}
	issues := l.RoofIssues
	if issues == nil {
		issues = []string{}
	}
	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO leads (
			id, full_name, phone, email, preferred_contact_time,
			project_type, property_type, year_built, address,
			roof_type, roof_age, access_difficulty, roof_issues, desired_timeline, budget, consent,
			photos, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at`,
		l.ID, l.FullName, l.Phone, l.Email, l.PreferredContactTime,
		string(l.ProjectType), l.PropertyType, l.YearBuilt, l.Address,
		l.RoofType, l.RoofAge, l.AccessDifficulty, issues, l.DesiredTimeline, l.Budget, l.Consent,
		photos, string(l.Status),
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// UpdateEstimate writes the analysis and every estimate column in one statement.
// It never touches status, so it cannot clobber an operator's move.
func (r *LeadStore) UpdateEstimate(ctx context.Context, id uuid.UUID, analysis *domain.PhotoAnalysis, est domain.Estimate) error {
	var analysisJSON []byte
	if analysis != nil {
		encoded, err := json.Marshal(analysis)
		if err != nil {
			return fmt.Errorf("encode analysis: %w", err)
		}
		analysisJSON = encoded
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE leads SET
			ai_analysis = $2,
			confidence_score = $3,
			estimate_low = $4,
			estimate_mid = $5,
			estimate_high = $6,
			estimate_timeline = $7,
			updated_at = now()
		WHERE id = $1`,
		id, analysisJSON, est.Confidence, est.Low, est.Mid, est.High, est.Timeline,
	)
	if err != nil {
		return fmt.Errorf("update estimate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus sets the pipeline status and returns the previous one.
func (r *LeadStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Status, error) {
	var previous string
	err := r.db.QueryRow(ctx, `
		UPDATE leads l SET status = $2, updated_at = now()
		FROM (SELECT id, status FROM leads WHERE id = $1 FOR UPDATE) prev
		WHERE l.id = prev.id
		RETURNING prev.status`,
		id, string(status),
	).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("update status: %w", err)
	}
	return domain.Status(previous), nil
}

// ListParams filters the dashboard listing. Zero Status means all.
type ListParams struct {
	Status domain.Status
	Limit  int
	Offset int
}

// List returns leads newest first plus the total matching the filter.
func (r *LeadStore) List(ctx context.Context, p ListParams) ([]domain.Lead, int, error) {
	var statusFilter *string
	if p.Status != "" {
		s := string(p.Status)
		statusFilter = &s
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM leads WHERE ($1::text IS NULL OR status = $1)`, statusFilter,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+leadColumns+` FROM leads
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, statusFilter, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Stats is the dashboard summary.
type Stats struct {
	Total      int
	New        int
	InProgress int
	Won        int
	Lost       int
	WonValue   int64
}

func (r *LeadStore) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'new'),
			count(*) FILTER (WHERE status IN ('inspection', 'quoted')),
			count(*) FILTER (WHERE status = 'won'),
			count(*) FILTER (WHERE status = 'lost'),
			COALESCE(sum(estimate_mid) FILTER (WHERE status = 'won'), 0)::bigint
		FROM leads`,
	).Scan(&s.Total, &s.New, &s.InProgress, &s.Won, &s.Lost, &s.WonValue)
	if err != nil {
		return Stats{}, fmt.Errorf("lead stats: %w", err)
	}
	return s, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		l            domain.Lead
		projectType  string
		status       string
		yearBuilt    *int32
		analysisJSON []byte
		confidence   *int32
		low          *int32
		mid          *int32
		high         *int32
		timeline     *string
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := row.Scan(
		&l.ID, &l.FullName, &l.Phone, &l.Email, &l.PreferredContactTime,
		&projectType, &l.PropertyType, &yearBuilt, &l.Address,
		&l.RoofType, &l.RoofAge, &l.AccessDifficulty, &l.RoofIssues, &l.DesiredTimeline, &l.Budget, &l.Consent,
		&l.Photos, &analysisJSON, &confidence,
		&low, &mid, &high, &timeline,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	l.ProjectType = domain.ProjectType(projectType)
	l.Status = domain.Status(status)
	l.CreatedAt = createdAt
	l.UpdatedAt = updatedAt
	if yearBuilt != nil {
		y := int(*yearBuilt)
		l.YearBuilt = &y
	}
	if confidence != nil {
		c := int(*confidence)
		l.ConfidenceScore = &c
	}
	if len(analysisJSON) > 0 {
		var analysis domain.PhotoAnalysis
		if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
			return domain.Lead{}, fmt.Errorf("decode ai_analysis: %w", err)
		}
		l.Analysis = &analysis
	}
	// estimate columns are all set or all null
	if low != nil && mid != nil && high != nil && timeline != nil {
		est := domain.Estimate{Low: int(*low), Mid: int(*mid), High: int(*high), Timeline: *timeline}
		if l.ConfidenceScore != nil {
			est.Confidence = *l.ConfidenceScore
		}
		l.Estimate = &est
	}
	return l, nil
}
