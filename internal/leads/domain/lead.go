// Package domain holds the lead entity and the value objects the estimate
// pipeline attaches to it.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxPhotos is the most photo references a lead may carry.
const MaxPhotos = 10

// Status is the operator-owned pipeline position of a lead.
type Status string

const (
	StatusNew        Status = "new"
	StatusInspection Status = "inspection"
	StatusQuoted     Status = "quoted"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

var knownStatuses = map[Status]struct{}{
	StatusNew:        {},
	StatusInspection: {},
	StatusQuoted:     {},
	StatusWon:        {},
	StatusLost:       {},
}

func IsKnownStatus(s string) bool {
	_, ok := knownStatuses[Status(s)]
	return ok
}

// ProjectType is the category the submitter picked in the wizard.
type ProjectType string

const (
	ProjectResidential ProjectType = "residential"
	ProjectCommercial  ProjectType = "commercial"
	ProjectEmergency   ProjectType = "emergency"
)

// Lead is a single customer submission.
type Lead struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	FullName             string
	Phone                string
	Email                string
	PreferredContactTime *string

	ProjectType  ProjectType
	PropertyType *string
	YearBuilt    *int
	Address      string

	RoofType         *string
	RoofAge          *string
	AccessDifficulty *string
	RoofIssues       []string
	DesiredTimeline  *string
	Budget           *string
	Consent          bool

	Photos []string

	Analysis        *PhotoAnalysis
	ConfidenceScore *int
	Estimate        *Estimate

	Status Status
}

// IsEmergency reports whether the urgency surcharge applies.
func (l *Lead) IsEmergency() bool {
	return l.ProjectType == ProjectEmergency
}
