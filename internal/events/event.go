// Package events provides domain event definitions for the lead lifecycle.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"couvreur_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// LeadSubmitted is published once the draft lead row exists.
type LeadSubmitted struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	ProjectType string    `json:"projectType"`
	PhotoCount  int       `json:"photoCount"`
}

func (e LeadSubmitted) EventName() string { return "leads.submitted" }

// EstimateCompleted is published after the estimate is persisted on the lead.
type EstimateCompleted struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	Mid         int       `json:"mid"`
	Confidence  int       `json:"confidence"`
	HasAnalysis bool      `json:"hasAnalysis"`
}

func (e EstimateCompleted) EventName() string { return "leads.estimate_completed" }

// LeadStatusChanged is published when an operator moves a lead on the board.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedBy string    `json:"changedBy"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status_changed" }
