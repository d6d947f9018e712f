package transport

import (
	"time"

	"couvreur_backend/internal/leads/domain"
)

// Request DTOs

// SubmitLeadRequest is the wizard payload. In multipart submissions it is the
// JSON value of the "payload" field.
type SubmitLeadRequest struct {
	FullName             string   `json:"fullName" validate:"required,min=2,max=120"`
	Phone                string   `json:"phone" validate:"required,phone"`
	Email                string   `json:"email" validate:"required,email,max=254"`
	PreferredContactTime *string  `json:"preferredContactTime,omitempty" validate:"omitempty,max=100"`
	ProjectType          string   `json:"projectType" validate:"omitempty,oneof=residential commercial emergency"`
	PropertyType         *string  `json:"propertyType,omitempty" validate:"omitempty,max=50"`
	YearBuilt            *int     `json:"yearBuilt,omitempty" validate:"omitempty,min=1800,max=2100"`
	Address              string   `json:"address" validate:"required,min=5,max=300"`
	RoofType             *string  `json:"roofType,omitempty" validate:"omitempty,max=50"`
	RoofAge              *string  `json:"roofAge,omitempty" validate:"omitempty,max=20"`
	AccessDifficulty     *string  `json:"accessDifficulty,omitempty" validate:"omitempty,max=50"`
	RoofIssues           []string `json:"roofIssues,omitempty" validate:"omitempty,max=20,dive,max=100"`
	DesiredTimeline      *string  `json:"desiredTimeline,omitempty" validate:"omitempty,max=100"`
	Budget               *string  `json:"budget,omitempty" validate:"omitempty,max=100"`
	Consent              bool     `json:"consent" validate:"required"`
	// Photos already uploaded by the client. Entries beyond the lead limit are ignored.
	Photos []string `json:"photos,omitempty" validate:"omitempty,dive,url"`
}

type EstimateRequest struct {
	LeadID string `json:"leadId" validate:"required"`
}

type NotificationEstimate struct {
	Low        int    `json:"low" validate:"min=0"`
	Mid        int    `json:"mid" validate:"min=0"`
	High       int    `json:"high" validate:"min=0"`
	Timeline   string `json:"timeline" validate:"required"`
	Confidence int    `json:"confidence,omitempty" validate:"min=0,max=100"`
}

type NotificationRequest struct {
	LeadID   string               `json:"leadId" validate:"required"`
	Estimate NotificationEstimate `json:"estimate"`
}

func (e NotificationEstimate) ToDomain() domain.Estimate {
	return domain.Estimate{
		Low:        e.Low,
		Mid:        e.Mid,
		High:       e.High,
		Timeline:   e.Timeline,
		Confidence: e.Confidence,
	}
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,leadstatus"`
}

type ListLeadsRequest struct {
	Status string `form:"status" validate:"omitempty,leadstatus"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

// Response DTOs

type EstimateResponse struct {
	Low        int    `json:"low"`
	Mid        int    `json:"mid"`
	High       int    `json:"high"`
	Timeline   string `json:"timeline"`
	Confidence int    `json:"confidence"`
}

type SubmitLeadResponse struct {
	Success  bool                  `json:"success"`
	LeadID   string                `json:"leadId"`
	Estimate EstimateResponse      `json:"estimate"`
	Analysis *domain.PhotoAnalysis `json:"analysis"`
	Photos   int                   `json:"photos"`
}

type EstimateResultResponse struct {
	Success  bool                  `json:"success"`
	Estimate EstimateResponse      `json:"estimate"`
	Analysis *domain.PhotoAnalysis `json:"analysis"`
	LeadID   string                `json:"leadId"`
}

type EmailOutcome struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

type NotificationResponse struct {
	Success       bool          `json:"success"`
	EmailsSent    bool          `json:"emailsSent"`
	Reason        string        `json:"reason,omitempty"`
	CustomerEmail *EmailOutcome `json:"customerEmail,omitempty"`
	OwnerEmail    *EmailOutcome `json:"ownerEmail,omitempty"`
}

type LeadResponse struct {
	ID                   string                `json:"id"`
	FullName             string                `json:"fullName"`
	Phone                string                `json:"phone"`
	Email                string                `json:"email"`
	PreferredContactTime *string               `json:"preferredContactTime,omitempty"`
	ProjectType          string                `json:"projectType"`
	PropertyType         *string               `json:"propertyType,omitempty"`
	YearBuilt            *int                  `json:"yearBuilt,omitempty"`
	Address              string                `json:"address"`
	RoofType             *string               `json:"roofType,omitempty"`
	RoofAge              *string               `json:"roofAge,omitempty"`
	AccessDifficulty     *string               `json:"accessDifficulty,omitempty"`
	RoofIssues           []string              `json:"roofIssues"`
	DesiredTimeline      *string               `json:"desiredTimeline,omitempty"`
	Budget               *string               `json:"budget,omitempty"`
	Consent              bool                  `json:"consent"`
	Photos               []string              `json:"photos"`
	Analysis             *domain.PhotoAnalysis `json:"analysis"`
	ConfidenceScore      *int                  `json:"confidenceScore,omitempty"`
	Estimate             *EstimateResponse     `json:"estimate"`
	Status               string                `json:"status"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}

type LeadListResponse struct {
	Items  []LeadResponse `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type LeadStatsResponse struct {
	Total      int   `json:"total"`
	New        int   `json:"new"`
	InProgress int   `json:"inProgress"`
	Won        int   `json:"won"`
	Lost       int   `json:"lost"`
	WonValue   int64 `json:"wonValue"`
}
