package transport

import "couvreur_backend/internal/leads/domain"

func ToEstimateResponse(e domain.Estimate) EstimateResponse {
	return EstimateResponse{
		Low:        e.Low,
		Mid:        e.Mid,
		High:       e.High,
		Timeline:   e.Timeline,
		Confidence: e.Confidence,
	}
}

func ToLeadResponse(l domain.Lead) LeadResponse {
	resp := LeadResponse{
		ID:                   l.ID.String(),
		FullName:             l.FullName,
		Phone:                l.Phone,
		Email:                l.Email,
		PreferredContactTime: l.PreferredContactTime,
		ProjectType:          string(l.ProjectType),
		PropertyType:         l.PropertyType,
		YearBuilt:            l.YearBuilt,
		Address:              l.Address,
		RoofType:             l.RoofType,
		RoofAge:              l.RoofAge,
		AccessDifficulty:     l.AccessDifficulty,
		RoofIssues:           nonNil(l.RoofIssues),
		DesiredTimeline:      l.DesiredTimeline,
		Budget:               l.Budget,
		Consent:              l.Consent,
		Photos:               nonNil(l.Photos),
		Analysis:             l.Analysis,
		ConfidenceScore:      l.ConfidenceScore,
		Status:               string(l.Status),
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
	if l.Estimate != nil {
		est := ToEstimateResponse(*l.Estimate)
		resp.Estimate = &est
	}
	return resp
}

func ToLeadResponses(leads []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToLeadResponse(l))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
