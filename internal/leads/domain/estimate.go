package domain

// PhotoAnalysis is the structured roof assessment produced from photos.
// It is the wire shape surfaced in API responses and stored as JSON.
type PhotoAnalysis struct {
	RoofType        string   `json:"roofType"`
	EstimatedArea   float64  `json:"estimatedArea"`
	Pitch           string   `json:"pitch"`
	Condition       string   `json:"condition"`
	Issues          []string `json:"issues"`
	EstimatedAge    float64  `json:"estimatedAge"`
	ConfidenceScore float64  `json:"confidenceScore"`
	Complexity      string   `json:"complexity"`
}

// FallbackAnalysis is returned whenever the vision call cannot produce a result.
// Every field holds a mid-range default and the confidence is low.
func FallbackAnalysis() PhotoAnalysis {
	return PhotoAnalysis{
		RoofType:        "unknown",
		EstimatedArea:   1500,
		Pitch:           "medium",
		Condition:       "fair",
		Issues:          []string{},
		EstimatedAge:    15,
		ConfidenceScore: 30,
		Complexity:      "moderate",
	}
}

// Estimate is the price range and timeline computed for a lead.
// Low and High are derived from Mid so Low <= Mid <= High always holds.
type Estimate struct {
	Low        int    `json:"low"`
	Mid        int    `json:"mid"`
	High       int    `json:"high"`
	Timeline   string `json:"timeline"`
	Confidence int    `json:"confidence"`
}
