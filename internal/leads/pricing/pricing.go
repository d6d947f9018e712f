// Package pricing turns roof features into a price range and a work timeline.
// Every function here is pure. Unknown categories fall back to the defaults
// listed next to each table instead of failing.
package pricing

import (
	"math"
	"strings"

	"couvreur_backend/internal/leads/domain"
)

const (
	DefaultRoofType   = "asphalt"
	DefaultArea       = 1500.0
	DefaultPitch      = "medium"
	DefaultCondition  = "fair"
	DefaultComplexity = "moderate"
	// DefaultConfidence marks an estimate built only from self-reported data.
	DefaultConfidence = 50
	// MaxArea bounds any area used for pricing, in square feet. Larger analysis
	// readings are treated as absent.
	MaxArea = 100000.0
	// MaxPrice saturates every returned amount so it fits the INTEGER columns.
	MaxPrice = math.MaxInt32

	emergencySurcharge = 1.3
	lowSpread          = 0.85
	highSpread         = 1.15
)

// Unit prices in dollars per square foot.
var unitPrices = map[string]float64{
	"asphalt":       5.50,
	"architectural": 7.00,
	"metal":         12.00,
	"tpo":           8.00,
	"epdm":          8.50,
	"slate":         15.00,
	"wood":          10.00,
}

const unknownUnitPrice = 6.00

// Typical roof areas in square feet by property type.
var propertyAreas = map[string]float64{
	"bungalow":   1200,
	"2-etages":   1800,
	"duplex":     2200,
	"triplex":    3000,
	"commercial": 5000,
}

var pitchFactors = map[string]float64{
	"low":    1.0,
	"medium": 1.15,
	"steep":  1.35,
}

var accessFactors = map[string]float64{
	"easy":      1.0,
	"moderate":  1.1,
	"difficult": 1.25,
}

var conditionFactors = map[string]float64{
	"excellent": 0.85,
	"good":      1.0,
	"fair":      1.1,
	"poor":      1.25,
}

var complexityFactors = map[string]float64{
	"simple":   0.95,
	"moderate": 1.0,
	"complex":  1.2,
}

// Features is the normalized input to Calculate.
type Features struct {
	RoofType   string
	Area       float64
	Pitch      string
	Access     string
	Condition  string
	Complexity string
	Urgent     bool
}

// Declared holds what the submitter told us in the wizard.
type Declared struct {
	RoofType         string
	PropertyType     string
	AccessDifficulty string
	Emergency        bool
}

// DeclaredFromLead extracts the pricing-relevant declared fields.
func DeclaredFromLead(l *domain.Lead) Declared {
	return Declared{
		RoofType:         deref(l.RoofType),
		PropertyType:     deref(l.PropertyType),
		AccessDifficulty: deref(l.AccessDifficulty),
		Emergency:        l.IsEmergency(),
	}
}

// Resolve merges declared fields with an optional analysis. Analysis values win
// whenever they are present, "unknown" included; an empty field or an area
// outside (0, MaxArea] falls through to the declared value and then to the default.
func Resolve(d Declared, a *domain.PhotoAnalysis) (Features, int) {
	f := Features{
		RoofType:   firstNonEmpty(norm(d.RoofType), DefaultRoofType),
		Area:       DefaultArea,
		Pitch:      DefaultPitch,
		Access:     norm(d.AccessDifficulty),
		Condition:  DefaultCondition,
		Complexity: DefaultComplexity,
		Urgent:     d.Emergency,
	}
	if area, ok := propertyAreas[norm(d.PropertyType)]; ok {
		f.Area = area
	}
	confidence := DefaultConfidence

	if a == nil {
		return f, confidence
	}

	f.RoofType = firstNonEmpty(norm(a.RoofType), f.RoofType)
	if plausibleArea(a.EstimatedArea) {
		f.Area = a.EstimatedArea
	}
	f.Pitch = firstNonEmpty(norm(a.Pitch), f.Pitch)
	f.Condition = firstNonEmpty(norm(a.Condition), f.Condition)
	f.Complexity = firstNonEmpty(norm(a.Complexity), f.Complexity)
	if a.ConfidenceScore > 0 {
		confidence = int(math.Round(math.Min(a.ConfidenceScore, 100)))
	}
	return f, confidence
}

// Calculate prices a feature set.
// mid = round(area x unit price x factors); low and high are derived from mid.
func Calculate(f Features) (low, mid, high int) {
	unit, ok := unitPrices[f.RoofType]
	if !ok {
		unit = unknownUnitPrice
	}
	area := f.Area
	if !plausibleArea(area) {
		area = DefaultArea
	}
	basePrice := area * unit

	urgency := 1.0
	if f.Urgent {
		urgency = emergencySurcharge
	}
	multiplier := factor(pitchFactors, f.Pitch) *
		factor(accessFactors, f.Access) *
		factor(conditionFactors, f.Condition) *
		factor(complexityFactors, f.Complexity) *
		urgency

	midF := math.Round(basePrice * multiplier)
	return saturate(midF * lowSpread), saturate(midF), saturate(midF * highSpread)
}

// Estimate resolves the features and prices them.
func Estimate(d Declared, a *domain.PhotoAnalysis) domain.Estimate {
	f, confidence := Resolve(d, a)
	low, mid, high := Calculate(f)
	return domain.Estimate{
		Low:        low,
		Mid:        mid,
		High:       high,
		Timeline:   Timeline(f.Area, f.Complexity),
		Confidence: confidence,
	}
}

// Timeline buckets the work duration. It never decreases as area or complexity grow.
func Timeline(area float64, complexity string) string {
	var baseDays float64
	switch {
	case area < 1500:
		baseDays = 2
	case area < 2500:
		baseDays = 4
	case area < 4000:
		baseDays = 6
	default:
		baseDays = 8
	}

	scale := 1.0
	switch complexity {
	case "simple":
		scale = 0.8
	case "complex":
		scale = 1.3
	}
	days := math.Ceil(baseDays * scale)

	switch {
	case days <= 2:
		return "1-2 jours"
	case days <= 4:
		return "3-4 jours"
	case days <= 6:
		return "5-6 jours"
	default:
		return "7-10 jours"
	}
}

func plausibleArea(area float64) bool {
	return area > 0 && area <= MaxArea
}

// saturate rounds v into [0, MaxPrice]. NaN maps to 0.
func saturate(v float64) int {
	v = math.Round(v)
	switch {
	case !(v > 0):
		return 0
	case v >= MaxPrice:
		return MaxPrice
	}
	return int(v)
}

// unknown keys are price-neutral
func factor(table map[string]float64, key string) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return 1.0
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
