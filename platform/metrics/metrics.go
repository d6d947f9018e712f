// Package metrics exposes Prometheus instruments for the estimate pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis outcomes.
const (
	AnalysisSuccess  = "success"
	AnalysisFallback = "fallback"
	AnalysisSkipped  = "skipped"
)

// PipelineMetrics counts submissions and the recovered failures inside them.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	submissions   *prometheus.CounterVec
	photoUploads  *prometheus.CounterVec
	analyses      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	estimateMid   prometheus.Histogram
	statusChanges *prometheus.CounterVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "couvreur",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead submissions by outcome",
		}, []string{"outcome"}),
		photoUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "couvreur",
			Subsystem: "leads",
			Name:      "photo_uploads_total",
			Help:      "Photo uploads by outcome",
		}, []string{"outcome"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "couvreur",
			Subsystem: "leads",
			Name:      "photo_analyses_total",
			Help:      "Photo analyses by outcome (success, fallback, skipped)",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "couvreur",
			Subsystem: "notifications",
			Name:      "sends_total",
			Help:      "Notification sends by message and outcome",
		}, []string{"message", "outcome"}),
		estimateMid: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "couvreur",
			Subsystem: "leads",
			Name:      "estimate_mid_dollars",
			Help:      "Distribution of mid estimates",
			Buckets:   []float64{2500, 5000, 7500, 10000, 15000, 20000, 30000, 50000, 100000},
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "couvreur",
			Subsystem: "leads",
			Name:      "status_changes_total",
			Help:      "Operator status changes by target status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.photoUploads, m.analyses, m.notifications, m.estimateMid, m.statusChanges)
	return m
}

func (m *PipelineMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *PipelineMetrics) ObservePhotoUpload(ok bool) {
	if m == nil {
		return
	}
	m.photoUploads.WithLabelValues(outcomeLabel(ok)).Inc()
}

func (m *PipelineMetrics) ObserveAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
}

func (m *PipelineMetrics) ObserveNotification(message string, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(message, outcome).Inc()
}

func (m *PipelineMetrics) ObserveEstimate(mid int) {
	if m == nil {
		return
	}
	m.estimateMid.Observe(float64(mid))
}

func (m *PipelineMetrics) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
