package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPipelineMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)

	m.ObserveSubmission("created")
	m.ObservePhotoUpload(true)
	m.ObservePhotoUpload(false)
	m.ObserveAnalysis(AnalysisFallback)
	m.ObserveNotification("customer", "sent")
	m.ObserveEstimate(8349)

	if got := testutil.ToFloat64(m.submissions.WithLabelValues("created")); got != 1 {
		t.Fatalf("expected 1 submission, got %v", got)
	}
	if got := testutil.ToFloat64(m.photoUploads.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected 1 failed upload, got %v", got)
	}
	if got := testutil.ToFloat64(m.analyses.WithLabelValues(AnalysisFallback)); got != 1 {
		t.Fatalf("expected 1 fallback analysis, got %v", got)
	}
	if got := testutil.CollectAndCount(m.estimateMid); got != 1 {
		t.Fatalf("expected histogram to be collected, got %d", got)
	}
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	m.ObserveSubmission("created")
	m.ObserveAnalysis(AnalysisSkipped)
	m.ObserveNotification("operator", "failed")
	m.ObserveEstimate(1)
	m.ObserveStatusChange("won")
}
