// Package analysis turns roof photos into a structured assessment through a
// vision model. Every failure inside Analyze is absorbed and answered with
// domain.FallbackAnalysis.
package analysis

import (
	"context"
	"errors"
	"time"

	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/platform/logger"
	"couvreur_backend/platform/metrics"

	"golang.org/x/sync/errgroup"
)

// MaxPhotosPerAnalysis is how many references are sent to the model; the rest are ignored.
const MaxPhotosPerAnalysis = 5

const maxConcurrentFetches = 5

var errNoModel = errors.New("vision model not configured")
var errNoImages = errors.New("no photo could be loaded")

// VisionModel runs one inference over a batch of images and returns the raw text answer.
type VisionModel interface {
	Name() string
	Generate(ctx context.Context, images []ImageData) (string, error)
}

// Options bounds the outbound calls.
type Options struct {
	FetchTimeout     time.Duration
	InferenceTimeout time.Duration
}

// Analyzer fetches photos and asks the vision model for an assessment.
type Analyzer struct {
	model   VisionModel
	fetcher PhotoFetcher
	opts    Options
	log     *logger.Logger
	metrics *metrics.PipelineMetrics
}

// NewAnalyzer wires an analyzer. A nil model yields the fallback for every call.
func NewAnalyzer(model VisionModel, fetcher PhotoFetcher, opts Options, log *logger.Logger, m *metrics.PipelineMetrics) *Analyzer {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.InferenceTimeout <= 0 {
		opts.InferenceTimeout = 45 * time.Second
	}
	return &Analyzer{model: model, fetcher: fetcher, opts: opts, log: log, metrics: m}
}

// Analyze never fails. Photos that cannot be loaded are dropped; when none
// survive, or the model call or its payload is bad, the fallback is returned.
func (a *Analyzer) Analyze(ctx context.Context, uris []string) domain.PhotoAnalysis {
	log := a.log.WithContext(ctx)

	if a.model == nil {
		return a.fallback(log, errNoModel)
	}
	if len(uris) > MaxPhotosPerAnalysis {
		uris = uris[:MaxPhotosPerAnalysis]
	}

	images := a.loadImages(ctx, uris)
	if len(images) == 0 {
		return a.fallback(log, errNoImages)
	}

	inferCtx, cancel := context.WithTimeout(ctx, a.opts.InferenceTimeout)
	defer cancel()

	content, err := a.model.Generate(inferCtx, images)
	if err != nil {
		return a.fallback(log, err, "model", a.model.Name())
	}
	result, err := parseAnalysis(content)
	if err != nil {
		return a.fallback(log, err, "model", a.model.Name())
	}

	a.metrics.ObserveAnalysis(metrics.AnalysisSuccess)
	log.Info("photo analysis completed",
		"model", a.model.Name(),
		"images", len(images),
		"roofType", result.RoofType,
		"confidence", result.ConfidenceScore)
	return result
}

// loadImages fetches in parallel and keeps the input order of the survivors.
func (a *Analyzer) loadImages(ctx context.Context, uris []string) []ImageData {
	slots := make([]*ImageData, len(uris))
	log := a.log.WithContext(ctx)

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentFetches)
	for i, uri := range uris {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, a.opts.FetchTimeout)
			defer cancel()

			img, err := a.fetcher.Fetch(fetchCtx, uri)
			if err != nil {
				log.RecoveredFailure("photo_fetch", err, "uri", uri)
				return nil
			}
			slots[i] = &img
			return nil
		})
	}
	_ = g.Wait()

	images := make([]ImageData, 0, len(slots))
	for _, img := range slots {
		if img != nil {
			images = append(images, *img)
		}
	}
	return images
}

func (a *Analyzer) fallback(log *logger.Logger, err error, args ...any) domain.PhotoAnalysis {
	log.RecoveredFailure("photo_analysis", err, args...)
	a.metrics.ObserveAnalysis(metrics.AnalysisFallback)
	return domain.FallbackAnalysis()
}
