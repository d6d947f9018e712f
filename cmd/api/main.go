package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"couvreur_backend/internal/adapters/storage"
	"couvreur_backend/internal/email"
	"couvreur_backend/internal/events"
	apphttp "couvreur_backend/internal/http"
	"couvreur_backend/internal/http/router"
	"couvreur_backend/internal/leads"
	"couvreur_backend/internal/leads/analysis"
	"couvreur_backend/internal/leads/service"
	"couvreur_backend/internal/notification"
	"couvreur_backend/internal/scheduler"
	"couvreur_backend/migrations"
	"couvreur_backend/platform/config"
	"couvreur_backend/platform/db"
	"couvreur_backend/platform/logger"
	"couvreur_backend/platform/metrics"
	"couvreur_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	// Shared validator instance for dependency injection
	val := validator.New()

	photoUploader, photoReader := initStorage(ctx, cfg, log, pipelineMetrics)

	visionModel, err := analysis.NewVisionModel(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize vision model", "error", err)
		panic("failed to initialize vision model: " + err.Error())
	}
	if visionModel == nil {
		log.Warn("vision model not configured; photo analysis will use fallback values")
	}
	photoFetcher := analysis.NewHTTPFetcher(&http.Client{}, photoReader, cfg.GetMinioBucketLeadPhotos(), cfg.GetPhotoAllowedHosts()...)
	analyzer := analysis.NewAnalyzer(
		visionModel,
		photoFetcher,
		analysis.Options{FetchTimeout: cfg.GetPhotoFetchTimeout(), InferenceTimeout: cfg.GetAITimeout()},
		log,
		pipelineMetrics,
	)

	mailer, err := email.NewMailer(cfg)
	if err != nil {
		log.Error("failed to initialize mailer", "error", err)
		panic("failed to initialize mailer: " + err.Error())
	}
	dispatcher := notification.NewDispatcher(mailer, cfg, log, pipelineMetrics)

	queue, closeQueue := initNotificationQueue(cfg, dispatcher, log)
	defer closeQueue()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule, err := leads.NewModule(leads.Deps{
		DB:         pool,
		EventBus:   eventBus,
		Validator:  val,
		Photos:     photoUploader,
		References: photoFetcher,
		Analyzer:   analyzer,
		Queue:      queue,
		Notifier:   dispatcher,
		Log:        log,
		Metrics:    pipelineMetrics,
	})
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Metrics:  registry,
		Modules: []apphttp.Module{
			leadsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initStorage returns nil values when MinIO is not configured; uploads then
// fail per photo and only PHOTO_ALLOWED_HOSTS references are accepted.
func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.PipelineMetrics) (*service.PhotoUploader, analysis.ObjectReader) {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; photo uploads disabled")
		return nil, nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketLeadPhotos()
	if err := withRetry(ctx, log, "ensure lead-photos bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "leadPhotosBucket", bucket)

	return service.NewPhotoUploader(storageSvc, bucket, log, m), storageSvc
}

// initNotificationQueue prefers the Redis-backed queue drained by cmd/worker
// and falls back to dispatching inside this process.
func initNotificationQueue(cfg config.SchedulerConfig, dispatcher *notification.Dispatcher, log *logger.Logger) (service.NotificationQueue, func()) {
	inProcess := func() (service.NotificationQueue, func()) {
		q := notification.NewAsyncQueue(dispatcher, log)
		return q, q.Wait
	}

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; notifications dispatched in-process")
		return inProcess()
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification queue client", "error", err)
		return inProcess()
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
