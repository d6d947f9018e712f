// Package leads provides the lead bounded context module: the public estimate
// wizard endpoints and the operator dashboard.
package leads

import (
	"context"

	"couvreur_backend/internal/events"
	apphttp "couvreur_backend/internal/http"
	"couvreur_backend/internal/leads/handler"
	"couvreur_backend/internal/leads/management"
	"couvreur_backend/internal/leads/repository"
	"couvreur_backend/internal/leads/service"
	"couvreur_backend/platform/logger"
	"couvreur_backend/platform/metrics"
	"couvreur_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators built by the composition root. Photos, Analyzer,
// Queue and Notifier may be nil when the matching integration is disabled.
// References filters client-supplied photo URLs; when nil none are kept.
type Deps struct {
	DB         repository.DBTX
	EventBus   events.Bus
	Validator  *validator.Validator
	Photos     *service.PhotoUploader
	References service.PhotoReferences
	Analyzer   service.PhotoAnalyzer
	Queue      service.NotificationQueue
	Notifier   service.Notifier
	Log        *logger.Logger
	Metrics    *metrics.PipelineMetrics
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	public *handler.PublicHandler
	admin  *handler.Handler
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(d Deps) (*Module, error) {
	if err := handler.RegisterValidations(d.Validator); err != nil {
		return nil, err
	}

	repo := repository.New(d.DB)

	pipeline := service.New(service.Deps{
		Repo:       repo,
		Analyzer:   d.Analyzer,
		Photos:     d.Photos,
		References: d.References,
		Queue:      d.Queue,
		Notifier:   d.Notifier,
		Bus:        d.EventBus,
		Validator:  d.Validator,
		Log:        d.Log,
		Metrics:    d.Metrics,
	})
	mgmtSvc := management.New(repo, d.EventBus, d.Metrics)

	if d.EventBus != nil {
		registerEventLogging(d.EventBus, d.Log)
	}

	return &Module{
		public: handler.NewPublicHandler(pipeline, d.Validator),
		admin:  handler.New(mgmtSvc, d.Validator),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	var submitMiddleware []gin.HandlerFunc
	if ctx.SubmitRateLimit != nil {
		submitMiddleware = append(submitMiddleware, ctx.SubmitRateLimit)
	}
	m.public.RegisterRoutes(ctx.V1, submitMiddleware...)

	// Dashboard routes require an operator token
	m.admin.RegisterRoutes(ctx.Admin.Group("/leads"))
}

func registerEventLogging(bus events.Bus, log *logger.Logger) {
	logEvent := events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		log.WithContext(ctx).Info("domain event", "event", event.EventName(), "payload", event)
		return nil
	})
	for _, name := range []string{
		events.LeadSubmitted{}.EventName(),
		events.EstimateCompleted{}.EventName(),
		events.LeadStatusChanged{}.EventName(),
	} {
		bus.Subscribe(name, logEvent)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
