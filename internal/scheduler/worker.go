package scheduler

import (
	"context"
	"errors"
	"fmt"

	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/internal/leads/repository"
	"couvreur_backend/internal/notification"
	"couvreur_backend/platform/config"
	"couvreur_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// LeadReader loads the lead a notify task refers to.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

// Dispatcher sends the lead messages.
type Dispatcher interface {
	Dispatch(ctx context.Context, lead domain.Lead, est domain.Estimate) notification.Result
}

// LeadNotifyHandler processes TaskLeadNotify.
type LeadNotifyHandler struct {
	leads      LeadReader
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewLeadNotifyHandler(leads LeadReader, dispatcher Dispatcher, log *logger.Logger) *LeadNotifyHandler {
	return &LeadNotifyHandler{leads: leads, dispatcher: dispatcher, log: log}
}

// ProcessTask never retries a dispatch that reached the mailer: a partial
// failure is logged and the task completes so the other message is not resent.
func (h *LeadNotifyHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadNotifyPayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("parse lead id: %v: %w", err, asynq.SkipRetry)
	}

	lead, err := h.leads.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		h.log.Warn("notify task for missing lead", "lead_id", payload.LeadID)
		return nil
	}
	if err != nil {
		return err
	}

	res := h.dispatcher.Dispatch(ctx, lead, payload.Estimate)
	args := []any{"lead_id", payload.LeadID, "emails_sent", res.EmailsSent}
	if res.Reason != "" {
		args = append(args, "reason", res.Reason)
	}
	h.log.Info("lead notifications dispatched", args...)
	return nil
}

// Worker runs the asynq server that drains the notification queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, handler *LeadNotifyHandler, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed", "type", task.Type(), "error", err)
		}),
	})

	mux := asynq.NewServeMux()
	mux.Handle(TaskLeadNotify, handler)

	return &Worker{server: server, mux: mux, log: log}, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("notification worker stopped", "error", err)
	}
}
