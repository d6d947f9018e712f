package notification

import (
	"context"
	"sync"

	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/platform/logger"
)

// AsyncQueue dispatches in a background goroutine of the API process.
// It is used when no Redis-backed queue is configured.
type AsyncQueue struct {
	dispatcher *Dispatcher
	log        *logger.Logger
	wg         sync.WaitGroup
}

func NewAsyncQueue(dispatcher *Dispatcher, log *logger.Logger) *AsyncQueue {
	return &AsyncQueue{dispatcher: dispatcher, log: log}
}

// Enqueue returns immediately. The dispatch outlives ctx cancellation.
func (q *AsyncQueue) Enqueue(ctx context.Context, lead domain.Lead, est domain.Estimate) error {
	detached := context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		res := q.dispatcher.Dispatch(detached, lead, est)
		q.log.WithContext(detached).Info("lead notifications dispatched",
			"lead_id", lead.ID.String(),
			"emails_sent", res.EmailsSent,
			"reason", res.Reason)
	}()
	return nil
}

// Wait blocks until queued dispatches finish. Called on shutdown.
func (q *AsyncQueue) Wait() {
	q.wg.Wait()
}
