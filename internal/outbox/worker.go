package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hasnaanagy/salik/pkg/eventbus"
	"github.com/hasnaanagy/salik/pkg/logger"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
)

// Worker drains the outbox onto the event bus. Delivery is at-least-once:
// an event that fails to publish stays unpublished and is retried next tick.
type Worker struct {
	repo      RepositoryInterface
	publisher Publisher
	interval  time.Duration
	batchSize int
}

// NewWorker creates a new outbox delivery worker
func NewWorker(repo RepositoryInterface, publisher Publisher) *Worker {
	return &Worker{
		repo:      repo,
		publisher: publisher,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
}

// Start runs the delivery loop until the context is cancelled
func (w *Worker) Start(ctx context.Context) {
	logger.Info("outbox worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain publishes one batch of pending events
func (w *Worker) Drain(ctx context.Context) {
	events, err := w.repo.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		logger.Error("outbox: failed to fetch pending events", zap.Error(err))
		return
	}

	for _, e := range events {
		envelope := &eventbus.Event{
			ID:        e.ID.String(),
			Type:      e.Topic,
			Data:      e.Payload,
			CreatedAt: e.CreatedAt,
		}

		if err := w.publisher.Publish(ctx, e.Topic, envelope); err != nil {
			logger.Error("outbox: publish failed, will retry",
				zap.String("event_id", e.ID.String()),
				zap.String("topic", e.Topic),
				zap.Error(err))
			return
		}

		if err := w.repo.MarkPublished(ctx, e.ID); err != nil {
			// The event was delivered; a failed mark means a duplicate next
			// tick, which subscribers must tolerate anyway.
			logger.Error("outbox: failed to mark event published",
				zap.String("event_id", e.ID.String()),
				zap.Error(err))
			return
		}
	}
}
