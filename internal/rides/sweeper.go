package rides

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hasnaanagy/salik/pkg/logger"
)

const sweepInterval = time.Hour

// Sweeper periodically marks past-due scheduled rides as completed
type Sweeper struct {
	repo     RepositoryInterface
	interval time.Duration
}

// NewSweeper creates a new ride sweeper
func NewSweeper(repo RepositoryInterface) *Sweeper {
	return &Sweeper{repo: repo, interval: sweepInterval}
}

// Start runs the sweeper until the context is cancelled
func (s *Sweeper) Start(ctx context.Context) {
	logger.Info("ride sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("ride sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep completes past-due rides once
func (s *Sweeper) Sweep(ctx context.Context) {
	swept, err := s.repo.CompletePastDue(ctx)
	if err != nil {
		logger.Error("ride sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		logger.Info("completed past-due rides", zap.Int64("count", swept))
	}
}
