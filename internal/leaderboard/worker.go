package leaderboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/boardprep/review-platform/internal/question"
)

// RefreshWorker periodically recomputes every leaderboard variant so the
// cache stays warm and live viewers receive updates even between ranked
// completions.
type RefreshWorker struct {
	svc      *Service
	logger   zerolog.Logger
	interval time.Duration
}

func NewRefreshWorker(svc *Service, interval time.Duration, logger zerolog.Logger) *RefreshWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &RefreshWorker{
		svc:      svc,
		logger:   logger.With().Str("component", "leaderboard_refresh_worker").Logger(),
		interval: interval,
	}
}

// Run blocks until context cancellation.
func (w *RefreshWorker) Run(ctx context.Context) error {
	if w.svc == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *RefreshWorker) tick(ctx context.Context) {
	for _, module := range []string{ModuleAll, question.ModulePsychology, question.ModuleNursing} {
		if err := w.svc.Refresh(ctx, module); err != nil {
			w.logger.Warn().Err(err).Str("module", module).Msg("leaderboard refresh failed")
		}
	}
}
