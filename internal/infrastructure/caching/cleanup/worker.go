// Package cleanup runs the background sweep that evicts idle session
// contexts and stale catalog entries.
package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/caching/manager"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
)

// Worker periodically sweeps the cache stores until stopped
type Worker struct {
	cache    *manager.Manager
	logger   *logging.ChanneledLogger
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWorker creates a sweep worker with the given interval
func NewWorker(cache *manager.Manager, logger *logging.ChanneledLogger, interval time.Duration) *Worker {
	return &Worker{
		cache:    cache,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		defer close(w.done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Cache().Info("Cleanup worker started",
			slog.Duration("interval", w.interval))

		for {
			select {
			case <-ctx.Done():
				w.logger.Cache().Info("Cleanup worker stopping")
				return
			case <-ticker.C:
				w.sweep()
			}
		}
	}()
}

// Stop cancels the loop and waits for the final sweep to finish
func (w *Worker) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		<-w.done
	})
}

func (w *Worker) sweep() {
	start := time.Now()
	sessions := w.cache.Conversations().SweepExpired()
	catalog := w.cache.Catalog().EvictStale()

	if sessions > 0 || catalog > 0 {
		w.logger.Cache().Info("Sweep completed",
			slog.Int("sessionsEvicted", sessions),
			slog.Int("catalogEntriesEvicted", catalog),
			slog.Duration("duration", time.Since(start)))
	}
}
