package recompute

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/engine"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
)

// Summarizer computes a fresh group summary. *engine.Engine implements it.
type Summarizer interface {
	Summary(ctx context.Context, groupID string) (*engine.Summary, error)
}

// Worker keeps the summary cache in step with ledger events.
type Worker struct {
	events  events.Subscriber
	engine  Summarizer
	cache   *Cache
	metrics *metrics.Metrics
}

// NewWorker creates a worker. m may be nil.
func NewWorker(sub events.Subscriber, summarizer Summarizer, cache *Cache, m *metrics.Metrics) *Worker {
	return &Worker{events: sub, engine: summarizer, cache: cache, metrics: m}
}

// Run consumes events until ctx is done or the bus closes.
func (w *Worker) Run(ctx context.Context) error {
	ch, err := w.events.Subscribe(ctx)
	if err != nil {
		return err
	}
	slog.Info("Recompute worker started")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Recompute worker stopped")
			return nil
		case event, ok := <-ch:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return events.ErrClosed
			}
			w.refresh(ctx, event)
		}
	}
}

func (w *Worker) refresh(ctx context.Context, event events.Event) {
	generation := w.cache.Invalidate(event.GroupID)

	start := time.Now()
	summary, err := w.engine.Summary(ctx, event.GroupID)
	w.metrics.ObserveRecompute(time.Since(start))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || ctx.Err() != nil {
			return
		}
		slog.Error("Recompute failed",
			"group_id", event.GroupID,
			"kind", event.Kind,
			"error", err,
		)
		return
	}

	stored := w.cache.Put(event.GroupID, generation, summary)
	slog.Debug("Recomputed summary",
		"group_id", event.GroupID,
		"kind", event.Kind,
		"stored", stored,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Summary returns the cached summary of a group, computing and caching it on
// a miss.
func (w *Worker) Summary(ctx context.Context, groupID string) (*engine.Summary, error) {
	if summary, ok := w.cache.Get(groupID); ok {
		return summary, nil
	}

	generation := w.cache.Generation(groupID)
	summary, err := w.engine.Summary(ctx, groupID)
	if err != nil {
		return nil, err
	}
	w.cache.Put(groupID, generation, summary)
	return summary, nil
}
