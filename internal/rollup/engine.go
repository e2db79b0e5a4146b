package rollup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	core "github.com/macrolog-lab/macrolog/internal/core/rollup"
	"github.com/macrolog-lab/macrolog/internal/core/storage"
)

// Engine rebuilds the daily → weekly → monthly bucket cascade for one day.
//
// Each layer is a full replace derived from the layer below it (daily from
// raw entries, weekly/monthly from daily buckets). The engine never reads a
// bucket's prior value to compute its next one, which is what keeps repeated
// recomputes from accumulating drift.
type Engine struct {
	nowFn func() time.Time
}

// NewEngine creates a recompute engine.
func NewEngine() *Engine {
	return &Engine{
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Recompute rebuilds every bucket affected by day, in cascade order: the
// daily bucket first, then the weekly and monthly buckets whose windows
// contain it. Order matters — the rollup steps read the daily layer this
// call just wrote.
//
// Runs against whatever Store it is handed; the dispatcher passes the
// transaction-scoped store of the triggering mutation, so a failure here
// aborts that mutation too.
func (e *Engine) Recompute(ctx context.Context, store storage.Store, tenantID string, day v1.Date) error {
	if err := e.RecomputeDay(ctx, store, tenantID, day); err != nil {
		return err
	}
	if err := e.RecomputeWeek(ctx, store, tenantID, core.StartOfWeek(day)); err != nil {
		return err
	}
	return e.RecomputeMonth(ctx, store, tenantID, core.StartOfMonth(day))
}

// RecomputeDay rebuilds the daily bucket for day from raw entries.
// A day with no entries has its bucket deleted, not zeroed.
func (e *Engine) RecomputeDay(ctx context.Context, store storage.Store, tenantID string, day v1.Date) error {
	entries, err := store.ListEntriesByDay(ctx, tenantID, day)
	if err != nil {
		return fmt.Errorf("recompute day %s: list entries: %w", day, err)
	}

	value, ok := core.SummarizeDay(entries, e.nowFn())
	if !ok {
		if err := store.DeleteBucket(ctx, tenantID, core.Daily, day); err != nil {
			return fmt.Errorf("recompute day %s: delete bucket: %w", day, err)
		}
		slog.Debug("[Engine] Daily bucket removed", "day", day.String())
		return nil
	}

	if err := store.UpsertBucket(ctx, tenantID, core.Daily, day, value); err != nil {
		return fmt.Errorf("recompute day %s: upsert bucket: %w", day, err)
	}
	return nil
}

// RecomputeWeek rebuilds the weekly bucket keyed by weekStart (a Monday)
// from the daily buckets in its window.
func (e *Engine) RecomputeWeek(ctx context.Context, store storage.Store, tenantID string, weekStart v1.Date) error {
	return e.recomputeWindow(ctx, store, tenantID, core.Weekly, weekStart, weekStart.AddDays(7))
}

// RecomputeMonth rebuilds the monthly bucket keyed by monthStart (the first
// of the month) from the daily buckets in its window.
func (e *Engine) RecomputeMonth(ctx context.Context, store storage.Store, tenantID string, monthStart v1.Date) error {
	return e.recomputeWindow(ctx, store, tenantID, core.Monthly, monthStart, core.NextMonth(monthStart))
}

func (e *Engine) recomputeWindow(ctx context.Context, store storage.Store, tenantID string, g core.Granularity, from, to v1.Date) error {
	days, err := store.RangeBuckets(ctx, tenantID, core.Daily, from, to)
	if err != nil {
		return fmt.Errorf("recompute %s %s: range daily buckets: %w", g, from, err)
	}

	value, ok := core.Average(days, e.nowFn())
	if !ok {
		if err := store.DeleteBucket(ctx, tenantID, g, from); err != nil {
			return fmt.Errorf("recompute %s %s: delete bucket: %w", g, from, err)
		}
		return nil
	}

	if err := store.UpsertBucket(ctx, tenantID, g, from, value); err != nil {
		return fmt.Errorf("recompute %s %s: upsert bucket: %w", g, from, err)
	}
	return nil
}
