package rollup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	httperr "github.com/macrolog-lab/macrolog/internal/core/errors"
	core "github.com/macrolog-lab/macrolog/internal/core/rollup"
	"github.com/macrolog-lab/macrolog/internal/core/storage"
)

const defaultRebuildWorkers = 4

// Rebuilder recomputes the entire bucket cascade from raw entries.
// This is the recovery path for buckets that drifted outside the normal
// dispatch flow (manual database edits, restored backups, code fixes).
type Rebuilder struct {
	runner  storage.TxRunner
	engine  *Engine
	workers int
}

// NewRebuilder creates a full-rebuild runner with a bounded worker pool.
func NewRebuilder(runner storage.TxRunner, engine *Engine, workers int) *Rebuilder {
	if workers <= 0 {
		workers = defaultRebuildWorkers
	}
	return &Rebuilder{runner: runner, engine: engine, workers: workers}
}

// RebuildAll wipes every bucket for the tenant and recomputes each layer
// from scratch. Returns the number of days recomputed.
//
// Layers rebuild in three phases — all daily buckets, then all weekly, then
// all monthly — and keys within a phase never collide, so each phase fans
// out across the worker pool. Running day and week recomputes concurrently
// would not be safe here: a weekly rebuild could read its window before
// sibling days have committed.
func (r *Rebuilder) RebuildAll(ctx context.Context, tenantID string) (int, error) {
	var days []v1.Date
	err := r.runner.WithinTx(ctx, func(s storage.Store) error {
		var err error
		days, err = s.ListEntryDays(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("list entry days: %w", err)
		}
		return s.DeleteAllBuckets(ctx, tenantID)
	})
	if err != nil {
		return 0, fmt.Errorf("rebuild: reset buckets: %w", err)
	}

	slog.Info("[Rebuilder] Starting full rebuild",
		"days", len(days),
		"workers", r.workers,
	)

	if err := r.runPhase(ctx, days, func(ctx context.Context, s storage.Store, day v1.Date) error {
		return r.engine.RecomputeDay(ctx, s, tenantID, day)
	}); err != nil {
		return 0, fmt.Errorf("rebuild: daily phase: %w", err)
	}

	if err := r.runPhase(ctx, distinctKeys(days, core.StartOfWeek), func(ctx context.Context, s storage.Store, weekStart v1.Date) error {
		return r.engine.RecomputeWeek(ctx, s, tenantID, weekStart)
	}); err != nil {
		return 0, fmt.Errorf("rebuild: weekly phase: %w", err)
	}

	if err := r.runPhase(ctx, distinctKeys(days, core.StartOfMonth), func(ctx context.Context, s storage.Store, monthStart v1.Date) error {
		return r.engine.RecomputeMonth(ctx, s, tenantID, monthStart)
	}); err != nil {
		return 0, fmt.Errorf("rebuild: monthly phase: %w", err)
	}

	slog.Info("[Rebuilder] Full rebuild complete", "days", len(days))
	return len(days), nil
}

// runPhase recomputes each key in its own transaction, bounded by the
// worker pool, and joins before the caller moves to the next layer.
func (r *Rebuilder) runPhase(ctx context.Context, keys []v1.Date, recompute func(context.Context, storage.Store, v1.Date) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, key := range keys {
		key := key
		g.Go(func() error {
			return r.runner.WithinTx(gctx, func(s storage.Store) error {
				return recompute(gctx, s, key)
			})
		})
	}
	return g.Wait()
}

// distinctKeys maps days through align (week or month truncation) and
// deduplicates, preserving ascending order of first appearance.
func distinctKeys(days []v1.Date, align func(v1.Date) v1.Date) []v1.Date {
	seen := make(map[string]struct{}, len(days))
	var keys []v1.Date
	for _, day := range days {
		key := align(day)
		if _, ok := seen[key.String()]; ok {
			continue
		}
		seen[key.String()] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// RegisterRoutes registers the rebuild admin route.
func (r *Rebuilder) RegisterRoutes(router gin.IRouter) {
	router.POST("/v1/admin/recompute", r.HandleRebuild)
}

// HandleRebuild handles POST /v1/admin/recompute.
func (r *Rebuilder) HandleRebuild(c *gin.Context) {
	days, err := r.RebuildAll(c.Request.Context(), "")
	if err != nil {
		slog.Error("[Rebuilder] Full rebuild failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to rebuild buckets",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "rebuilt",
		"days_recomputed": days,
	})
}
