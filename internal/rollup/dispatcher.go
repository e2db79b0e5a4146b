package rollup

import (
	"context"
	"fmt"
	"log/slog"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	"github.com/macrolog-lab/macrolog/internal/core/storage"
)

// Dispatcher maps raw-entry mutations to the days whose buckets must be
// rebuilt, and runs the recompute cascade for each.
type Dispatcher struct {
	engine *Engine
}

// NewDispatcher creates a change dispatcher.
func NewDispatcher(engine *Engine) *Dispatcher {
	if engine == nil {
		panic("rollup: engine must not be nil")
	}
	return &Dispatcher{engine: engine}
}

// EntryChanged recomputes every day affected by ev. The CRUD layer calls it
// with the transaction-scoped store of its own write, so the write and the
// recompute share one durability boundary: any failure here must abort the
// whole mutation.
func (d *Dispatcher) EntryChanged(ctx context.Context, store storage.Store, ev v1.ChangeEvent) error {
	days, err := affectedDays(ev)
	if err != nil {
		return fmt.Errorf("dispatch change: %w", err)
	}

	tenantID := eventTenant(ev)
	for _, day := range days {
		if err := d.engine.Recompute(ctx, store, tenantID, day); err != nil {
			return fmt.Errorf("dispatch %s change: %w", ev.Kind, err)
		}
	}

	slog.Debug("[Dispatcher] Recomputed affected days",
		"kind", string(ev.Kind),
		"days", len(days),
	)
	return nil
}

// affectedDays derives the recompute set from the event kind:
// insert → the new day; delete → the old day; update → old and new day
// (both must be rebuilt even when only macros changed, and both really are
// two days when eaten_on moved — the origin bucket loses the entry and the
// destination bucket gains it).
func affectedDays(ev v1.ChangeEvent) ([]v1.Date, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	switch ev.Kind {
	case v1.ChangeInsert:
		return []v1.Date{ev.After.EatenOn}, nil
	case v1.ChangeDelete:
		return []v1.Date{ev.Before.EatenOn}, nil
	case v1.ChangeUpdate:
		if ev.Before.EatenOn.Equal(ev.After.EatenOn) {
			return []v1.Date{ev.After.EatenOn}, nil
		}
		return []v1.Date{ev.Before.EatenOn, ev.After.EatenOn}, nil
	}
	return nil, fmt.Errorf("unknown change kind %q", ev.Kind)
}

func eventTenant(ev v1.ChangeEvent) string {
	if ev.After != nil {
		return ev.After.TenantID
	}
	return ev.Before.TenantID
}
