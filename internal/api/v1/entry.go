package v1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Macros is the estimated nutritional breakdown of one meal.
// Produced upstream by the macro-estimation collaborator; the rollup engine
// never interprets it beyond exact-decimal summation.
type Macros struct {
	Calories decimal.Decimal `json:"calories"`
	Protein  decimal.Decimal `json:"protein"`
	Carbs    decimal.Decimal `json:"carbs"`
	Fat      decimal.Decimal `json:"fat"`
}

// Entry is the raw meal-log record — the source of truth every bucket is
// derived from. Buckets are never edited directly; they are rebuilt from
// entries on each mutation.
type Entry struct {
	// ID is the unique immutable identifier, assigned server-side on create.
	ID string `json:"id"`

	// TenantID is the reserved isolation dimension. Empty in the
	// single-tenant deployments this system currently runs as; never set
	// through the public API.
	TenantID string `json:"-"`

	// Name is the display name of the meal (e.g. "grilled chicken salad").
	Name string `json:"name"`

	// EatenOn is the calendar day the meal belongs to. This is the only
	// field whose mutation moves the entry between daily buckets.
	EatenOn Date `json:"eaten_on"`

	// Macros is nil when estimation has not produced a value yet.
	// A nil Macros contributes zero to every metric sum but the entry
	// still counts toward entry_count.
	Macros *Macros `json:"macros,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the entry has all required attributes.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if e.EatenOn.IsZero() {
		return fmt.Errorf("eaten_on is required")
	}
	return nil
}

// ChangeKind identifies the mutation that triggered a change event.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is the contract between the entry CRUD layer and the rollup
// dispatcher. The CRUD layer must emit it synchronously, inside the same
// transaction as its own write; skipping or reordering the call leaves
// buckets stale.
type ChangeEvent struct {
	Kind ChangeKind

	// Before is the entry as it was prior to the mutation.
	// Required for update and delete.
	Before *Entry

	// After is the entry as written by the mutation.
	// Required for insert and update.
	After *Entry
}

// Validate checks that the event carries the snapshots its kind requires.
func (ev ChangeEvent) Validate() error {
	switch ev.Kind {
	case ChangeInsert:
		if ev.After == nil {
			return fmt.Errorf("insert event requires after snapshot")
		}
	case ChangeDelete:
		if ev.Before == nil {
			return fmt.Errorf("delete event requires before snapshot")
		}
	case ChangeUpdate:
		if ev.Before == nil || ev.After == nil {
			return fmt.Errorf("update event requires before and after snapshots")
		}
	default:
		return fmt.Errorf("unknown change kind %q", ev.Kind)
	}
	return nil
}
