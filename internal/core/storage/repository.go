package storage

import (
	"context"
	"errors"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	"github.com/macrolog-lab/macrolog/internal/core/rollup"
)

// ErrNotFound is returned when a lookup targets a record that does not exist.
// Bucket reads use it to signal "absent", which is a normal state, not a
// failure: an absent bucket means no data in its window.
var ErrNotFound = errors.New("record not found")

// EntryStore persists raw meal entries — the source of truth all buckets are
// derived from.
type EntryStore interface {
	InsertEntry(ctx context.Context, e *v1.Entry) error

	GetEntry(ctx context.Context, tenantID, id string) (*v1.Entry, error)

	// GetEntryForUpdate locks the row for the duration of the enclosing
	// transaction so the "before" snapshot handed to the dispatcher cannot
	// race with a concurrent mutation of the same entry.
	GetEntryForUpdate(ctx context.Context, tenantID, id string) (*v1.Entry, error)

	UpdateEntry(ctx context.Context, e *v1.Entry) error

	DeleteEntry(ctx context.Context, tenantID, id string) error

	// ListEntriesByDay returns every entry with eaten_on == day, ordered by
	// creation time. This is the recompute engine's source query.
	ListEntriesByDay(ctx context.Context, tenantID string, day v1.Date) ([]*v1.Entry, error)

	// ListEntryDays returns the distinct days that have at least one entry,
	// ascending. Used by the full rebuild.
	ListEntryDays(ctx context.Context, tenantID string) ([]v1.Date, error)
}

// BucketStore owns the three bucket collections exclusively. Only the
// recompute engine writes through it; the CRUD layer never touches buckets.
//
// UpsertBucket replaces the entire value for a key — never a delta. The
// full-replace contract is what makes every recompute self-correcting no
// matter how many times, or in what order, it runs.
type BucketStore interface {
	UpsertBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date, value rollup.BucketValue) error

	DeleteBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date) error

	GetBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date) (rollup.BucketValue, error)

	// RangeBuckets returns buckets with key in the half-open [from, to),
	// ordered by key ascending.
	RangeBuckets(ctx context.Context, tenantID string, g rollup.Granularity, from, to v1.Date) ([]rollup.Bucket, error)

	// RangeBucketsFrom returns buckets with key >= from, ordered ascending.
	// Used by windowed analytics queries that have no upper bound.
	RangeBucketsFrom(ctx context.Context, tenantID string, g rollup.Granularity, from v1.Date) ([]rollup.Bucket, error)

	// ListBuckets returns all buckets of one granularity, ordered ascending.
	ListBuckets(ctx context.Context, tenantID string, g rollup.Granularity) ([]rollup.Bucket, error)

	// DeleteAllBuckets clears every bucket layer for the tenant. Only the
	// full rebuild uses it.
	DeleteAllBuckets(ctx context.Context, tenantID string) error
}

// Store is the full persistence surface the recompute cascade runs against.
type Store interface {
	EntryStore
	BucketStore
}

// TxRunner executes fn against a transaction-scoped Store. The mutation and
// the recompute it triggers share this boundary: both commit or both roll
// back, so a durable entry write can never be observed with stale buckets.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(Store) error) error
}
