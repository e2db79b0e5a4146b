package storage

import (
	"context"
	"sort"
	"sync"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	"github.com/macrolog-lab/macrolog/internal/core/rollup"
)

// MemoryStore is an in-memory implementation of Store and TxRunner.
// Useful for testing and development. WithinTx executes fn directly under
// the store lock boundary semantics of the individual calls — it provides
// atomicity per call, not rollback, which is adequate for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*v1.Entry
	buckets map[bucketKey]rollup.BucketValue
}

type bucketKey struct {
	tenantID    string
	granularity rollup.Granularity
	date        string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*v1.Entry),
		buckets: make(map[bucketKey]rollup.BucketValue),
	}
}

func entryKey(tenantID, id string) string { return tenantID + "/" + id }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *MemoryStore) InsertEntry(ctx context.Context, e *v1.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external modification.
	cp := *e
	s.entries[entryKey(e.TenantID, e.ID)] = &cp
	return nil
}

func (s *MemoryStore) GetEntry(ctx context.Context, tenantID, id string) (*v1.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[entryKey(tenantID, id)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) GetEntryForUpdate(ctx context.Context, tenantID, id string) (*v1.Entry, error) {
	return s.GetEntry(ctx, tenantID, id)
}

func (s *MemoryStore) UpdateEntry(ctx context.Context, e *v1.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entryKey(e.TenantID, e.ID)
	if _, ok := s.entries[key]; !ok {
		return ErrNotFound
	}
	cp := *e
	s.entries[key] = &cp
	return nil
}

func (s *MemoryStore) DeleteEntry(ctx context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entryKey(tenantID, id)
	if _, ok := s.entries[key]; !ok {
		return ErrNotFound
	}
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) ListEntriesByDay(ctx context.Context, tenantID string, day v1.Date) ([]*v1.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*v1.Entry
	for _, e := range s.entries {
		if e.TenantID != tenantID || !e.EatenOn.Equal(day) {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) ListEntryDays(ctx context.Context, tenantID string) ([]v1.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]v1.Date)
	for _, e := range s.entries {
		if e.TenantID != tenantID {
			continue
		}
		seen[e.EatenOn.String()] = e.EatenOn
	}

	days := make([]v1.Date, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

func (s *MemoryStore) UpsertBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date, value rollup.BucketValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets[bucketKey{tenantID, g, date.String()}] = value
	return nil
}

func (s *MemoryStore) DeleteBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buckets, bucketKey{tenantID, g, date.String()})
	return nil
}

func (s *MemoryStore) GetBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date) (rollup.BucketValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.buckets[bucketKey{tenantID, g, date.String()}]
	if !ok {
		return rollup.BucketValue{}, ErrNotFound
	}
	return value, nil
}

func (s *MemoryStore) RangeBuckets(ctx context.Context, tenantID string, g rollup.Granularity, from, to v1.Date) ([]rollup.Bucket, error) {
	return s.collectBuckets(tenantID, g, func(d v1.Date) bool {
		return !d.Before(from) && d.Before(to)
	}), nil
}

func (s *MemoryStore) RangeBucketsFrom(ctx context.Context, tenantID string, g rollup.Granularity, from v1.Date) ([]rollup.Bucket, error) {
	return s.collectBuckets(tenantID, g, func(d v1.Date) bool {
		return !d.Before(from)
	}), nil
}

func (s *MemoryStore) ListBuckets(ctx context.Context, tenantID string, g rollup.Granularity) ([]rollup.Bucket, error) {
	return s.collectBuckets(tenantID, g, func(v1.Date) bool { return true }), nil
}

func (s *MemoryStore) DeleteAllBuckets(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.buckets {
		if key.tenantID == tenantID {
			delete(s.buckets, key)
		}
	}
	return nil
}

func (s *MemoryStore) collectBuckets(tenantID string, g rollup.Granularity, include func(v1.Date) bool) []rollup.Bucket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []rollup.Bucket
	for key, value := range s.buckets {
		if key.tenantID != tenantID || key.granularity != g {
			continue
		}
		date, err := v1.ParseDate(key.date)
		if err != nil {
			continue
		}
		if !include(date) {
			continue
		}
		result = append(result, rollup.Bucket{Date: date, Value: value})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}
