package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	"github.com/macrolog-lab/macrolog/internal/core/rollup"
	"github.com/macrolog-lab/macrolog/internal/core/storage"
)

// querier abstracts *sql.DB and *sql.Tx so every Store method works both
// pooled and transaction-scoped.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// store implements storage.Store over a querier.
type store struct {
	q querier
}

func (s *store) InsertEntry(ctx context.Context, e *v1.Entry) error {
	calories, protein, carbs, fat := macroArgs(e.Macros)
	_, err := s.q.ExecContext(ctx, queryInsertEntry,
		e.ID, e.TenantID, e.Name, e.EatenOn.Time(),
		calories, protein, carbs, fat,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *store) GetEntry(ctx context.Context, tenantID, id string) (*v1.Entry, error) {
	return s.getEntry(ctx, queryGetEntry, tenantID, id)
}

func (s *store) GetEntryForUpdate(ctx context.Context, tenantID, id string) (*v1.Entry, error) {
	return s.getEntry(ctx, queryGetEntryForUpdate, tenantID, id)
}

func (s *store) getEntry(ctx context.Context, query, tenantID, id string) (*v1.Entry, error) {
	row := s.q.QueryRowContext(ctx, query, tenantID, id)
	entry, err := scanEntryRow(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return entry, nil
}

func (s *store) UpdateEntry(ctx context.Context, e *v1.Entry) error {
	calories, protein, carbs, fat := macroArgs(e.Macros)
	result, err := s.q.ExecContext(ctx, queryUpdateEntry,
		e.TenantID, e.ID,
		e.Name, e.EatenOn.Time(),
		calories, protein, carbs, fat,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", e.ID, err)
	}
	return requireRowAffected(result, "update entry")
}

func (s *store) DeleteEntry(ctx context.Context, tenantID, id string) error {
	result, err := s.q.ExecContext(ctx, queryDeleteEntry, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return requireRowAffected(result, "delete entry")
}

func (s *store) ListEntriesByDay(ctx context.Context, tenantID string, day v1.Date) ([]*v1.Entry, error) {
	rows, err := s.q.QueryContext(ctx, queryListEntriesByDay, tenantID, day.Time())
	if err != nil {
		return nil, fmt.Errorf("list entries for %s: %w", day, err)
	}
	defer rows.Close()

	var entries []*v1.Entry
	for rows.Next() {
		entry, err := scanEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list entries for %s: %w", day, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries for %s: iterate rows: %w", day, err)
	}
	return entries, nil
}

func (s *store) ListEntryDays(ctx context.Context, tenantID string) ([]v1.Date, error) {
	rows, err := s.q.QueryContext(ctx, queryListEntryDays, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list entry days: %w", err)
	}
	defer rows.Close()

	var days []v1.Date
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("list entry days: scan row: %w", err)
		}
		days = append(days, v1.DateOf(day))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entry days: iterate rows: %w", err)
	}
	return days, nil
}

func (s *store) UpsertBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date, value rollup.BucketValue) error {
	_, err := s.q.ExecContext(ctx, queryUpsertBucket,
		tenantID, string(g), date.Time(),
		value.Calories, value.Protein, value.Carbs, value.Fat,
		value.Count, value.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert %s bucket %s: %w", g, date, err)
	}
	return nil
}

func (s *store) DeleteBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date) error {
	// Deleting an absent bucket is a no-op: absence is the target state.
	_, err := s.q.ExecContext(ctx, queryDeleteBucket, tenantID, string(g), date.Time())
	if err != nil {
		return fmt.Errorf("delete %s bucket %s: %w", g, date, err)
	}
	return nil
}

func (s *store) GetBucket(ctx context.Context, tenantID string, g rollup.Granularity, date v1.Date) (rollup.BucketValue, error) {
	row := s.q.QueryRowContext(ctx, queryGetBucket, tenantID, string(g), date.Time())

	var value rollup.BucketValue
	var calories, protein, carbs, fat string
	err := row.Scan(&calories, &protein, &carbs, &fat, &value.Count, &value.UpdatedAt)
	if err == sql.ErrNoRows {
		return rollup.BucketValue{}, storage.ErrNotFound
	}
	if err != nil {
		return rollup.BucketValue{}, fmt.Errorf("get %s bucket %s: %w", g, date, err)
	}
	if err := parseBucketMetrics(&value, calories, protein, carbs, fat); err != nil {
		return rollup.BucketValue{}, fmt.Errorf("get %s bucket %s: %w", g, date, err)
	}
	return value, nil
}

func (s *store) RangeBuckets(ctx context.Context, tenantID string, g rollup.Granularity, from, to v1.Date) ([]rollup.Bucket, error) {
	return s.queryBuckets(ctx, queryRangeBuckets, tenantID, string(g), from.Time(), to.Time())
}

func (s *store) RangeBucketsFrom(ctx context.Context, tenantID string, g rollup.Granularity, from v1.Date) ([]rollup.Bucket, error) {
	return s.queryBuckets(ctx, queryRangeBucketsFrom, tenantID, string(g), from.Time())
}

func (s *store) ListBuckets(ctx context.Context, tenantID string, g rollup.Granularity) ([]rollup.Bucket, error) {
	return s.queryBuckets(ctx, queryListBuckets, tenantID, string(g))
}

func (s *store) queryBuckets(ctx context.Context, query string, args ...interface{}) ([]rollup.Bucket, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()

	var buckets []rollup.Bucket
	for rows.Next() {
		bucket, err := scanBucketRow(rows)
		if err != nil {
			return nil, fmt.Errorf("query buckets: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query buckets: iterate rows: %w", err)
	}
	return buckets, nil
}

func (s *store) DeleteAllBuckets(ctx context.Context, tenantID string) error {
	if _, err := s.q.ExecContext(ctx, queryDeleteAllBuckets, tenantID); err != nil {
		return fmt.Errorf("delete all buckets: %w", err)
	}
	return nil
}

func requireRowAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
