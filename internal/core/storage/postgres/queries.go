package postgres

// SQL for entry and bucket storage. Entries are the source of truth;
// buckets are derived state rebuilt by the recompute cascade.

const (
	queryInsertEntry = `
		INSERT INTO meal_entries (
			id, tenant_id, name, eaten_on,
			calories, protein, carbs, fat,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	queryGetEntry = `
		SELECT
			id, tenant_id, name, eaten_on,
			calories, protein, carbs, fat,
			created_at, updated_at
		FROM meal_entries
		WHERE tenant_id = $1 AND id = $2
	`

	// queryGetEntryForUpdate locks the row until the enclosing transaction
	// ends, so the before-snapshot used for dispatch cannot race with a
	// concurrent mutation of the same entry.
	queryGetEntryForUpdate = `
		SELECT
			id, tenant_id, name, eaten_on,
			calories, protein, carbs, fat,
			created_at, updated_at
		FROM meal_entries
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
	`

	queryUpdateEntry = `
		UPDATE meal_entries
		SET name = $3, eaten_on = $4,
		    calories = $5, protein = $6, carbs = $7, fat = $8,
		    updated_at = $9
		WHERE tenant_id = $1 AND id = $2
	`

	queryDeleteEntry = `
		DELETE FROM meal_entries
		WHERE tenant_id = $1 AND id = $2
	`

	// queryListEntriesByDay is the recompute engine's source query: every
	// entry whose eaten_on is the affected day.
	queryListEntriesByDay = `
		SELECT
			id, tenant_id, name, eaten_on,
			calories, protein, carbs, fat,
			created_at, updated_at
		FROM meal_entries
		WHERE tenant_id = $1 AND eaten_on = $2
		ORDER BY created_at ASC, id ASC
	`

	queryListEntryDays = `
		SELECT DISTINCT eaten_on
		FROM meal_entries
		WHERE tenant_id = $1
		ORDER BY eaten_on ASC
	`

	// queryUpsertBucket replaces the whole aggregate value for the key.
	// No accumulation on conflict: the recompute engine always writes a
	// value derived from source rows, so last-writer-wins is correct even
	// under concurrent recomputes of the same key.
	queryUpsertBucket = `
		INSERT INTO rollup_buckets (
			tenant_id, granularity, bucket_date,
			calories, protein, carbs, fat,
			entry_count, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, granularity, bucket_date)
		DO UPDATE SET
			calories    = EXCLUDED.calories,
			protein     = EXCLUDED.protein,
			carbs       = EXCLUDED.carbs,
			fat         = EXCLUDED.fat,
			entry_count = EXCLUDED.entry_count,
			updated_at  = EXCLUDED.updated_at
	`

	queryDeleteBucket = `
		DELETE FROM rollup_buckets
		WHERE tenant_id = $1 AND granularity = $2 AND bucket_date = $3
	`

	queryGetBucket = `
		SELECT calories, protein, carbs, fat, entry_count, updated_at
		FROM rollup_buckets
		WHERE tenant_id = $1 AND granularity = $2 AND bucket_date = $3
	`

	queryRangeBuckets = `
		SELECT bucket_date, calories, protein, carbs, fat, entry_count, updated_at
		FROM rollup_buckets
		WHERE tenant_id = $1 AND granularity = $2
		  AND bucket_date >= $3 AND bucket_date < $4
		ORDER BY bucket_date ASC
	`

	queryRangeBucketsFrom = `
		SELECT bucket_date, calories, protein, carbs, fat, entry_count, updated_at
		FROM rollup_buckets
		WHERE tenant_id = $1 AND granularity = $2
		  AND bucket_date >= $3
		ORDER BY bucket_date ASC
	`

	queryListBuckets = `
		SELECT bucket_date, calories, protein, carbs, fat, entry_count, updated_at
		FROM rollup_buckets
		WHERE tenant_id = $1 AND granularity = $2
		ORDER BY bucket_date ASC
	`

	queryDeleteAllBuckets = `
		DELETE FROM rollup_buckets
		WHERE tenant_id = $1
	`
)
