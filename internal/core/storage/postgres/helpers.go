package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	"github.com/macrolog-lab/macrolog/internal/core/rollup"
)

// macroArgs flattens an optional Macros into the four metric bind args.
// Nil macros produce SQL NULLs rather than zeros, so "no estimate yet" stays
// distinguishable from "estimated at zero".
func macroArgs(m *v1.Macros) (calories, protein, carbs, fat interface{}) {
	if m == nil {
		return nil, nil, nil, nil
	}
	return m.Calories, m.Protein, m.Carbs, m.Fat
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEntryRow scans a database row into an Entry.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanEntryRow(row scanner) (*v1.Entry, error) {
	var (
		entry    v1.Entry
		eatenOn  time.Time
		calories sql.NullString
		protein  sql.NullString
		carbs    sql.NullString
		fat      sql.NullString
	)

	err := row.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.Name,
		&eatenOn,
		&calories,
		&protein,
		&carbs,
		&fat,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.EatenOn = v1.DateOf(eatenOn)

	// All four macro columns are written together; calories decides presence.
	if calories.Valid {
		macros := &v1.Macros{}
		for _, field := range []struct {
			src sql.NullString
			dst *decimal.Decimal
		}{
			{calories, &macros.Calories},
			{protein, &macros.Protein},
			{carbs, &macros.Carbs},
			{fat, &macros.Fat},
		} {
			value, err := decimal.NewFromString(field.src.String)
			if err != nil {
				return nil, fmt.Errorf("parse macro value %q: %w", field.src.String, err)
			}
			*field.dst = value
		}
		entry.Macros = macros
	}

	return &entry, nil
}

// scanBucketRow scans one bucket row (with leading bucket_date column).
func scanBucketRow(row scanner) (rollup.Bucket, error) {
	var (
		bucket     rollup.Bucket
		bucketDate time.Time
		calories   string
		protein    string
		carbs      string
		fat        string
	)

	err := row.Scan(
		&bucketDate,
		&calories,
		&protein,
		&carbs,
		&fat,
		&bucket.Value.Count,
		&bucket.Value.UpdatedAt,
	)
	if err != nil {
		return rollup.Bucket{}, err
	}

	bucket.Date = v1.DateOf(bucketDate)
	if err := parseBucketMetrics(&bucket.Value, calories, protein, carbs, fat); err != nil {
		return rollup.Bucket{}, err
	}
	return bucket, nil
}

// parseBucketMetrics converts the NUMERIC columns (scanned as strings to
// avoid float rounding) into exact decimals.
func parseBucketMetrics(value *rollup.BucketValue, calories, protein, carbs, fat string) error {
	for _, field := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{calories, &value.Calories},
		{protein, &value.Protein},
		{carbs, &value.Carbs},
		{fat, &value.Fat},
	} {
		parsed, err := decimal.NewFromString(field.src)
		if err != nil {
			return fmt.Errorf("parse metric value %q: %w", field.src, err)
		}
		*field.dst = parsed
	}
	return nil
}
