package rollup

import (
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
)

// SummarizeDay folds a day's entries into the daily bucket value: exact
// decimal sums of each metric plus the entry count. Entries with nil macros
// contribute zero to every sum but still count.
//
// ok is false when the day has no entries; the caller must delete the daily
// bucket rather than store a zero-valued one.
func SummarizeDay(entries []*v1.Entry, now time.Time) (BucketValue, bool) {
	if len(entries) == 0 {
		return BucketValue{}, false
	}

	value := BucketValue{
		Calories:  decimal.Zero,
		Protein:   decimal.Zero,
		Carbs:     decimal.Zero,
		Fat:       decimal.Zero,
		Count:     int64(len(entries)),
		UpdatedAt: now,
	}
	for _, e := range entries {
		if e.Macros == nil {
			continue
		}
		value.Calories = value.Calories.Add(e.Macros.Calories)
		value.Protein = value.Protein.Add(e.Macros.Protein)
		value.Carbs = value.Carbs.Add(e.Macros.Carbs)
		value.Fat = value.Fat.Add(e.Macros.Fat)
	}
	return value, true
}

// Average computes the arithmetic mean of each metric across the given
// buckets, with Count set to the number of buckets. This is the rollup step
// for weekly and monthly layers: the input is the set of daily buckets that
// exist in the window, so absent days are excluded from the mean by
// construction.
//
// The quotient is a deterministic decimal (shopspring's fixed division
// precision), so recomputing from identical inputs is bit-stable.
//
// ok is false when buckets is empty; the caller deletes the rollup bucket.
func Average(buckets []Bucket, now time.Time) (BucketValue, bool) {
	if len(buckets) == 0 {
		return BucketValue{}, false
	}

	sum := BucketValue{
		Calories: decimal.Zero,
		Protein:  decimal.Zero,
		Carbs:    decimal.Zero,
		Fat:      decimal.Zero,
	}
	for _, b := range buckets {
		sum.Calories = sum.Calories.Add(b.Value.Calories)
		sum.Protein = sum.Protein.Add(b.Value.Protein)
		sum.Carbs = sum.Carbs.Add(b.Value.Carbs)
		sum.Fat = sum.Fat.Add(b.Value.Fat)
	}

	n := decimal.NewFromInt(int64(len(buckets)))
	return BucketValue{
		Calories:  sum.Calories.Div(n),
		Protein:   sum.Protein.Div(n),
		Carbs:     sum.Carbs.Div(n),
		Fat:       sum.Fat.Div(n),
		Count:     int64(len(buckets)),
		UpdatedAt: now,
	}, true
}
