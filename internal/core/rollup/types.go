package rollup

import (
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
)

// Granularity selects one of the three fixed bucket layers.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// BucketValue is the stored aggregate for one bucket key.
// For Daily buckets the metrics are sums over the day's entries and Count is
// the entry count. For Weekly and Monthly buckets the metrics are arithmetic
// means over the daily buckets that exist in the window and Count is the
// number of days with data — days without entries are excluded from the
// mean, never treated as zero.
//
// Upserts replace the whole value. There is no delta path: every recompute
// derives the value from source data, so repeated runs are self-correcting.
type BucketValue struct {
	Calories decimal.Decimal
	Protein  decimal.Decimal
	Carbs    decimal.Decimal
	Fat      decimal.Decimal

	// Count is entry count (daily) or days with data (weekly/monthly).
	Count int64

	UpdatedAt time.Time
}

// Bucket couples a bucket key date with its stored value.
// The key date is the calendar day for Daily, the Monday for Weekly, and the
// first of the month for Monthly.
type Bucket struct {
	Date  v1.Date
	Value BucketValue
}
