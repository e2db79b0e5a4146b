package rollup

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
)

func macros(calories, protein, carbs, fat string) *v1.Macros {
	return &v1.Macros{
		Calories: decimal.RequireFromString(calories),
		Protein:  decimal.RequireFromString(protein),
		Carbs:    decimal.RequireFromString(carbs),
		Fat:      decimal.RequireFromString(fat),
	}
}

func TestSummarizeDay_Sums(t *testing.T) {
	now := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	entries := []*v1.Entry{
		{ID: "a", Macros: macros("500", "30", "40", "10")},
		{ID: "b", Macros: macros("210.5", "12.25", "18", "7.75")},
	}

	value, ok := SummarizeDay(entries, now)
	require.True(t, ok)
	require.True(t, value.Calories.Equal(decimal.RequireFromString("710.5")))
	require.True(t, value.Protein.Equal(decimal.RequireFromString("42.25")))
	require.True(t, value.Carbs.Equal(decimal.RequireFromString("58")))
	require.True(t, value.Fat.Equal(decimal.RequireFromString("17.75")))
	require.Equal(t, int64(2), value.Count)
	require.Equal(t, now, value.UpdatedAt)
}

func TestSummarizeDay_NilMacrosCountsButContributesZero(t *testing.T) {
	entries := []*v1.Entry{
		{ID: "a", Macros: macros("500", "30", "40", "10")},
		{ID: "b"}, // no estimate yet
	}

	value, ok := SummarizeDay(entries, time.Now().UTC())
	require.True(t, ok)
	require.True(t, value.Calories.Equal(decimal.NewFromInt(500)))
	require.Equal(t, int64(2), value.Count)
}

func TestSummarizeDay_EmptyMeansDelete(t *testing.T) {
	_, ok := SummarizeDay(nil, time.Now().UTC())
	require.False(t, ok)
}

func TestSummarizeDay_ExactDecimalAccumulation(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3 — float accumulation would drift.
	entries := []*v1.Entry{
		{ID: "a", Macros: macros("0.1", "0.1", "0.1", "0.1")},
		{ID: "b", Macros: macros("0.2", "0.2", "0.2", "0.2")},
	}

	value, ok := SummarizeDay(entries, time.Now().UTC())
	require.True(t, ok)
	require.Equal(t, "0.3", value.Calories.String())
}

func TestAverage_ExcludesAbsentDays(t *testing.T) {
	now := time.Now().UTC()
	// Two daily buckets in a seven-day window: the mean divides by 2,
	// never by 7.
	days := []Bucket{
		{Date: v1.NewDate(2025, time.January, 1), Value: BucketValue{Calories: decimal.NewFromInt(500), Protein: decimal.NewFromInt(30), Carbs: decimal.NewFromInt(40), Fat: decimal.NewFromInt(10), Count: 1}},
		{Date: v1.NewDate(2025, time.January, 2), Value: BucketValue{Calories: decimal.NewFromInt(700), Protein: decimal.NewFromInt(50), Carbs: decimal.NewFromInt(60), Fat: decimal.NewFromInt(20), Count: 2}},
	}

	value, ok := Average(days, now)
	require.True(t, ok)
	require.True(t, value.Calories.Equal(decimal.NewFromInt(600)))
	require.True(t, value.Protein.Equal(decimal.NewFromInt(40)))
	require.True(t, value.Carbs.Equal(decimal.NewFromInt(50)))
	require.True(t, value.Fat.Equal(decimal.NewFromInt(15)))
	require.Equal(t, int64(2), value.Count)
}

func TestAverage_EmptyMeansDelete(t *testing.T) {
	_, ok := Average(nil, time.Now().UTC())
	require.False(t, ok)
}

func TestAverage_Deterministic(t *testing.T) {
	// Non-terminating quotients truncate at a fixed precision, so the
	// same inputs always produce the same stored value.
	days := []Bucket{
		{Date: v1.NewDate(2025, time.January, 1), Value: BucketValue{Calories: decimal.NewFromInt(1)}},
		{Date: v1.NewDate(2025, time.January, 2), Value: BucketValue{Calories: decimal.NewFromInt(1)}},
		{Date: v1.NewDate(2025, time.January, 3), Value: BucketValue{Calories: decimal.NewFromInt(0)}},
	}

	first, ok := Average(days, time.Now().UTC())
	require.True(t, ok)
	second, ok := Average(days, time.Now().UTC())
	require.True(t, ok)
	require.Equal(t, first.Calories.String(), second.Calories.String())
}
