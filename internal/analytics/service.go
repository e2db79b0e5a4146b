package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
	core "github.com/macrolog-lab/macrolog/internal/core/rollup"
	"github.com/macrolog-lab/macrolog/internal/core/storage"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid aggregate query")

// Service is the read-only analytics layer. It answers entirely from the
// bucket store — never from raw entries — so every query is a bounded range
// scan over pre-computed aggregates, regardless of entry volume.
type Service struct {
	buckets storage.BucketStore
	nowFn   func() time.Time
}

// NewService creates the analytics query service.
func NewService(buckets storage.BucketStore) *Service {
	if buckets == nil {
		panic("analytics: bucket store must not be nil")
	}
	return &Service{
		buckets: buckets,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// GetAggregate returns window-level averages, calorie extremes and totals.
//
// daysBack == nil aggregates over everything stored. Otherwise the daily
// window is [today-(daysBack-1), today], and the weekly/monthly windows take
// buckets whose start falls on or after the week/month containing the
// cutoff day. An empty window returns the zeroed result, not an error.
func (s *Service) GetAggregate(ctx context.Context, tenantID string, daysBack *int) (*AggregateResult, error) {
	if daysBack != nil && *daysBack <= 0 {
		return nil, fmt.Errorf("%w: days_back must be positive, got %d", ErrInvalidQuery, *daysBack)
	}

	var (
		dailies, weeklies, monthlies []core.Bucket
		err                          error
	)
	if daysBack == nil {
		if dailies, err = s.buckets.ListBuckets(ctx, tenantID, core.Daily); err != nil {
			return nil, fmt.Errorf("query daily buckets: %w", err)
		}
		if weeklies, err = s.buckets.ListBuckets(ctx, tenantID, core.Weekly); err != nil {
			return nil, fmt.Errorf("query weekly buckets: %w", err)
		}
		if monthlies, err = s.buckets.ListBuckets(ctx, tenantID, core.Monthly); err != nil {
			return nil, fmt.Errorf("query monthly buckets: %w", err)
		}
	} else {
		today := v1.DateOf(s.nowFn())
		cutoff := today.AddDays(-(*daysBack - 1))

		if dailies, err = s.buckets.RangeBuckets(ctx, tenantID, core.Daily, cutoff, today.AddDays(1)); err != nil {
			return nil, fmt.Errorf("query daily buckets: %w", err)
		}
		if weeklies, err = s.buckets.RangeBucketsFrom(ctx, tenantID, core.Weekly, core.StartOfWeek(cutoff)); err != nil {
			return nil, fmt.Errorf("query weekly buckets: %w", err)
		}
		if monthlies, err = s.buckets.RangeBucketsFrom(ctx, tenantID, core.Monthly, core.StartOfMonth(cutoff)); err != nil {
			return nil, fmt.Errorf("query monthly buckets: %w", err)
		}
	}

	result := &AggregateResult{}
	now := s.nowFn()
	if avg, ok := core.Average(dailies, now); ok {
		result.DailyAverage = toAverages(avg)
	}
	if avg, ok := core.Average(weeklies, now); ok {
		result.WeeklyAverage = toAverages(avg)
	}
	if avg, ok := core.Average(monthlies, now); ok {
		result.MonthlyAverage = toAverages(avg)
	}

	result.CalorieExtremes = calorieExtremes(dailies)

	for _, bucket := range dailies {
		result.Summary.TotalEntries += bucket.Value.Count
	}
	result.Summary.DaysWithData = len(dailies)

	return result, nil
}

func toAverages(value core.BucketValue) MacroAverages {
	return MacroAverages{
		Calories: value.Calories,
		Protein:  value.Protein,
		Carbs:    value.Carbs,
		Fat:      value.Fat,
	}
}

// calorieExtremes finds the daily buckets with the highest and lowest
// calorie sums. Input is ordered ascending by date and comparisons are
// strict, so ties resolve to the earliest date.
func calorieExtremes(dailies []core.Bucket) CalorieExtremes {
	if len(dailies) == 0 {
		return CalorieExtremes{}
	}

	highest := CalorieExtreme{Date: dailies[0].Date, Calories: dailies[0].Value.Calories}
	lowest := highest
	for _, bucket := range dailies[1:] {
		if bucket.Value.Calories.GreaterThan(highest.Calories) {
			highest = CalorieExtreme{Date: bucket.Date, Calories: bucket.Value.Calories}
		}
		if bucket.Value.Calories.LessThan(lowest.Calories) {
			lowest = CalorieExtreme{Date: bucket.Date, Calories: bucket.Value.Calories}
		}
	}
	return CalorieExtremes{Highest: highest, Lowest: lowest}
}
