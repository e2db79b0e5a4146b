package analytics

import (
	"github.com/shopspring/decimal"

	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
)

// MacroAverages is one mean value per tracked metric. Values carry the full
// stored precision; rounding is a presentation concern left to clients.
type MacroAverages struct {
	Calories decimal.Decimal `json:"calories"`
	Protein  decimal.Decimal `json:"protein"`
	Carbs    decimal.Decimal `json:"carbs"`
	Fat      decimal.Decimal `json:"fat"`
}

// CalorieExtreme is the single daily bucket with the highest or lowest
// calorie sum in the window. Date is empty when the window has no data.
type CalorieExtreme struct {
	Date     v1.Date         `json:"date"`
	Calories decimal.Decimal `json:"calories"`
}

// CalorieExtremes pairs the best and worst calorie days.
type CalorieExtremes struct {
	Highest CalorieExtreme `json:"highest"`
	Lowest  CalorieExtreme `json:"lowest"`
}

// Summary carries the window totals.
type Summary struct {
	TotalEntries int64 `json:"total_entries"`
	DaysWithData int   `json:"days_with_data"`
}

// AggregateResult is the response of GetAggregate. A window with no buckets
// yields the zero value of this struct — explicit "no data", never an error.
type AggregateResult struct {
	DailyAverage    MacroAverages   `json:"daily_average"`
	WeeklyAverage   MacroAverages   `json:"weekly_average"`
	MonthlyAverage  MacroAverages   `json:"monthly_average"`
	CalorieExtremes CalorieExtremes `json:"calorie_extremes"`
	Summary         Summary         `json:"summary"`
}
