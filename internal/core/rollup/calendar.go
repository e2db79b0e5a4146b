package rollup

import (
	v1 "github.com/macrolog-lab/macrolog/internal/api/v1"
)

// StartOfWeek returns the Monday on or before d. Weekly bucket keys are
// always Monday-aligned.
func StartOfWeek(d v1.Date) v1.Date {
	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// StartOfMonth returns the first day of d's calendar month.
func StartOfMonth(d v1.Date) v1.Date {
	year, month, _ := d.Date()
	return v1.NewDate(year, month, 1)
}

// NextMonth returns the first day of the month after d's month.
func NextMonth(d v1.Date) v1.Date {
	year, month, _ := d.Date()
	// time.Date normalizes month 13 to January of the next year.
	return v1.NewDate(year, month+1, 1)
}

// WeekWindow returns the half-open [Monday, Monday+7d) window containing d.
func WeekWindow(d v1.Date) (from, to v1.Date) {
	from = StartOfWeek(d)
	return from, from.AddDays(7)
}

// MonthWindow returns the half-open [first, nextFirst) window containing d.
func MonthWindow(d v1.Date) (from, to v1.Date) {
	return StartOfMonth(d), NextMonth(d)
}
