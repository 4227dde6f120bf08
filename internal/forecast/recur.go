package forecast

import (
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

// RecurDates materializes the occurrence dates of a rule from seed up to and
// including end, ascending. One-off rules yield the seed once when it is in
// range; an empty slice is returned when seed is past end.
func RecurDates(seed, end time.Time, rule model.RecurrenceRule) []time.Time {
	var dates []time.Time
	d := seed

	switch rule {
	case model.RuleWeekly:
		for !d.After(end) {
			dates = append(dates, d)
			d = d.AddDate(0, 0, 7)
		}
	case model.RuleBiweekly:
		for !d.After(end) {
			dates = append(dates, d)
			d = d.AddDate(0, 0, 14)
		}
	case model.RuleMonthly:
		for !d.After(end) {
			dates = append(dates, d)
			d = addMonthClamped(d)
		}
	case model.RuleAnnual:
		for !d.After(end) {
			dates = append(dates, d)
			d = addYearClamped(d)
		}
	default:
		if !d.After(end) {
			dates = append(dates, d)
		}
	}
	return dates
}

// AdvanceTo steps seed forward by the rule until it is on or after start,
// preserving the cadence anchored at the seed. Callers use this to skip
// occurrences before the requested window without changing which
// day-of-month or weekday the series lands on.
func AdvanceTo(seed, start time.Time, rule model.RecurrenceRule) time.Time {
	d := seed
	for d.Before(start) {
		switch rule {
		case model.RuleWeekly:
			d = d.AddDate(0, 0, 7)
		case model.RuleBiweekly:
			d = d.AddDate(0, 0, 14)
		case model.RuleMonthly:
			d = addMonthClamped(d)
		case model.RuleAnnual:
			d = addYearClamped(d)
		default:
			// One-off never advances. A stale seed clamps to start
			// so the missed item still lands in the projection
			// instead of leaking a date before the window.
			return start
		}
	}
	return d
}

// addMonthClamped adds one calendar month, clamping the day to the target
// month's last valid day (Jan 31 -> Feb 28/29). time.Time.AddDate would
// normalize overflow into the following month instead.
func addMonthClamped(d time.Time) time.Time {
	year, month, day := d.Date()
	first := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// addYearClamped adds one year keeping month and day, clamping Feb 29 to
// Feb 28 on non-leap years.
func addYearClamped(d time.Time) time.Time {
	year, month, day := d.Date()
	first := time.Date(year+1, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(year+1, month, day, 0, 0, 0, 0, time.UTC)
}
