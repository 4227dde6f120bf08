package forecast

import (
	"math"
	"strings"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

// DailyStats is the mean and population standard deviation of daily
// variable spend, in integer cents.
type DailyStats struct {
	MuCents    int64
	SigmaCents int64
}

// excluded reports whether a transaction is not variable discretionary
// spend: net inflows, explicitly flagged rows, and anything whose category,
// group, or type text mentions transfers, income, or savings.
func excluded(t model.Transaction) bool {
	if t.AmountCents >= 0 {
		return true
	}
	if t.IsCommitment || t.IsKeyEvent || t.Exclude {
		return true
	}
	hints := strings.ToLower(t.Category + " " + t.CategoryGroup + " " + t.Type)
	return strings.Contains(hints, "transfer") ||
		strings.Contains(hints, "income") ||
		strings.Contains(hints, "savings")
}

// dailySeries aggregates eligible outflows into a contiguous daily series of
// positive spend magnitudes spanning windowDays and ending at the latest
// eligible transaction date. Days without spend are zero-filled; they are
// statistically meaningful and must stay in the series.
func dailySeries(txns []model.Transaction, windowDays int) (days []time.Time, vals []int64) {
	spendByDay := make(map[time.Time]int64)
	var maxDay time.Time
	seen := false

	for _, t := range txns {
		if excluded(t) {
			continue
		}
		d := model.DayOf(t.PostedAt)
		spend := t.AmountCents
		if spend < 0 {
			spend = -spend
		}
		spendByDay[d] += spend
		if !seen || d.After(maxDay) {
			maxDay = d
			seen = true
		}
	}
	if !seen {
		return nil, nil
	}

	span := windowDays - 1
	if span < 0 {
		span = 0
	}
	for d := maxDay.AddDate(0, 0, -span); !d.After(maxDay); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
		vals = append(vals, spendByDay[d])
	}
	return days, vals
}

// ComputeDailyStats returns the (mu, sigma) of daily variable spend over the
// trailing window, both rounded to whole cents. Sigma is the population
// standard deviation. No eligible data returns (0, 0).
func ComputeDailyStats(txns []model.Transaction, windowDays int) DailyStats {
	_, vals := dailySeries(txns, windowDays)
	n := len(vals)
	if n == 0 {
		return DailyStats{}
	}

	var sum int64
	for _, v := range vals {
		sum += v
	}
	mu := float64(sum) / float64(n)

	var variance float64
	for _, v := range vals {
		diff := float64(v) - mu
		variance += diff * diff
	}
	variance /= float64(n)

	return DailyStats{
		MuCents:    int64(math.Round(mu)),
		SigmaCents: int64(math.Round(math.Sqrt(variance))),
	}
}

// WeekdayMultipliers returns seven Monday-first multipliers: per-weekday
// average spend over overall mean, rescaled so the unweighted average of the
// seven values is exactly 1.0. No data or a non-positive overall mean gives
// seven 1.0s.
func WeekdayMultipliers(txns []model.Transaction, windowDays int) [7]float64 {
	neutral := [7]float64{1, 1, 1, 1, 1, 1, 1}

	days, vals := dailySeries(txns, windowDays)
	n := len(vals)
	if n == 0 {
		return neutral
	}

	var sum int64
	for _, v := range vals {
		sum += v
	}
	overallMean := float64(sum) / float64(n)
	if overallMean <= 0 {
		return neutral
	}

	var sums [7]float64
	var counts [7]int
	for i, d := range days {
		w := model.MondayIndex(d)
		sums[w] += float64(vals[i])
		counts[w]++
	}

	var mults [7]float64
	for w := 0; w < 7; w++ {
		if counts[w] == 0 {
			mults[w] = 1.0
			continue
		}
		mults[w] = (sums[w] / float64(counts[w])) / overallMean
	}

	var avg float64
	for _, m := range mults {
		avg += m
	}
	avg /= 7
	if avg <= 0 {
		return neutral
	}
	for w := range mults {
		mults[w] /= avg
	}
	return mults
}
