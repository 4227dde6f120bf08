package forecast

import "time"

// SpendDecision is the outcome of an affordability check for a hypothetical
// spend on a given date.
type SpendDecision struct {
	Safe               bool
	BaselineMinCents   int64
	NewMinBalanceCents int64
	MaxSafeTodayCents  int64
	TightDates         []time.Time
}

// SimulateSpend checks whether spending amountCents on spendDate keeps the
// projected minimum balance over [spendDate, horizonEnd] at or above the
// buffer floor. TightDates lists future entry dates whose post-spend balance
// sits within tightThreshold of the floor. When no entry date falls in the
// horizon the baseline minimum is the balance carried into spendDate.
func SimulateSpend(series BalanceSeries, spendDate, horizonEnd time.Time, amountCents, bufferFloorCents, tightThresholdCents int64) SpendDecision {
	baselineMin, _, ok := series.Min(spendDate, horizonEnd)
	if !ok {
		baselineMin = series.At(spendDate)
	}

	newMin := baselineMin - amountCents

	ceiling := baselineMin - bufferFloorCents
	if ceiling < 0 {
		ceiling = 0
	}
	maxSafe := MaxSafeSpend(func(x int64) bool {
		return baselineMin-x >= bufferFloorCents
	}, 0, ceiling)

	var tight []time.Time
	for _, d := range series.Days() {
		if d.Before(spendDate) || d.After(horizonEnd) {
			continue
		}
		after := series.Sparse()[d] - amountCents
		if after < bufferFloorCents+tightThresholdCents {
			tight = append(tight, d)
		}
	}

	return SpendDecision{
		Safe:               newMin >= bufferFloorCents,
		BaselineMinCents:   baselineMin,
		NewMinBalanceCents: newMin,
		MaxSafeTodayCents:  maxSafe,
		TightDates:         tight,
	}
}

// MaxSafeSpend finds the largest x in [lo, hi] for which isSafe(x) holds,
// by integer binary search. The predicate must be monotone: once unsafe,
// larger amounts stay unsafe. Returns lo when nothing larger is safe.
func MaxSafeSpend(isSafe func(int64) bool, lo, hi int64) int64 {
	best := lo
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if isSafe(mid) {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}
