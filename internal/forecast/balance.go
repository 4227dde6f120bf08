package forecast

import (
	"sort"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

// ComputeBalances folds an opening balance and entries into end-of-day
// balances. The map is sparse: only dates that appear in entries get a key.
// Entries are re-sorted internally, and same-day amounts are summed before
// being applied, so the result is identical for any input ordering.
func ComputeBalances(openingCents int64, entries []model.Entry) map[time.Time]int64 {
	items := make([]model.Entry, len(entries))
	copy(items, entries)
	SortEntries(items)

	balances := make(map[time.Time]int64)
	running := openingCents
	var day time.Time
	var delta int64
	haveDay := false

	flush := func() {
		running += delta
		balances[day] = running
		delta = 0
	}

	for _, e := range items {
		if !haveDay {
			day = e.Date
			haveDay = true
		}
		if !e.Date.Equal(day) {
			flush()
			day = e.Date
		}
		delta += e.AmountCents
	}
	if haveDay {
		flush()
	}

	return balances
}

// BalanceSeries wraps a sparse balance map with a carry-forward accessor so
// consumers iterating day-by-day don't have to handle holes themselves.
type BalanceSeries struct {
	Opening int64
	days    []time.Time
	byDay   map[time.Time]int64
}

// NewBalanceSeries builds a series from an opening balance and entries.
func NewBalanceSeries(openingCents int64, entries []model.Entry) BalanceSeries {
	byDay := ComputeBalances(openingCents, entries)
	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return BalanceSeries{Opening: openingCents, days: days, byDay: byDay}
}

// Sparse returns the underlying sparse date -> balance map.
func (s BalanceSeries) Sparse() map[time.Time]int64 { return s.byDay }

// Days returns the dates with entries, ascending.
func (s BalanceSeries) Days() []time.Time { return s.days }

// At returns the end-of-day balance on d, carrying forward the last balance
// from earlier entry dates. Before the first entry it is the opening balance.
func (s BalanceSeries) At(d time.Time) int64 {
	// Binary search for the last entry day <= d.
	idx := sort.Search(len(s.days), func(i int) bool { return s.days[i].After(d) })
	if idx == 0 {
		return s.Opening
	}
	return s.byDay[s.days[idx-1]]
}

// Min returns the minimum balance over entry dates in [from, to] along with
// the earliest date it occurs on. ok is false when no entry date falls in
// the range.
func (s BalanceSeries) Min(from, to time.Time) (minCents int64, date time.Time, ok bool) {
	for _, d := range s.days {
		if d.Before(from) || d.After(to) {
			continue
		}
		b := s.byDay[d]
		if !ok || b < minCents {
			minCents = b
			date = d
			ok = true
		}
	}
	return minCents, date, ok
}
