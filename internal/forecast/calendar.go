package forecast

import (
	"sort"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

// ExpandOptions narrows a calendar expansion.
type ExpandOptions struct {
	// Accounts, when non-empty, restricts expansion to rows whose account
	// is in the set. Applies uniformly to all three source kinds.
	Accounts map[int64]struct{}
}

func (o ExpandOptions) includes(accountID int64) bool {
	if len(o.Accounts) == 0 {
		return true
	}
	_, ok := o.Accounts[accountID]
	return ok
}

// Expand turns the scheduled sources into a flat, deterministically ordered
// list of dated entries over [start, end] inclusive. Expansion is read-only
// and side-effect free; an inverted range yields no entries. The returned
// warnings carry over any parse fallbacks recorded on the sources so callers
// can surface data-quality problems without aborting the projection.
func Expand(src model.ForecastSources, start, end time.Time, opts ExpandOptions) ([]model.Entry, []model.SourceWarning) {
	if end.Before(start) {
		return nil, nil
	}

	var entries []model.Entry

	for _, in := range src.Inflows {
		if in.NextDueDate.IsZero() || !opts.includes(in.AccountID) {
			continue
		}
		seed := AdvanceTo(in.NextDueDate, start, in.DueRule)
		for _, due := range RecurDates(seed, end, in.DueRule) {
			res := ApplyShift(due, model.NextBusinessDay, nil)
			entries = append(entries, model.Entry{
				Date:         res.Date,
				Type:         model.EntryInflow,
				Name:         in.Name,
				AmountCents:  abs64(in.AmountCents),
				SourceID:     in.ID,
				ShiftApplied: res.Shifted,
				Policy:       res.Policy,
			})
		}
	}

	for _, c := range src.Commitments {
		if c.NextDueDate.IsZero() || !opts.includes(c.AccountID) {
			continue
		}
		seed := AdvanceTo(c.NextDueDate, start, c.DueRule)
		for _, due := range RecurDates(seed, end, c.DueRule) {
			res := ApplyShift(due, model.PrevBusinessDay, c.FlexibleWindowDays)
			entries = append(entries, model.Entry{
				Date:         res.Date,
				Type:         model.EntryCommitment,
				Name:         c.Name,
				AmountCents:  -abs64(c.AmountCents),
				SourceID:     c.ID,
				ShiftApplied: res.Shifted,
				Policy:       res.Policy,
			})
		}
	}

	for _, ev := range src.KeyEvents {
		if ev.EventDate.IsZero() || !opts.includes(ev.AccountID) {
			continue
		}
		seed := AdvanceTo(ev.EventDate, start, ev.RepeatRule)
		for _, due := range RecurDates(seed, end, ev.RepeatRule) {
			res := ApplyShift(due, ev.ShiftPolicy, nil)
			entries = append(entries, model.Entry{
				Date:         res.Date,
				Type:         model.EntryKeyEvent,
				Name:         ev.Name,
				AmountCents:  -abs64(ev.PlannedAmountCents),
				SourceID:     ev.ID,
				ShiftApplied: res.Shifted,
				Policy:       res.Policy,
			})
		}
	}

	SortEntries(entries)
	return entries, src.Warnings
}

// SortEntries sorts into the canonical (date, type, source_id) order.
func SortEntries(entries []model.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Less(entries[j])
	})
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
