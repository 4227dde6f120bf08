// Package forecast implements calendar expansion, balance projection, and
// the probabilistic layers on top of them. Everything here is a pure
// transformation over in-memory snapshots: no I/O, no shared state, safe to
// call concurrently.
package forecast

import (
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

// ShiftResult describes where a scheduled date landed after applying a
// weekend shift policy.
type ShiftResult struct {
	Date    time.Time
	Shifted bool
	Policy  model.ShiftPolicy
}

// ApplyShift moves a scheduled date off a weekend according to policy.
// window bounds how far PREV_BUSINESS_DAY may pull a date earlier: when the
// shift would exceed window days the original date is kept unshifted. A nil
// window means unbounded. NEXT_BUSINESS_DAY always shifts; dates already on
// a business day never move.
func ApplyShift(d time.Time, policy model.ShiftPolicy, window *int) ShiftResult {
	switch policy {
	case model.PrevBusinessDay:
		if !model.IsWeekend(d) {
			return ShiftResult{Date: d, Policy: policy}
		}
		shifted := d
		for model.IsWeekend(shifted) {
			shifted = shifted.AddDate(0, 0, -1)
		}
		if window != nil {
			moved := int(d.Sub(shifted).Hours() / 24)
			if moved > *window {
				return ShiftResult{Date: d, Policy: policy}
			}
		}
		return ShiftResult{Date: shifted, Shifted: true, Policy: policy}

	case model.NextBusinessDay:
		if !model.IsWeekend(d) {
			return ShiftResult{Date: d, Policy: policy}
		}
		shifted := d
		for model.IsWeekend(shifted) {
			shifted = shifted.AddDate(0, 0, 1)
		}
		return ShiftResult{Date: shifted, Shifted: true, Policy: policy}

	default:
		return ShiftResult{Date: d, Policy: model.AsScheduled}
	}
}
