package forecast

import (
	"testing"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

func TestRecurDatesOneOff(t *testing.T) {
	seed := d(2025, time.March, 10)

	dates := RecurDates(seed, d(2025, time.March, 31), model.RuleOneOff)
	if len(dates) != 1 || !dates[0].Equal(seed) {
		t.Fatalf("one-off in range = %v, want just the seed", dates)
	}

	dates = RecurDates(seed, d(2025, time.March, 9), model.RuleOneOff)
	if len(dates) != 0 {
		t.Fatalf("one-off past end = %v, want empty", dates)
	}
}

func TestRecurDatesWeeklyAndBiweekly(t *testing.T) {
	seed := d(2025, time.January, 4)
	end := d(2025, time.January, 31)

	weekly := RecurDates(seed, end, model.RuleWeekly)
	if len(weekly) != 4 {
		t.Fatalf("weekly count = %d, want 4", len(weekly))
	}
	if !weekly[3].Equal(d(2025, time.January, 25)) {
		t.Fatalf("weekly[3] = %s", weekly[3].Format("2006-01-02"))
	}

	biweekly := RecurDates(seed, end, model.RuleBiweekly)
	if len(biweekly) != 2 {
		t.Fatalf("biweekly count = %d, want 2", len(biweekly))
	}
	if !biweekly[1].Equal(d(2025, time.January, 18)) {
		t.Fatalf("biweekly[1] = %s", biweekly[1].Format("2006-01-02"))
	}
}

func TestRecurDatesMonthlyClampsDayOfMonth(t *testing.T) {
	dates := RecurDates(d(2025, time.January, 31), d(2025, time.April, 30), model.RuleMonthly)

	want := []time.Time{
		d(2025, time.January, 31),
		d(2025, time.February, 28),
		d(2025, time.March, 28),
		d(2025, time.April, 28),
	}
	if len(dates) != len(want) {
		t.Fatalf("monthly count = %d, want %d (%v)", len(dates), len(want), dates)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Fatalf("monthly[%d] = %s, want %s", i, dates[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}

func TestRecurDatesMonthlyLeapFebruary(t *testing.T) {
	dates := RecurDates(d(2024, time.January, 31), d(2024, time.February, 29), model.RuleMonthly)
	if len(dates) != 2 {
		t.Fatalf("count = %d, want 2", len(dates))
	}
	if !dates[1].Equal(d(2024, time.February, 29)) {
		t.Fatalf("leap february clamp = %s, want 2024-02-29", dates[1].Format("2006-01-02"))
	}
}

func TestRecurDatesAnnual(t *testing.T) {
	dates := RecurDates(d(2024, time.February, 29), d(2026, time.December, 31), model.RuleAnnual)
	if len(dates) != 3 {
		t.Fatalf("annual count = %d, want 3", len(dates))
	}
	// Feb 29 clamps to Feb 28 on non-leap years.
	if !dates[1].Equal(d(2025, time.February, 28)) {
		t.Fatalf("annual[1] = %s, want 2025-02-28", dates[1].Format("2006-01-02"))
	}
}

func TestRecurDatesNeverDuplicates(t *testing.T) {
	dates := RecurDates(d(2025, time.January, 1), d(2026, time.January, 1), model.RuleMonthly)
	seen := make(map[time.Time]struct{}, len(dates))
	prev := time.Time{}
	for _, dd := range dates {
		if _, dup := seen[dd]; dup {
			t.Fatalf("duplicate occurrence %s", dd.Format("2006-01-02"))
		}
		seen[dd] = struct{}{}
		if !prev.IsZero() && !prev.Before(dd) {
			t.Fatalf("occurrences not ascending at %s", dd.Format("2006-01-02"))
		}
		prev = dd
	}
}

func TestAdvanceToPreservesCadence(t *testing.T) {
	// Weekly series seeded on Saturday 2025-01-04; advancing into February
	// must stay on the Saturday cadence rather than re-anchoring.
	got := AdvanceTo(d(2025, time.January, 4), d(2025, time.February, 1), model.RuleWeekly)
	if want := d(2025, time.February, 1); !got.Equal(want) {
		t.Fatalf("advanced to %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	got = AdvanceTo(d(2025, time.January, 4), d(2025, time.February, 2), model.RuleWeekly)
	if want := d(2025, time.February, 8); !got.Equal(want) {
		t.Fatalf("advanced to %s, want next Saturday %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestAdvanceToSeedInsideWindow(t *testing.T) {
	seed := d(2025, time.June, 15)
	got := AdvanceTo(seed, d(2025, time.June, 1), model.RuleMonthly)
	if !got.Equal(seed) {
		t.Fatalf("seed already in window moved to %s", got.Format("2006-01-02"))
	}
}

func TestAdvanceToStaleOneOffClampsToStart(t *testing.T) {
	start := d(2025, time.January, 1)
	got := AdvanceTo(d(2024, time.December, 15), start, model.RuleOneOff)
	if !got.Equal(start) {
		t.Fatalf("stale one-off advanced to %s, want clamp to %s", got.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	// A one-off already inside the window stays put.
	seed := d(2025, time.January, 10)
	got = AdvanceTo(seed, start, model.RuleOneOff)
	if !got.Equal(seed) {
		t.Fatalf("in-window one-off moved to %s", got.Format("2006-01-02"))
	}
}
