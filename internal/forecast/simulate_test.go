package forecast

import (
	"testing"
	"time"
)

func TestMaxSafeSpend(t *testing.T) {
	isSafe := func(x int64) bool { return x <= 37 }

	if got := MaxSafeSpend(isSafe, 0, 100); got != 37 {
		t.Fatalf("MaxSafeSpend over [0,100] = %d, want 37", got)
	}
	if got := MaxSafeSpend(isSafe, 0, 37); got != 37 {
		t.Fatalf("MaxSafeSpend over [0,37] = %d, want 37", got)
	}
	if got := MaxSafeSpend(isSafe, 0, 0); got != 0 {
		t.Fatalf("MaxSafeSpend over [0,0] = %d, want 0", got)
	}
	if got := MaxSafeSpend(func(int64) bool { return false }, 0, 50); got != 0 {
		t.Fatalf("all-unsafe search = %d, want 0", got)
	}
}

// simulateSeries mirrors the API fixture: opening 5000 with the payday /
// rent / birthday calendar, giving a baseline minimum of 4930 on the 5th.
func simulateSeries(t *testing.T) BalanceSeries {
	t.Helper()
	src := fixtureSources()
	src.Commitments[0].AmountCents = 50
	src.KeyEvents[0].PlannedAmountCents = 20
	src.Inflows[0].AmountCents = 100

	entries, _ := Expand(src, d(2025, time.January, 1), d(2025, time.January, 15), ExpandOptions{})
	return NewBalanceSeries(50_00, entries)
}

func TestSimulateSpendSafe(t *testing.T) {
	series := simulateSeries(t)
	decision := SimulateSpend(series, d(2025, time.January, 1), d(2025, time.January, 15), 25, 4900, 0)

	if !decision.Safe {
		t.Fatal("spend of 25 against margin 30 should be safe")
	}
	if decision.BaselineMinCents != 4930 {
		t.Fatalf("baseline min = %d, want 4930", decision.BaselineMinCents)
	}
	if decision.NewMinBalanceCents != 4905 {
		t.Fatalf("new min = %d, want 4905", decision.NewMinBalanceCents)
	}
	if decision.MaxSafeTodayCents != 30 {
		t.Fatalf("max safe = %d, want the 30-cent margin to the floor", decision.MaxSafeTodayCents)
	}
}

func TestSimulateSpendUnsafe(t *testing.T) {
	series := simulateSeries(t)
	decision := SimulateSpend(series, d(2025, time.January, 1), d(2025, time.January, 15), 31, 4900, 0)

	if decision.Safe {
		t.Fatal("spend of 31 against margin 30 should be unsafe")
	}
	if decision.NewMinBalanceCents != 4930-31 {
		t.Fatalf("new min = %d, want %d", decision.NewMinBalanceCents, 4930-31)
	}
	if decision.MaxSafeTodayCents != 30 {
		t.Fatalf("max safe = %d, want 30", decision.MaxSafeTodayCents)
	}
}

func TestSimulateSpendTightDates(t *testing.T) {
	series := simulateSeries(t)
	// Spend 25 leaves the 5th at 4905, within 10 of the 4900 floor.
	decision := SimulateSpend(series, d(2025, time.January, 1), d(2025, time.January, 15), 25, 4900, 10)

	found := false
	for _, day := range decision.TightDates {
		if day.Equal(d(2025, time.January, 5)) {
			found = true
		}
		if day.Equal(d(2025, time.January, 6)) {
			t.Fatal("post-payday date should not be tight")
		}
	}
	if !found {
		t.Fatalf("tight dates %v missing the minimum-balance day", decision.TightDates)
	}
}

func TestSimulateSpendBelowFloorAlready(t *testing.T) {
	series := simulateSeries(t)
	decision := SimulateSpend(series, d(2025, time.January, 1), d(2025, time.January, 15), 0, 6000, 0)
	if decision.Safe {
		t.Fatal("baseline already below floor must be unsafe")
	}
	if decision.MaxSafeTodayCents != 0 {
		t.Fatalf("max safe = %d, want 0 when already below floor", decision.MaxSafeTodayCents)
	}
}
