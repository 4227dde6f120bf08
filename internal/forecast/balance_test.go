package forecast

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

func TestComputeBalancesFixture(t *testing.T) {
	entries, _ := Expand(fixtureSources(), d(2025, time.January, 1), d(2025, time.January, 7), ExpandOptions{})
	balances := ComputeBalances(0, entries)

	checks := map[time.Time]int64{
		d(2025, time.January, 3): -50_00,
		d(2025, time.January, 5): -70_00,
		d(2025, time.January, 6): 30_00,
	}
	if len(balances) != len(checks) {
		t.Fatalf("balance days = %d, want %d", len(balances), len(checks))
	}
	for day, want := range checks {
		if got := balances[day]; got != want {
			t.Fatalf("balance[%s] = %d, want %d", day.Format("2006-01-02"), got, want)
		}
	}
}

func TestComputeBalancesEmpty(t *testing.T) {
	balances := ComputeBalances(12_34, nil)
	if len(balances) != 0 {
		t.Fatalf("empty entries gave %d balance days", len(balances))
	}
}

func TestComputeBalancesSparse(t *testing.T) {
	entries := []model.Entry{
		{Date: d(2025, time.May, 1), Type: model.EntryInflow, Name: "a", AmountCents: 100, SourceID: 1},
		{Date: d(2025, time.May, 20), Type: model.EntryCommitment, Name: "b", AmountCents: -40, SourceID: 1},
	}
	balances := ComputeBalances(0, entries)
	if len(balances) != 2 {
		t.Fatalf("map has %d keys, want only entry dates", len(balances))
	}
	if _, ok := balances[d(2025, time.May, 10)]; ok {
		t.Fatal("gap day present in sparse map")
	}
}

func TestComputeBalancesOrderIndependent(t *testing.T) {
	entries := []model.Entry{
		{Date: d(2025, time.February, 3), Type: model.EntryInflow, Name: "pay", AmountCents: 500, SourceID: 2},
		{Date: d(2025, time.February, 3), Type: model.EntryCommitment, Name: "rent", AmountCents: -300, SourceID: 1},
		{Date: d(2025, time.February, 3), Type: model.EntryKeyEvent, Name: "gift", AmountCents: -50, SourceID: 3},
		{Date: d(2025, time.February, 5), Type: model.EntryCommitment, Name: "power", AmountCents: -80, SourceID: 4},
	}
	want := ComputeBalances(1000, entries)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]model.Entry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := ComputeBalances(1000, shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d changed balances: %v vs %v", i, got, want)
		}
	}
}

func TestBalanceSeriesCarryForward(t *testing.T) {
	entries := []model.Entry{
		{Date: d(2025, time.March, 3), Type: model.EntryCommitment, Name: "rent", AmountCents: -400, SourceID: 1},
		{Date: d(2025, time.March, 10), Type: model.EntryInflow, Name: "pay", AmountCents: 1000, SourceID: 1},
	}
	series := NewBalanceSeries(500, entries)

	if got := series.At(d(2025, time.March, 1)); got != 500 {
		t.Fatalf("before first entry = %d, want opening 500", got)
	}
	if got := series.At(d(2025, time.March, 3)); got != 100 {
		t.Fatalf("on entry day = %d, want 100", got)
	}
	if got := series.At(d(2025, time.March, 7)); got != 100 {
		t.Fatalf("gap day = %d, want carried 100", got)
	}
	if got := series.At(d(2025, time.March, 31)); got != 1100 {
		t.Fatalf("after last entry = %d, want 1100", got)
	}
}

func TestBalanceSeriesMin(t *testing.T) {
	entries := []model.Entry{
		{Date: d(2025, time.March, 3), Type: model.EntryCommitment, Name: "rent", AmountCents: -400, SourceID: 1},
		{Date: d(2025, time.March, 10), Type: model.EntryInflow, Name: "pay", AmountCents: 1000, SourceID: 1},
	}
	series := NewBalanceSeries(500, entries)

	minCents, date, ok := series.Min(d(2025, time.March, 1), d(2025, time.March, 31))
	if !ok || minCents != 100 || !date.Equal(d(2025, time.March, 3)) {
		t.Fatalf("min = (%d, %s, %v)", minCents, date.Format("2006-01-02"), ok)
	}

	if _, _, ok := series.Min(d(2025, time.April, 1), d(2025, time.April, 30)); ok {
		t.Fatal("min over empty range reported ok")
	}
}
