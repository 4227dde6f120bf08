package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

func spend(day time.Time, cents int64) model.Transaction {
	return model.Transaction{PostedAt: day, AmountCents: -cents, IsCleared: true}
}

func TestComputeDailyStatsEmpty(t *testing.T) {
	stats := ComputeDailyStats(nil, 30)
	if stats.MuCents != 0 || stats.SigmaCents != 0 {
		t.Fatalf("empty stats = %+v, want zeros", stats)
	}
}

func TestComputeDailyStatsZeroFilledWindow(t *testing.T) {
	// One 400-cent spend inside a 4-day window: series is [0,0,0,400].
	txns := []model.Transaction{spend(d(2025, time.June, 10), 400)}
	stats := ComputeDailyStats(txns, 4)

	if stats.MuCents != 100 {
		t.Fatalf("mu = %d, want 100", stats.MuCents)
	}
	// Population stddev of [0,0,0,400] = sqrt(30000) = 173.2 -> 173.
	if stats.SigmaCents != 173 {
		t.Fatalf("sigma = %d, want 173", stats.SigmaCents)
	}
}

func TestComputeDailyStatsAggregatesSameDay(t *testing.T) {
	day := d(2025, time.June, 10)
	txns := []model.Transaction{spend(day, 100), spend(day, 250)}
	stats := ComputeDailyStats(txns, 1)
	if stats.MuCents != 350 || stats.SigmaCents != 0 {
		t.Fatalf("stats = %+v, want mu=350 sigma=0", stats)
	}
}

func TestComputeDailyStatsExclusions(t *testing.T) {
	day := d(2025, time.June, 10)
	txns := []model.Transaction{
		{PostedAt: day, AmountCents: 5000},                            // inflow
		{PostedAt: day, AmountCents: -900, IsCommitment: true},        // flagged
		{PostedAt: day, AmountCents: -800, IsKeyEvent: true},          // flagged
		{PostedAt: day, AmountCents: -700, Exclude: true},             // flagged
		{PostedAt: day, AmountCents: -600, Category: "Transfer: out"}, // category hint
		{PostedAt: day, AmountCents: -500, CategoryGroup: "Income"},   // group hint
		{PostedAt: day, AmountCents: -400, Type: "savings"},           // type hint
		spend(day, 300), // the only eligible row
	}
	stats := ComputeDailyStats(txns, 1)
	if stats.MuCents != 300 {
		t.Fatalf("mu = %d, want only the eligible 300", stats.MuCents)
	}
}

func TestComputeDailyStatsHintsAreCaseInsensitive(t *testing.T) {
	day := d(2025, time.June, 10)
	txns := []model.Transaction{
		{PostedAt: day, AmountCents: -600, Category: "SAVINGS Goal"},
		spend(day, 250),
	}
	stats := ComputeDailyStats(txns, 1)
	if stats.MuCents != 250 {
		t.Fatalf("mu = %d, want 250", stats.MuCents)
	}
}

func TestWeekdayMultipliersEmpty(t *testing.T) {
	mults := WeekdayMultipliers(nil, 30)
	for i, m := range mults {
		if m != 1.0 {
			t.Fatalf("mults[%d] = %f, want 1.0", i, m)
		}
	}
}

func TestWeekdayMultipliersNormalizedToOne(t *testing.T) {
	// Two full weeks with heavier weekend spend.
	var txns []model.Transaction
	day := d(2025, time.June, 2) // a Monday
	for i := 0; i < 14; i++ {
		cur := day.AddDate(0, 0, i)
		amount := int64(100)
		if model.IsWeekend(cur) {
			amount = 400
		}
		txns = append(txns, spend(cur, amount))
	}

	mults := WeekdayMultipliers(txns, 14)

	var avg float64
	for _, m := range mults {
		avg += m
	}
	avg /= 7
	if math.Abs(avg-1.0) > 1e-9 {
		t.Fatalf("multiplier average = %f, want exactly 1.0", avg)
	}

	// Saturday (index 5) and Sunday (index 6) must sit above weekdays.
	if mults[5] <= mults[0] || mults[6] <= mults[0] {
		t.Fatalf("weekend multipliers not elevated: %v", mults)
	}
}

func TestWeekdayMultipliersUniformSpend(t *testing.T) {
	var txns []model.Transaction
	day := d(2025, time.June, 2)
	for i := 0; i < 14; i++ {
		txns = append(txns, spend(day.AddDate(0, 0, i), 150))
	}
	mults := WeekdayMultipliers(txns, 14)
	for i, m := range mults {
		if math.Abs(m-1.0) > 1e-9 {
			t.Fatalf("uniform spend mults[%d] = %f, want 1.0", i, m)
		}
	}
}
