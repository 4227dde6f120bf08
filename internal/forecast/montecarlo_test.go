package forecast

import (
	"reflect"
	"testing"
	"time"
)

func mcSeries() BalanceSeries {
	entries, _ := Expand(fixtureSources(), d(2025, time.January, 1), d(2025, time.January, 10), ExpandOptions{})
	return NewBalanceSeries(100_00, entries)
}

func TestMonteCarloDeterministicUnderSeed(t *testing.T) {
	params := MonteCarloParams{
		Stats:      DailyStats{MuCents: 150, SigmaCents: 80},
		Mults:      [7]float64{1, 1, 1, 1, 1, 1, 1},
		Iterations: 500,
		Max:        10_000,
		Seed:       1234,
	}
	first := MonteCarloBand(mcSeries(), params)
	second := MonteCarloBand(mcSeries(), params)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed produced different bands")
	}

	params.Seed = 99
	third := MonteCarloBand(mcSeries(), params)
	if reflect.DeepEqual(first, third) {
		t.Fatal("different seeds produced identical bands")
	}
}

func TestMonteCarloBandOrdering(t *testing.T) {
	params := MonteCarloParams{
		Stats:      DailyStats{MuCents: 150, SigmaCents: 80},
		Mults:      [7]float64{1, 1, 1, 1, 1, 1, 1},
		Iterations: 1000,
		Max:        10_000,
		Seed:       7,
	}
	for _, p := range MonteCarloBand(mcSeries(), params) {
		if p.P10Cents > p.P90Cents {
			t.Fatalf("p10 %d above p90 %d on %s", p.P10Cents, p.P90Cents, p.Date.Format("2006-01-02"))
		}
		// Spend draws are clamped at zero, so neither bound can exceed
		// the deterministic balance.
		if p.P90Cents > p.BalanceCents {
			t.Fatalf("p90 %d above deterministic %d", p.P90Cents, p.BalanceCents)
		}
	}
}

func TestMonteCarloZeroSigmaCollapsesBand(t *testing.T) {
	params := MonteCarloParams{
		Stats:      DailyStats{MuCents: 100, SigmaCents: 0},
		Mults:      [7]float64{1, 1, 1, 1, 1, 1, 1},
		Iterations: 100,
		Max:        10_000,
		Seed:       1,
	}
	for _, p := range MonteCarloBand(mcSeries(), params) {
		if p.P10Cents != p.P90Cents {
			t.Fatalf("zero sigma band not collapsed: [%d, %d]", p.P10Cents, p.P90Cents)
		}
		if p.P10Cents != p.BalanceCents-100 {
			t.Fatalf("band = %d, want balance minus flat spend %d", p.P10Cents, p.BalanceCents-100)
		}
	}
}

func TestMonteCarloIterationClamp(t *testing.T) {
	params := MonteCarloParams{
		Stats:      DailyStats{MuCents: 100, SigmaCents: 50},
		Mults:      [7]float64{1, 1, 1, 1, 1, 1, 1},
		Iterations: 1_000_000,
		Max:        200,
		Seed:       5,
	}
	clamped := MonteCarloBand(mcSeries(), params)

	params.Iterations = 200
	exact := MonteCarloBand(mcSeries(), params)

	if !reflect.DeepEqual(clamped, exact) {
		t.Fatal("oversized iteration count was not clamped to the configured maximum")
	}
}
