package forecast

import (
	"testing"
	"time"
)

func TestBlendedBandFixture(t *testing.T) {
	entries, _ := Expand(fixtureSources(), d(2025, time.January, 1), d(2025, time.January, 10), ExpandOptions{})
	series := NewBalanceSeries(100_00, entries)

	stats := DailyStats{MuCents: 100, SigmaCents: 50}
	mults := [7]float64{1, 1, 1, 1, 1, 1, 1}

	points := BlendedBand(series, stats, mults, 0.8)
	if len(points) != 3 {
		t.Fatalf("point count = %d, want 3", len(points))
	}

	// Baseline with opening 10000: 5000 on the 3rd, 3000 on the 5th,
	// 13000 on the 6th. Blended subtracts the flat 100 expected spend;
	// band half-width is round(0.8*50) = 40.
	wantBlended := []int64{4900, 2900, 12900}
	for i, p := range points {
		if p.BlendedCents != wantBlended[i] {
			t.Fatalf("blended[%d] = %d, want %d", i, p.BlendedCents, wantBlended[i])
		}
		if p.LowerCents != p.BlendedCents-40 || p.UpperCents != p.BlendedCents+40 {
			t.Fatalf("band[%d] = [%d, %d] around %d", i, p.LowerCents, p.UpperCents, p.BlendedCents)
		}
	}
}

func TestBlendedBandWeekdayModulation(t *testing.T) {
	entries, _ := Expand(fixtureSources(), d(2025, time.January, 1), d(2025, time.January, 7), ExpandOptions{})
	series := NewBalanceSeries(0, entries)

	stats := DailyStats{MuCents: 200, SigmaCents: 0}
	var mults [7]float64
	for i := range mults {
		mults[i] = 1
	}
	mults[6] = 1.5 // Sundays run hot

	points := BlendedBand(series, stats, mults, 1)
	for _, p := range points {
		want := int64(200)
		if p.Date.Weekday() == time.Sunday {
			want = 300
		}
		if p.ExpectedSpend != want {
			t.Fatalf("expected spend on %s = %d, want %d", p.Date.Format("2006-01-02"), p.ExpectedSpend, want)
		}
	}
}
