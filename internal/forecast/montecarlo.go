package forecast

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

// MonteCarloParams configures a simulation run. Iterations above Max are
// clamped to bound CPU cost per request; the seed makes runs reproducible.
type MonteCarloParams struct {
	Stats      DailyStats
	Mults      [7]float64
	Iterations int
	Max        int
	Seed       int64
}

// MonteCarloPoint is the simulated percentile band on one date. P10 is the
// pessimistic bound: the 90th-percentile spend draw subtracted from the
// deterministic balance.
type MonteCarloPoint struct {
	Date         time.Time
	BalanceCents int64
	P10Cents     int64
	P90Cents     int64
}

// MonteCarloBand simulates daily discretionary spend per balance date and
// returns 10th/90th percentile balance bands. Draws are Gaussian with the
// mean modulated by the weekday multiplier; negative draws clamp to zero
// since spend cannot be negative. Percentiles use nearest-rank indexing.
func MonteCarloBand(series BalanceSeries, p MonteCarloParams) []MonteCarloPoint {
	iters := p.Iterations
	if p.Max > 0 && iters > p.Max {
		iters = p.Max
	}
	if iters < 1 {
		iters = 1
	}

	rng := rand.New(rand.NewSource(p.Seed))
	sigma := float64(p.Stats.SigmaCents)

	points := make([]MonteCarloPoint, 0, len(series.Days()))
	draws := make([]float64, iters)

	for _, d := range series.Days() {
		mean := float64(p.Stats.MuCents) * p.Mults[model.MondayIndex(d)]
		for i := range draws {
			v := rng.NormFloat64()*sigma + mean
			if v < 0 {
				v = 0
			}
			draws[i] = v
		}
		sort.Float64s(draws)

		p10Spend := draws[nearestRank(0.10, iters)]
		p90Spend := draws[nearestRank(0.90, iters)]

		bal := series.Sparse()[d]
		points = append(points, MonteCarloPoint{
			Date:         d,
			BalanceCents: bal,
			// Higher spend draw means lower balance.
			P10Cents: bal - int64(math.Round(p90Spend)),
			P90Cents: bal - int64(math.Round(p10Spend)),
		})
	}
	return points
}

func nearestRank(q float64, n int) int {
	idx := int(math.Round(q * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}
