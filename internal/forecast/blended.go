package forecast

import (
	"math"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

// BlendedPoint is the deterministic balance on a date with expected
// discretionary spend subtracted and a symmetric sigma band around it.
type BlendedPoint struct {
	Date          time.Time
	BalanceCents  int64
	ExpectedSpend int64
	BlendedCents  int64
	LowerCents    int64
	UpperCents    int64
}

// BlendedBand layers expected daily spend on top of the deterministic
// balances. For each date with a balance, expected spend is mu scaled by
// that weekday's multiplier; the band is blended +/- round(k*sigma).
func BlendedBand(series BalanceSeries, stats DailyStats, mults [7]float64, bandK float64) []BlendedPoint {
	halfBand := int64(math.Round(bandK * float64(stats.SigmaCents)))

	points := make([]BlendedPoint, 0, len(series.Days()))
	for _, d := range series.Days() {
		bal := series.Sparse()[d]
		expected := expectedSpend(stats.MuCents, mults, d)
		blended := bal - expected
		points = append(points, BlendedPoint{
			Date:          d,
			BalanceCents:  bal,
			ExpectedSpend: expected,
			BlendedCents:  blended,
			LowerCents:    blended - halfBand,
			UpperCents:    blended + halfBand,
		})
	}
	return points
}

func expectedSpend(muCents int64, mults [7]float64, d time.Time) int64 {
	return int64(math.Round(float64(muCents) * mults[model.MondayIndex(d)]))
}
