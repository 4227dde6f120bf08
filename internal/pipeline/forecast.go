// Package pipeline orchestrates store reads into forecast projections,
// blended statistics, and persisted snapshots.
package pipeline

import (
	"fmt"
	"time"

	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/store"
)

// Projection bundles everything one calendar expansion produced: the opening
// balance, expanded entries, the balance series over them, and any source
// warnings collected on the way.
type Projection struct {
	Horizon             model.Horizon
	OpeningBalanceCents int64
	Entries             []model.Entry
	Series              forecast.BalanceSeries
	Warnings            []model.SourceWarning

	// Sources is retained so downstream consumers (digest, key-event lead
	// windows) don't have to reload them.
	Sources model.ForecastSources
}

// Project expands the calendar over [start, end] against the store. The
// opening balance is the cleared-transaction sum as of the day before start.
func Project(s *store.Store, start, end time.Time, opts forecast.ExpandOptions) (Projection, error) {
	var proj Projection
	if end.Before(start) {
		return proj, fmt.Errorf("invalid horizon: end %s before start %s",
			end.Format(model.ISODate), start.Format(model.ISODate))
	}

	opening, err := s.OpeningBalance(start.AddDate(0, 0, -1))
	if err != nil {
		return proj, err
	}

	src, err := s.ForecastSources()
	if err != nil {
		return proj, err
	}

	entries, warnings := forecast.Expand(src, start, end, opts)

	proj = Projection{
		Horizon: model.Horizon{
			Start: start.Format(model.ISODate),
			End:   end.Format(model.ISODate),
			Days:  int(end.Sub(start).Hours() / 24),
		},
		OpeningBalanceCents: opening,
		Entries:             entries,
		Series:              forecast.NewBalanceSeries(opening, entries),
		Warnings:            warnings,
		Sources:             src,
	}
	return proj, nil
}

// SpendModel is the blended-statistics input derived from spend history.
type SpendModel struct {
	Stats DailyStats
	Mults [7]float64
}

// DailyStats aliases the forecast-core stats type so pipeline callers don't
// need a second import for the common case.
type DailyStats = forecast.DailyStats

// LoadSpendModel computes daily spend statistics and weekday multipliers from
// cleared history over the trailing window ending at asOf.
func LoadSpendModel(s *store.Store, asOf time.Time, windowDays int) (SpendModel, error) {
	if windowDays < 1 {
		windowDays = 1
	}
	from := asOf.AddDate(0, 0, -(windowDays - 1))
	txns, err := s.SpendHistory(from, asOf)
	if err != nil {
		return SpendModel{}, err
	}
	return SpendModel{
		Stats: forecast.ComputeDailyStats(txns, windowDays),
		Mults: forecast.WeekdayMultipliers(txns, windowDays),
	}, nil
}
