package pipeline

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/store"
)

// BuildSnapshot converts a projection into the persisted snapshot payload.
// Balance keys are ISO dates so the payload round-trips through JSON.
func BuildSnapshot(proj Projection) model.Snapshot {
	balances := make(map[string]int64, len(proj.Series.Days()))
	for d, bal := range proj.Series.Sparse() {
		balances[d.Format(model.ISODate)] = bal
	}
	return model.Snapshot{
		OpeningBalanceCents: proj.OpeningBalanceCents,
		Entries:             proj.Entries,
		Balances:            balances,
		Meta:                model.SnapshotMeta{Horizon: proj.Horizon},
	}
}

// BuildDigest computes the operator-facing summary for a projection:
// today's position, the next cliff, the horizon minimum, the largest
// commitments due in the next two weeks, and key events inside their lead
// windows. currentBalanceCents is the cleared balance as of today.
func BuildDigest(proj Projection, today time.Time, currentBalanceCents, bufferFloorCents int64, generatedAt time.Time) model.Digest {
	todayEOD := proj.Series.At(today)
	safeToSpend := todayEOD - bufferFloorCents
	if safeToSpend < 0 {
		safeToSpend = 0
	}

	balances := model.DigestBalances{
		TodayBalanceCents: todayEOD,
		BufferFloorCents:  bufferFloorCents,
	}

	for _, d := range proj.Series.Days() {
		bal := proj.Series.Sparse()[d]
		if balances.MinBalanceCents == nil || bal < *balances.MinBalanceCents {
			b := bal
			balances.MinBalanceCents = &b
			balances.MinBalanceDate = d.Format(model.ISODate)
		}
		if balances.NextCliffDate == "" && !d.Before(today) && bal < bufferFloorCents {
			b := bal
			balances.NextCliffDate = d.Format(model.ISODate)
			balances.NextCliffBalanceCents = &b
		}
	}

	windowEnd := today.AddDate(0, 0, 14)
	var upcoming []model.UpcomingCommitment
	for _, e := range proj.Entries {
		if e.Type != model.EntryCommitment || e.Date.Before(today) || e.Date.After(windowEnd) {
			continue
		}
		upcoming = append(upcoming, model.UpcomingCommitment{
			Date:        e.Date.Format(model.ISODate),
			Name:        e.Name,
			AmountCents: e.AmountCents,
		})
	}
	sortCommitments(upcoming)
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}

	leadByID := make(map[int64]int, len(proj.Sources.KeyEvents))
	for _, ev := range proj.Sources.KeyEvents {
		if ev.LeadTimeDays != nil {
			leadByID[ev.ID] = *ev.LeadTimeDays
		}
	}
	var events []model.UpcomingKeyEvent
	for _, e := range proj.Entries {
		if e.Type != model.EntryKeyEvent || e.Date.Before(today) {
			continue
		}
		lead, ok := leadByID[e.SourceID]
		if !ok {
			continue
		}
		daysUntil := int(e.Date.Sub(today).Hours() / 24)
		if daysUntil > lead {
			continue
		}
		events = append(events, model.UpcomingKeyEvent{
			Date:        e.Date.Format(model.ISODate),
			DaysUntil:   daysUntil,
			Name:        e.Name,
			AmountCents: e.AmountCents,
			SourceID:    e.SourceID,
		})
	}
	sortKeyEvents(events)

	return model.Digest{
		GeneratedAt:              generatedAt.UTC().Format(time.RFC3339),
		Horizon:                  proj.Horizon,
		Balances:                 balances,
		CurrentBalanceCents:      currentBalanceCents,
		SafeToSpendTodayCents:    safeToSpend,
		TopCommitmentsNext14Days: upcoming,
		UpcomingKeyEvents:        events,
	}
}

// RunNightly computes a fresh snapshot over [today, today+horizonDays],
// persists it with its digest, and returns both.
func RunNightly(s *store.Store, today time.Time, horizonDays int, bufferFloorCents int64, log *logrus.Logger) (store.SnapshotRecord, error) {
	start := today
	end := start.AddDate(0, 0, horizonDays)

	proj, err := Project(s, start, end, forecast.ExpandOptions{})
	if err != nil {
		return store.SnapshotRecord{}, err
	}

	current, err := s.OpeningBalance(today)
	if err != nil {
		return store.SnapshotRecord{}, err
	}

	now := time.Now().UTC()
	snap := BuildSnapshot(proj)
	digest := BuildDigest(proj, today, current, bufferFloorCents, now)

	id, err := s.SaveSnapshot(snap, digest, now)
	if err != nil {
		return store.SnapshotRecord{}, err
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"snapshot_id": id,
			"start":       proj.Horizon.Start,
			"end":         proj.Horizon.End,
			"entries":     len(proj.Entries),
			"warnings":    len(proj.Warnings),
		}).Info("nightly snapshot stored")
	}

	return store.SnapshotRecord{
		ID:          id,
		GeneratedAt: now,
		Snapshot:    snap,
		Digest:      digest,
	}, nil
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// sortCommitments orders by absolute amount descending, then date, then name.
func sortCommitments(cs []model.UpcomingCommitment) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if abs64(a.AmountCents) != abs64(b.AmountCents) {
			return abs64(a.AmountCents) > abs64(b.AmountCents)
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Name < b.Name
	})
}

// sortKeyEvents orders by date, then absolute amount descending, then name.
func sortKeyEvents(evs []model.UpcomingKeyEvent) {
	sort.Slice(evs, func(i, j int) bool {
		a, b := evs[i], evs[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if abs64(a.AmountCents) != abs64(b.AmountCents) {
			return abs64(a.AmountCents) > abs64(b.AmountCents)
		}
		return a.Name < b.Name
	})
}
