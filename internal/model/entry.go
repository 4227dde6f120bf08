// Package model defines domain types for cashcast forecasting.
package model

import (
	"encoding/json"
	"time"
)

// EntryType identifies which source table produced an entry. The string
// values double as the canonical sort order: commitment < inflow < key_event.
type EntryType string

const (
	EntryInflow     EntryType = "inflow"
	EntryCommitment EntryType = "commitment"
	EntryKeyEvent   EntryType = "key_event"
)

// Entry is one dated ledger impact produced by calendar expansion. Entries
// are derived fresh per expansion and never persisted by the core; the sign
// convention is inflows positive, commitments and key events negative.
type Entry struct {
	Date         time.Time
	Type         EntryType
	Name         string
	AmountCents  int64
	SourceID     int64
	ShiftApplied bool
	Policy       ShiftPolicy
}

// Less orders entries by (date, type, source_id), the canonical deterministic
// order for expansion output and snapshot hashing.
func (e Entry) Less(other Entry) bool {
	if !e.Date.Equal(other.Date) {
		return e.Date.Before(other.Date)
	}
	if e.Type != other.Type {
		return e.Type < other.Type
	}
	return e.SourceID < other.SourceID
}

type entryJSON struct {
	Date         string `json:"date"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	AmountCents  int64  `json:"amount_cents"`
	SourceID     int64  `json:"source_id"`
	ShiftApplied bool   `json:"shift_applied"`
	Policy       string `json:"policy"`
}

// MarshalJSON serializes the entry with an ISO-8601 date and string policy.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Date:         e.Date.Format(ISODate),
		Type:         string(e.Type),
		Name:         e.Name,
		AmountCents:  e.AmountCents,
		SourceID:     e.SourceID,
		ShiftApplied: e.ShiftApplied,
		Policy:       e.Policy.String(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON; unknown policy strings fall
// back to as-scheduled, mirroring the store boundary.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var ej entryJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}
	d, err := ParseDate(ej.Date)
	if err != nil {
		return err
	}
	policy, _ := ParseShiftPolicy(ej.Policy)
	*e = Entry{
		Date:         d,
		Type:         EntryType(ej.Type),
		Name:         ej.Name,
		AmountCents:  ej.AmountCents,
		SourceID:     ej.SourceID,
		ShiftApplied: ej.ShiftApplied,
		Policy:       policy,
	}
	return nil
}
