// Package store provides the SQLite-backed budget database that the
// forecast core reads from and the nightly job writes snapshots into.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hollowbrook/cashcast/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store wraps the budget database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the budget database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening budget db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// OpeningBalance sums cleared transactions across active accounts posted on
// or before asOf. posted_at is ISO text so the comparison runs on its date
// part.
func (s *Store) OpeningBalance(asOf time.Time) (int64, error) {
	var bal sql.NullInt64
	err := s.db.QueryRow(`SELECT COALESCE(SUM(t.amount_cents), 0)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.is_active = 1 AND t.is_cleared = 1
		  AND DATE(t.posted_at) <= ?`, asOf.Format(model.ISODate)).Scan(&bal)
	if err != nil {
		return 0, fmt.Errorf("computing opening balance: %w", err)
	}
	return bal.Int64, nil
}

// ForecastSources loads the three scheduled-item tables in one pass.
// Unrecognized rule or policy strings degrade to their defaults and are
// reported as warnings rather than failing the load.
func (s *Store) ForecastSources() (model.ForecastSources, error) {
	var src model.ForecastSources

	warn := func(kind model.EntryType, id int64, field, value string) {
		src.Warnings = append(src.Warnings, model.SourceWarning{
			SourceType: kind,
			SourceID:   id,
			Field:      field,
			Value:      value,
		})
	}

	rows, err := s.db.Query(`SELECT id, name, amount_cents, due_rule,
		COALESCE(next_due_date, ''), account_id
		FROM scheduled_inflows ORDER BY id`)
	if err != nil {
		return src, fmt.Errorf("loading scheduled inflows: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var in model.ScheduledInflow
		var ruleStr, dueStr string
		if err := rows.Scan(&in.ID, &in.Name, &in.AmountCents, &ruleStr, &dueStr, &in.AccountID); err != nil {
			return src, err
		}
		var ok bool
		if in.DueRule, ok = model.ParseRecurrenceRule(ruleStr); !ok {
			warn(model.EntryInflow, in.ID, "due_rule", ruleStr)
		}
		if dueStr != "" {
			if in.NextDueDate, err = model.ParseDate(dueStr); err != nil {
				warn(model.EntryInflow, in.ID, "next_due_date", dueStr)
				continue
			}
		}
		src.Inflows = append(src.Inflows, in)
	}
	if err := rows.Err(); err != nil {
		return src, err
	}

	rows, err = s.db.Query(`SELECT id, name, amount_cents, due_rule,
		COALESCE(next_due_date, ''), flexible_window_days, account_id
		FROM commitments ORDER BY id`)
	if err != nil {
		return src, fmt.Errorf("loading commitments: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var c model.Commitment
		var ruleStr, dueStr string
		var window sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &c.AmountCents, &ruleStr, &dueStr, &window, &c.AccountID); err != nil {
			return src, err
		}
		var ok bool
		if c.DueRule, ok = model.ParseRecurrenceRule(ruleStr); !ok {
			warn(model.EntryCommitment, c.ID, "due_rule", ruleStr)
		}
		if window.Valid {
			w := int(window.Int64)
			c.FlexibleWindowDays = &w
		}
		if dueStr != "" {
			if c.NextDueDate, err = model.ParseDate(dueStr); err != nil {
				warn(model.EntryCommitment, c.ID, "next_due_date", dueStr)
				continue
			}
		}
		src.Commitments = append(src.Commitments, c)
	}
	if err := rows.Err(); err != nil {
		return src, err
	}

	rows, err = s.db.Query(`SELECT id, name, event_date,
		COALESCE(repeat_rule, ''), COALESCE(planned_amount_cents, 0),
		COALESCE(shift_policy, ''), lead_time_days, COALESCE(account_id, 0)
		FROM key_spend_events ORDER BY id`)
	if err != nil {
		return src, fmt.Errorf("loading key spend events: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var ev model.KeySpendEvent
		var dateStr, ruleStr, policyStr string
		var lead sql.NullInt64
		if err := rows.Scan(&ev.ID, &ev.Name, &dateStr, &ruleStr, &ev.PlannedAmountCents, &policyStr, &lead, &ev.AccountID); err != nil {
			return src, err
		}
		var ok bool
		if ev.RepeatRule, ok = model.ParseRecurrenceRule(ruleStr); !ok {
			warn(model.EntryKeyEvent, ev.ID, "repeat_rule", ruleStr)
		}
		if ev.ShiftPolicy, ok = model.ParseShiftPolicy(policyStr); !ok {
			warn(model.EntryKeyEvent, ev.ID, "shift_policy", policyStr)
		}
		if lead.Valid {
			l := int(lead.Int64)
			ev.LeadTimeDays = &l
		}
		if ev.EventDate, err = model.ParseDate(dateStr); err != nil {
			warn(model.EntryKeyEvent, ev.ID, "event_date", dateStr)
			continue
		}
		src.KeyEvents = append(src.KeyEvents, ev)
	}
	if err := rows.Err(); err != nil {
		return src, err
	}

	return src, nil
}

// SpendHistory returns cleared transactions on active accounts posted inside
// the inclusive window, oldest first. The blended statistics layer applies
// its own eligibility filtering on top.
func (s *Store) SpendHistory(from, to time.Time) ([]model.Transaction, error) {
	rows, err := s.db.Query(`SELECT t.idempotency_key, t.account_id, t.posted_at,
		t.amount_cents, COALESCE(t.category, ''), COALESCE(t.category_group, ''),
		COALESCE(t.type, ''), t.is_commitment, t.is_key_event, t.is_excluded
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.is_active = 1 AND t.is_cleared = 1
		  AND DATE(t.posted_at) >= ? AND DATE(t.posted_at) <= ?
		ORDER BY t.posted_at`,
		from.Format(model.ISODate), to.Format(model.ISODate))
	if err != nil {
		return nil, fmt.Errorf("loading spend history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var postedStr string
		var isCommitment, isKeyEvent, isExcluded int
		err := rows.Scan(&t.IdempotencyKey, &t.AccountID, &postedStr, &t.AmountCents,
			&t.Category, &t.CategoryGroup, &t.Type, &isCommitment, &isKeyEvent, &isExcluded)
		if err != nil {
			return nil, err
		}
		if t.PostedAt, err = model.ParseDate(postedStr); err != nil {
			continue
		}
		t.IsCleared = true
		t.IsCommitment = isCommitment != 0
		t.IsKeyEvent = isKeyEvent != 0
		t.Exclude = isExcluded != 0
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// AddAccount inserts an account and returns its row id.
func (s *Store) AddAccount(a model.Account) (int64, error) {
	isActive := 0
	if a.IsActive {
		isActive = 1
	}
	res, err := s.db.Exec(`INSERT INTO accounts (name, type, currency, is_active)
		VALUES (?, ?, ?, ?)`, a.Name, a.Type, a.Currency, isActive)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddTransaction inserts a transaction, deduplicating on idempotency key.
// Replays of the same key are silently ignored.
func (s *Store) AddTransaction(t model.Transaction) error {
	b2i := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO transactions
		(idempotency_key, account_id, posted_at, amount_cents,
		 category, category_group, type, is_commitment, is_key_event,
		 is_excluded, is_cleared)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.IdempotencyKey, t.AccountID, t.PostedAt.Format(model.ISODate), t.AmountCents,
		t.Category, t.CategoryGroup, t.Type, b2i(t.IsCommitment), b2i(t.IsKeyEvent),
		b2i(t.Exclude), b2i(t.IsCleared))
	return err
}

// AddInflow inserts a scheduled inflow and returns its row id.
func (s *Store) AddInflow(in model.ScheduledInflow) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO scheduled_inflows
		(name, amount_cents, due_rule, next_due_date, account_id)
		VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.AmountCents, in.DueRule.String(), in.NextDueDate.Format(model.ISODate), in.AccountID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddCommitment inserts a commitment and returns its row id.
func (s *Store) AddCommitment(c model.Commitment) (int64, error) {
	var window any
	if c.FlexibleWindowDays != nil {
		window = *c.FlexibleWindowDays
	}
	res, err := s.db.Exec(`INSERT INTO commitments
		(name, amount_cents, due_rule, next_due_date, flexible_window_days, account_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.AmountCents, c.DueRule.String(), c.NextDueDate.Format(model.ISODate), window, c.AccountID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddKeyEvent inserts a key spend event and returns its row id.
func (s *Store) AddKeyEvent(ev model.KeySpendEvent) (int64, error) {
	var lead any
	if ev.LeadTimeDays != nil {
		lead = *ev.LeadTimeDays
	}
	res, err := s.db.Exec(`INSERT INTO key_spend_events
		(name, event_date, repeat_rule, planned_amount_cents, shift_policy, lead_time_days, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Name, ev.EventDate.Format(model.ISODate), ev.RepeatRule.String(),
		ev.PlannedAmountCents, ev.ShiftPolicy.String(), lead, ev.AccountID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SnapshotRecord is one persisted snapshot row with its decoded payloads.
type SnapshotRecord struct {
	ID          string
	GeneratedAt time.Time
	Snapshot    model.Snapshot
	Digest      model.Digest
}

// SaveSnapshot persists a forecast snapshot and its digest, returning the
// generated snapshot id.
func (s *Store) SaveSnapshot(snap model.Snapshot, digest model.Digest, generatedAt time.Time) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	digestJSON, err := json.Marshal(digest)
	if err != nil {
		return "", fmt.Errorf("encoding digest: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(`INSERT INTO forecast_snapshots
		(id, generated_at, horizon_start, horizon_end, payload_json, digest_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, generatedAt.UTC().Format(time.RFC3339),
		snap.Meta.Horizon.Start, snap.Meta.Horizon.End,
		string(payload), string(digestJSON))
	if err != nil {
		return "", fmt.Errorf("saving snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recently generated snapshot, or
// sql.ErrNoRows when none exists.
func (s *Store) LatestSnapshot() (SnapshotRecord, error) {
	var rec SnapshotRecord
	var genStr, payload, digestJSON string
	err := s.db.QueryRow(`SELECT id, generated_at, payload_json, digest_json
		FROM forecast_snapshots
		ORDER BY generated_at DESC, id DESC LIMIT 1`).Scan(&rec.ID, &genStr, &payload, &digestJSON)
	if err != nil {
		return rec, err
	}
	if rec.GeneratedAt, err = time.Parse(time.RFC3339, genStr); err != nil {
		return rec, fmt.Errorf("parsing snapshot timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &rec.Snapshot); err != nil {
		return rec, fmt.Errorf("decoding snapshot payload: %w", err)
	}
	if err := json.Unmarshal([]byte(digestJSON), &rec.Digest); err != nil {
		return rec, fmt.Errorf("decoding snapshot digest: %w", err)
	}
	return rec, nil
}

// SnapshotCount returns the number of persisted snapshots.
func (s *Store) SnapshotCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM forecast_snapshots").Scan(&count)
	return count, err
}
