package model

import "time"

// Account is a ledger account. Only active accounts contribute to balance
// computations.
type Account struct {
	ID       int64
	Name     string
	Type     string
	Currency string
	IsActive bool
}

// Transaction is one posted ledger row. The forecast core only reads cleared
// transactions on active accounts; everything else is ingestion's concern.
type Transaction struct {
	IdempotencyKey string
	AccountID      int64
	PostedAt       time.Time
	AmountCents    int64
	IsCleared      bool
	CategoryID     *int64

	// Textual hints used by the discretionary-spend exclusion rule.
	Category      string
	CategoryGroup string
	Type          string

	IsCommitment bool
	IsKeyEvent   bool
	Exclude      bool
}

// ScheduledInflow is a recurring expected deposit (payroll and the like).
// Amounts are stored positive; the default shift policy is next-business-day.
type ScheduledInflow struct {
	ID          int64
	Name        string
	AmountCents int64
	DueRule     RecurrenceRule
	NextDueDate time.Time
	AccountID   int64
}

// Commitment is a recurring obligation. Amounts are stored positive and
// applied as negative; the default shift policy is previous-business-day,
// bounded by FlexibleWindowDays when set.
type Commitment struct {
	ID                 int64
	Name               string
	AmountCents        int64
	DueRule            RecurrenceRule
	NextDueDate        time.Time
	FlexibleWindowDays *int
	AccountID          int64
}

// KeySpendEvent is a planned one-off or recurring spend (birthday, holiday).
// Planned amounts are applied as negative; the default shift policy is
// as-scheduled.
type KeySpendEvent struct {
	ID                 int64
	Name               string
	EventDate          time.Time
	RepeatRule         RecurrenceRule
	PlannedAmountCents int64
	ShiftPolicy        ShiftPolicy
	LeadTimeDays       *int
	AccountID          int64
}

// ForecastSources is the in-memory snapshot of the three scheduled-item
// tables that calendar expansion runs over.
type ForecastSources struct {
	Inflows     []ScheduledInflow
	Commitments []Commitment
	KeyEvents   []KeySpendEvent

	// Warnings collected while parsing rule/policy strings at the store
	// boundary. A malformed row degrades instead of failing expansion.
	Warnings []SourceWarning
}

// SourceWarning flags a source row whose rule or policy string was not
// recognized and fell back to a safe default.
type SourceWarning struct {
	SourceType EntryType `json:"source_type"`
	SourceID   int64     `json:"source_id"`
	Field      string    `json:"field"`
	Value      string    `json:"value"`
}
