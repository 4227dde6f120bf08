package model

// Horizon is the inclusive date range a forecast was computed over.
type Horizon struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days,omitempty"`
}

// SnapshotMeta carries snapshot provenance.
type SnapshotMeta struct {
	Horizon Horizon `json:"horizon"`
}

// Snapshot is the persisted forecast payload shape. The core produces it;
// storage lifecycle belongs to the nightly job and dashboards that read it.
type Snapshot struct {
	OpeningBalanceCents int64            `json:"opening_balance_cents"`
	Entries             []Entry          `json:"entries"`
	Balances            map[string]int64 `json:"balances"`
	Meta                SnapshotMeta     `json:"meta"`
}

// DigestBalances summarizes the balance curve for the digest.
type DigestBalances struct {
	TodayBalanceCents     int64  `json:"today_balance_cents"`
	MinBalanceCents       *int64 `json:"min_balance_cents"`
	MinBalanceDate        string `json:"min_balance_date,omitempty"`
	NextCliffDate         string `json:"next_cliff_date,omitempty"`
	NextCliffBalanceCents *int64 `json:"next_cliff_balance_cents"`
	BufferFloorCents      int64  `json:"buffer_floor_cents"`
}

// UpcomingCommitment is one of the largest commitments due soon.
type UpcomingCommitment struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

// UpcomingKeyEvent is a key spend event inside its lead-time window.
type UpcomingKeyEvent struct {
	Date        string `json:"date"`
	DaysUntil   int    `json:"days_until"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	SourceID    int64  `json:"source_id"`
}

// Digest is the operator-facing summary computed alongside each snapshot.
type Digest struct {
	GeneratedAt              string               `json:"generated_at"`
	Horizon                  Horizon              `json:"horizon"`
	Balances                 DigestBalances       `json:"balances"`
	CurrentBalanceCents      int64                `json:"current_balance_cents"`
	SafeToSpendTodayCents    int64                `json:"safe_to_spend_today_cents"`
	TopCommitmentsNext14Days []UpcomingCommitment `json:"top_commitments_next_14_days"`
	UpcomingKeyEvents        []UpcomingKeyEvent   `json:"upcoming_key_events"`
}
