package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/store"
)

// seedStore builds a store with one active account holding 50.00 opening
// balance, a weekly payday inflow, a monthly rent commitment with a flex
// window, and a one-off birthday event. Dates follow the January 2025
// calendar where the 4th and 5th fall on a weekend.
func seedStore(t *testing.T) (*store.Store, int64) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	acct, err := s.AddAccount(model.Account{Name: "Checking", Type: "depository", Currency: "USD", IsActive: true})
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	if err := s.AddTransaction(model.Transaction{
		IdempotencyKey: "opening", AccountID: acct,
		PostedAt: model.Date(2024, 12, 20), AmountCents: 50_00, IsCleared: true,
	}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	window := 2
	if _, err := s.AddInflow(model.ScheduledInflow{
		Name: "Payday", AmountCents: 100_00, DueRule: model.RuleWeekly,
		NextDueDate: model.Date(2025, 1, 4), AccountID: acct,
	}); err != nil {
		t.Fatalf("AddInflow: %v", err)
	}
	if _, err := s.AddCommitment(model.Commitment{
		Name: "Rent", AmountCents: 50_00, DueRule: model.RuleMonthly,
		NextDueDate: model.Date(2025, 1, 5), FlexibleWindowDays: &window, AccountID: acct,
	}); err != nil {
		t.Fatalf("AddCommitment: %v", err)
	}
	lead := 14
	if _, err := s.AddKeyEvent(model.KeySpendEvent{
		Name: "Birthday", EventDate: model.Date(2025, 1, 5), RepeatRule: model.RuleOneOff,
		PlannedAmountCents: 20_00, ShiftPolicy: model.AsScheduled, LeadTimeDays: &lead, AccountID: acct,
	}); err != nil {
		t.Fatalf("AddKeyEvent: %v", err)
	}

	return s, acct
}

func TestProject(t *testing.T) {
	s, _ := seedStore(t)

	proj, err := Project(s, model.Date(2025, 1, 1), model.Date(2025, 1, 10), forecast.ExpandOptions{})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	if proj.OpeningBalanceCents != 50_00 {
		t.Errorf("opening = %d, want 5000", proj.OpeningBalanceCents)
	}
	if proj.Horizon.Start != "2025-01-01" || proj.Horizon.End != "2025-01-10" || proj.Horizon.Days != 9 {
		t.Errorf("horizon = %+v", proj.Horizon)
	}

	// Rent shifts Sun Jan 5 -> Fri Jan 3, birthday stays on Jan 5, payday
	// shifts Sat Jan 4 -> Mon Jan 6 and recurs Sat Jan 11 -> out of range.
	wantDates := []string{"2025-01-03", "2025-01-05", "2025-01-06"}
	if len(proj.Entries) != len(wantDates) {
		t.Fatalf("entries = %+v", proj.Entries)
	}
	for i, e := range proj.Entries {
		if got := e.Date.Format(model.ISODate); got != wantDates[i] {
			t.Errorf("entry %d date = %s, want %s", i, got, wantDates[i])
		}
	}

	// Balances: 5000 - 5000 rent = 0, then -2000 birthday, then +10000 payday.
	if got := proj.Series.At(model.Date(2025, 1, 6)); got != 80_00 {
		t.Errorf("balance Jan 6 = %d, want 8000", got)
	}
	if got := proj.Series.At(model.Date(2025, 1, 5)); got != -20_00 {
		t.Errorf("balance Jan 5 = %d, want -2000", got)
	}
	if len(proj.Warnings) != 0 {
		t.Errorf("warnings = %+v", proj.Warnings)
	}
}

func TestProjectInvertedHorizon(t *testing.T) {
	s, _ := seedStore(t)
	if _, err := Project(s, model.Date(2025, 1, 10), model.Date(2025, 1, 1), forecast.ExpandOptions{}); err == nil {
		t.Fatal("Project with inverted horizon: want error")
	}
}

func TestProjectAccountFilter(t *testing.T) {
	s, acct := seedStore(t)

	proj, err := Project(s, model.Date(2025, 1, 1), model.Date(2025, 1, 10), forecast.ExpandOptions{
		Accounts: map[int64]struct{}{acct + 999: {}},
	})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(proj.Entries) != 0 {
		t.Errorf("entries = %+v, want none for unmatched account", proj.Entries)
	}
}

func TestLoadSpendModel(t *testing.T) {
	s, acct := seedStore(t)

	// Four spend days: 0, 0, 0 (implicit) and 400 yields mu 100.
	if err := s.AddTransaction(model.Transaction{
		IdempotencyKey: "sp1", AccountID: acct,
		PostedAt: model.Date(2024, 12, 28), AmountCents: -400, IsCleared: true,
	}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	sm, err := LoadSpendModel(s, model.Date(2024, 12, 28), 4)
	if err != nil {
		t.Fatalf("LoadSpendModel: %v", err)
	}
	if sm.Stats.MuCents != 100 {
		t.Errorf("mu = %d, want 100", sm.Stats.MuCents)
	}
	if sm.Stats.SigmaCents != 173 {
		t.Errorf("sigma = %d, want 173", sm.Stats.SigmaCents)
	}
}

func TestLoadSpendModelEmpty(t *testing.T) {
	s, _ := seedStore(t)
	sm, err := LoadSpendModel(s, model.Date(2025, 1, 1), 30)
	if err != nil {
		t.Fatalf("LoadSpendModel: %v", err)
	}
	if sm.Stats.MuCents != 0 || sm.Stats.SigmaCents != 0 {
		t.Errorf("stats = %+v, want zeros", sm.Stats)
	}
	for i, m := range sm.Mults {
		if m != 1.0 {
			t.Errorf("mult[%d] = %v, want 1.0", i, m)
		}
	}
}
