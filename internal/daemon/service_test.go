package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/pipeline"
	"github.com/hollowbrook/cashcast/internal/store"
)

// newTestService seeds a store with a 100.00 opening balance, a weekly
// payday, a monthly rent commitment, and a one-off birthday around the
// first weekend of January 2025.
func newTestService(t *testing.T, token string) (*Service, *store.Store) {
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
		PostedAt: model.Date(2024, 12, 20), AmountCents: 100_00, IsCleared: true,
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
	if _, err := s.AddKeyEvent(model.KeySpendEvent{
		Name: "Birthday", EventDate: model.Date(2025, 1, 5), RepeatRule: model.RuleOneOff,
		PlannedAmountCents: 20_00, ShiftPolicy: model.AsScheduled, AccountID: acct,
	}); err != nil {
		t.Fatalf("AddKeyEvent: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := New(Config{APIToken: token}, s, log)
	return svc, s
}

func doRequest(t *testing.T, svc *Service, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	svc.routes().ServeHTTP(rec, req)
	return rec
}

func TestHealthNoAuth(t *testing.T) {
	svc, _ := newTestService(t, "secret")
	rec := doRequest(t, svc, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	svc, _ := newTestService(t, "secret")

	rec := doRequest(t, svc, http.MethodGet, "/v1/status", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, svc, http.MethodGet, "/v1/status", "wrong", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, svc, http.MethodGet, "/v1/status", "secret", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rec.Code)
	}

	var st Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if st.HorizonDays != 120 {
		t.Errorf("HorizonDays = %d, want default 120", st.HorizonDays)
	}
}

func TestHandleCalendar(t *testing.T) {
	svc, _ := newTestService(t, "")

	rec := doRequest(t, svc, http.MethodGet, "/v1/forecast/calendar?start=2025-01-01&end=2025-01-10", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp calendarResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.OpeningBalanceCents != 100_00 {
		t.Errorf("opening = %d, want 10000", resp.OpeningBalanceCents)
	}
	if len(resp.Entries) != 3 {
		t.Fatalf("entries = %+v", resp.Entries)
	}
	// Rent shifts Sun Jan 5 -> Fri Jan 3; birthday stays put; payday shifts
	// Sat Jan 4 -> Mon Jan 6.
	if resp.Balances["2025-01-03"] != 50_00 || resp.Balances["2025-01-05"] != 30_00 || resp.Balances["2025-01-06"] != 130_00 {
		t.Errorf("balances = %+v", resp.Balances)
	}
	if resp.MinBalanceCents == nil || *resp.MinBalanceCents != 30_00 || resp.MinBalanceDate != "2025-01-05" {
		t.Errorf("min = %v on %s", resp.MinBalanceCents, resp.MinBalanceDate)
	}
	// meta.today reflects the service clock, not the requested start.
	if want := svc.today().Format(model.ISODate); resp.Meta.Today != want {
		t.Errorf("meta.today = %s, want %s", resp.Meta.Today, want)
	}
}

func TestHandleCalendarBadDates(t *testing.T) {
	svc, _ := newTestService(t, "")

	for _, target := range []string{
		"/v1/forecast/calendar?start=bogus&end=2025-01-10",
		"/v1/forecast/calendar?start=2025-01-01&end=nope",
		"/v1/forecast/calendar?start=2025-01-10&end=2025-01-01",
		"/v1/forecast/calendar",
	} {
		rec := doRequest(t, svc, http.MethodGet, target, "", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleBlendedNoHistory(t *testing.T) {
	svc, _ := newTestService(t, "")

	rec := doRequest(t, svc, http.MethodGet, "/v1/forecast/blended?start=2025-01-01&end=2025-01-10", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp blendedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.MuCents != 0 || resp.SigmaCents != 0 {
		t.Errorf("stats = mu %d sigma %d, want zeros without history", resp.MuCents, resp.SigmaCents)
	}
	// With no spend model the blended curve equals the deterministic one.
	for _, p := range resp.Points {
		if p.BlendedCents != p.BalanceCents || p.LowerCents != p.BalanceCents || p.UpperCents != p.BalanceCents {
			t.Errorf("point %s not collapsed onto balance: %+v", p.Date, p)
		}
	}
}

func TestHandleMonteCarloDeterministic(t *testing.T) {
	svc, _ := newTestService(t, "")

	target := "/v1/forecast/montecarlo?start=2025-01-01&end=2025-01-10&iterations=500&seed=7"
	rec1 := doRequest(t, svc, http.MethodGet, target, "", "")
	rec2 := doRequest(t, svc, http.MethodGet, target, "", "")
	if rec1.Code != http.StatusOK || rec2.Code != http.StatusOK {
		t.Fatalf("status = %d / %d", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Error("same seed produced different responses")
	}

	var resp monteCarloResponse
	if err := json.Unmarshal(rec1.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Iterations != 500 || resp.Seed != 7 {
		t.Errorf("meta = %+v", resp)
	}
	for _, p := range resp.Points {
		if p.P10Cents > p.P90Cents || p.P90Cents > p.BalanceCents {
			t.Errorf("band ordering violated on %s: %+v", p.Date, p)
		}
	}
}

func TestHandleSimulateSpend(t *testing.T) {
	svc, _ := newTestService(t, "")

	// Baseline min over the horizon is 3000 after the Jan 5 birthday dip.
	floor := int64(29_00)
	body := `{"date":"2025-01-01","amount_cents":50,"buffer_floor_cents":2900,"horizon_days":14}`
	rec := doRequest(t, svc, http.MethodPost, "/v1/forecast/simulate-spend", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp simulateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	d := resp.Decision
	if !d.Safe {
		t.Error("spend of 50 against margin 100 reported unsafe")
	}
	if d.BaselineMinCents != 30_00 {
		t.Errorf("BaselineMinCents = %d, want 3000", d.BaselineMinCents)
	}
	if d.NewMinBalanceCents != 30_00-50 {
		t.Errorf("NewMinBalanceCents = %d, want 2950", d.NewMinBalanceCents)
	}
	if d.MaxSafeTodayCents != 30_00-floor {
		t.Errorf("MaxSafeTodayCents = %d, want 100", d.MaxSafeTodayCents)
	}

	body = `{"date":"2025-01-01","amount_cents":150,"buffer_floor_cents":2900,"horizon_days":14}`
	rec = doRequest(t, svc, http.MethodPost, "/v1/forecast/simulate-spend", "", body)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Decision.Safe {
		t.Error("spend of 150 against margin 100 reported safe")
	}
}

func TestHandleSimulateSpendBadRequests(t *testing.T) {
	svc, _ := newTestService(t, "")

	for _, body := range []string{
		`{`,
		`{"date":"not-a-date","amount_cents":50}`,
		`{"date":"2025-01-01","amount_cents":-5}`,
	} {
		rec := doRequest(t, svc, http.MethodPost, "/v1/forecast/simulate-spend", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHandleLatestSnapshot(t *testing.T) {
	svc, db := newTestService(t, "")

	rec := doRequest(t, svc, http.MethodGet, "/v1/snapshots/latest", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty store: status = %d, want 404", rec.Code)
	}

	if _, err := pipeline.RunNightly(db, model.Date(2025, 1, 1), 30, 0, nil); err != nil {
		t.Fatalf("RunNightly: %v", err)
	}

	rec = doRequest(t, svc, http.MethodGet, "/v1/snapshots/latest", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp latestSnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ID == "" || resp.Snapshot.Meta.Horizon.Start != "2025-01-01" {
		t.Errorf("response = %+v", resp)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	svc, _ := newTestService(t, "")
	svc.cfg.EventsBuffer = 2

	svc.publishEvent(Event{ID: 1})
	svc.publishEvent(Event{ID: 2})
	svc.publishEvent(Event{ID: 3})

	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if len(svc.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(svc.events))
	}
	if svc.events[0].ID != 2 || svc.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", svc.events[0].ID, svc.events[1].ID)
	}
}

func TestRunSnapshotPublishes(t *testing.T) {
	svc, db := newTestService(t, "")

	svc.runSnapshot()

	svc.mu.RLock()
	events := len(svc.events)
	lastErr := svc.lastError
	svc.mu.RUnlock()

	if lastErr != "" {
		t.Fatalf("lastError = %s", lastErr)
	}
	if events != 1 {
		t.Fatalf("events = %d, want 1", events)
	}

	n, err := db.SnapshotCount()
	if err != nil {
		t.Fatalf("SnapshotCount: %v", err)
	}
	if n != 1 {
		t.Errorf("SnapshotCount = %d, want 1", n)
	}
	if svc.events[0].Timestamp.After(time.Now()) {
		t.Error("event timestamp in the future")
	}
}
