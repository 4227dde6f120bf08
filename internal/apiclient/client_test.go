package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New("", token)
	c.baseURL = srv.URL
	return c
}

func TestStatusSendsBearerToken(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"addr":"127.0.0.1:8791","horizon_days":120,"snapshot_count":3}`))
	})

	c := newTestClient(t, handler, "sekrit")
	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if gotAuth != "Bearer sekrit" {
		t.Fatalf("Authorization = %q, want Bearer sekrit", gotAuth)
	}
	if st.HorizonDays != 120 || st.SnapshotCount != 3 {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestUnauthorized(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := newTestClient(t, handler, "wrong")
	if _, err := c.Status(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLatestSnapshotNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := newTestClient(t, handler, "")
	if _, err := c.LatestSnapshot(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSimulateSpend(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/forecast/simulate-spend" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"decision":{"safe":true,"baseline_min_cents":3000,"new_min_balance_cents":2500,"max_safe_today_cents":1000},"horizon":{"start":"2025-01-01","end":"2025-01-31"}}`))
	})

	c := newTestClient(t, handler, "")
	resp, err := c.SimulateSpend(context.Background(), SimulateRequest{Date: "2025-01-01", AmountCents: 500})
	if err != nil {
		t.Fatalf("SimulateSpend: %v", err)
	}
	if !resp.Decision.Safe || resp.Decision.NewMinBalanceCents != 2500 {
		t.Fatalf("unexpected decision: %+v", resp.Decision)
	}
	if resp.Horizon.Start != "2025-01-01" {
		t.Fatalf("horizon start = %q", resp.Horizon.Start)
	}
}

func TestErrorBodySurfaced(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid date; use YYYY-MM-DD"}`))
	})

	c := newTestClient(t, handler, "")
	_, err := c.Status(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid date") {
		t.Fatalf("err = %v, want message from body", err)
	}
}
