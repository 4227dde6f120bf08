// Package apiclient provides a client for the local cashcast daemon API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hollowbrook/cashcast/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnauthorized indicates the API token is missing or wrong.
	ErrUnauthorized = errors.New("apiclient: unauthorized (check daemon.api_token)")
	// ErrNotFound indicates the resource does not exist yet.
	ErrNotFound = errors.New("apiclient: not found")
)

// Client talks to a running cashcast daemon over its loopback HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the daemon at addr (host:port). The token may be
// empty when the daemon runs without authentication.
func New(addr, token string) *Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = "127.0.0.1:8791"
	}
	return &Client{
		baseURL: "http://" + addr,
		token:   token,
		http:    &http.Client{},
	}
}

// Status is the daemon runtime status served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Addr            string    `json:"addr"`
	Timezone        string    `json:"timezone"`
	SnapshotCron    string    `json:"snapshot_cron"`
	HorizonDays     int       `json:"horizon_days"`
	LastSnapshotAt  time.Time `json:"last_snapshot_at"`
	SnapshotCount   int64     `json:"snapshot_count"`
	LastError       string    `json:"last_error"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Status fetches the daemon runtime status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/status", nil)
	if err != nil {
		return nil, err
	}
	var st Status
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("apiclient: parsing status: %w", err)
	}
	return &st, nil
}

// LatestSnapshot is the stored snapshot served at /v1/snapshots/latest.
type LatestSnapshot struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Snapshot    model.Snapshot `json:"snapshot"`
	Digest      model.Digest   `json:"digest"`
}

// LatestSnapshot fetches the most recently stored snapshot and digest.
func (c *Client) LatestSnapshot(ctx context.Context) (*LatestSnapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/snapshots/latest", nil)
	if err != nil {
		return nil, err
	}
	var snap LatestSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("apiclient: parsing snapshot: %w", err)
	}
	return &snap, nil
}

// SimulateRequest describes a hypothetical spend to check.
type SimulateRequest struct {
	Date             string `json:"date"`
	AmountCents      int64  `json:"amount_cents"`
	BufferFloorCents *int64 `json:"buffer_floor_cents,omitempty"`
	HorizonDays      int    `json:"horizon_days,omitempty"`
}

// SimulateDecision is the affordability verdict for a simulated spend.
type SimulateDecision struct {
	Safe               bool     `json:"safe"`
	BaselineMinCents   int64    `json:"baseline_min_cents"`
	NewMinBalanceCents int64    `json:"new_min_balance_cents"`
	MaxSafeTodayCents  int64    `json:"max_safe_today_cents"`
	TightDates         []string `json:"tight_dates"`
}

// SimulateResponse pairs the decision with the horizon it was computed over.
type SimulateResponse struct {
	Decision SimulateDecision `json:"decision"`
	Horizon  model.Horizon    `json:"horizon"`
}

// SimulateSpend asks the daemon whether the spend is affordable.
func (c *Client) SimulateSpend(ctx context.Context, req SimulateRequest) (*SimulateResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encoding request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/v1/forecast/simulate-spend", payload)
	if err != nil {
		return nil, err
	}
	var resp SimulateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("apiclient: parsing simulate response: %w", err)
	}
	return &resp, nil
}

// do performs an authenticated request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("apiclient: creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("apiclient: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("apiclient: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("apiclient: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
