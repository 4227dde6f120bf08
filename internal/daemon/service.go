// Package daemon provides the long-running forecast API service with a
// scheduled nightly snapshot job.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/pipeline"
	"github.com/hollowbrook/cashcast/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr                string
	APIToken            string
	Timezone            string
	SnapshotCron        string
	HorizonDays         int
	BufferFloorCents    int64
	StatsWindowDays     int
	BandK               float64
	MonteCarloIters     int
	MonteCarloMaxIters  int
	TightThresholdCents int64
	EventsBuffer        int
}

// Event is emitted whenever a snapshot is stored.
type Event struct {
	ID         int64        `json:"id"`
	Type       string       `json:"type"`
	Timestamp  time.Time    `json:"timestamp"`
	SnapshotID string       `json:"snapshot_id,omitempty"`
	Digest     model.Digest `json:"digest"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Addr            string    `json:"addr"`
	Timezone        string    `json:"timezone"`
	SnapshotCron    string    `json:"snapshot_cron"`
	HorizonDays     int       `json:"horizon_days"`
	LastSnapshotAt  time.Time `json:"last_snapshot_at,omitzero"`
	SnapshotCount   int64     `json:"snapshot_count"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	db  *store.Store
	log *logrus.Logger
	loc *time.Location

	mu             sync.RWMutex
	startedAt      time.Time
	lastSnapshotAt time.Time
	snapshotCount  int64
	lastError      string
	nextEventID    int64
	events         []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service backed by the given store.
func New(cfg Config, db *store.Store, log *logrus.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8791"
	}
	if cfg.SnapshotCron == "" {
		cfg.SnapshotCron = "0 2 * * *"
	}
	if cfg.HorizonDays < 1 {
		cfg.HorizonDays = 120
	}
	if cfg.StatsWindowDays < 1 {
		cfg.StatsWindowDays = 180
	}
	if cfg.BandK <= 0 {
		cfg.BandK = 0.8
	}
	if cfg.MonteCarloIters < 1 {
		cfg.MonteCarloIters = 2000
	}
	if cfg.MonteCarloMaxIters < 1 {
		cfg.MonteCarloMaxIters = 20000
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if log == nil {
		log = logrus.New()
	}

	loc := time.Local
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			log.WithField("timezone", cfg.Timezone).Warn("unknown timezone, using local")
		}
	}

	return &Service{
		cfg:       cfg,
		db:        db,
		log:       log,
		loc:       loc,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// today resolves the current calendar date in the configured zone.
func (s *Service) today() time.Time {
	now := time.Now().In(s.loc)
	return model.Date(now.Year(), now.Month(), now.Day())
}

// routes builds the HTTP API router.
func (s *Service) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/forecast/calendar", s.handleCalendar).Methods(http.MethodGet)
	api.HandleFunc("/forecast/blended", s.handleBlended).Methods(http.MethodGet)
	api.HandleFunc("/forecast/montecarlo", s.handleMonteCarlo).Methods(http.MethodGet)
	api.HandleFunc("/forecast/simulate-spend", s.handleSimulateSpend).Methods(http.MethodPost)
	api.HandleFunc("/snapshots/latest", s.handleLatestSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

// Run starts the HTTP API and the snapshot scheduler until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sched := cron.New()
	if _, err := sched.AddFunc(s.cfg.SnapshotCron, s.runSnapshot); err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.cfg.SnapshotCron, err)
	}
	sched.Start()
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.WithFields(logrus.Fields{
		"addr":     s.cfg.Addr,
		"schedule": s.cfg.SnapshotCron,
	}).Info("daemon started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// runSnapshot executes the nightly snapshot job and publishes the result.
func (s *Service) runSnapshot() {
	rec, err := pipeline.RunNightly(s.db, s.today(), s.cfg.HorizonDays, s.cfg.BufferFloorCents, s.log)

	s.mu.Lock()
	s.lastSnapshotAt = time.Now()
	if err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		s.log.WithError(err).Error("nightly snapshot failed")
		return
	}
	s.snapshotCount++
	s.lastError = ""
	s.nextEventID++
	ev := Event{
		ID:         s.nextEventID,
		Type:       "snapshot_stored",
		Timestamp:  time.Now(),
		SnapshotID: rec.ID,
		Digest:     rec.Digest,
	}
	s.mu.Unlock()

	s.publishEvent(ev)
}

func (s *Service) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIToken != "" {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.cfg.APIToken {
				writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// parseHorizon reads start/end query params, requiring end >= start.
func parseHorizon(r *http.Request) (start, end time.Time, err error) {
	start, err = model.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		return start, end, fmt.Errorf("invalid start date; use YYYY-MM-DD")
	}
	end, err = model.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		return start, end, fmt.Errorf("invalid end date; use YYYY-MM-DD")
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("end must be on or after start")
	}
	return start, end, nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	st := Status{
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		Timezone:        s.loc.String(),
		SnapshotCron:    s.cfg.SnapshotCron,
		HorizonDays:     s.cfg.HorizonDays,
		LastSnapshotAt:  s.lastSnapshotAt,
		SnapshotCount:   s.snapshotCount,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	s.mu.RUnlock()
	writeJSON(w, st)
}

type calendarMeta struct {
	BufferFloorCents int64  `json:"buffer_floor_cents"`
	BelowBuffer      bool   `json:"below_buffer"`
	Today            string `json:"today"`
}

type calendarResponse struct {
	OpeningBalanceCents int64                 `json:"opening_balance_cents"`
	Entries             []model.Entry         `json:"entries"`
	Balances            map[string]int64      `json:"balances"`
	MinBalanceCents     *int64                `json:"min_balance_cents"`
	MinBalanceDate      string                `json:"min_balance_date,omitempty"`
	Warnings            []model.SourceWarning `json:"warnings,omitempty"`
	Meta                calendarMeta          `json:"meta"`
}

func (s *Service) handleCalendar(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseHorizon(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bufferFloor := queryInt64(r, "buffer_floor", s.cfg.BufferFloorCents)

	proj, err := pipeline.Project(s.db, start, end, forecast.ExpandOptions{})
	if err != nil {
		s.serveProjectionError(w, err)
		return
	}

	resp := calendarResponse{
		OpeningBalanceCents: proj.OpeningBalanceCents,
		Entries:             proj.Entries,
		Balances:            BuildBalanceMap(proj),
		Warnings:            proj.Warnings,
		Meta: calendarMeta{
			BufferFloorCents: bufferFloor,
			Today:            s.today().Format(model.ISODate),
		},
	}
	if min, date, ok := proj.Series.Min(start, end); ok {
		resp.MinBalanceCents = &min
		resp.MinBalanceDate = date.Format(model.ISODate)
		resp.Meta.BelowBuffer = min < bufferFloor
	}
	writeJSON(w, resp)
}

// BuildBalanceMap converts a projection's sparse series into ISO-keyed form.
func BuildBalanceMap(proj pipeline.Projection) map[string]int64 {
	out := make(map[string]int64, len(proj.Series.Days()))
	for d, bal := range proj.Series.Sparse() {
		out[d.Format(model.ISODate)] = bal
	}
	return out
}

type blendedPointJSON struct {
	Date               string `json:"date"`
	BalanceCents       int64  `json:"balance_cents"`
	ExpectedSpendCents int64  `json:"expected_spend_cents"`
	BlendedCents       int64  `json:"blended_cents"`
	LowerCents         int64  `json:"lower_cents"`
	UpperCents         int64  `json:"upper_cents"`
}

type blendedResponse struct {
	Points     []blendedPointJSON `json:"points"`
	MuCents    int64              `json:"mu_cents"`
	SigmaCents int64              `json:"sigma_cents"`
	Mults      [7]float64         `json:"weekday_multipliers"`
	BandK      float64            `json:"band_k"`
}

func (s *Service) handleBlended(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseHorizon(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bandK := queryFloat(r, "band_k", s.cfg.BandK)
	windowDays := int(queryInt64(r, "window_days", int64(s.cfg.StatsWindowDays)))

	proj, err := pipeline.Project(s.db, start, end, forecast.ExpandOptions{})
	if err != nil {
		s.serveProjectionError(w, err)
		return
	}
	sm, err := pipeline.LoadSpendModel(s.db, start.AddDate(0, 0, -1), windowDays)
	if err != nil {
		s.serveProjectionError(w, err)
		return
	}

	points := forecast.BlendedBand(proj.Series, sm.Stats, sm.Mults, bandK)
	resp := blendedResponse{
		Points:     make([]blendedPointJSON, 0, len(points)),
		MuCents:    sm.Stats.MuCents,
		SigmaCents: sm.Stats.SigmaCents,
		Mults:      sm.Mults,
		BandK:      bandK,
	}
	for _, p := range points {
		resp.Points = append(resp.Points, blendedPointJSON{
			Date:               p.Date.Format(model.ISODate),
			BalanceCents:       p.BalanceCents,
			ExpectedSpendCents: p.ExpectedSpend,
			BlendedCents:       p.BlendedCents,
			LowerCents:         p.LowerCents,
			UpperCents:         p.UpperCents,
		})
	}
	writeJSON(w, resp)
}

type monteCarloPointJSON struct {
	Date         string `json:"date"`
	BalanceCents int64  `json:"balance_cents"`
	P10Cents     int64  `json:"p10_cents"`
	P90Cents     int64  `json:"p90_cents"`
}

type monteCarloResponse struct {
	Points     []monteCarloPointJSON `json:"points"`
	Iterations int                   `json:"iterations"`
	Seed       int64                 `json:"seed"`
}

func (s *Service) handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseHorizon(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	iters := int(queryInt64(r, "iterations", int64(s.cfg.MonteCarloIters)))
	seed := queryInt64(r, "seed", 1)
	windowDays := int(queryInt64(r, "window_days", int64(s.cfg.StatsWindowDays)))

	proj, err := pipeline.Project(s.db, start, end, forecast.ExpandOptions{})
	if err != nil {
		s.serveProjectionError(w, err)
		return
	}
	sm, err := pipeline.LoadSpendModel(s.db, start.AddDate(0, 0, -1), windowDays)
	if err != nil {
		s.serveProjectionError(w, err)
		return
	}

	if iters > s.cfg.MonteCarloMaxIters {
		iters = s.cfg.MonteCarloMaxIters
	}
	points := forecast.MonteCarloBand(proj.Series, forecast.MonteCarloParams{
		Stats:      sm.Stats,
		Mults:      sm.Mults,
		Iterations: iters,
		Max:        s.cfg.MonteCarloMaxIters,
		Seed:       seed,
	})

	resp := monteCarloResponse{
		Points:     make([]monteCarloPointJSON, 0, len(points)),
		Iterations: iters,
		Seed:       seed,
	}
	for _, p := range points {
		resp.Points = append(resp.Points, monteCarloPointJSON{
			Date:         p.Date.Format(model.ISODate),
			BalanceCents: p.BalanceCents,
			P10Cents:     p.P10Cents,
			P90Cents:     p.P90Cents,
		})
	}
	writeJSON(w, resp)
}

type simulateRequest struct {
	Date             string `json:"date"`
	AmountCents      int64  `json:"amount_cents"`
	BufferFloorCents *int64 `json:"buffer_floor_cents"`
	HorizonDays      int    `json:"horizon_days"`
}

type simulateDecision struct {
	Safe               bool     `json:"safe"`
	BaselineMinCents   int64    `json:"baseline_min_cents"`
	NewMinBalanceCents int64    `json:"new_min_balance_cents"`
	MaxSafeTodayCents  int64    `json:"max_safe_today_cents"`
	TightDates         []string `json:"tight_dates,omitempty"`
}

type simulateResponse struct {
	Decision simulateDecision `json:"decision"`
	Horizon  model.Horizon    `json:"horizon"`
}

func (s *Service) handleSimulateSpend(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	spendDate, err := model.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; use YYYY-MM-DD")
		return
	}
	if req.AmountCents < 0 {
		writeError(w, http.StatusBadRequest, "amount_cents must be non-negative")
		return
	}
	horizonDays := req.HorizonDays
	if horizonDays < 1 {
		horizonDays = s.cfg.HorizonDays
	}
	bufferFloor := s.cfg.BufferFloorCents
	if req.BufferFloorCents != nil {
		bufferFloor = *req.BufferFloorCents
	}
	end := spendDate.AddDate(0, 0, horizonDays)

	proj, err := pipeline.Project(s.db, spendDate, end, forecast.ExpandOptions{})
	if err != nil {
		s.serveProjectionError(w, err)
		return
	}

	dec := forecast.SimulateSpend(proj.Series, spendDate, end, req.AmountCents, bufferFloor, s.cfg.TightThresholdCents)
	out := simulateDecision{
		Safe:               dec.Safe,
		BaselineMinCents:   dec.BaselineMinCents,
		NewMinBalanceCents: dec.NewMinBalanceCents,
		MaxSafeTodayCents:  dec.MaxSafeTodayCents,
	}
	for _, d := range dec.TightDates {
		out.TightDates = append(out.TightDates, d.Format(model.ISODate))
	}
	writeJSON(w, simulateResponse{Decision: out, Horizon: proj.Horizon})
}

type latestSnapshotResponse struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Snapshot    model.Snapshot `json:"snapshot"`
	Digest      model.Digest   `json:"digest"`
}

func (s *Service) handleLatestSnapshot(w http.ResponseWriter, _ *http.Request) {
	rec, err := s.db.LatestSnapshot()
	if err != nil {
		writeError(w, http.StatusNotFound, "no snapshot stored yet")
		return
	}
	writeJSON(w, latestSnapshotResponse{
		ID:          rec.ID,
		GeneratedAt: rec.GeneratedAt,
		Snapshot:    rec.Snapshot,
		Digest:      rec.Digest,
	})
}

func (s *Service) serveProjectionError(w http.ResponseWriter, err error) {
	s.log.WithError(err).Error("projection failed")
	writeError(w, http.StatusInternalServerError, "projection failed")
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()
	writeJSON(w, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Replay the latest stored digest so subscribers start with state.
	if rec, err := s.db.LatestSnapshot(); err == nil {
		writeSSE(w, Event{
			Type:       "snapshot_stored",
			Timestamp:  rec.GeneratedAt,
			SnapshotID: rec.ID,
			Digest:     rec.Digest,
		})
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func queryInt64(r *http.Request, key string, def int64) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
