// Package daemon provides the long-running hook receiver and stats API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
	"github.com/theirongolddev/claudit/internal/source"
	"github.com/theirongolddev/claudit/internal/store"
)

// Event types published on /v1/events and /v1/stream.
const (
	EventStats    = "stats"
	EventHook     = "hook"
	EventFinished = "claude-finished"
)

// FinishedFallback is the claude-finished message when no response text is found.
const FinishedFallback = "Claude has finished responding"

// maxHookBody bounds the size of a hook request body.
const maxHookBody = 64 << 10

// StatsSource serves aggregated stats. *pipeline.StatsCache implements it.
type StatsSource interface {
	Get() model.AggregatedStats
	Refresh() model.AggregatedStats
	Charts(days int) model.ChartData
	Costs() config.CostModel
	Files() []source.DiscoveredFile
}

// Journal records hook events and stats snapshots. *store.Journal implements it.
type Journal interface {
	RecordHook(store.HookEvent) (store.HookEvent, error)
	RecordSnapshot(store.Snapshot) (int64, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Host                 string // default 127.0.0.1
	Port                 int    // first port tried, default 3456
	PortRetries          int    // successive ports tried after Port when busy, default 10, negative for none
	Interval             time.Duration
	EventsBuffer         int
	NotificationsEnabled bool
	ExcerptChars         int
	RatePerSec           int // per-client /hook limit, default 20
	ChartDays            int // /v1/charts default window
	WatchDir             string
	WatchDebounce        time.Duration
	OnListen             func(addr string) // called once the port is bound
}

// HookEvent is the JSON body Claude Code hooks post to /hook.
type HookEvent struct {
	Event     string `json:"event"`
	Tool      string `json:"tool,omitempty"`
	Context   string `json:"context,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Messages      int64   `json:"messages"`
	Tokens        int64   `json:"tokens"`
	CostUSD       float64 `json:"cost_usd"`
	TodayTokens   int64   `json:"today_tokens"`
	SessionTokens int64   `json:"session_tokens"`
}

func (d Delta) isZero() bool {
	return d.Messages == 0 &&
		d.Tokens == 0 &&
		d.CostUSD == 0 &&
		d.TodayTokens == 0 &&
		d.SessionTokens == 0
}

// Event is published when stats change or a hook arrives.
type Event struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Hook      *HookEvent      `json:"hook,omitempty"`
	Message   string          `json:"message,omitempty"`
	Snapshot  *store.Snapshot `json:"snapshot,omitempty"`
	Delta     *Delta          `json:"delta,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time      `json:"started_at"`
	Addr            string         `json:"addr"`
	LastPollAt      time.Time      `json:"last_poll_at"`
	PollIntervalSec int            `json:"poll_interval_sec"`
	PollCount       int64          `json:"poll_count"`
	HooksReceived   int64          `json:"hooks_received"`
	LastHookAt      time.Time      `json:"last_hook_at"`
	Watching        bool           `json:"watching"`
	Summary         store.Snapshot `json:"summary"`
	LastError       string         `json:"last_error,omitempty"`
	EventCount      int            `json:"event_count"`
	SubscriberCount int            `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	stats   StatsSource
	journal Journal
	limiter *clientLimiter
	now     func() time.Time

	mu            sync.RWMutex
	addr          string
	startedAt     time.Time
	lastPollAt    time.Time
	pollCount     int64
	hooksReceived int64
	lastHookAt    time.Time
	watching      bool
	lastError     string
	hasSnapshot   bool
	snapshot      store.Snapshot
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service. journal may be nil, in which case nothing is
// persisted.
func New(cfg Config, stats StatsSource, journal Journal) *Service {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port <= 0 {
		cfg.Port = 3456
	}
	if cfg.PortRetries < 0 {
		cfg.PortRetries = 0
	} else if cfg.PortRetries == 0 {
		cfg.PortRetries = 10
	}
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.RatePerSec < 1 {
		cfg.RatePerSec = 20
	}
	if cfg.ChartDays <= 0 {
		cfg.ChartDays = 30
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 2 * time.Second
	}

	return &Service{
		cfg:       cfg,
		stats:     stats,
		journal:   journal,
		limiter:   newClientLimiter(cfg.RatePerSec),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Addr returns the address the service is listening on, or "" before Run binds.
func (s *Service) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodPost, "/hook", s.limiter.Wrap(s.handleHook))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/stats", s.handleStats)
		r.Post("/stats/refresh", s.handleRefresh)
		r.Get("/charts", s.handleCharts)
		r.Get("/pricing", s.handlePricing)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Run binds the first free port, serves HTTP and polls stats until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()
	log.Printf("claudit: listening on http://%s", ln.Addr())
	if s.cfg.OnListen != nil {
		s.cfg.OnListen(ln.Addr().String())
	}

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var changes <-chan struct{}
	if s.cfg.WatchDir != "" {
		w, err := newWatcher(s.cfg.WatchDir, s.cfg.WatchDebounce)
		if err != nil {
			log.Printf("claudit: watch disabled: %v", err)
		} else {
			go w.run(ctx)
			changes = w.changes
			s.mu.Lock()
			s.watching = true
			s.mu.Unlock()
		}
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case <-changes:
			s.observe(s.stats.Refresh())
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// listen binds Host:Port, moving to the next port while the current one is
// busy, up to PortRetries times.
func (s *Service) listen() (net.Listener, error) {
	var lastErr error
	for port := s.cfg.Port; port <= s.cfg.Port+s.cfg.PortRetries; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(port)))
		if err == nil {
			return ln, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free port in %d-%d: %w", s.cfg.Port, s.cfg.Port+s.cfg.PortRetries, lastErr)
}

func (s *Service) pollOnce() {
	stats := s.stats.Get()
	s.mu.Lock()
	s.lastPollAt = s.now()
	s.pollCount++
	s.mu.Unlock()
	s.observe(stats)
}

// observe records stats as the current snapshot, publishing a stats event
// and journaling the snapshot when the totals moved.
func (s *Service) observe(stats model.AggregatedStats) {
	snap := store.SnapshotOf(stats)
	if snap.TakenAt.IsZero() {
		snap.TakenAt = s.now()
	}

	s.mu.Lock()
	prev, prevExists := s.snapshot, s.hasSnapshot
	s.snapshot = snap
	s.hasSnapshot = true
	s.mu.Unlock()

	var delta Delta
	if prevExists {
		delta = diffSnapshots(prev, snap)
		if delta.isZero() {
			return
		}
	}

	ev := Event{Type: EventStats, Snapshot: &snap}
	if prevExists {
		ev.Delta = &delta
	}
	s.publishEvent(ev)

	if s.journal != nil {
		if _, err := s.journal.RecordSnapshot(snap); err != nil {
			s.setError(err)
		}
	}
}

func diffSnapshots(prev, curr store.Snapshot) Delta {
	return Delta{
		Messages:      curr.TotalMessages - prev.TotalMessages,
		Tokens:        curr.TotalTokens - prev.TotalTokens,
		CostUSD:       curr.TotalCost - prev.TotalCost,
		TodayTokens:   curr.TodayTokens - prev.TodayTokens,
		SessionTokens: curr.SessionTokens - prev.SessionTokens,
	}
}

// publishEvent assigns the next ID and timestamp, appends ev to the ring
// buffer and offers it to every subscriber without blocking.
func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	ev.ID = s.nextEventID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}

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
}

func (s *Service) setError(err error) {
	log.Printf("claudit: %v", err)
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
}

// finishedMessage returns the latest response excerpt, or the fallback text.
func (s *Service) finishedMessage() string {
	if text, ok := source.LatestResponse(s.stats.Files(), source.DefaultLatestFiles, s.cfg.ExcerptChars); ok {
		return text
	}
	return FinishedFallback
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Addr:            s.addr,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		HooksReceived:   s.hooksReceived,
		LastHookAt:      s.lastHookAt,
		Watching:        s.watching,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleHook(w http.ResponseWriter, r *http.Request) {
	var ev HookEvent
	if err := json.NewDecoder(io.LimitReader(r.Body, maxHookBody)).Decode(&ev); err != nil || ev.Event == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid hook event",
		})
		return
	}

	now := s.now()
	finished := ev.Event == "Stop" || ev.Event == "SubagentStop"

	var message string
	if finished && s.cfg.NotificationsEnabled {
		message = s.finishedMessage()
		log.Printf("claudit: Claude Code: %s", message)
	}

	if s.journal != nil {
		_, err := s.journal.RecordHook(store.HookEvent{
			Event:      ev.Event,
			Tool:       ev.Tool,
			Context:    ev.Context,
			SentAt:     ev.Timestamp,
			ReceivedAt: now,
			Excerpt:    message,
		})
		if err != nil {
			s.setError(err)
		}
	}

	s.mu.Lock()
	s.hooksReceived++
	s.lastHookAt = now
	s.mu.Unlock()

	s.publishEvent(Event{Type: EventHook, Timestamp: now, Hook: &ev})
	if finished {
		s.publishEvent(Event{Type: EventFinished, Timestamp: now, Hook: &ev, Message: message})
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Get())
}

func (s *Service) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	stats := s.stats.Refresh()
	s.observe(stats)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Service) handleCharts(w http.ResponseWriter, r *http.Request) {
	days := s.cfg.ChartDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "days must be a non-negative integer"})
			return
		}
		days = n
	}
	writeJSON(w, http.StatusOK, s.stats.Charts(days))
}

func (s *Service) handlePricing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Costs().PricingTable())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
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

	// Send current snapshot immediately.
	summary := s.snapshotStatus().Summary
	writeSSE(w, Event{
		Type:      EventStats,
		Timestamp: s.now(),
		Snapshot:  &summary,
	})
	flusher.Flush()

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

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
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
