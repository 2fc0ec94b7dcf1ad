package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/claudit/internal/config"
	"github.com/theirongolddev/claudit/internal/model"
	"github.com/theirongolddev/claudit/internal/source"
	"github.com/theirongolddev/claudit/internal/store"
)

type fakeStats struct {
	mu        sync.Mutex
	stats     model.AggregatedStats
	refreshes int
	chartDays []int
	files     []source.DiscoveredFile
}

func (f *fakeStats) Get() model.AggregatedStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *fakeStats) Refresh() model.AggregatedStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.stats
}

func (f *fakeStats) Charts(days int) model.ChartData {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chartDays = append(f.chartDays, days)
	return model.ChartData{Daily: []model.DailyStats{{Date: "2025-06-01", InputTokens: 10}}}
}

func (f *fakeStats) Costs() config.CostModel { return config.DefaultCostModel() }

func (f *fakeStats) Files() []source.DiscoveredFile { return f.files }

func (f *fakeStats) set(messages, input int64, cost float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = model.NewAggregatedStats()
	f.stats.TotalMessagesCount = messages
	f.stats.TotalInputTokens = input
	f.stats.TotalCost = cost
	f.stats.LastUpdated = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func openJournal(t *testing.T) *store.Journal {
	t.Helper()
	j, err := store.Open(filepath.Join(t.TempDir(), "claudit.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func postHook(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func eventsOfType(s *Service, typ string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestDiffSnapshots(t *testing.T) {
	prev := store.Snapshot{
		TotalMessages: 100,
		TotalTokens:   1_000_000,
		TotalCost:     10.5,
		TodayTokens:   5_000,
		SessionTokens: 2_000,
	}
	curr := store.Snapshot{
		TotalMessages: 112,
		TotalTokens:   1_250_000,
		TotalCost:     13.1,
		TodayTokens:   7_500,
		SessionTokens: 2_000,
	}

	delta := diffSnapshots(prev, curr)
	if delta.Messages != 12 {
		t.Fatalf("Messages delta = %d, want 12", delta.Messages)
	}
	if delta.Tokens != 250_000 {
		t.Fatalf("Tokens delta = %d, want 250000", delta.Tokens)
	}
	if math.Abs(delta.CostUSD-2.6) > 1e-9 {
		t.Fatalf("Cost delta = %.2f, want 2.60", delta.CostUSD)
	}
	if delta.TodayTokens != 2_500 || delta.SessionTokens != 0 {
		t.Fatalf("delta = %+v", delta)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, &fakeStats{}, nil)

	s.publishEvent(Event{Type: EventHook})
	s.publishEvent(Event{Type: EventHook})
	s.publishEvent(Event{Type: EventHook})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
	if s.events[1].Timestamp.IsZero() {
		t.Fatal("publishEvent did not stamp the event")
	}
}

func TestObserve_PublishesOnlyChanges(t *testing.T) {
	stats := &fakeStats{}
	stats.set(1, 100, 0.5)
	j := openJournal(t)
	s := New(Config{}, stats, j)

	s.pollOnce()
	s.pollOnce()
	if got := eventsOfType(s, EventStats); len(got) != 1 || got[0].Delta != nil {
		t.Fatalf("after two identical polls: %+v", got)
	}

	stats.set(3, 400, 2.0)
	s.pollOnce()

	got := eventsOfType(s, EventStats)
	if len(got) != 2 {
		t.Fatalf("stats events = %d, want 2", len(got))
	}
	d := got[1].Delta
	if d == nil || d.Messages != 2 || d.Tokens != 300 || math.Abs(d.CostUSD-1.5) > 1e-9 {
		t.Fatalf("delta = %+v", d)
	}

	snaps, err := j.Snapshots(time.Time{}, 0)
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 2 || snaps[1].TotalTokens != 400 {
		t.Fatalf("journaled snapshots = %+v", snaps)
	}

	if st := s.snapshotStatus(); st.PollCount != 3 || st.Summary.TotalMessages != 3 {
		t.Fatalf("status = %+v", st)
	}
}

func TestHandleHook_FinishedWithExcerpt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	line := `{"type":"assistant","timestamp":"2025-06-01T10:00:00Z","message":{"role":"assistant","model":"m","content":[{"type":"text","text":"All tests pass now."}],"usage":{}}}`
	if err := os.WriteFile(path, []byte(line+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	stats := &fakeStats{files: []source.DiscoveredFile{{Path: path}}}
	j := openJournal(t)
	s := New(Config{NotificationsEnabled: true, ExcerptChars: 9}, stats, j)

	rr := postHook(t, s.Handler(), `{"event":"Stop","timestamp":"2025-06-01T10:00:01Z"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var resp map[string]bool
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || !resp["success"] {
		t.Fatalf("response = %s", rr.Body)
	}

	finished := eventsOfType(s, EventFinished)
	if len(finished) != 1 || finished[0].Message != "All tests..." {
		t.Fatalf("claude-finished events = %+v", finished)
	}
	if hooks := eventsOfType(s, EventHook); len(hooks) != 1 || hooks[0].Hook.Event != "Stop" {
		t.Fatalf("hook events = %+v", hooks)
	}

	journaled, err := j.RecentHooks(0)
	if err != nil || len(journaled) != 1 {
		t.Fatalf("RecentHooks = %+v, %v", journaled, err)
	}
	if journaled[0].Excerpt != "All tests..." || journaled[0].SentAt != "2025-06-01T10:00:01Z" {
		t.Fatalf("journaled hook = %+v", journaled[0])
	}
}

func TestHandleHook_Fallback(t *testing.T) {
	s := New(Config{NotificationsEnabled: true}, &fakeStats{}, nil)

	postHook(t, s.Handler(), `{"event":"SubagentStop"}`)

	finished := eventsOfType(s, EventFinished)
	if len(finished) != 1 || finished[0].Message != FinishedFallback {
		t.Fatalf("claude-finished events = %+v", finished)
	}
}

func TestHandleHook_NotificationsDisabled(t *testing.T) {
	s := New(Config{NotificationsEnabled: false}, &fakeStats{}, nil)

	postHook(t, s.Handler(), `{"event":"Stop"}`)

	finished := eventsOfType(s, EventFinished)
	if len(finished) != 1 || finished[0].Message != "" {
		t.Fatalf("claude-finished events = %+v", finished)
	}
}

func TestHandleHook_ToolEvent(t *testing.T) {
	s := New(Config{NotificationsEnabled: true}, &fakeStats{}, nil)

	rr := postHook(t, s.Handler(), `{"event":"PostToolUse","tool":"Bash"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := eventsOfType(s, EventFinished); len(got) != 0 {
		t.Fatalf("PostToolUse produced claude-finished: %+v", got)
	}
	hooks := eventsOfType(s, EventHook)
	if len(hooks) != 1 || hooks[0].Hook.Tool != "Bash" {
		t.Fatalf("hook events = %+v", hooks)
	}
	if st := s.snapshotStatus(); st.HooksReceived != 1 || st.LastHookAt.IsZero() {
		t.Fatalf("status = %+v", st)
	}
}

func TestHandleHook_Invalid(t *testing.T) {
	s := New(Config{}, &fakeStats{}, nil)

	for _, body := range []string{`not json`, `{}`, `{"event":""}`, `{"event":"Stop","context":{"a":1}}`} {
		if rr := postHook(t, s.Handler(), body); rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rr.Code)
		}
	}
	if n := len(eventsOfType(s, EventHook)); n != 0 {
		t.Fatalf("invalid hooks published %d events", n)
	}
}

func TestHandleHook_RateLimited(t *testing.T) {
	s := New(Config{RatePerSec: 1}, &fakeStats{}, nil)
	h := s.Handler()

	if rr := postHook(t, h, `{"event":"PostToolUse"}`); rr.Code != http.StatusOK {
		t.Fatalf("first hook status = %d", rr.Code)
	}
	rr := postHook(t, h, `{"event":"PostToolUse"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second hook status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("429 without Retry-After")
	}
}

func TestRoutes(t *testing.T) {
	stats := &fakeStats{}
	stats.set(2, 50, 0.25)
	s := New(Config{ChartDays: 7}, stats, nil)
	h := s.Handler()

	tests := []struct {
		method, path string
		wantCode     int
		wantBody     string
	}{
		{"GET", "/", 200, `"status":"ok"`},
		{"GET", "/healthz", 200, `"status":"ok"`},
		{"GET", "/v1/stats", 200, `"total_messages_count":2`},
		{"POST", "/v1/stats/refresh", 200, `"total_input_tokens":50`},
		{"GET", "/v1/charts", 200, `"date":"2025-06-01"`},
		{"GET", "/v1/charts?days=3", 200, `"daily"`},
		{"GET", "/v1/charts?days=-1", 400, `days`},
		{"GET", "/v1/charts?days=abc", 400, `days`},
		{"GET", "/v1/pricing", 200, `"family"`},
		{"GET", "/v1/status", 200, `"poll_count"`},
		{"GET", "/v1/events", 200, `[`},
		{"GET", "/hook", 405, ``},
		{"GET", "/nope", 404, ``},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != tt.wantCode {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rr.Code, tt.wantCode)
			continue
		}
		if !strings.Contains(rr.Body.String(), tt.wantBody) {
			t.Errorf("%s %s: body %s does not contain %s", tt.method, tt.path, rr.Body, tt.wantBody)
		}
	}

	if stats.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", stats.refreshes)
	}
	if len(stats.chartDays) != 2 || stats.chartDays[0] != 7 || stats.chartDays[1] != 3 {
		t.Errorf("chart days = %v, want [7 3]", stats.chartDays)
	}
	if got := eventsOfType(s, EventStats); len(got) != 1 {
		t.Errorf("refresh published %d stats events, want 1", len(got))
	}
}

func TestListen_SkipsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = busy.Close() }()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	s := New(Config{Port: busyPort}, &fakeStats{}, nil)
	ln, err := s.listen()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()

	got := ln.Addr().(*net.TCPAddr).Port
	if got <= busyPort || got > busyPort+10 {
		t.Fatalf("bound port %d, want one in (%d, %d]", got, busyPort, busyPort+10)
	}
}

func TestListen_NoRetries(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = busy.Close() }()

	s := New(Config{Port: busy.Addr().(*net.TCPAddr).Port, PortRetries: -1}, &fakeStats{}, nil)
	if ln, err := s.listen(); err == nil {
		_ = ln.Close()
		t.Fatal("listen succeeded on a busy port with retries disabled")
	}
}

func TestStream_SendsCurrentSnapshot(t *testing.T) {
	stats := &fakeStats{}
	stats.set(4, 80, 1)
	s := New(Config{}, stats, nil)
	s.pollOnce()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /v1/stream: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	first, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	if first != "event: stats\n" {
		t.Fatalf("first line = %q", first)
	}
	data, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	if !strings.Contains(data, `"total_messages":4`) {
		t.Fatalf("data line = %q", data)
	}
	cancel()
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	stats := &fakeStats{}
	stats.set(1, 10, 0.1)

	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := probe.Addr().(*net.TCPAddr).Port
	_ = probe.Close()

	s := New(Config{Port: port}, stats, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for s.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Addr() == "" {
		t.Fatal("Run did not bind")
	}

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
