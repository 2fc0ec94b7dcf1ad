// Package store provides a SQLite-backed journal of hook events and stats
// snapshots recorded by the claudit daemon.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/claudit/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrClosed is returned by Journal methods after Close.
var ErrClosed = errors.New("journal is closed")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// HookEvent is one hook delivery received from Claude Code.
type HookEvent struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	Tool       string    `json:"tool,omitempty"`
	Context    string    `json:"context,omitempty"`
	SentAt     string    `json:"sent_at,omitempty"` // as reported by the sender
	ReceivedAt time.Time `json:"received_at"`
	Excerpt    string    `json:"excerpt,omitempty"`
}

// Snapshot is a summary of one AggregatedStats value.
type Snapshot struct {
	ID              int64     `json:"id"`
	TakenAt         time.Time `json:"taken_at"`
	TotalTokens     int64     `json:"total_tokens"`
	TotalCost       float64   `json:"total_cost"`
	TotalMessages   int64     `json:"total_messages"`
	TodayTokens     int64     `json:"today_tokens"`
	TodayCost       float64   `json:"today_cost"`
	SessionTokens   int64     `json:"session_tokens"`
	SessionCost     float64   `json:"session_cost"`
	TokensPerMinute float64   `json:"tokens_per_minute"`
	CostPerHour     float64   `json:"cost_per_hour"`
}

// SnapshotOf summarizes stats.
func SnapshotOf(s model.AggregatedStats) Snapshot {
	return Snapshot{
		TakenAt:         s.LastUpdated,
		TotalTokens:     s.TotalTokens(),
		TotalCost:       s.TotalCost,
		TotalMessages:   s.TotalMessagesCount,
		TodayTokens:     s.TodayTokens(),
		TodayCost:       s.TodayCost,
		SessionTokens:   s.CurrentSessionTokens,
		SessionCost:     s.CurrentSessionCost,
		TokensPerMinute: s.TokensPerMinute,
		CostPerHour:     s.CostPerHour,
	}
}

// Journal provides SQLite-backed storage for hook events and snapshots.
type Journal struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// Open opens or creates the journal database at the given path.
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the journal database. Later calls return ErrClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	j.closed = true
	return j.db.Close()
}

// RecordHook stores e, assigning an ID and ReceivedAt when unset, and
// returns the stored event.
func (j *Journal) RecordHook(e HookEvent) (HookEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return e, ErrClosed
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}

	_, err := j.db.Exec(`INSERT INTO hook_events (id, event, tool, context, sent_at, received_at, excerpt)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Event, e.Tool, e.Context, e.SentAt, e.ReceivedAt.UTC().Format(timeLayout), e.Excerpt,
	)
	if err != nil {
		return e, fmt.Errorf("inserting hook event: %w", err)
	}
	return e, nil
}

// RecentHooks returns up to limit hook events, newest first.
func (j *Journal) RecentHooks(limit int) ([]HookEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}

	rows, err := j.db.Query(`SELECT id, event, COALESCE(tool, ''), COALESCE(context, ''),
		COALESCE(sent_at, ''), received_at, COALESCE(excerpt, '')
		FROM hook_events ORDER BY received_at DESC, id LIMIT ?`, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("querying hook events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []HookEvent
	for rows.Next() {
		var e HookEvent
		var received string
		if err := rows.Scan(&e.ID, &e.Event, &e.Tool, &e.Context, &e.SentAt, &received, &e.Excerpt); err != nil {
			return nil, err
		}
		e.ReceivedAt, _ = time.Parse(timeLayout, received)
		events = append(events, e)
	}
	return events, rows.Err()
}

// HookCount returns the number of journaled hook events.
func (j *Journal) HookCount() (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return 0, ErrClosed
	}

	var count int
	err := j.db.QueryRow("SELECT COUNT(*) FROM hook_events").Scan(&count)
	return count, err
}

// RecordSnapshot appends s and returns its row id.
func (j *Journal) RecordSnapshot(s Snapshot) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return 0, ErrClosed
	}

	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now()
	}

	res, err := j.db.Exec(`INSERT INTO stats_snapshots (
			taken_at, total_tokens, total_cost, total_messages, today_tokens, today_cost,
			session_tokens, session_cost, tokens_per_minute, cost_per_hour
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TakenAt.UTC().Format(timeLayout), s.TotalTokens, s.TotalCost, s.TotalMessages,
		s.TodayTokens, s.TodayCost, s.SessionTokens, s.SessionCost, s.TokensPerMinute, s.CostPerHour,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}
	return res.LastInsertId()
}

// Snapshots returns snapshots taken at or after since, oldest first, keeping
// at most the newest limit rows (0 = all).
func (j *Journal) Snapshots(since time.Time, limit int) ([]Snapshot, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}

	rows, err := j.db.Query(`SELECT * FROM (
			SELECT id, taken_at, total_tokens, total_cost, total_messages, today_tokens, today_cost,
				session_tokens, session_cost, tokens_per_minute, cost_per_hour
			FROM stats_snapshots WHERE taken_at >= ?
			ORDER BY taken_at DESC, id DESC LIMIT ?
		) ORDER BY taken_at ASC, id ASC`,
		since.UTC().Format(timeLayout), limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		var taken string
		if err := rows.Scan(&s.ID, &taken, &s.TotalTokens, &s.TotalCost, &s.TotalMessages,
			&s.TodayTokens, &s.TodayCost, &s.SessionTokens, &s.SessionCost,
			&s.TokensPerMinute, &s.CostPerHour); err != nil {
			return nil, err
		}
		s.TakenAt, _ = time.Parse(timeLayout, taken)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// Prune deletes hook events and snapshots older than before.
func (j *Journal) Prune(before time.Time) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return 0, ErrClosed
	}

	cutoff := before.UTC().Format(timeLayout)
	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for _, q := range []string{
		"DELETE FROM hook_events WHERE received_at < ?",
		"DELETE FROM stats_snapshots WHERE taken_at < ?",
	} {
		res, err := tx.Exec(q, cutoff)
		if err != nil {
			return 0, fmt.Errorf("pruning journal: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, tx.Commit()
}

// limitOrAll maps a non-positive limit to SQLite's "no limit".
func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
