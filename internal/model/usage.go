// Package model defines domain types for claudit usage records and statistics.
package model

import "time"

// UsageRecord is one billed assistant response read from a session log.
type UsageRecord struct {
	Timestamp           time.Time
	SessionID           string
	Model               string
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	UniqueID            string // dedup key; empty ids are never deduplicated
	Project             string
}

// TotalTokens returns input plus output tokens. Cache tokens are tracked
// separately and do not count toward session or burn-rate volume.
func (r UsageRecord) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// BlockKey identifies a 5-hour UTC session block.
type BlockKey struct {
	Year  int
	Month time.Month
	Day   int
	Block int // hour / 5, truncated
}

// BlockKeyOf returns the session block containing t.
func BlockKeyOf(t time.Time) BlockKey {
	t = t.UTC()
	return BlockKey{
		Year:  t.Year(),
		Month: t.Month(),
		Day:   t.Day(),
		Block: t.Hour() / 5,
	}
}
