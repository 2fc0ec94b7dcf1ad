// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatTokens formats a token count with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M", 1234567890 -> "1.2B"
func FormatTokens(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatCost formats a USD cost value.
func FormatCost(cost float64) string {
	if cost >= 1000 {
		return "$" + FormatNumber(int64(math.Round(cost)))
	}
	if cost >= 100 {
		return fmt.Sprintf("$%.0f", cost)
	}
	if cost >= 10 {
		return fmt.Sprintf("$%.1f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

// FormatRate formats a per-mtok price, e.g. 3 -> "$3.00", 0.3 -> "$0.30".
func FormatRate(perMTok float64) string {
	return fmt.Sprintf("$%.2f", perMTok)
}

// FormatBurn formats a burn rate as tokens per minute.
func FormatBurn(tokensPerMinute float64) string {
	return FormatTokens(int64(math.Round(tokensPerMinute))) + "/min"
}

// FormatAge formats how long ago t was relative to now.
// e.g., 3725s -> "1h 2m ago", 125s -> "2m ago", 45s -> "45s ago"
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	secs := int64(now.Sub(t).Seconds())
	if secs < 0 {
		secs = 0
	}
	if secs >= 48*3600 {
		return fmt.Sprintf("%dd ago", secs/86400)
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm ago", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm ago", mins)
	default:
		return fmt.Sprintf("%ds ago", secs)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 percentage.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats the cost change from previous to current with a sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatCost(delta)
	}
	return "-" + FormatCost(-delta)
}

// FormatDayOfWeek returns the 3-letter weekday of a YYYY-MM-DD date.
func FormatDayOfWeek(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "???"
	}
	return t.Weekday().String()[:3]
}

// Truncate cuts s to max runes, ending with "…" when shortened.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
