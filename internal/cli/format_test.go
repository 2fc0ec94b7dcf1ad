package cli

import (
	"strings"
	"testing"
	"time"
)

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_234, "1.2K"},
		{1_234_567, "1.2M"},
		{1_234_567_890, "1.2B"},
		{-2_500, "-2.5K"},
	}
	for _, tt := range tests {
		if got := FormatTokens(tt.in); got != tt.want {
			t.Errorf("FormatTokens(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1.5, "$1.50"},
		{18, "$18.0"},
		{250.4, "$250"},
		{12_345.6, "$12,346"},
	}
	for _, tt := range tests {
		if got := FormatCost(tt.in); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-45 * time.Second), "45s ago"},
		{now.Add(-125 * time.Second), "2m ago"},
		{now.Add(-3725 * time.Second), "1h 2m ago"},
		{now.Add(-72 * time.Hour), "3d ago"},
		{now.Add(time.Minute), "0s ago"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.at, now); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestFormatMisc(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatNumber(-1000); got != "-1,000" {
		t.Errorf("FormatNumber(-1000) = %q", got)
	}
	if got := FormatPercent(42.25); got != "42.2%" && got != "42.3%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatDelta(3, 5); got != "-$2.00" {
		t.Errorf("FormatDelta = %q", got)
	}
	if got := FormatBurn(1499.6); got != "1.5K/min" {
		t.Errorf("FormatBurn = %q", got)
	}
	if got := FormatRate(0.3); got != "$0.30" {
		t.Errorf("FormatRate = %q", got)
	}
	if got := FormatDayOfWeek("2025-06-01"); got != "Sun" {
		t.Errorf("FormatDayOfWeek = %q", got)
	}
	if got := FormatDayOfWeek("June"); got != "???" {
		t.Errorf("FormatDayOfWeek(bad) = %q", got)
	}
	if got := Truncate("/home/me/project", 6); got != "/home…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
}

func TestRenderTable_Alignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Model", "Cost"},
		Rows: [][]string{
			{"opus", "$18.0"},
			SeparatorRow,
			{"sonnet-über", "$1.50"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	width := len([]rune(lines[0]))
	for i, l := range lines {
		if n := len([]rune(l)); n != width {
			t.Errorf("line %d has %d columns, want %d: %q", i, n, width, l)
		}
	}
	if !strings.Contains(out, "│ opus        │ $18.0 │") {
		t.Errorf("row not padded as expected:\n%s", out)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 1, 2}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Errorf("RenderSparkline(zeros) = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("RenderSparkline(nil) not empty")
	}
}
