package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/claudit/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	widths := LayoutRow(101, 4)
	sum := 0
	for _, w := range widths {
		sum += w
	}
	if sum != 101 || widths[0] != 26 || widths[3] != 25 {
		t.Fatalf("LayoutRow(101, 4) = %v", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 not nil")
	}
}

func TestCardRowPadsShorterCards(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)
	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("short card is not shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 44 {
			t.Errorf("line %d width = %d, want 44", i, w)
		}
		if i >= shortLines && !strings.Contains(line, "\x1b[") {
			t.Errorf("padding line %d has no styling: %q", i, line)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Today", Value: "1.2M", Detail: "$3.40"},
		{Label: "Block", Value: "300K"},
		{Label: "Burn", Value: "1.5K/min"},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1
		if got := lipgloss.Width(bar); got != want {
			t.Errorf("active=%d: bar width %d, want %d", active, got, want)
		}
	}
	if TabIdxByKey('c') != 1 || TabIdxByKey('z') != -1 {
		t.Error("TabIdxByKey mismatch")
	}
}

func TestBarChartHeight(t *testing.T) {
	out := BarChart([]float64{1, 2, 3, 4, 5}, []string{"a", "b", "c", "d", "e"}, theme.Active.Blue, 40, 10)
	// 10 bar rows, the x axis and the label row.
	if n := len(strings.Split(out, "\n")); n != 12 {
		t.Fatalf("BarChart has %d lines, want 12:\n%s", n, out)
	}
	if small := BarChart([]float64{1, 2}, nil, theme.Active.Blue, 10, 10); strings.Contains(small, "\n") {
		t.Fatal("narrow BarChart did not fall back to a sparkline")
	}
}

func TestFitBarsSamples(t *testing.T) {
	values := make([]float64, 100)
	labels := make([]string, 100)
	got, gotLabels := fitBars(values, labels, 29)
	if len(got) != 10 || len(gotLabels) != 10 {
		t.Fatalf("fitBars kept %d values, %d labels; want 10", len(got), len(gotLabels))
	}
}

func TestXAxisLabels(t *testing.T) {
	if got := xAxisLabels([]string{"a", "b", "c"}, 3, 8); got != "a  b  c" {
		t.Errorf("xAxisLabels = %q", got)
	}
	if got := xAxisLabels([]string{"Jan", "2", "3"}, 2, 6); got != "Jan 3" {
		t.Errorf("overlapping xAxisLabels = %q", got)
	}
}

func TestChartScale(t *testing.T) {
	if got := chartTickStep(100); got != 20 {
		t.Errorf("chartTickStep(100) = %v, want 20", got)
	}
	tests := map[float64]string{2000: "2k", 2500: "2.5k", 3e6: "3M", 5: "5", 0.5: "0.50"}
	for in, want := range tests {
		if got := formatChartLabel(in); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}
