package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/theirongolddev/claudit/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	peak := lo.Max(values)
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[max(0, min(idx, len(sparkBlocks)-1))])
	}

	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// axisScale maps values onto chart rows with round tick values.
type axisScale struct {
	step        float64
	ceiling     float64
	intervals   int
	rowsPerTick int
}

func newAxisScale(peak float64, height int) axisScale {
	if peak <= 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	maxIntervals := max(height/2, 2)
	for int(math.Ceil(peak/step)) > maxIntervals {
		step *= 2
	}
	ceiling := math.Ceil(peak/step) * step
	intervals := max(int(math.Round(ceiling/step)), 1)
	return axisScale{
		step:        step,
		ceiling:     ceiling,
		intervals:   intervals,
		rowsPerTick: max(height/intervals, 2),
	}
}

func (s axisScale) rows() int { return s.rowsPerTick * s.intervals }

// tickLabel returns the y-axis label for row, or "" between ticks.
func (s axisScale) tickLabel(row int) string {
	if row%s.rowsPerTick != 0 {
		return ""
	}
	return formatChartLabel(s.step * float64(row/s.rowsPerTick))
}

// fitBars samples values (and labels) down so every bar gets at least two
// columns plus a gap within width.
func fitBars(values []float64, labels []string, width int) ([]float64, []string) {
	n := len(values)
	fit := max((width+1)/3, 2)
	if n <= fit {
		return values, labels
	}
	sampled := make([]float64, fit)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, fit)
	}
	for i := range sampled {
		src := i * (n - 1) / (fit - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels
}

// BarChart renders vertical bars with a y axis of round tick values. Labels,
// when one per value, are printed under the bars and thinned to fit.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}

	t := theme.Active
	scale := newAxisScale(lo.Max(values), height)
	yLabelW := max(len(formatChartLabel(scale.ceiling))+1, 4)
	chartW := max(width-yLabelW-1, 5)

	values, labels = fitBars(values, labels, chartW)
	n := len(values)
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := min(max((chartW-(n-1)*gap)/n, 2), 6)
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	rows := scale.rows()
	for row := rows; row >= 1; row-- {
		top := scale.ceiling * float64(row) / float64(rows)
		bottom := scale.ceiling * float64(row-1) / float64(rows)

		// Brighter toward the top of the chart.
		barColor := t.Accent
		switch pct := float64(row) / float64(rows); {
		case pct > 0.8:
			barColor = t.AccentBright
		case pct > 0.5:
			barColor = color
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, scale.tickLabel(row))))
		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * float64(len(sparkBlocks)))
				idx = max(0, min(idx, len(sparkBlocks)-1))
				b.WriteString(barStyle.Render(strings.Repeat(string(sparkBlocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(xAxisLabels(labels, barW+gap, axisLen)))
	}

	return b.String()
}

// xAxisLabels places labels at stride columns apart, skipping any that
// would overlap the previous one. The last label is always attempted.
func xAxisLabels(labels []string, stride, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	place := func(i int) {
		lbl := []rune(labels[i])
		pos := i * stride
		if pos+len(lbl) > axisLen {
			pos = axisLen - len(lbl)
		}
		if pos <= lastEnd || pos < 0 {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	for i := range len(labels) - 1 {
		place(i)
	}
	place(len(labels) - 1)
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))

	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	for _, u := range []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "k"}} {
		if v >= u.div {
			if v == math.Trunc(v/u.div)*u.div {
				return fmt.Sprintf("%.0f%s", v/u.div, u.suffix)
			}
			return fmt.Sprintf("%.1f%s", v/u.div, u.suffix)
		}
	}
	if v >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
