// Package render provides the shared terminal report primitives used by the
// skill binaries: boxed summaries, gauges, grades, and number formatting.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().Bold(true)

	gaugeGood = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	gaugeWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	gaugeBad  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	gaugeDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Box renders a titled, bordered block around the given lines.
func Box(title string, lines ...string) string {
	body := titleStyle.Render(title)
	if len(lines) > 0 {
		body += "\n\n" + strings.Join(lines, "\n")
	}
	return boxStyle.Render(body)
}

// GaugeLevel selects the gauge fill color.
type GaugeLevel int

const (
	// GaugeGood renders the filled portion green.
	GaugeGood GaugeLevel = iota
	// GaugeWarn renders the filled portion yellow.
	GaugeWarn
	// GaugeBad renders the filled portion red.
	GaugeBad
)

// Gauge renders a fixed-width bar filled proportionally to value/max.
// Values outside [0, max] are clamped.
func Gauge(value, max float64, width int, level GaugeLevel) string {
	if width <= 0 {
		width = 40
	}
	frac := 0.0
	if max > 0 {
		frac = value / max
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))

	fillStyle := gaugeGood
	switch level {
	case GaugeWarn:
		fillStyle = gaugeWarn
	case GaugeBad:
		fillStyle = gaugeBad
	}

	bar := fillStyle.Render(strings.Repeat("█", filled)) +
		gaugeDim.Render(strings.Repeat("░", width-filled))
	return "[" + bar + "]"
}

// Grade maps a 0-100 score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 75:
		return "B"
	case score >= 60:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

// GradeStyled renders the letter grade for a score with a matching color.
func GradeStyled(score float64) string {
	grade := Grade(score)
	switch grade {
	case "A", "B":
		return gaugeGood.Render(grade)
	case "C":
		return gaugeWarn.Render(grade)
	default:
		return gaugeBad.Render(grade)
	}
}

// FormatTokens renders a token count in compact form (1.3M, 847K).
func FormatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatNumber adds comma separators to a number for readability
func FormatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result []byte
	for i, digit := range []byte(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, digit)
	}
	return string(result)
}

// FormatCost renders a dollar amount at the precision used across reports.
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.4f", usd)
}

// TermWidth returns the terminal width, or 80 when stdout is not a terminal.
func TermWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
