// ABOUTME: Compact metric block widget for the Gateway panel
// ABOUTME: Combines icon, title, value and a bar or sparkline in a bordered box

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       28,
		BorderColor: lipgloss.Color("#6B7280"), // Muted gray
		TitleColor:  lipgloss.Color("#7C3AED"), // Purple
		ValueColor:  lipgloss.Color("#F9FAFB"), // Light
	}
}

// box draws a bordered block with the title set into the top border.
// Lines are padded by display width so styled content lines up.
func box(icon icons.Icon, title string, lines []string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = DefaultMetricBlockConfig().Width
	}
	inner := config.Width - 4
	border := lipgloss.NewStyle().Foreground(config.BorderColor)

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), inner)
	fill := max(0, config.Width-lipgloss.Width(titleStr)-5)

	out := []string{
		border.Render("┌─ ") + lipgloss.NewStyle().Foreground(config.TitleColor).Render(titleStr) +
			border.Render(" "+strings.Repeat("─", fill)+"┐"),
	}
	for _, l := range lines {
		pad := max(0, inner-lipgloss.Width(l))
		out = append(out, border.Render("│ ")+l+strings.Repeat(" ", pad)+border.Render(" │"))
	}
	out = append(out, border.Render("└"+strings.Repeat("─", config.Width-2)+"┘"))
	return strings.Join(out, "\n")
}

// MetricBlock renders a value with a muted subtitle
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	inner := config.Width - 4
	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return box(icon, title, []string{
		valueStyle.Render(truncate(value, inner)),
		subtitleStyle.Render(truncate(subtitle, inner)),
	}, config)
}

// MetricBlockWithBar renders a percentage with a utilization bar
func MetricBlockWithBar(icon icons.Icon, title string, percent float64, details string, config MetricBlockConfig) string {
	inner := config.Width - 4

	level := StatusFromPercent(percent, 80, 95)
	color, _ := levelColors(level)
	valueLine := fmt.Sprintf("%s %s",
		lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%3.0f%%", clampPercent(percent))),
		StatusIcon(level))

	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return box(icon, title, []string{
		valueLine,
		CompactProgressBar(percent, inner, color),
		detailStyle.Render(truncate(details, inner)),
	}, config)
}

// MetricBlockWithSparkline renders a value followed by a trend sparkline
func MetricBlockWithSparkline(icon icons.Icon, title, value string, sparkData []float64, subtitle string, config MetricBlockConfig) string {
	inner := config.Width - 4
	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	sparkWidth := max(0, inner-len(value)-2)
	if sparkWidth > 16 {
		sparkWidth = 16
	}
	line := valueStyle.Render(value)
	if spark := Sparkline(sparkData, sparkWidth, lipgloss.Color("#7C3AED")); spark != "" {
		line += "  " + spark
	}

	return box(icon, title, []string{
		line,
		subtitleStyle.Render(truncate(subtitle, inner)),
	}, config)
}

// truncate shortens a string to maxLen runes with ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
