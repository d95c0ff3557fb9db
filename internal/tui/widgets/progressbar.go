// ABOUTME: Progress bar with visual threshold zones
// ABOUTME: Shows green/amber/red regions for pool utilization displays

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width         int
	WarnThreshold float64 // Percentage where warning zone starts (default 80)
	CritThreshold float64 // Percentage where critical zone starts (default 95)
	OKColor       lipgloss.Color
	WarnColor     lipgloss.Color
	CritColor     lipgloss.Color
	EmptyColor    lipgloss.Color
}

// DefaultProgressBarConfig returns sensible defaults
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:         20,
		WarnThreshold: 80,
		CritThreshold: 95,
		OKColor:       lipgloss.Color("#10B981"), // Green
		WarnColor:     lipgloss.Color("#F59E0B"), // Amber
		CritColor:     lipgloss.Color("#EF4444"), // Red
		EmptyColor:    lipgloss.Color("#374151"), // Dark gray
	}
}

func clampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// ProgressBar renders a progress bar whose filled cells take the color of
// the zone they fall in
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	percent = clampPercent(percent)

	filled := int(percent / 100.0 * float64(config.Width))
	warnPos := int(config.WarnThreshold / 100.0 * float64(config.Width))
	critPos := int(config.CritThreshold / 100.0 * float64(config.Width))

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < config.Width; i++ {
		if i >= filled {
			bar.WriteString(lipgloss.NewStyle().Foreground(config.EmptyColor).Render("░"))
			continue
		}
		color := config.OKColor
		if i >= critPos {
			color = config.CritColor
		} else if i >= warnPos {
			color = config.WarnColor
		}
		bar.WriteString(lipgloss.NewStyle().Foreground(color).Render("█"))
	}
	bar.WriteString("]")
	return bar.String()
}

// ProgressBarWithLabel renders a progress bar followed by its percentage
func ProgressBarWithLabel(percent float64, config ProgressBarConfig) string {
	level := StatusFromPercent(percent, config.WarnThreshold, config.CritThreshold)
	color := config.OKColor
	switch level {
	case StatusCritical:
		color = config.CritColor
	case StatusWarning:
		color = config.WarnColor
	}

	label := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%3.0f%%", clampPercent(percent)))
	return fmt.Sprintf("%s %s", ProgressBar(percent, config), label)
}

// CompactProgressBar renders a minimal progress bar for tight spaces
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	percent = clampPercent(percent)

	filled := int(percent / 100.0 * float64(width))

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", width-filled))
}
