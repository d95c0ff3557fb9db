// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Maps pool health and Gateway impact levels onto colored badges

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func levelColors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	default:
		return BadgeNeutralBg, BadgeNeutralFg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := levelColors(level)

	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// StatusFromPercent returns the appropriate status level for a percentage value
func StatusFromPercent(percent, warnThreshold, critThreshold float64) StatusLevel {
	if percent >= critThreshold {
		return StatusCritical
	}
	if percent >= warnThreshold {
		return StatusWarning
	}
	return StatusOK
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := levelColors(level)
	style := lipgloss.NewStyle().Foreground(bg)

	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := levelColors(level)
	return fmt.Sprintf("%s %s", StatusIcon(level), lipgloss.NewStyle().Foreground(bg).Render(text))
}

// ImpactStatus maps a Gateway impact level to a status level
func ImpactStatus(level client.ImpactLevel) StatusLevel {
	switch level {
	case client.ImpactLow:
		return StatusOK
	case client.ImpactModerate:
		return StatusInfo
	case client.ImpactHigh:
		return StatusWarning
	case client.ImpactCritical:
		return StatusCritical
	default:
		return StatusNeutral
	}
}

// ImpactBadge renders the Gateway impact level as a badge
func ImpactBadge(level client.ImpactLevel) string {
	text := string(level)
	if text == "" {
		text = "--"
	}
	return Badge(text, ImpactStatus(level))
}

// PoolStatus grades a pool snapshot: critical when processes are unhealthy,
// warning when every process is busy
func PoolStatus(p client.PoolStats) StatusLevel {
	if !p.IsHealthy() {
		return StatusCritical
	}
	if p.TotalSize > 0 && p.Available == 0 {
		return StatusWarning
	}
	return StatusOK
}

// PoolBadge renders a pool snapshot's status as a badge
func PoolBadge(p client.PoolStats) string {
	switch PoolStatus(p) {
	case StatusCritical:
		return Badge("DEGRADED", StatusCritical)
	case StatusWarning:
		return Badge("BUSY", StatusWarning)
	default:
		return Badge("OK", StatusOK)
	}
}
