// ABOUTME: Rendering for the IDE: editor layout, header, status line and footer
// ABOUTME: Every frame line is sized to the terminal width, clamped to a usable minimum

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/icons"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/styles"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/widgets"
)

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenBrowser:
		content = a.viewBrowser()
	case ScreenSave:
		content = a.viewSaveDialog()
	case ScreenFiles:
		content = a.viewPicker()
	default:
		content = a.viewEditor()
	}
	return a.wrapWithFrame(content)
}

// viewEditor renders the editor and output column with the Gateway panel beside it
func (a *App) viewEditor() string {
	bodyH := a.bodyHeight()
	leftW := a.editorWidth()
	editorH := bodyH * 3 / 5

	editorPane := styles.ActivePanel.Width(leftW - 2).Height(editorH - 2).Render(a.editor.View())

	output := a.output.View()
	if a.outputText == "" {
		output = styles.OutputHeader.Render("Output appears here. ctrl+e evaluates the current line.")
	}
	outputPane := styles.Panel.Width(leftW - 2).Height(bodyH - editorH - 2).Render(output)

	left := lipgloss.JoinVertical(lipgloss.Left, editorPane, outputPane)
	if !a.showSidePanel() {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", a.panel.View())
}

// viewBrowser renders the script browser screen
func (a *App) viewBrowser() string {
	if a.browser == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.frameWidth() - 2).Height(a.bodyHeight() - 2).Render(a.browser.View())
}

// viewSaveDialog renders the save dialog screen
func (a *App) viewSaveDialog() string {
	if a.saveDialog == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.frameWidth() - 2).Height(a.bodyHeight() - 2).Render(a.saveDialog.View())
}

// viewPicker renders the import/export file picker
func (a *App) viewPicker() string {
	if a.picker == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.frameWidth() - 2).Height(a.bodyHeight() - 2).Render(a.picker.View())
}

// renderHeader creates the header bar with app branding and the open script
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	iconStyle := lipgloss.NewStyle().Foreground(styles.Python)
	leftText := fmt.Sprintf(" %s %s ", iconStyle.Render(icons.App.String()), titleStyle.Render("Python 3 IDE"))

	docTitle := contextStyle.Render(a.doc.Title())
	if a.dirty() {
		docTitle += styles.Dirty.Render(" " + icons.Dirty.String())
	}
	rightText := " " + docTitle + " " + borderStyle.Render("@") + " " + a.client.GatewayURL() + " "
	if lipgloss.Width(leftText)+lipgloss.Width(rightText)+4 > width {
		rightText = " " + docTitle + " "
	}

	// -4 for ╭─ and ─╮
	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText))

	return borderStyle.Render("╭─") + leftText +
		borderStyle.Render(strings.Repeat("─", fillWidth)) +
		rightText + borderStyle.Render("─╮")
}

// renderStatusLine shows the last status message on the left and the Gateway
// summary with the dirty flag on the right
func (a *App) renderStatusLine() string {
	width := a.frameWidth()

	var left string
	if a.tracker.Running() {
		left = a.spinner.View() + " " + styles.StatusInfo.Render(a.status.text)
	} else {
		left = widgets.StatusText(a.status.text, a.status.level)
	}

	right := a.panel.StatusSummary()
	if a.dirty() {
		right += "  " + styles.Dirty.Render(icons.Dirty.String()+" modified")
	}

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = max(1, width-2-lipgloss.Width(left))
	}

	line := " " + left + strings.Repeat(" ", gap) + right + " "
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// footerShortcuts lists the keyboard shortcuts for the current screen
func (a *App) footerShortcuts() []string {
	switch a.screen {
	case ScreenBrowser:
		if a.browser != nil && a.browser.Confirming() {
			return []string{"←→ Choose", "Enter Confirm", "Esc Cancel"}
		}
		return []string{"↑↓ Navigate", "Enter Open", "d Delete", "1-5 Recent", "Esc Back"}
	case ScreenSave:
		return []string{"Enter Next", "Shift+Tab Back", "Esc Cancel"}
	case ScreenFiles:
		if a.picker != nil && a.picker.InputActive() {
			return []string{"Enter Confirm", "Esc Back"}
		}
		return []string{"↑↓ Navigate", "Enter Select", "Esc Cancel"}
	default:
		return []string{"^R Run", "^E Eval", "Esc Stop", "^S Save", "^O Open", "^N New", "^L Import", "^X Export", "^P Pool", "^C Quit"}
	}
}

// renderFooter creates the footer with keyboard shortcuts and refresh status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.footerShortcuts()

	// Right side status (last pool refresh)
	rightPlainText := ""
	if updated := a.panel.LastUpdate(); !updated.IsZero() {
		rightPlainText = icons.Refresh.String() + " Updated " + formatTimeSince(updated) + " "
	}

	plainLeft := func() string { return " " + strings.Join(shortcuts, "  ") + " " }

	// Drop the refresh time, then trailing shortcuts, until the footer fits
	if lipgloss.Width(plainLeft())+lipgloss.Width(rightPlainText)+4 > width {
		rightPlainText = ""
	}
	for len(shortcuts) > 1 && lipgloss.Width(plainLeft())+4 > width {
		shortcuts = shortcuts[:len(shortcuts)-1]
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}
	leftText := " " + strings.Join(styledShortcuts, "  ") + " "

	rightText := ""
	if rightPlainText != "" {
		rightText = statusStyle.Render(rightPlainText)
	}

	// -4 for ╰─ and ─╯
	fillWidth := max(0, width-4-lipgloss.Width(plainLeft())-lipgloss.Width(rightPlainText))

	return borderStyle.Render("╰─") + leftText +
		borderStyle.Render(strings.Repeat("─", fillWidth)) +
		rightText + borderStyle.Render("─╯")
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header, status line and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderStatusLine())
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}
