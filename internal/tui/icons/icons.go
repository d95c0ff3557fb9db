// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

// EnvNerdFonts forces Nerd Font icons on ("1", "true") or off (anything else)
const EnvNerdFonts = "PY3IDE_NERD_FONTS"

// nerdFontPrograms are TERM_PROGRAM values of terminals usually set up with a Nerd Font
var nerdFontPrograms = []string{"iTerm.app", "WezTerm", "ghostty", "kitty", "alacritty"}

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// Detect decides whether to use Nerd Font glyphs from environment lookups.
// The explicit setting wins; the Linux console and dumb terminals never get them.
func Detect(getenv func(string) string) bool {
	for _, key := range []string{EnvNerdFonts, "NERD_FONTS"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v == "1" || strings.EqualFold(v, "true")
		}
	}

	term := strings.ToLower(getenv("TERM"))
	if term == "" || term == "dumb" || term == "linux" {
		return false
	}

	program := strings.ToLower(getenv("TERM_PROGRAM"))
	for _, name := range nerdFontPrograms {
		name = strings.ToLower(name)
		if program == name || strings.Contains(term, name) {
			return true
		}
	}
	return false
}

// HasNerdFonts reports whether Nerd Font glyphs are used, detected once per process
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = Detect(os.Getenv)
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Gateway resources
	Memory = Icon{"󰍛", "◆"} // nf-md-memory
	CPU    = Icon{"", "●"} // nf-oct-cpu
	Server = Icon{"󰒋", "▣"} // nf-md-server
	Pool   = Icon{"󱃾", "⬡"} // nf-md-hexagon_multiple

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Charts
	Chart = Icon{"󰄭", "▁"} // nf-md-chart_line
	Gauge = Icon{"󰓅", "◐"} // nf-md-gauge

	// Scripts
	Folder     = Icon{"", "▸"} // nf-fa-folder
	FolderOpen = Icon{"", "▾"} // nf-fa-folder_open
	Script     = Icon{"", "·"} // nf-seti-python
	Recent     = Icon{"󰋚", "↺"} // nf-md-history

	// Actions
	Run     = Icon{"", "▶"} // nf-fa-play
	Save    = Icon{"󰆓", "⤓"} // nf-md-content_save
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh

	// Application
	App   = Icon{"", "◈"} // nf-seti-python
	Dirty = Icon{"", "●"} // nf-oct-dot_fill
)
