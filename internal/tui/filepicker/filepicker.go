// ABOUTME: File picker for importing a local .py file or exporting the buffer to one
// ABOUTME: Offers recently used paths first, then a free-form path input

package filepicker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/styles"
)

// Mode selects whether the picker reads or names a file
type Mode int

const (
	// ModeOpen reads the chosen file and sends FileSelectedMsg
	ModeOpen Mode = iota
	// ModeSave only resolves a target path and sends SavePathMsg
	ModeSave
)

type state int

const (
	stateList state = iota
	stateInput
)

// FileSelectedMsg is sent when a file was chosen and read in ModeOpen
type FileSelectedMsg struct {
	Path string
	Data []byte
}

// SavePathMsg is sent with the export target in ModeSave
type SavePathMsg struct {
	Path string
}

// CancelledMsg is sent when the user backs out
type CancelledMsg struct{}

// FilePicker is the file selection component
type FilePicker struct {
	mode        Mode
	recentFiles []string
	suggested   string
	cursor      int
	state       state
	textInput   textinput.Model
	err         string
	width       int
	height      int
}

// New creates a FilePicker. suggested pre-fills the path input in ModeSave.
func New(mode Mode, recentFiles []string, suggested string) *FilePicker {
	ti := textinput.New()
	ti.Placeholder = "~/scripts/tag_report.py"
	ti.CharLimit = 256
	ti.Width = 60

	return &FilePicker{
		mode:        mode,
		recentFiles: recentFiles,
		suggested:   suggested,
		state:       stateList,
		textInput:   ti,
	}
}

// Init implements tea.Model
func (fp *FilePicker) Init() tea.Cmd {
	return nil
}

// SetSize records the area the picker may draw in
func (fp *FilePicker) SetSize(width, height int) {
	fp.width = width
	fp.height = height
	if width > 10 {
		fp.textInput.Width = min(60, width-6)
	}
}

// Update implements tea.Model
func (fp *FilePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		fp.SetSize(msg.Width, msg.Height)
		return fp, nil

	case tea.KeyMsg:
		fp.err = ""

		switch fp.state {
		case stateList:
			return fp.updateList(msg)
		case stateInput:
			return fp.updateInput(msg)
		}
	}

	if fp.state == stateInput {
		var cmd tea.Cmd
		fp.textInput, cmd = fp.textInput.Update(msg)
		return fp, cmd
	}
	return fp, nil
}

func (fp *FilePicker) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if fp.cursor > 0 {
			fp.cursor--
		}
	case "down", "j":
		if fp.cursor < len(fp.recentFiles) {
			fp.cursor++
		}
	case "enter":
		return fp.selectListItem()
	case "esc", "b":
		return fp, func() tea.Msg { return CancelledMsg{} }
	}

	return fp, nil
}

func (fp *FilePicker) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fp.state = stateList
		fp.textInput.SetValue("")
		fp.textInput.Blur()
		return fp, nil
	case "enter":
		path := strings.TrimSpace(fp.textInput.Value())
		if path == "" {
			fp.err = "Please enter a file path"
			return fp, nil
		}
		return fp.choose(path)
	}

	var cmd tea.Cmd
	fp.textInput, cmd = fp.textInput.Update(msg)
	return fp, cmd
}

func (fp *FilePicker) selectListItem() (tea.Model, tea.Cmd) {
	if fp.cursor < len(fp.recentFiles) {
		path := fp.recentFiles[fp.cursor]
		if fp.mode == ModeSave {
			// Never overwrite a recent file without showing the path first
			return fp.openInput(path)
		}
		return fp.choose(path)
	}
	return fp.openInput(fp.suggested)
}

func (fp *FilePicker) openInput(value string) (tea.Model, tea.Cmd) {
	fp.state = stateInput
	fp.textInput.SetValue(value)
	fp.textInput.CursorEnd()
	fp.textInput.Focus()
	return fp, textinput.Blink
}

func (fp *FilePicker) choose(path string) (tea.Model, tea.Cmd) {
	if fp.mode == ModeSave {
		return fp.savePath(path)
	}
	return fp.loadFile(path)
}

func (fp *FilePicker) loadFile(path string) (tea.Model, tea.Cmd) {
	expandedPath := expandPath(path)

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			fp.err = "File not found: " + path
		} else if os.IsPermission(err) {
			fp.err = "Cannot read file: permission denied"
		} else {
			fp.err = "Error reading file: " + err.Error()
		}
		return fp, nil
	}

	return fp, func() tea.Msg {
		return FileSelectedMsg{Path: expandedPath, Data: data}
	}
}

func (fp *FilePicker) savePath(path string) (tea.Model, tea.Cmd) {
	target := EnsurePyExtension(expandPath(path))
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		fp.err = "Is a directory: " + path
		return fp, nil
	}
	if dir := filepath.Dir(target); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			fp.err = "Directory not found: " + dir
			return fp, nil
		}
	}

	return fp, func() tea.Msg {
		return SavePathMsg{Path: target}
	}
}

// EnsurePyExtension appends .py unless path already ends with it
func EnsurePyExtension(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".py") {
		return path
	}
	return path + ".py"
}

// ScriptName derives a Gateway script name from a local file path
func ScriptName(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(base), ".py") {
		base = base[:len(base)-3]
	}
	return base
}

// expandPath expands ~ to the home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// SetError sets an error message to display
func (fp *FilePicker) SetError(msg string) {
	fp.err = msg
}

// InputActive reports whether the path input has focus
func (fp *FilePicker) InputActive() bool {
	return fp.state == stateInput
}

// View implements tea.Model
func (fp *FilePicker) View() string {
	if fp.state == stateInput {
		return fp.viewInput()
	}
	return fp.viewList()
}

func (fp *FilePicker) title() string {
	if fp.mode == ModeSave {
		return "Export buffer to file"
	}
	return "Import Python file"
}

func (fp *FilePicker) viewList() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fp.title()))
	b.WriteString("\n\n")

	if len(fp.recentFiles) > 0 {
		b.WriteString(styles.Help.Render("Recent files:"))
		b.WriteString("\n")
		for i, path := range fp.recentFiles {
			display := path
			if fp.width > 20 && len(display) > fp.width-10 {
				display = "..." + display[len(display)-(fp.width-13):]
			}
			b.WriteString(fp.row(i, display))
		}
		b.WriteString("\n")

		dividerWidth := min(40, fp.width-4)
		if dividerWidth < 1 {
			dividerWidth = 40
		}
		b.WriteString(styles.Help.Render(strings.Repeat("─", dividerWidth)))
		b.WriteString("\n")
	}

	b.WriteString(fp.row(len(fp.recentFiles), "Enter path..."))

	if fp.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.OutputError.Render("Error: " + fp.err))
	}

	return b.String()
}

func (fp *FilePicker) row(i int, text string) string {
	if i == fp.cursor {
		return "> " + styles.Selected.Render(text) + "\n"
	}
	return "  " + text + "\n"
}

func (fp *FilePicker) viewInput() string {
	var b strings.Builder

	label := "File to import"
	if fp.mode == ModeSave {
		label = "Export to"
	}
	b.WriteString(styles.Title.Render(label))
	b.WriteString("\n\n")
	b.WriteString(fp.textInput.View())

	if fp.err != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.OutputError.Render("Error: " + fp.err))
	}

	return b.String()
}
