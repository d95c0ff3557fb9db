// ABOUTME: Root bubbletea model for the terminal IDE
// ABOUTME: Manages screen state and routes keyboard input to the editor and child components

package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/config"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/scripttree"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/browser"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/editor"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/filepicker"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/gatewaypanel"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/icons"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/recentscripts"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/savedialog"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/styles"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/widgets"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/worker"
	"golang.org/x/sync/singleflight"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenEditor Screen = iota
	ScreenBrowser
	ScreenSave
	ScreenFiles
)

// Layout constants
const (
	minTerminalWidth   = 80 // Minimum frame width
	minTerminalHeight  = 16
	panelPadding       = 4  // Horizontal space taken by panel borders and padding
	gatewayPanelWidth  = 34 // Width of the right-hand Gateway panel
	sidePanelMinWidth  = 100
	frameOverhead      = 3 // Header, status line and footer
	maxOutputBytes     = 64 * 1024
	defaultPoolRefresh = 5 * time.Second
)

// App is the root model for the IDE
type App struct {
	client  *client.Client
	author  string
	refresh time.Duration
	fetches singleflight.Group // collapses overlapping Gateway refreshes

	screen Screen
	width  int
	height int

	// Editor screen
	editor     textarea.Model
	output     viewport.Model
	outputText string
	spinner    spinner.Model
	tracker    worker.Tracker
	runMode    worker.Mode
	runStarted time.Time
	doc        *editor.Document
	panel      *gatewaypanel.Panel

	// Child models
	browser    *browser.Browser
	saveDialog *savedialog.Dialog
	picker     *filepicker.FilePicker

	scripts        []client.ScriptMetadata // last listing, for folder suggestions
	recent         *recentscripts.RecentScripts
	recentFiles    *recentscripts.RecentScripts // local .py paths used for import and export
	pendingDiscard string // key pressed once while the buffer had unsaved changes
	status         statusLine
}

// statusLine is the message shown above the footer
type statusLine struct {
	text  string
	level widgets.StatusLevel
}

// New creates the IDE for a Gateway client
func New(apiClient *client.Client, cfg *config.Config) *App {
	ta := textarea.New()
	ta.Placeholder = "# Python 3 code runs on the Gateway. ctrl+r runs the buffer."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	refresh := cfg.PoolRefresh
	if refresh <= 0 {
		refresh = defaultPoolRefresh
	}

	a := &App{
		client:  apiClient,
		author:  cfg.Author,
		refresh: refresh,
		screen:  ScreenEditor,
		editor:  ta,
		output:  viewport.New(0, 0),
		spinner: sp,
		doc:     editor.New(),
		panel:   gatewaypanel.New(gatewayPanelWidth, 0),
		recent:  recentscripts.New(cfg.ConfigDir),
		status:  statusLine{text: "Ready", level: widgets.StatusInfo},

		recentFiles: recentscripts.NewFiles(cfg.ConfigDir),
	}
	a.layout()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.refreshGateway(), a.scheduleTick())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		if key != a.pendingDiscard {
			a.pendingDiscard = ""
		}

		// Handle global quit
		if key == "ctrl+c" {
			if !a.confirmDiscard(key, "quit") {
				return a, nil
			}
			a.tracker.Cancel()
			return a, tea.Quit
		}

		// Route to current screen
		switch a.screen {
		case ScreenBrowser:
			return a.updateBrowser(msg)
		case ScreenSave:
			return a.updateSaveDialog(msg)
		case ScreenFiles:
			return a.updatePicker(msg)
		}
		return a.updateEditor(msg)

	case worker.DoneMsg:
		// Callbacks run inside Deliver; stale results are dropped there
		a.tracker.Deliver(msg)
		return a, nil

	case spinner.TickMsg:
		if !a.tracker.Running() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case poolTickMsg:
		return a, tea.Batch(a.refreshGateway(), a.scheduleTick())

	case gatewayLoadedMsg:
		if msg.err != nil {
			a.setStatus(widgets.StatusCritical, "Gateway unavailable: %v", msg.err)
			return a, nil
		}
		a.panel.Update(msg.snap)
		return a, nil

	case scriptsListedMsg:
		return a.handleScriptsListed(msg)
	case scriptLoadedMsg:
		return a.handleScriptLoaded(msg)
	case scriptSavedMsg:
		return a.handleScriptSaved(msg)
	case scriptDeletedMsg:
		return a.handleScriptDeleted(msg)

	case browser.LoadRequestedMsg:
		a.closeBrowser()
		a.setStatus(widgets.StatusInfo, "Loading %s...", msg.Name)
		return a, a.loadScript(msg.Name)
	case browser.DeleteRequestedMsg:
		a.setStatus(widgets.StatusInfo, "Deleting %s...", msg.Name)
		return a, a.deleteScript(msg.Name)
	case browser.ClosedMsg:
		a.closeBrowser()
		return a, nil

	case savedialog.SubmittedMsg:
		a.closeSaveDialog()
		req := msg.Request
		req.Code = a.editor.Value()
		a.setStatus(widgets.StatusInfo, "Saving %s...", req.Name)
		return a, a.saveScript(req)
	case savedialog.CancelledMsg:
		a.closeSaveDialog()
		a.setStatus(widgets.StatusInfo, "Save cancelled")
		return a, nil

	case filepicker.FileSelectedMsg:
		return a.handleFileImported(msg)
	case filepicker.SavePathMsg:
		a.closePicker()
		a.setStatus(widgets.StatusInfo, "Exporting to %s...", msg.Path)
		return a, exportFile(msg.Path, a.editor.Value())
	case filepicker.CancelledMsg:
		a.closePicker()
		return a, nil
	case fileExportedMsg:
		return a.handleFileExported(msg)

	default:
		// Forward unknown messages to active huh forms (needed for form internals)
		if a.screen == ScreenSave && a.saveDialog != nil {
			return a.updateSaveDialog(msg)
		}
		if a.screen == ScreenBrowser && a.browser != nil && a.browser.Confirming() {
			return a.updateBrowser(msg)
		}
		if a.screen == ScreenFiles && a.picker != nil && a.picker.InputActive() {
			return a.updatePicker(msg)
		}
		if a.screen == ScreenEditor {
			var cmd tea.Cmd
			a.editor, cmd = a.editor.Update(msg)
			return a, cmd
		}
	}
	return a, nil
}

func (a *App) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+r":
		return a, a.run(worker.ModeExecute, a.editor.Value())
	case "ctrl+e":
		return a, a.run(worker.ModeEvaluate, a.currentLine())
	case "esc":
		if !a.tracker.Cancel() {
			a.setStatus(widgets.StatusInfo, "Nothing running")
		}
		return a, nil
	case "ctrl+s":
		return a, a.openSaveDialog()
	case "ctrl+o":
		if !a.confirmDiscard(key, "open another script") {
			return a, nil
		}
		a.setStatus(widgets.StatusInfo, "Listing scripts...")
		return a, a.listScripts()
	case "ctrl+n":
		if !a.confirmDiscard(key, "start a new script") {
			return a, nil
		}
		a.doc.Reset()
		a.editor.Reset()
		a.setStatus(widgets.StatusInfo, "New script")
		return a, nil
	case "ctrl+p":
		a.setStatus(widgets.StatusInfo, "Refreshing pool stats...")
		return a, a.refreshGateway()
	case "ctrl+l":
		if !a.confirmDiscard(key, "import a file") {
			return a, nil
		}
		return a, a.openPicker(filepicker.ModeOpen, "")
	case "ctrl+x":
		if strings.TrimSpace(a.editor.Value()) == "" {
			a.setStatus(widgets.StatusWarning, "Cannot export empty code")
			return a, nil
		}
		return a, a.openPicker(filepicker.ModeSave, a.suggestedExportPath())
	case "pgup", "pgdown":
		var cmd tea.Cmd
		a.output, cmd = a.output.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return a, cmd
}

func (a *App) updateBrowser(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.browser == nil {
		return a, nil
	}
	model, cmd := a.browser.Update(msg)
	a.browser = model.(*browser.Browser)
	return a, cmd
}

func (a *App) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.picker == nil {
		return a, nil
	}
	model, cmd := a.picker.Update(msg)
	a.picker = model.(*filepicker.FilePicker)
	return a, cmd
}

func (a *App) updateSaveDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.saveDialog == nil {
		return a, nil
	}
	model, cmd := a.saveDialog.Update(msg)
	a.saveDialog = model.(*savedialog.Dialog)
	return a, cmd
}

// run starts a worker for code, superseding any execution in flight
func (a *App) run(mode worker.Mode, code string) tea.Cmd {
	if strings.TrimSpace(code) == "" {
		a.setStatus(widgets.StatusWarning, "Nothing to run")
		return nil
	}

	w := worker.New(a.client, worker.Request{Code: code, Mode: mode}, a.onResult, a.onError)
	a.runMode = mode
	a.runStarted = time.Now()
	a.setStatus(widgets.StatusInfo, "%s Running %s... esc to cancel", icons.Run.String(), mode)
	return tea.Batch(a.tracker.Start(w), a.spinner.Tick)
}

// onResult handles a completed execution, including Python failures
func (a *App) onResult(res *client.ExecutionResult) {
	elapsed := res.Duration()
	if elapsed == 0 {
		elapsed = time.Since(a.runStarted)
	}
	a.panel.AddExecution(elapsed)

	if res.Success {
		a.appendOutput(a.runMode, elapsed, res.Output(), false)
		a.setStatus(widgets.StatusOK, "%s finished in %s", a.runMode, elapsed.Round(time.Millisecond))
		return
	}
	a.appendOutput(a.runMode, elapsed, res.ErrorMessage(), true)
	a.setStatus(widgets.StatusCritical, "Python error: %s", lastLine(res.ErrorMessage()))
}

// onError handles transport failures and cancellation
func (a *App) onError(err error) {
	if errors.Is(err, worker.ErrCancelled) {
		a.setStatus(widgets.StatusWarning, "Execution cancelled")
		return
	}
	a.setStatus(widgets.StatusCritical, "Gateway error: %v", err)
}

// appendOutput adds one execution to the output log, keeping it bounded
func (a *App) appendOutput(mode worker.Mode, elapsed time.Duration, text string, failed bool) {
	header := styles.OutputHeader.Render(fmt.Sprintf("── %s %s (%s) ──",
		mode, time.Now().Format("15:04:05"), elapsed.Round(time.Millisecond)))
	if failed {
		text = styles.OutputError.Render(text)
	}

	if a.outputText != "" {
		a.outputText += "\n"
	}
	a.outputText += header + "\n" + text

	if len(a.outputText) > maxOutputBytes {
		cut := len(a.outputText) - maxOutputBytes
		if i := strings.IndexByte(a.outputText[cut:], '\n'); i >= 0 {
			cut += i + 1
		}
		a.outputText = a.outputText[cut:]
	}

	a.output.SetContent(a.outputText)
	a.output.GotoBottom()
}

// currentLine returns the editor line under the cursor
func (a *App) currentLine() string {
	lines := strings.Split(a.editor.Value(), "\n")
	row := a.editor.Line()
	if row < 0 || row >= len(lines) {
		return ""
	}
	return lines[row]
}

// dirty reports whether the buffer has unsaved changes
func (a *App) dirty() bool {
	return a.doc.IsDirty(a.editor.Value())
}

// confirmDiscard guards actions that throw away the buffer. With unsaved
// changes the first press only warns; pressing the same key again proceeds.
func (a *App) confirmDiscard(key, action string) bool {
	if !a.dirty() || a.pendingDiscard == key {
		a.pendingDiscard = ""
		return true
	}
	a.pendingDiscard = key
	a.setStatus(widgets.StatusWarning, "Unsaved changes to %s. Press %s again to %s anyway", a.doc.Title(), key, action)
	return false
}

func (a *App) openSaveDialog() tea.Cmd {
	defaults := client.SaveScriptRequest{Author: a.author}
	if meta := a.doc.Meta(); meta != nil {
		defaults.Name = meta.Name
		defaults.FolderPath = meta.FolderPath
		defaults.Description = meta.Description
		defaults.Version = meta.Version
		if meta.Author != "" {
			defaults.Author = meta.Author
		}
	}
	return a.showSaveDialog(defaults)
}

func (a *App) showSaveDialog(defaults client.SaveScriptRequest) tea.Cmd {
	a.saveDialog = savedialog.New(defaults, scripttree.FolderPaths(a.scripts))
	a.saveDialog.SetWidth(a.frameWidth() - panelPadding)
	a.screen = ScreenSave
	return a.saveDialog.Init()
}

func (a *App) closeSaveDialog() {
	a.saveDialog = nil
	a.screen = ScreenEditor
}

func (a *App) openPicker(mode filepicker.Mode, suggested string) tea.Cmd {
	a.picker = filepicker.New(mode, a.recentFiles.List(), suggested)
	a.picker.SetSize(a.frameWidth()-panelPadding, a.bodyHeight()-2)
	a.screen = ScreenFiles
	return a.picker.Init()
}

func (a *App) closePicker() {
	a.picker = nil
	a.screen = ScreenEditor
}

// suggestedExportPath names the export after the open script, next to the
// most recently used file
func (a *App) suggestedExportPath() string {
	name := a.doc.Name()
	if name == "" {
		name = "script"
	}
	file := name + ".py"
	if recent := a.recentFiles.List(); len(recent) > 0 {
		return filepath.Join(filepath.Dir(recent[0]), file)
	}
	return file
}

func (a *App) closeBrowser() {
	a.browser = nil
	a.screen = ScreenEditor
}

func (a *App) handleScriptsListed(msg scriptsListedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.setStatus(widgets.StatusCritical, "Could not list scripts: %v", msg.err)
		return a, nil
	}
	a.scripts = msg.scripts
	a.browser = browser.New(msg.scripts, a.recent.List(), a.frameWidth()-panelPadding, a.bodyHeight()-2)
	a.screen = ScreenBrowser
	a.setStatus(widgets.StatusInfo, "%d script(s) on the Gateway", len(msg.scripts))
	return a, nil
}

func (a *App) handleScriptLoaded(msg scriptLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, client.ErrMissingScript) || client.IsNotFound(msg.err) {
			a.setStatus(widgets.StatusCritical, "Script %q not found on the Gateway", msg.name)
			return a, nil
		}
		a.setStatus(widgets.StatusCritical, "Could not load %s: %v", msg.name, msg.err)
		return a, nil
	}

	a.doc.Load(msg.script)
	a.editor.SetValue(msg.script.Code)
	if err := a.recent.Add(msg.script.Name); err != nil {
		slog.Warn("Could not record recent script", "name", msg.script.Name, "error", err)
	}
	a.setStatus(widgets.StatusOK, "Loaded %s", a.doc.Title())
	return a, nil
}

func (a *App) handleScriptSaved(msg scriptSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.setStatus(widgets.StatusCritical, "Save failed: %v", msg.err)
		return a, nil
	}

	req := msg.req
	a.doc.MarkSaved(client.ScriptMetadata{
		Name:        req.Name,
		FolderPath:  req.FolderPath,
		Description: req.Description,
		Author:      req.Author,
		Version:     req.Version,
	}, req.Code)
	if err := a.recent.Add(req.Name); err != nil {
		slog.Warn("Could not record recent script", "name", req.Name, "error", err)
	}
	a.setStatus(widgets.StatusOK, "Saved %s", a.doc.Title())
	return a, nil
}

func (a *App) handleScriptDeleted(msg scriptDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.setStatus(widgets.StatusCritical, "Could not delete %s: %v", msg.name, msg.err)
		return a, nil
	}

	if err := a.recent.Remove(msg.name); err != nil {
		slog.Warn("Could not update recent scripts", "name", msg.name, "error", err)
	}
	if a.doc.Name() == msg.name {
		a.doc.Detach()
	}
	a.setStatus(widgets.StatusOK, "Deleted %s", msg.name)

	// Refresh the listing when the browser is still open
	if a.screen == ScreenBrowser {
		return a, a.listScripts()
	}
	return a, nil
}

// handleFileImported replaces the buffer with the file and opens the save
// dialog so the import can be stored on the Gateway
func (a *App) handleFileImported(msg filepicker.FileSelectedMsg) (tea.Model, tea.Cmd) {
	a.closePicker()
	a.rememberFile(msg.Path)

	a.doc.Reset()
	a.editor.SetValue(string(msg.Data))

	base := filepath.Base(msg.Path)
	a.setStatus(widgets.StatusOK, "Imported: %s", base)
	return a, a.showSaveDialog(client.SaveScriptRequest{
		Name:        filepicker.ScriptName(msg.Path),
		Description: "Imported from " + base,
		Author:      a.author,
		Version:     "1.0",
	})
}

func (a *App) handleFileExported(msg fileExportedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.setStatus(widgets.StatusCritical, "Export failed: %v", msg.err)
		return a, nil
	}
	a.rememberFile(msg.path)
	a.setStatus(widgets.StatusOK, "Exported: %s", filepath.Base(msg.path))
	return a, nil
}

func (a *App) rememberFile(path string) {
	if err := a.recentFiles.Add(path); err != nil {
		slog.Warn("Could not record recent file", "path", path, "error", err)
	}
}

func (a *App) setStatus(level widgets.StatusLevel, format string, args ...interface{}) {
	a.status = statusLine{text: fmt.Sprintf(format, args...), level: level}
	if level == widgets.StatusCritical {
		slog.Warn("IDE error", "message", a.status.text)
	}
}

// layout sizes the editor, output and Gateway panel to the terminal
func (a *App) layout() {
	bodyH := a.bodyHeight()
	leftW := a.editorWidth()

	editorH := bodyH * 3 / 5
	outputH := bodyH - editorH

	a.editor.SetWidth(leftW - panelPadding)
	a.editor.SetHeight(max(1, editorH-2))
	a.output.Width = leftW - panelPadding
	a.output.Height = max(1, outputH-2)
	a.panel.SetSize(gatewayPanelWidth, bodyH)

	if a.browser != nil {
		a.browser.SetSize(a.frameWidth()-panelPadding, bodyH-2)
	}
	if a.saveDialog != nil {
		a.saveDialog.SetWidth(a.frameWidth() - panelPadding)
	}
	if a.picker != nil {
		a.picker.SetSize(a.frameWidth()-panelPadding, bodyH-2)
	}
}

// showSidePanel reports whether the terminal is wide enough for the Gateway panel
func (a *App) showSidePanel() bool {
	return a.frameWidth() >= sidePanelMinWidth
}

// editorWidth is the width of the editor and output column
func (a *App) editorWidth() int {
	if a.showSidePanel() {
		return a.frameWidth() - gatewayPanelWidth - 1
	}
	return a.frameWidth()
}

// frameWidth guards against zero/small width before WindowSizeMsg is received
func (a *App) frameWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth
	}
	return a.width
}

// bodyHeight is the height between the header and the status line
func (a *App) bodyHeight() int {
	h := a.height
	if h < minTerminalHeight {
		h = minTerminalHeight
	}
	return h - frameOverhead
}

// lastLine returns the last non-empty line, the useful part of a traceback
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// Run starts the IDE
func Run(apiClient *client.Client, cfg *config.Config) error {
	app := New(apiClient, cfg)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
