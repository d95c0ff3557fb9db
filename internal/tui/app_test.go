// ABOUTME: Integration tests for the IDE app against a fake Gateway
// ABOUTME: Tests key routing, execution, script management and error reporting

package tui

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/config"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/gatewaytest"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/browser"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/filepicker"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/savedialog"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/widgets"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/worker"
)

func newTestApp(t *testing.T) (*App, *gatewaytest.Gateway) {
	t.Helper()
	g := gatewaytest.New(t)
	cfg := &config.Config{
		Author:      "tester",
		ConfigDir:   t.TempDir(),
		PoolRefresh: time.Second,
	}
	app := New(client.New(g.URL()), cfg)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, g
}

func ctrl(key tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: key}
}

// drive runs cmd and feeds every resulting IDE message back into the app.
// Timer-driven messages (spinner and refresh ticks) are skipped.
func drive(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 50 {
			t.Fatal("too many commands; possible loop")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		done := make(chan tea.Msg, 1)
		go func() { done <- next() }()
		var msg tea.Msg
		select {
		case msg = <-done:
		case <-time.After(3 * time.Second):
			continue
		}

		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
		case worker.DoneMsg, gatewayLoadedMsg, scriptsListedMsg, scriptLoadedMsg, scriptSavedMsg, scriptDeletedMsg,
			browser.LoadRequestedMsg, browser.DeleteRequestedMsg, browser.ClosedMsg,
			savedialog.SubmittedMsg, savedialog.CancelledMsg,
			filepicker.FileSelectedMsg, filepicker.SavePathMsg, filepicker.CancelledMsg, fileExportedMsg:
			_, c := app.Update(m)
			queue = append(queue, c)
		}
	}
}

func press(t *testing.T, app *App, key tea.KeyMsg) {
	t.Helper()
	_, cmd := app.Update(key)
	drive(t, app, cmd)
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func TestAppInitialState(t *testing.T) {
	app, _ := newTestApp(t)

	if app.screen != ScreenEditor {
		t.Errorf("expected initial screen to be ScreenEditor, got %d", app.screen)
	}
	if app.doc.Title() != "untitled" {
		t.Errorf("expected untitled document, got %q", app.doc.Title())
	}
	if app.status.text != "Ready" {
		t.Errorf("expected Ready status, got %q", app.status.text)
	}
	if app.Init() == nil {
		t.Error("expected Init to start the refresh")
	}
}

func TestScreenConstants(t *testing.T) {
	if ScreenEditor != 0 || ScreenBrowser != 1 || ScreenSave != 2 {
		t.Errorf("unexpected screen constants %d %d %d", ScreenEditor, ScreenBrowser, ScreenSave)
	}
}

func TestRunBuffer(t *testing.T) {
	app, g := newTestApp(t)
	g.SetExec(func(source string, _ map[string]interface{}) (string, string, bool) {
		return "hello from " + source, "", true
	})
	app.editor.SetValue("print('hi')")

	press(t, app, ctrl(tea.KeyCtrlR))

	if !strings.Contains(app.outputText, "hello from print('hi')") {
		t.Errorf("expected output to contain result, got %q", app.outputText)
	}
	if app.status.level != widgets.StatusOK || !strings.Contains(app.status.text, "exec finished") {
		t.Errorf("expected ok status, got %+v", app.status)
	}
	if len(app.panel.ExecutionTimes()) != 1 {
		t.Errorf("expected one execution time, got %v", app.panel.ExecutionTimes())
	}
	if app.tracker.Running() {
		t.Error("expected no execution in flight")
	}
}

func TestRunPythonError(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("raise ValueError('bad')")

	press(t, app, ctrl(tea.KeyCtrlR))

	if app.status.level != widgets.StatusCritical || !strings.Contains(app.status.text, "Python error: ValueError('bad')") {
		t.Errorf("expected python error status, got %+v", app.status)
	}
	if !strings.Contains(app.outputText, "Traceback") {
		t.Errorf("expected traceback in output, got %q", app.outputText)
	}
}

func TestEvaluateCurrentLine(t *testing.T) {
	app, g := newTestApp(t)
	g.SetEval(func(source string, _ map[string]interface{}) (string, string, bool) {
		return "eval:" + source, "", true
	})
	app.editor.SetValue("x = 1\n1 + 1")

	press(t, app, ctrl(tea.KeyCtrlE))

	if !strings.Contains(app.outputText, "eval:1 + 1") {
		t.Errorf("expected the cursor line to be evaluated, got %q", app.outputText)
	}
	reqs := g.Requests()
	if len(reqs) == 0 || reqs[len(reqs)-1].Path != "/eval" {
		t.Errorf("expected last request to /eval, got %+v", reqs)
	}
}

func TestRunEmptyBuffer(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(ctrl(tea.KeyCtrlR))
	if cmd != nil {
		t.Error("expected no command for an empty buffer")
	}
	if app.status.text != "Nothing to run" {
		t.Errorf("expected warning, got %q", app.status.text)
	}
}

func TestCancelExecution(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("import time; time.sleep(60)")

	app.Update(ctrl(tea.KeyCtrlR))
	if !app.tracker.Running() {
		t.Fatal("expected execution in flight")
	}

	app.Update(ctrl(tea.KeyEsc))
	if app.tracker.Running() {
		t.Error("expected execution cancelled")
	}
	if app.status.text != "Execution cancelled" {
		t.Errorf("expected cancelled status, got %q", app.status.text)
	}
}

func TestTransportErrorShownInStatus(t *testing.T) {
	app, g := newTestApp(t)
	g.Override("/exec", http.StatusInternalServerError, "boom")
	app.editor.SetValue("x = 1")

	press(t, app, ctrl(tea.KeyCtrlR))

	if app.status.level != widgets.StatusCritical || !strings.Contains(app.status.text, "Gateway error") {
		t.Errorf("expected gateway error status, got %+v", app.status)
	}
}

func TestGatewayRefresh(t *testing.T) {
	app, g := newTestApp(t)
	g.SetPool(gatewaytest.Pool{TotalSize: 4, Healthy: 4, Available: 3, InUse: 1})

	press(t, app, ctrl(tea.KeyCtrlP))

	snap := app.panel.Snapshot()
	if snap == nil || snap.Pool == nil {
		t.Fatal("expected a pool snapshot")
	}
	if snap.Pool.TotalSize != 4 || snap.Pool.InUse != 1 {
		t.Errorf("unexpected pool %+v", *snap.Pool)
	}
	if snap.Version != "3.11.9" {
		t.Errorf("expected version 3.11.9, got %q", snap.Version)
	}
	if snap.Impact.ImpactLevel != client.ImpactLow {
		t.Errorf("expected default LOW impact, got %s", snap.Impact.ImpactLevel)
	}
}

func TestGatewayRefreshError(t *testing.T) {
	app, g := newTestApp(t)
	g.Override("/pool-stats", http.StatusServiceUnavailable, "")

	drive(t, app, app.refreshGateway())

	if app.status.level != widgets.StatusCritical || !strings.Contains(app.status.text, "Gateway unavailable") {
		t.Errorf("expected gateway unavailable status, got %+v", app.status)
	}
	if app.panel.Snapshot() != nil {
		t.Error("expected no snapshot after a failed refresh")
	}
}

func TestOpenBrowserAndLoad(t *testing.T) {
	app, g := newTestApp(t)
	g.PutScript(gatewaytest.Script{Name: "hello", Code: "print('hi')", FolderPath: "Demo"})

	press(t, app, ctrl(tea.KeyCtrlO))
	if app.screen != ScreenBrowser || app.browser == nil {
		t.Fatalf("expected browser screen, got %d", app.screen)
	}

	drive(t, app, msgCmd(browser.LoadRequestedMsg{Name: "hello"}))

	if app.screen != ScreenEditor {
		t.Errorf("expected editor screen after load, got %d", app.screen)
	}
	if app.editor.Value() != "print('hi')" {
		t.Errorf("expected loaded code, got %q", app.editor.Value())
	}
	if app.doc.Title() != "Demo/hello" || app.dirty() {
		t.Errorf("expected clean Demo/hello, got %q dirty=%t", app.doc.Title(), app.dirty())
	}
	if recent := app.recent.List(); len(recent) != 1 || recent[0] != "hello" {
		t.Errorf("expected hello in recent scripts, got %v", recent)
	}
}

func TestLoadMissingScript(t *testing.T) {
	app, _ := newTestApp(t)

	drive(t, app, msgCmd(browser.LoadRequestedMsg{Name: "nope"}))

	if app.status.level != widgets.StatusCritical || !strings.Contains(app.status.text, `"nope" not found`) {
		t.Errorf("expected not found status, got %+v", app.status)
	}
	if app.doc.Saved() {
		t.Error("expected document unchanged")
	}
}

func TestUnsavedChangesGuardNew(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("x = 1")

	app.Update(ctrl(tea.KeyCtrlN))
	if app.editor.Value() != "x = 1" {
		t.Fatal("expected first ctrl+n to keep the buffer")
	}
	if app.status.level != widgets.StatusWarning || !strings.Contains(app.status.text, "Unsaved changes") {
		t.Errorf("expected unsaved warning, got %+v", app.status)
	}

	app.Update(ctrl(tea.KeyCtrlN))
	if app.editor.Value() != "" {
		t.Errorf("expected second ctrl+n to clear the buffer, got %q", app.editor.Value())
	}
}

func TestUnsavedChangesGuardResetByOtherKey(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("x = 1")

	app.Update(ctrl(tea.KeyCtrlN))
	app.Update(ctrl(tea.KeyCtrlP))
	app.Update(ctrl(tea.KeyCtrlN))

	if app.editor.Value() != "x = 1" {
		t.Error("expected an intervening key to re-arm the guard")
	}
}

func TestQuit(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(ctrl(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestQuitWithUnsavedChanges(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("x = 1")

	if _, cmd := app.Update(ctrl(tea.KeyCtrlC)); cmd != nil {
		t.Fatal("expected first ctrl+c to warn instead of quitting")
	}
	_, cmd := app.Update(ctrl(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("expected second ctrl+c to quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestSaveFlow(t *testing.T) {
	app, g := newTestApp(t)
	app.editor.SetValue("print(1)")

	app.Update(ctrl(tea.KeyCtrlS))
	if app.screen != ScreenSave || app.saveDialog == nil {
		t.Fatalf("expected save screen, got %d", app.screen)
	}
	if got := app.saveDialog.Request().Author; got != "tester" {
		t.Errorf("expected default author tester, got %q", got)
	}

	drive(t, app, msgCmd(savedialog.SubmittedMsg{Request: client.SaveScriptRequest{Name: "one", FolderPath: "A", Author: "tester"}}))

	stored, ok := g.Script("one")
	if !ok || stored.Code != "print(1)" || stored.FolderPath != "A" {
		t.Fatalf("expected script saved on the Gateway, got %+v ok=%t", stored, ok)
	}
	if app.screen != ScreenEditor {
		t.Errorf("expected editor screen, got %d", app.screen)
	}
	if app.doc.Title() != "A/one" || app.dirty() {
		t.Errorf("expected clean A/one, got %q dirty=%t", app.doc.Title(), app.dirty())
	}
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	app, g := newTestApp(t)
	g.Override("/scripts/save", http.StatusInternalServerError, "disk full")
	app.editor.SetValue("print(1)")

	drive(t, app, msgCmd(savedialog.SubmittedMsg{Request: client.SaveScriptRequest{Name: "one"}}))

	if app.status.level != widgets.StatusCritical || !strings.Contains(app.status.text, "Save failed") {
		t.Errorf("expected save failure status, got %+v", app.status)
	}
	if !app.dirty() {
		t.Error("expected buffer to stay dirty")
	}
}

func TestSaveCancelled(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(ctrl(tea.KeyCtrlS))
	drive(t, app, msgCmd(savedialog.CancelledMsg{}))

	if app.screen != ScreenEditor || app.saveDialog != nil {
		t.Errorf("expected dialog closed, screen=%d", app.screen)
	}
}

func TestDeleteFromBrowser(t *testing.T) {
	app, g := newTestApp(t)
	g.PutScript(gatewaytest.Script{Name: "old", Code: "x"})
	g.PutScript(gatewaytest.Script{Name: "keep", Code: "y"})
	drive(t, app, msgCmd(browser.LoadRequestedMsg{Name: "old"}))

	press(t, app, ctrl(tea.KeyCtrlO))
	drive(t, app, msgCmd(browser.DeleteRequestedMsg{Name: "old"}))

	if _, ok := g.Script("old"); ok {
		t.Error("expected old deleted on the Gateway")
	}
	if app.doc.Saved() {
		t.Error("expected open document detached from the deleted script")
	}
	if app.screen != ScreenBrowser {
		t.Errorf("expected browser to stay open, got %d", app.screen)
	}
	if len(app.scripts) != 1 || app.scripts[0].Name != "keep" {
		t.Errorf("expected refreshed listing, got %+v", app.scripts)
	}
	if recent := app.recent.List(); len(recent) != 0 {
		t.Errorf("expected old removed from recent scripts, got %v", recent)
	}
}

func TestBrowserClosed(t *testing.T) {
	app, _ := newTestApp(t)

	press(t, app, ctrl(tea.KeyCtrlO))
	drive(t, app, msgCmd(browser.ClosedMsg{}))

	if app.screen != ScreenEditor || app.browser != nil {
		t.Errorf("expected editor screen, got %d", app.screen)
	}
}

func TestStaleResultDropped(t *testing.T) {
	app, g := newTestApp(t)
	g.SetExec(func(source string, _ map[string]interface{}) (string, string, bool) {
		return "ran " + source, "", true
	})

	app.editor.SetValue("first")
	_, first := app.Update(ctrl(tea.KeyCtrlR))
	app.editor.SetValue("second")
	_, second := app.Update(ctrl(tea.KeyCtrlR))

	drive(t, app, second)
	drive(t, app, first)

	if strings.Contains(app.outputText, "ran first") {
		t.Errorf("expected superseded result dropped, got %q", app.outputText)
	}
	if !strings.Contains(app.outputText, "ran second") {
		t.Errorf("expected latest result shown, got %q", app.outputText)
	}
}

func TestOutputIsBounded(t *testing.T) {
	app, _ := newTestApp(t)
	big := strings.Repeat("x", 1024)

	for i := 0; i < 100; i++ {
		app.appendOutput(worker.ModeExecute, time.Millisecond, big, false)
	}

	if len(app.outputText) > maxOutputBytes {
		t.Errorf("expected output capped at %d bytes, got %d", maxOutputBytes, len(app.outputText))
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("Traceback\n  File x\nNameError: y\n"); got != "NameError: y" {
		t.Errorf("expected last line, got %q", got)
	}
	if got := lastLine(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestImportFile(t *testing.T) {
	app, g := newTestApp(t)
	path := filepath.Join(t.TempDir(), "tag_report.py")
	if err := os.WriteFile(path, []byte("print('tags')\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := app.recentFiles.Add(path); err != nil {
		t.Fatal(err)
	}

	app.Update(ctrl(tea.KeyCtrlL))
	if app.screen != ScreenFiles || app.picker == nil {
		t.Fatalf("expected file picker, got screen %d", app.screen)
	}

	_, cmd := app.Update(ctrl(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected the recent file to be read")
	}
	app.Update(cmd())

	if app.screen != ScreenSave || app.saveDialog == nil {
		t.Fatalf("expected save dialog after import, got screen %d", app.screen)
	}
	if app.editor.Value() != "print('tags')\n" {
		t.Errorf("expected file contents in the buffer, got %q", app.editor.Value())
	}
	req := app.saveDialog.Request()
	if req.Name != "tag_report" || req.Description != "Imported from tag_report.py" || req.Version != "1.0" || req.Author != "tester" {
		t.Errorf("unexpected save defaults %+v", req)
	}
	if !strings.Contains(app.status.text, "Imported: tag_report.py") {
		t.Errorf("unexpected status %q", app.status.text)
	}

	drive(t, app, msgCmd(savedialog.SubmittedMsg{Request: req}))
	if stored, ok := g.Script("tag_report"); !ok || stored.Code != "print('tags')\n" {
		t.Errorf("expected imported script saved, got %+v ok=%t", stored, ok)
	}
}

func TestImportGuardedByUnsavedChanges(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("x = 1")

	app.Update(ctrl(tea.KeyCtrlL))
	if app.screen != ScreenEditor || app.status.level != widgets.StatusWarning {
		t.Fatalf("expected a warning first, got screen %d status %+v", app.screen, app.status)
	}

	app.Update(ctrl(tea.KeyCtrlL))
	if app.screen != ScreenFiles {
		t.Errorf("expected second ctrl+l to open the picker, got %d", app.screen)
	}
}

func TestImportCancelled(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(ctrl(tea.KeyCtrlL))
	press(t, app, ctrl(tea.KeyEsc))

	if app.screen != ScreenEditor || app.picker != nil {
		t.Errorf("expected picker closed, screen=%d", app.screen)
	}
}

func TestExportFile(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("\nprint(1)\n\n")
	path := filepath.Join(t.TempDir(), "out.py")

	app.Update(ctrl(tea.KeyCtrlX))
	if app.screen != ScreenFiles {
		t.Fatalf("expected file picker, got screen %d", app.screen)
	}

	drive(t, app, msgCmd(filepicker.SavePathMsg{Path: path}))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected exported file: %v", err)
	}
	if string(data) != "print(1)\n" {
		t.Errorf("expected trimmed code with a trailing newline, got %q", data)
	}
	if app.screen != ScreenEditor || !strings.Contains(app.status.text, "Exported: out.py") {
		t.Errorf("unexpected state screen=%d status=%q", app.screen, app.status.text)
	}
	if recent := app.recentFiles.List(); len(recent) == 0 || recent[0] != path {
		t.Errorf("expected export recorded as recent, got %v", recent)
	}
}

func TestExportEmptyBuffer(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("   \n")

	app.Update(ctrl(tea.KeyCtrlX))

	if app.screen != ScreenEditor {
		t.Errorf("expected to stay in the editor, got %d", app.screen)
	}
	if app.status.text != "Cannot export empty code" {
		t.Errorf("unexpected status %q", app.status.text)
	}
}

func TestExportFailure(t *testing.T) {
	app, _ := newTestApp(t)
	app.editor.SetValue("x = 1")

	drive(t, app, msgCmd(filepicker.SavePathMsg{Path: filepath.Join(t.TempDir(), "missing", "out.py")}))

	if app.status.level != widgets.StatusCritical || !strings.Contains(app.status.text, "Export failed") {
		t.Errorf("expected export failure status, got %+v", app.status)
	}
}

func TestSuggestedExportPath(t *testing.T) {
	app, _ := newTestApp(t)
	if got := app.suggestedExportPath(); got != "script.py" {
		t.Errorf("expected script.py for an untitled buffer, got %q", got)
	}

	dir := t.TempDir()
	if err := app.recentFiles.Add(filepath.Join(dir, "a.py")); err != nil {
		t.Fatal(err)
	}
	app.doc.Load(&client.SavedScript{ScriptMetadata: client.ScriptMetadata{Name: "tag_report"}, Code: "x"})
	if got := app.suggestedExportPath(); got != filepath.Join(dir, "tag_report.py") {
		t.Errorf("expected export next to the recent file, got %q", got)
	}
}
