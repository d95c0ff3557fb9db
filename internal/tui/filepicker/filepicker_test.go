package filepicker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func enter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func TestNew(t *testing.T) {
	fp := New(ModeOpen, []string{"/tmp/a.py"}, "")

	if fp.state != stateList {
		t.Errorf("expected initial state stateList, got %d", fp.state)
	}
	if !strings.Contains(fp.View(), "Import Python file") {
		t.Errorf("expected import title, got %q", fp.View())
	}
	if !strings.Contains(New(ModeSave, nil, "").View(), "Export buffer to file") {
		t.Error("expected export title in save mode")
	}
}

func TestNavigateStaysInRange(t *testing.T) {
	fp := New(ModeOpen, []string{"/tmp/a.py", "/tmp/b.py"}, "")

	for range 5 {
		fp.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if fp.cursor != 2 {
		t.Errorf("expected cursor on Enter path... (2), got %d", fp.cursor)
	}

	for range 5 {
		fp.Update(tea.KeyMsg{Type: tea.KeyUp})
	}
	if fp.cursor != 0 {
		t.Errorf("expected cursor at top, got %d", fp.cursor)
	}
}

func TestSelectRecentFile(t *testing.T) {
	path := writeFile(t, "tag_report.py", "print('hi')\n")
	fp := New(ModeOpen, []string{path}, "")

	_, cmd := fp.Update(enter())
	if cmd == nil {
		t.Fatal("expected a command after selecting a readable file")
	}

	msg, ok := cmd().(FileSelectedMsg)
	if !ok {
		t.Fatalf("expected FileSelectedMsg, got %T", cmd())
	}
	if msg.Path != path || string(msg.Data) != "print('hi')\n" {
		t.Errorf("unexpected selection %+v", msg)
	}
}

func TestSelectEnterPath(t *testing.T) {
	fp := New(ModeOpen, nil, "")

	fp.Update(enter())
	if fp.state != stateInput || !fp.InputActive() {
		t.Fatalf("expected input state, got %d", fp.state)
	}
}

func TestInputLoadsTypedPath(t *testing.T) {
	path := writeFile(t, "cleanup.py", "x = 1")
	fp := New(ModeOpen, nil, "")
	fp.Update(enter())
	fp.textInput.SetValue(path)

	_, cmd := fp.Update(enter())
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if msg, ok := cmd().(FileSelectedMsg); !ok || string(msg.Data) != "x = 1" {
		t.Errorf("unexpected message %#v", cmd())
	}
}

func TestInputEmptyPathIsError(t *testing.T) {
	fp := New(ModeOpen, nil, "")
	fp.Update(enter())

	_, cmd := fp.Update(enter())
	if cmd != nil {
		t.Error("expected no command for an empty path")
	}
	if fp.err != "Please enter a file path" {
		t.Errorf("unexpected error %q", fp.err)
	}
}

func TestErrorState(t *testing.T) {
	fp := New(ModeOpen, []string{"/nonexistent/file.py"}, "")

	_, cmd := fp.Update(enter())
	if cmd != nil {
		t.Error("expected no command for a missing file")
	}
	if !strings.HasPrefix(fp.err, "File not found: ") {
		t.Errorf("expected not found error, got %q", fp.err)
	}
	if !strings.Contains(fp.View(), "File not found") {
		t.Error("expected error in view")
	}

	// any key clears the error
	fp.Update(tea.KeyMsg{Type: tea.KeyDown})
	if fp.err != "" {
		t.Errorf("expected error cleared, got %q", fp.err)
	}
}

func TestBackFromInputReturnsToList(t *testing.T) {
	fp := New(ModeOpen, nil, "")
	fp.Update(enter())

	fp.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if fp.state != stateList {
		t.Errorf("expected list state, got %d", fp.state)
	}
}

func TestBackFromListReturnsCancelMsg(t *testing.T) {
	fp := New(ModeOpen, nil, "")

	_, cmd := fp.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg, got %T", cmd())
	}
}

func TestSaveMode_SuggestedPathAddsExtension(t *testing.T) {
	dir := t.TempDir()
	fp := New(ModeSave, nil, filepath.Join(dir, "tag_report"))

	fp.Update(enter())
	if fp.textInput.Value() != filepath.Join(dir, "tag_report") {
		t.Fatalf("expected suggested path pre-filled, got %q", fp.textInput.Value())
	}

	_, cmd := fp.Update(enter())
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(SavePathMsg)
	if !ok {
		t.Fatalf("expected SavePathMsg, got %T", cmd())
	}
	if msg.Path != filepath.Join(dir, "tag_report.py") {
		t.Errorf("unexpected export path %q", msg.Path)
	}
}

func TestSaveMode_RecentFileNeedsConfirmation(t *testing.T) {
	path := writeFile(t, "existing.py", "old")
	fp := New(ModeSave, []string{path}, "")

	_, cmd := fp.Update(enter())
	if !fp.InputActive() {
		t.Fatal("expected the recent path shown in the input before exporting")
	}
	if cmd != nil {
		if _, ok := cmd().(SavePathMsg); ok {
			t.Fatal("expected no export without a second enter")
		}
	}
	if fp.textInput.Value() != path {
		t.Errorf("expected recent path pre-filled, got %q", fp.textInput.Value())
	}
}

func TestSaveMode_RejectsMissingDirectory(t *testing.T) {
	fp := New(ModeSave, nil, "/nonexistent/dir/out.py")
	fp.Update(enter())

	_, cmd := fp.Update(enter())
	if cmd != nil {
		t.Error("expected no command for a missing directory")
	}
	if !strings.HasPrefix(fp.err, "Directory not found: ") {
		t.Errorf("unexpected error %q", fp.err)
	}
}

func TestEnsurePyExtension(t *testing.T) {
	tests := map[string]string{
		"script":     "script.py",
		"script.py":  "script.py",
		"SCRIPT.PY":  "SCRIPT.PY",
		"report.txt": "report.txt.py",
	}
	for in, want := range tests {
		if got := EnsurePyExtension(in); got != want {
			t.Errorf("EnsurePyExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScriptName(t *testing.T) {
	tests := map[string]string{
		"/home/ops/tag_report.py": "tag_report",
		"cleanup.PY":              "cleanup",
		"notes":                   "notes",
	}
	for in, want := range tests {
		if got := ScriptName(in); got != want {
			t.Errorf("ScriptName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandPath("~/scripts/a.py"); got != filepath.Join(home, "scripts/a.py") {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := expandPath("~"); got != home {
		t.Errorf("expected home, got %q", got)
	}
	if got := expandPath("/abs/a.py"); got != "/abs/a.py" {
		t.Errorf("expected absolute path unchanged, got %q", got)
	}
}
