// ABOUTME: Script browser showing the Gateway's saved scripts as a folder tree
// ABOUTME: enter loads a script, d deletes it after a huh confirmation

package browser

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/scripttree"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/icons"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/styles"
)

// LoadRequestedMsg asks the IDE to open a script
type LoadRequestedMsg struct {
	Name string
}

// DeleteRequestedMsg is sent once the user confirmed a delete
type DeleteRequestedMsg struct {
	Name string
}

// ClosedMsg is sent when the browser is dismissed
type ClosedMsg struct{}

// Browser is the script tree as a bubbletea model
type Browser struct {
	root      *scripttree.Node
	rows      []scripttree.Row
	collapsed map[string]bool
	recent    []string
	cursor    int
	offset    int
	width     int
	height    int

	confirm       *huh.Form
	confirmTarget string
	confirmed     bool
}

// New creates a browser over scripts with every folder expanded. recent
// names that still exist are offered on the number keys.
func New(scripts []client.ScriptMetadata, recent []string, width, height int) *Browser {
	b := &Browser{
		root:      scripttree.Build(scripts),
		collapsed: map[string]bool{},
		width:     width,
		height:    height,
	}
	for _, name := range recent {
		if b.root.Find(name) != nil {
			b.recent = append(b.recent, name)
		}
	}
	b.refreshRows()
	return b
}

func (b *Browser) refreshRows() {
	b.rows = b.root.Flatten(func(path string) bool { return !b.collapsed[path] })
	if b.cursor >= len(b.rows) {
		b.cursor = max(0, len(b.rows)-1)
	}
}

// Selected returns the node under the cursor, or nil for an empty tree
func (b *Browser) Selected() *scripttree.Node {
	if len(b.rows) == 0 {
		return nil
	}
	return b.rows[b.cursor].Node
}

// Confirming reports whether the delete confirmation is showing
func (b *Browser) Confirming() bool {
	return b.confirm != nil
}

// SetSize updates the browser dimensions
func (b *Browser) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// Init implements tea.Model
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if b.confirm != nil {
		return b.updateConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	switch keyMsg.String() {
	case "esc", "q":
		return b, func() tea.Msg { return ClosedMsg{} }
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(b.rows)-1 {
			b.cursor++
		}
	case "right", "l":
		if n := b.Selected(); n != nil && n.IsFolder() {
			delete(b.collapsed, n.Path)
			b.refreshRows()
		}
	case "left", "h":
		b.collapseOrParent()
	case "enter":
		n := b.Selected()
		if n == nil {
			return b, nil
		}
		if n.IsFolder() {
			b.collapsed[n.Path] = !b.collapsed[n.Path]
			b.refreshRows()
			return b, nil
		}
		return b, loadCmd(n.Name)
	case "d", "delete":
		if n := b.Selected(); n != nil && !n.IsFolder() {
			return b, b.startConfirm(n.Name)
		}
	case "1", "2", "3", "4", "5":
		idx := int(keyMsg.String()[0] - '1')
		if idx < len(b.recent) {
			return b, loadCmd(b.recent[idx])
		}
	}
	return b, nil
}

func loadCmd(name string) tea.Cmd {
	return func() tea.Msg { return LoadRequestedMsg{Name: name} }
}

// collapseOrParent collapses the selected folder, or moves to the parent
// folder of the selected row
func (b *Browser) collapseOrParent() {
	n := b.Selected()
	if n == nil {
		return
	}
	if n.IsFolder() && !b.collapsed[n.Path] {
		b.collapsed[n.Path] = true
		b.refreshRows()
		return
	}

	depth := b.rows[b.cursor].Depth
	for i := b.cursor - 1; i >= 0; i-- {
		if b.rows[i].Depth < depth && b.rows[i].Node.IsFolder() {
			b.cursor = i
			return
		}
	}
}

func (b *Browser) startConfirm(name string) tea.Cmd {
	b.confirmTarget = name
	b.confirmed = false
	b.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q from the Gateway?", name)).
				Description("This cannot be undone").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&b.confirmed),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
	return b.confirm.Init()
}

func (b *Browser) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		return b, b.resolveConfirm(false)
	}

	form, cmd := b.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.confirm = f
	}

	switch b.confirm.State {
	case huh.StateCompleted:
		return b, b.resolveConfirm(b.confirmed)
	case huh.StateAborted:
		return b, b.resolveConfirm(false)
	}
	return b, cmd
}

// resolveConfirm closes the confirmation and requests the delete when ok
func (b *Browser) resolveConfirm(ok bool) tea.Cmd {
	name := b.confirmTarget
	b.confirm = nil
	b.confirmTarget = ""
	if !ok {
		return nil
	}
	return func() tea.Msg { return DeleteRequestedMsg{Name: name} }
}

// View implements tea.Model
func (b *Browser) View() string {
	var sb strings.Builder

	folders, scripts := b.root.Count()
	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s Gateway Scripts", icons.Folder.String())))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d script(s) in %d folder(s)", scripts, folders)))
	sb.WriteString("\n")

	if len(b.recent) > 0 {
		var items []string
		for i, name := range b.recent {
			items = append(items, fmt.Sprintf("%s %s", styles.KeyStyle.Render(fmt.Sprintf("[%d]", i+1)), name))
		}
		sb.WriteString(fmt.Sprintf("%s Recent: %s\n\n", icons.Recent.String(), strings.Join(items, "  ")))
	}

	if b.confirm != nil {
		sb.WriteString(b.confirm.View())
		return sb.String()
	}

	if len(b.rows) == 0 {
		sb.WriteString(styles.Subtitle.Render("No scripts saved on this Gateway yet. Use ctrl+s in the editor to save one."))
		return sb.String()
	}

	visible := max(1, b.height-6)
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+visible {
		b.offset = b.cursor - visible + 1
	}
	end := min(len(b.rows), b.offset+visible)

	for i := b.offset; i < end; i++ {
		sb.WriteString(b.renderRow(i))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Browser) renderRow(i int) string {
	row := b.rows[i]
	n := row.Node
	indent := strings.Repeat("  ", row.Depth)

	var line string
	if n.IsFolder() {
		icon := icons.FolderOpen
		if b.collapsed[n.Path] {
			icon = icons.Folder
		}
		line = fmt.Sprintf("%s%s %s/", indent, icon.String(), n.Name)
	} else {
		line = fmt.Sprintf("%s%s %s", indent, icons.Script.String(), n.Name)
		if n.Script.Description != "" {
			line += styles.OutputHeader.Render("  " + n.Script.Description)
		}
	}

	if i == b.cursor {
		return styles.Selected.Render("> " + line)
	}
	return "  " + line
}
