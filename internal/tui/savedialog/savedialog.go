// ABOUTME: Save-script dialog as a bubbletea model
// ABOUTME: Collects name, folder, description, author and version with a huh form

package savedialog

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/icons"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui/styles"
)

// SubmittedMsg is sent when the form is completed. Request carries no code;
// the caller fills it from the editor buffer.
type SubmittedMsg struct {
	Request client.SaveScriptRequest
}

// CancelledMsg is sent when the dialog is dismissed
type CancelledMsg struct{}

// Dialog collects save metadata as a bubbletea model
type Dialog struct {
	form  *huh.Form
	width int

	// Form field values
	name        string
	folder      string
	description string
	author      string
	version     string
}

// New creates a dialog prefilled from defaults. folders are offered as
// suggestions for the folder field.
func New(defaults client.SaveScriptRequest, folders []string) *Dialog {
	d := &Dialog{
		name:        defaults.Name,
		folder:      defaults.FolderPath,
		description: defaults.Description,
		author:      defaults.Author,
		version:     defaults.Version,
	}
	d.form = d.createForm(folders)
	return d
}

func (d *Dialog) createForm(folders []string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Saving over an existing name replaces that script").
				Value(&d.name).
				Validate(validateName),
			huh.NewInput().
				Title("Folder").
				Description("Slash-separated path, empty for the root folder").
				Suggestions(folders).
				Value(&d.folder).
				Validate(validateFolder),
			huh.NewText().
				Title("Description").
				Lines(3).
				Value(&d.description).
				Validate(maxLen("description", 4096)),
			huh.NewInput().
				Title("Author").
				Value(&d.author).
				Validate(maxLen("author", 255)),
			huh.NewInput().
				Title("Version").
				Placeholder("1.0").
				Value(&d.version).
				Validate(maxLen("version", 32)),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (d *Dialog) Init() tea.Cmd {
	return d.form.Init()
}

// Update implements tea.Model
func (d *Dialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return d, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateCompleted:
		req := d.Request()
		return d, func() tea.Msg { return SubmittedMsg{Request: req} }
	case huh.StateAborted:
		return d, func() tea.Msg { return CancelledMsg{} }
	}
	return d, cmd
}

// Request returns the metadata entered so far, trimmed
func (d *Dialog) Request() client.SaveScriptRequest {
	return client.SaveScriptRequest{
		Name:        strings.TrimSpace(d.name),
		FolderPath:  strings.Trim(strings.TrimSpace(d.folder), "/"),
		Description: strings.TrimSpace(d.description),
		Author:      strings.TrimSpace(d.author),
		Version:     strings.TrimSpace(d.version),
	}
}

// SetWidth sets the dialog width for proper rendering
func (d *Dialog) SetWidth(width int) {
	d.width = width
}

// View implements tea.Model
func (d *Dialog) View() string {
	title := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).
		Render(fmt.Sprintf("%s Save script to Gateway", icons.Save.String()))
	hint := styles.Subtitle.Render("enter next field  esc cancel")
	return title + "\n" + hint + "\n" + d.form.View()
}

func validateName(s string) error {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return fmt.Errorf("name is required")
	case strings.ContainsAny(s, `/\`):
		return fmt.Errorf("name cannot contain / or \\")
	case len(s) > 255:
		return fmt.Errorf("name must be at most 255 characters")
	}
	return nil
}

func validateFolder(s string) error {
	if strings.Contains(s, `\`) {
		return fmt.Errorf("use / to separate folders")
	}
	return maxLen("folder", 1024)(s)
}

func maxLen(field string, n int) func(string) error {
	return func(s string) error {
		if len(strings.TrimSpace(s)) > n {
			return fmt.Errorf("%s must be at most %d characters", field, n)
		}
		return nil
	}
}
