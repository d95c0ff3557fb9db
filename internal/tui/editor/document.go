// ABOUTME: Tracks which saved script the editor buffer belongs to
// ABOUTME: Compares the buffer against the last loaded or saved code to detect unsaved changes

package editor

import (
	"strings"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
)

// Untitled labels a buffer that has never been saved
const Untitled = "untitled"

// Document is the editor buffer's link to a Gateway script
type Document struct {
	meta     *client.ScriptMetadata
	baseline string
}

// New returns an untitled document with an empty baseline
func New() *Document {
	return &Document{}
}

// Load makes the document track a script loaded from the Gateway
func (d *Document) Load(s *client.SavedScript) {
	meta := s.ScriptMetadata
	d.meta = &meta
	d.baseline = s.Code
}

// MarkSaved records a successful save of code under meta
func (d *Document) MarkSaved(meta client.ScriptMetadata, code string) {
	d.meta = &meta
	d.baseline = code
}

// Reset turns the document back into an empty untitled buffer
func (d *Document) Reset() {
	d.meta = nil
	d.baseline = ""
}

// Detach keeps the buffer's baseline but forgets the script, used when the
// script is deleted on the Gateway while open
func (d *Document) Detach() {
	d.meta = nil
}

// IsDirty reports whether current differs from the last loaded or saved code.
// Trailing whitespace is ignored so a stray newline does not count.
func (d *Document) IsDirty(current string) bool {
	return strings.TrimRight(current, " \t\n") != strings.TrimRight(d.baseline, " \t\n")
}

// Saved reports whether the document is linked to a Gateway script
func (d *Document) Saved() bool {
	return d.meta != nil
}

// Meta returns the linked script's metadata, or nil for an untitled buffer
func (d *Document) Meta() *client.ScriptMetadata {
	return d.meta
}

// Name returns the script name, or "" for an untitled buffer
func (d *Document) Name() string {
	if d.meta == nil {
		return ""
	}
	return d.meta.Name
}

// Title is the label shown in the header, e.g. "Utils/db" or "untitled"
func (d *Document) Title() string {
	if d.meta == nil {
		return Untitled
	}
	if folder := strings.Trim(d.meta.FolderPath, "/ "); folder != "" {
		return folder + "/" + d.meta.Name
	}
	return d.meta.Name
}
