// ABOUTME: Saved script endpoints: list, load, save, delete and rename
// ABOUTME: Every failure is wrapped in a ScriptError naming the script

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

type scriptWire struct {
	ID           *string `json:"id"`
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Author       *string `json:"author"`
	CreatedDate  *string `json:"createdDate"`
	LastModified *string `json:"lastModified"`
	FolderPath   *string `json:"folderPath"`
	Version      *string `json:"version"`
	Code         *string `json:"code"`
}

func (w scriptWire) metadata() ScriptMetadata {
	return ScriptMetadata{
		ID:           stringOr(w.ID, ""),
		Name:         stringOr(w.Name, ""),
		Description:  stringOr(w.Description, ""),
		Author:       stringOr(w.Author, ""),
		CreatedDate:  stringOr(w.CreatedDate, ""),
		LastModified: stringOr(w.LastModified, ""),
		FolderPath:   stringOr(w.FolderPath, ""),
		Version:      stringOr(w.Version, ""),
	}
}

// ListScripts returns the metadata of every saved script. An absent list is empty.
func (c *Client) ListScripts(ctx context.Context) ([]ScriptMetadata, error) {
	body, err := c.get(ctx, "/scripts/list")
	if err != nil {
		return nil, err
	}

	var wire struct {
		Scripts []scriptWire `json:"scripts"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("invalid script list response: %w", err)
	}

	scripts := make([]ScriptMetadata, 0, len(wire.Scripts))
	for _, s := range wire.Scripts {
		scripts = append(scripts, s.metadata())
	}
	slog.Debug("Listed scripts", "count", len(scripts))
	return scripts, nil
}

// LoadScript fetches a saved script with its code
func (c *Client) LoadScript(ctx context.Context, name string) (*SavedScript, error) {
	body, err := c.get(ctx, "/scripts/load/"+url.PathEscape(name))
	if err != nil {
		return nil, &ScriptError{Op: "load", Name: name, Err: err}
	}

	var wire struct {
		Script *scriptWire `json:"script"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ScriptError{Op: "load", Name: name, Err: err}
	}
	if wire.Script == nil {
		return nil, &ScriptError{Op: "load", Name: name, Err: ErrMissingScript}
	}

	return &SavedScript{
		ScriptMetadata: wire.Script.metadata(),
		Code:           stringOr(wire.Script.Code, ""),
	}, nil
}

// SaveScript creates or replaces a saved script. Empty author and version
// default to "Unknown" and "1.0".
func (c *Client) SaveScript(ctx context.Context, req SaveScriptRequest) error {
	req = req.withDefaults()
	if err := validate.Struct(req); err != nil {
		return &ScriptError{Op: "save", Name: req.Name, Err: validationError(err)}
	}

	body, err := c.post(ctx, "/scripts/save", req)
	if err != nil {
		return &ScriptError{Op: "save", Name: req.Name, Err: err}
	}
	if err := checkAck(body); err != nil {
		return &ScriptError{Op: "save", Name: req.Name, Err: err}
	}

	slog.Info("Saved script", "name", req.Name, "folder", req.FolderPath, "version", req.Version)
	return nil
}

// DeleteScript removes a saved script
func (c *Client) DeleteScript(ctx context.Context, name string) error {
	body, err := c.delete(ctx, "/scripts/delete/"+url.PathEscape(name))
	if err != nil {
		return &ScriptError{Op: "delete", Name: name, Err: err}
	}
	if err := checkAck(body); err != nil {
		return &ScriptError{Op: "delete", Name: name, Err: err}
	}

	slog.Info("Deleted script", "name", name)
	return nil
}

// RenameScript gives a saved script a new name, and a new folder when folder
// is non-nil. The Gateway has no rename endpoint, so the script is loaded,
// saved under the new name, and only then is the old name deleted. A failed
// delete leaves both copies rather than losing the script.
func (c *Client) RenameScript(ctx context.Context, oldName, newName string, folder *string) error {
	newName = strings.TrimSpace(newName)

	script, err := c.LoadScript(ctx, oldName)
	if err != nil {
		return &ScriptError{Op: "rename", Name: oldName, Err: err}
	}

	if newName != oldName {
		existing, err := c.ListScripts(ctx)
		if err != nil {
			return &ScriptError{Op: "rename", Name: oldName, Err: err}
		}
		for _, s := range existing {
			if s.Name == newName {
				return &ScriptError{Op: "rename", Name: oldName, Err: fmt.Errorf("%w: %s", ErrScriptExists, newName)}
			}
		}
	}

	req := SaveScriptRequest{
		Name:        newName,
		Code:        script.Code,
		Description: script.Description,
		Author:      script.Author,
		FolderPath:  script.FolderPath,
		Version:     script.Version,
	}
	if folder != nil {
		req.FolderPath = *folder
	}
	if err := c.SaveScript(ctx, req); err != nil {
		return &ScriptError{Op: "rename", Name: oldName, Err: err}
	}

	if newName != oldName {
		if err := c.DeleteScript(ctx, oldName); err != nil {
			return &ScriptError{Op: "rename", Name: oldName, Err: err}
		}
	}

	slog.Info("Renamed script", "from", oldName, "to", newName, "folder", req.FolderPath)
	return nil
}

// checkAck requires {"success": true}; a server error message is carried along
func checkAck(body []byte) error {
	var ack ackResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAcknowledged, err)
	}
	if !ack.ok() {
		if ack.Error != nil && *ack.Error != "" {
			return fmt.Errorf("%w: %s", ErrNotAcknowledged, *ack.Error)
		}
		return ErrNotAcknowledged
	}
	return nil
}
