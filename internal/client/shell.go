// ABOUTME: Shell command endpoints, one-shot and interactive sessions
// ABOUTME: Shell output is reported through ExecutionResult like Python execution

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrShellSession is returned when the Gateway refuses to open a shell session
var ErrShellSession = errors.New("failed to create interactive shell session")

// ExecuteShellCommand runs one command in a fresh shell on the Gateway host.
// Stderr on a successful command is appended to the output so warnings stay visible.
func (c *Client) ExecuteShellCommand(ctx context.Context, command string) (*ExecutionResult, error) {
	req := shellCommandRequest{Command: command}
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	slog.Info("Executing shell command", "command", command)

	body, err := c.post(ctx, "/shell-exec", req)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Success  *bool   `json:"success"`
		Stdout   *string `json:"stdout"`
		Stderr   *string `json:"stderr"`
		ExitCode *int    `json:"exitCode"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		slog.Warn("Failed to parse shell response", "error", err)
		return newFailedResult(fmt.Sprintf("Failed to parse response: %v", err)), nil
	}

	success := wire.Success != nil && *wire.Success
	stdout := stringOr(wire.Stdout, "")
	stderr := stringOr(wire.Stderr, "")
	exitCode := intOr(wire.ExitCode, -1)

	now := time.Now().UnixMilli()
	var elapsed int64
	res := &ExecutionResult{Success: success, ExecutionTimeMs: &elapsed, Timestamp: &now}

	if success {
		out := stdout
		if stderr != "" {
			out = strings.TrimRight(out, "\n") + "\n" + stderr
			out = strings.TrimLeft(out, "\n")
		}
		res.Result = &out
		return res, nil
	}

	res.Result = &stdout
	switch {
	case stderr != "":
		res.Error = &stderr
	case exitCode != 0:
		msg := fmt.Sprintf("Command failed with exit code: %d", exitCode)
		res.Error = &msg
	}
	return res, nil
}

// CreateShellSession opens an interactive shell on the Gateway and returns its ID
func (c *Client) CreateShellSession(ctx context.Context) (string, error) {
	body, err := c.post(ctx, "/shell-interactive/create", struct{}{})
	if err != nil {
		return "", err
	}

	var wire struct {
		Success   *bool   `json:"success"`
		SessionID *string `json:"sessionId"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return "", fmt.Errorf("%w: %v", ErrShellSession, err)
	}
	if wire.Success == nil || !*wire.Success || wire.SessionID == nil || *wire.SessionID == "" {
		return "", ErrShellSession
	}

	slog.Info("Created interactive shell session", "session_id", *wire.SessionID)
	return *wire.SessionID, nil
}

// ExecShellSession runs a command inside an interactive session
func (c *Client) ExecShellSession(ctx context.Context, sessionID, command string) (*ExecutionResult, error) {
	req := shellSessionRequest{SessionID: sessionID, Command: command}
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	body, err := c.post(ctx, "/shell-interactive/exec", req)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Success *bool   `json:"success"`
		Output  *string `json:"output"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return newFailedResult(fmt.Sprintf("Failed to parse response: %v", err)), nil
	}

	out := stringOr(wire.Output, "")
	now := time.Now().UnixMilli()
	var elapsed int64
	return &ExecutionResult{
		Success:         wire.Success != nil && *wire.Success,
		Result:          &out,
		ExecutionTimeMs: &elapsed,
		Timestamp:       &now,
	}, nil
}

// CloseShellSession ends an interactive session
func (c *Client) CloseShellSession(ctx context.Context, sessionID string) error {
	req := shellSessionRequest{SessionID: sessionID}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}

	if _, err := c.post(ctx, "/shell-interactive/close", req); err != nil {
		return err
	}
	slog.Info("Closed interactive shell session", "session_id", sessionID)
	return nil
}
