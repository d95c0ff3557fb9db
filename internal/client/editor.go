// ABOUTME: Editor support endpoints: syntax checking and code completion
// ABOUTME: Entries missing fields get the same defaults the Designer editor used

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

type syntaxErrorWire struct {
	Line     *int    `json:"line"`
	Column   *int    `json:"column"`
	Message  *string `json:"message"`
	Severity *string `json:"severity"`
}

type syntaxCheckWire struct {
	Success *bool             `json:"success"`
	Errors  []syntaxErrorWire `json:"errors"`
}

type completionWire struct {
	Text        *string `json:"text"`
	Type        *string `json:"type"`
	Complete    *string `json:"complete"`
	Description *string `json:"description"`
	Docstring   *string `json:"docstring"`
	Signature   *string `json:"signature"`
}

// CheckSyntax asks the Gateway to compile code without running it
func (c *Client) CheckSyntax(ctx context.Context, code string) (*SyntaxCheck, error) {
	body, err := c.post(ctx, "/check-syntax", map[string]string{"code": code})
	if err != nil {
		return nil, err
	}

	var wire syntaxCheckWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("invalid syntax check response: %w", err)
	}

	check := &SyntaxCheck{
		Success: wire.Success != nil && *wire.Success,
		Errors:  make([]SyntaxError, 0, len(wire.Errors)),
	}
	for _, e := range wire.Errors {
		check.Errors = append(check.Errors, SyntaxError{
			Line:     intOr(e.Line, 1),
			Column:   intOr(e.Column, 0),
			Message:  stringOr(e.Message, "Syntax error"),
			Severity: stringOr(e.Severity, "error"),
		})
	}
	return check, nil
}

// Completions returns completion candidates at a 1-based line and 0-based column
func (c *Client) Completions(ctx context.Context, code string, line, column int) ([]Completion, error) {
	req := struct {
		Code   string `json:"code"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}{code, line, column}

	body, err := c.post(ctx, "/completions", req)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Completions []completionWire `json:"completions"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("invalid completions response: %w", err)
	}

	out := make([]Completion, 0, len(wire.Completions))
	for _, w := range wire.Completions {
		out = append(out, Completion{
			Text:        stringOr(w.Text, ""),
			Type:        stringOr(w.Type, ""),
			Complete:    stringOr(w.Complete, ""),
			Description: stringOr(w.Description, ""),
			Docstring:   stringOr(w.Docstring, ""),
			Signature:   stringOr(w.Signature, ""),
		})
	}
	return out, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
