package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestCheckSyntax_Defaults(t *testing.T) {
	server := jsonServer(t, 200, `{"success":false,"errors":[{"line":3,"column":4,"message":"bad","severity":"warning"},{}]}`, nil)

	check, err := New(server.URL).CheckSyntax(context.Background(), "x = (")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.Success {
		t.Error("expected failed check")
	}
	if len(check.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(check.Errors))
	}
	if check.Errors[0] != (SyntaxError{Line: 3, Column: 4, Message: "bad", Severity: "warning"}) {
		t.Errorf("unexpected first error %+v", check.Errors[0])
	}
	if check.Errors[1] != (SyntaxError{Line: 1, Column: 0, Message: "Syntax error", Severity: "error"}) {
		t.Errorf("expected defaults, got %+v", check.Errors[1])
	}
}

func TestCheckSyntax_Clean(t *testing.T) {
	server := jsonServer(t, 200, `{"success":true}`, nil)

	check, err := New(server.URL).CheckSyntax(context.Background(), "x = 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !check.Success || len(check.Errors) != 0 {
		t.Errorf("expected clean check, got %+v", check)
	}
}

func TestCompletions(t *testing.T) {
	server := jsonServer(t, 200, `{"completions":[{"text":"print","type":"function","complete":"nt"},{"text":"property"}]}`,
		func(r *http.Request) {
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["line"] != float64(2) || body["column"] != float64(3) {
				t.Errorf("unexpected position %v:%v", body["line"], body["column"])
			}
		})

	comps, err := New(server.URL).Completions(context.Background(), "x = 1\npri", 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comps) != 2 || comps[0].Text != "print" || comps[0].Complete != "nt" {
		t.Errorf("unexpected completions %+v", comps)
	}
	if comps[1].Type != "" {
		t.Errorf("expected empty type default, got %q", comps[1].Type)
	}
}

func TestCompletions_AbsentIsEmpty(t *testing.T) {
	server := jsonServer(t, 200, `{}`, nil)

	comps, err := New(server.URL).Completions(context.Background(), "", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comps) != 0 {
		t.Errorf("expected no completions, got %v", comps)
	}
}

func TestExecuteShellCommand(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantOutput  string
		wantError   string
	}{
		{"stdout", `{"success":true,"stdout":"hi\n","exitCode":0}`, true, "hi\n", ""},
		{"stderr on success folded", `{"success":true,"stdout":"hi\n","stderr":"warn"}`, true, "hi\nwarn", ""},
		{"stderr on failure", `{"success":false,"stderr":"not found","exitCode":127}`, false, "", "not found"},
		{"exit code only", `{"success":false,"exitCode":2}`, false, "", "Command failed with exit code: 2"},
		{"missing exit code", `{"success":false}`, false, "", "Command failed with exit code: -1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := jsonServer(t, 200, tc.body, nil)
			res, err := New(server.URL).ExecuteShellCommand(context.Background(), "echo hi")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Success != tc.wantSuccess || res.Output() != tc.wantOutput || res.ErrorMessage() != tc.wantError {
				t.Errorf("got success=%v output=%q error=%q", res.Success, res.Output(), res.ErrorMessage())
			}
		})
	}
}

func TestExecuteShellCommand_EmptyCommand(t *testing.T) {
	if _, err := New("http://localhost:99999").ExecuteShellCommand(context.Background(), ""); err == nil {
		t.Error("expected validation error for empty command")
	}
}

func TestShellSession(t *testing.T) {
	server := jsonServer(t, 200, `{"success":true,"sessionId":"abc","output":"ok\n"}`, nil)
	c := New(server.URL)

	id, err := c.CreateShellSession(context.Background())
	if err != nil || id != "abc" {
		t.Fatalf("CreateShellSession() = %q, %v", id, err)
	}
	res, err := c.ExecShellSession(context.Background(), id, "ls")
	if err != nil || res.Output() != "ok\n" {
		t.Fatalf("ExecShellSession() = %v, %v", res, err)
	}
	if err := c.CloseShellSession(context.Background(), id); err != nil {
		t.Errorf("CloseShellSession() error: %v", err)
	}
}

func TestCreateShellSession_Refused(t *testing.T) {
	server := jsonServer(t, 200, `{"success":true}`, nil)

	_, err := New(server.URL).CreateShellSession(context.Background())
	if !errors.Is(err, ErrShellSession) {
		t.Errorf("expected ErrShellSession, got %v", err)
	}
}

func TestExecShellSession_RequiresID(t *testing.T) {
	if _, err := New("http://localhost:99999").ExecShellSession(context.Background(), "", "ls"); err == nil {
		t.Error("expected validation error for empty session id")
	}
}
