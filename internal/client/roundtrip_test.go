package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/gatewaytest"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	gw := gatewaytest.New(t)
	c := client.New(gw.URL())
	ctx := context.Background()

	inputs := []client.SaveScriptRequest{
		{Name: "tag report", Code: "print('hi')\n", Description: "daily tags", Author: "ops", FolderPath: "Reports/Daily", Version: "2.1"},
		{Name: "root-level", Code: "", Description: "", Author: "someone", FolderPath: "", Version: "1.0"},
		{Name: "unicode ✓", Code: "x = 'ü'", Description: "ß", Author: "Zoë", FolderPath: "A/B/C", Version: "0.1"},
	}

	for _, in := range inputs {
		t.Run(in.Name, func(t *testing.T) {
			for i := 0; i < 2; i++ {
				if err := c.SaveScript(ctx, in); err != nil {
					t.Fatalf("SaveScript() error: %v", err)
				}
			}

			got, err := c.LoadScript(ctx, in.Name)
			if err != nil {
				t.Fatalf("LoadScript() error: %v", err)
			}
			if got.Name != in.Name || got.Code != in.Code || got.Description != in.Description ||
				got.Author != in.Author || got.FolderPath != in.FolderPath || got.Version != in.Version {
				t.Errorf("round trip mismatch:\n sent %+v\n  got %+v", in, got)
			}
		})
	}
}

func TestSaveListDelete(t *testing.T) {
	gw := gatewaytest.New(t)
	c := client.New(gw.URL())
	ctx := context.Background()

	if err := c.SaveScript(ctx, client.SaveScriptRequest{Name: "a", Code: "1", FolderPath: "X"}); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveScript(ctx, client.SaveScriptRequest{Name: "b", Code: "2"}); err != nil {
		t.Fatal(err)
	}

	list, err := c.ListScripts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "a" || list[0].FolderPath != "X" {
		t.Errorf("unexpected list %+v", list)
	}

	if err := c.DeleteScript(ctx, "a"); err != nil {
		t.Fatalf("DeleteScript() error: %v", err)
	}
	if err := c.DeleteScript(ctx, "a"); err == nil {
		t.Error("expected second delete to fail")
	}

	_, err = c.LoadScript(ctx, "a")
	var se *client.ScriptError
	if !errors.As(err, &se) || se.Name != "a" {
		t.Errorf("expected ScriptError for deleted script, got %v", err)
	}
}

func TestExecuteCode_AgainstFakeGateway(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.SetExec(func(code string, vars map[string]interface{}) (string, string, bool) {
		if code == "result = 2 + 2" {
			return "4", "", true
		}
		return "", "SyntaxError", false
	})
	c := client.New(gw.URL())

	res, err := c.ExecuteCode(context.Background(), "result = 2 + 2", map[string]interface{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Output() != "4" || res.ExecutionTimeMs == nil || *res.ExecutionTimeMs < 0 {
		t.Errorf("unexpected result %s", res)
	}

	res, err = c.ExecuteCode(context.Background(), "((", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.ErrorMessage() != "SyntaxError" {
		t.Errorf("expected failed result, got %s", res)
	}
}

func TestExecuteCode_OverrideMalformed(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.Override("/exec", 200, "{{{")
	c := client.New(gw.URL())

	res, err := c.ExecuteCode(context.Background(), "1", nil)
	if err != nil {
		t.Fatalf("expected failed result, got error %v", err)
	}
	if res.Success || res.Error == nil {
		t.Errorf("expected failed result with error, got %s", res)
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	gw := gatewaytest.New(t)
	c := client.New(gw.URL())

	c.PoolStats(context.Background())
	c.PoolStats(context.Background())

	reqs := gw.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].RequestID == "" || reqs[0].RequestID == reqs[1].RequestID {
		t.Errorf("expected distinct request IDs, got %q and %q", reqs[0].RequestID, reqs[1].RequestID)
	}
}

func TestRenameScript(t *testing.T) {
	gw := gatewaytest.New(t)
	c := client.New(gw.URL())
	ctx := context.Background()

	orig := client.SaveScriptRequest{Name: "draft", Code: "print(1)", Description: "wip", Author: "ops", FolderPath: "Work", Version: "1.3"}
	if err := c.SaveScript(ctx, orig); err != nil {
		t.Fatal(err)
	}

	if err := c.RenameScript(ctx, "draft", "final", nil); err != nil {
		t.Fatalf("RenameScript() error: %v", err)
	}

	got, err := c.LoadScript(ctx, "final")
	if err != nil {
		t.Fatalf("expected renamed script: %v", err)
	}
	if got.Code != orig.Code || got.Description != orig.Description || got.Author != orig.Author ||
		got.FolderPath != orig.FolderPath || got.Version != orig.Version {
		t.Errorf("expected every other field kept, got %+v", got)
	}
	if _, ok := gw.Script("draft"); ok {
		t.Error("expected old name deleted")
	}
}

func TestRenameScript_MovesFolder(t *testing.T) {
	gw := gatewaytest.New(t)
	c := client.New(gw.URL())
	ctx := context.Background()
	gw.PutScript(gatewaytest.Script{Name: "report", Code: "x", FolderPath: "Old"})

	folder := "Reports/Daily"
	if err := c.RenameScript(ctx, "report", "report", &folder); err != nil {
		t.Fatalf("RenameScript() error: %v", err)
	}

	got, ok := gw.Script("report")
	if !ok || got.FolderPath != "Reports/Daily" || got.Code != "x" {
		t.Errorf("expected script moved in place, got %+v ok=%t", got, ok)
	}
}

func TestRenameScript_TargetExists(t *testing.T) {
	gw := gatewaytest.New(t)
	c := client.New(gw.URL())
	gw.PutScript(gatewaytest.Script{Name: "a", Code: "1"})
	gw.PutScript(gatewaytest.Script{Name: "b", Code: "2"})

	err := c.RenameScript(context.Background(), "a", "b", nil)
	if !errors.Is(err, client.ErrScriptExists) {
		t.Fatalf("expected ErrScriptExists, got %v", err)
	}

	if got, _ := gw.Script("b"); got.Code != "2" {
		t.Errorf("expected existing script untouched, got %+v", got)
	}
	if _, ok := gw.Script("a"); !ok {
		t.Error("expected source kept")
	}
}

func TestRenameScript_MissingSource(t *testing.T) {
	gw := gatewaytest.New(t)
	c := client.New(gw.URL())

	err := c.RenameScript(context.Background(), "ghost", "new", nil)
	var se *client.ScriptError
	if !errors.As(err, &se) || se.Op != "rename" || se.Name != "ghost" {
		t.Fatalf("expected rename ScriptError naming ghost, got %v", err)
	}
	if _, ok := gw.Script("new"); ok {
		t.Error("expected nothing saved")
	}
}

func TestRenameScript_DeleteFailureKeepsBoth(t *testing.T) {
	gw := gatewaytest.New(t)
	c := client.New(gw.URL())
	gw.PutScript(gatewaytest.Script{Name: "a", Code: "1"})
	gw.Override("/scripts/delete/a", 500, "locked")

	if err := c.RenameScript(context.Background(), "a", "b", nil); err == nil {
		t.Fatal("expected an error when the old name cannot be deleted")
	}
	if _, ok := gw.Script("a"); !ok {
		t.Error("expected source kept")
	}
	if got, ok := gw.Script("b"); !ok || got.Code != "1" {
		t.Errorf("expected new copy saved, got %+v ok=%t", got, ok)
	}
}
