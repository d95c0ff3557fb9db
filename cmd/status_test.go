// ABOUTME: Tests for the status command
// ABOUTME: Verifies concurrent status gathering and output formatting

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/gatewaytest"
)

func TestStatusCommand_Human(t *testing.T) {
	gw := useGateway(t)
	gw.SetPool(gatewaytest.Pool{TotalSize: 4, Healthy: 4, Available: 3, InUse: 1})
	gw.SetImpact(map[string]interface{}{
		"impactLevel":    "MODERATE",
		"healthScore":    72,
		"recommendation": "Consider reducing pool size",
	})

	var buf bytes.Buffer
	exitCode := runStatus(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	out := buf.String()
	for _, want := range []string{"4 processes [ok]", "In use:       1 (25%)", "MODERATE (health score 72)", "Consider reducing pool size", "3.11.9", "Executions:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestStatusCommand_JSON(t *testing.T) {
	useGateway(t)
	jsonOutput = true

	var buf bytes.Buffer
	if code := runStatus(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	var parsed gatewayStatus
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Pool.TotalSize != 3 || !parsed.Healthy {
		t.Errorf("unexpected status %+v", parsed)
	}
	if parsed.Impact.ImpactLevel != client.ImpactLow {
		t.Errorf("expected default LOW impact when endpoint missing, got %s", parsed.Impact.ImpactLevel)
	}
}

func TestStatusCommand_PoolStatsFailure(t *testing.T) {
	gw := useGateway(t)
	gw.Override("/pool-stats", http.StatusInternalServerError, "boom")

	var buf bytes.Buffer
	exitCode := runStatus(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "HTTP 500") {
		t.Errorf("expected HTTP status in error, got %s", buf.String())
	}
}

func TestStatusCommand_OptionalPartsMissing(t *testing.T) {
	gw := useGateway(t)
	gw.Override("/diagnostics", http.StatusNotFound, "")
	gw.Override("/version", http.StatusNotFound, "")

	var buf bytes.Buffer
	if code := runStatus(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if strings.Contains(buf.String(), "Executions:") {
		t.Error("expected metrics section to be omitted")
	}
	if !strings.Contains(buf.String(), "Python:         unknown") {
		t.Errorf("expected unknown Python version, got %s", buf.String())
	}
}

func TestPoolStatus(t *testing.T) {
	tests := []struct {
		pool client.PoolStats
		want string
	}{
		{client.PoolStats{TotalSize: 3, Healthy: 3, Available: 2, InUse: 1}, "ok"},
		{client.PoolStats{TotalSize: 3, Healthy: 2, Available: 2, InUse: 0}, "degraded"},
		{client.PoolStats{TotalSize: 3, Healthy: 3, Available: 0, InUse: 3}, "busy"},
		{client.PoolStats{}, "ok"},
	}

	for _, tc := range tests {
		if got := poolStatus(tc.pool); got != tc.want {
			t.Errorf("poolStatus(%v) = %s, want %s", tc.pool, got, tc.want)
		}
	}
}
