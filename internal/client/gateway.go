// ABOUTME: Pool, health and diagnostics endpoints
// ABOUTME: Health and impact degrade to safe defaults; pool endpoints propagate errors

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

type ackResponse struct {
	Success *bool   `json:"success"`
	Error   *string `json:"error"`
}

func (a ackResponse) ok() bool {
	return a.Success != nil && *a.Success
}

// PoolStats fetches a snapshot of the Python process pool. Missing fields are 0.
func (c *Client) PoolStats(ctx context.Context) (*PoolStats, error) {
	body, err := c.get(ctx, "/pool-stats")
	if err != nil {
		return nil, err
	}

	var stats PoolStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("invalid pool stats response: %w", err)
	}
	return &stats, nil
}

// SetPoolSize resizes the process pool. Sizes outside 1..20 are rejected locally.
func (c *Client) SetPoolSize(ctx context.Context, size int) error {
	req := poolSizeRequest{Size: size}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("pool size must be between %d and %d, got %d", MinPoolSize, MaxPoolSize, size)
	}

	body, err := c.post(ctx, "/pool-size", req)
	if err != nil {
		return err
	}

	var ack ackResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("invalid pool size response: %w", err)
	}
	if !ack.ok() {
		msg := "Unknown error"
		if ack.Error != nil {
			msg = *ack.Error
		}
		return fmt.Errorf("failed to set pool size: %s", msg)
	}

	slog.Info("Pool size changed", "size", size)
	return nil
}

// Healthy reports the Gateway's health flag. Any failure reads as unhealthy.
func (c *Client) Healthy(ctx context.Context) bool {
	body, err := c.get(ctx, "/health")
	if err != nil {
		slog.Warn("Health check failed", "error", err)
		return false
	}

	var resp struct {
		Healthy *bool `json:"healthy"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("Invalid health response", "error", err)
		return false
	}
	return resp.Healthy != nil && *resp.Healthy
}

// Diagnostics returns the raw /diagnostics body; see ParseExecutionMetrics
func (c *Client) Diagnostics(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/diagnostics")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PythonVersion returns the Gateway's Python version, or "Unknown" when not reported
func (c *Client) PythonVersion(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/version")
	if err != nil {
		return "", err
	}

	var resp struct {
		PythonVersion *string `json:"pythonVersion"`
		Version       *string `json:"version"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("invalid version response: %w", err)
	}

	switch {
	case resp.PythonVersion != nil && *resp.PythonVersion != "":
		return *resp.PythonVersion, nil
	case resp.Version != nil && *resp.Version != "":
		return *resp.Version, nil
	default:
		return "Unknown", nil
	}
}

// GatewayImpact returns the Gateway's load assessment. When the endpoint is
// unavailable the default healthy assessment is returned instead of an error.
func (c *Client) GatewayImpact(ctx context.Context) GatewayImpact {
	body, err := c.get(ctx, "/gateway-impact")
	if err != nil {
		slog.Warn("Failed to get gateway impact, using default", "error", err)
		return DefaultGatewayImpact()
	}

	var impact GatewayImpact
	if err := json.Unmarshal(body, &impact); err != nil {
		slog.Warn("Invalid gateway impact response, using default", "error", err)
		return DefaultGatewayImpact()
	}
	return impact
}
