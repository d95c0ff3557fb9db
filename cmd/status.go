// ABOUTME: Status command for the py3ide CLI
// ABOUTME: Shows pool stats, Gateway impact and execution metrics in one view

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Python pool and Gateway status",
	Long:  `Display the Python process pool, the Gateway impact assessment, and aggregate execution metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatus(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// gatewayStatus gathers everything the status command shows
type gatewayStatus struct {
	Gateway string                   `json:"gateway"`
	Healthy bool                     `json:"healthy"`
	Python  string                   `json:"python,omitempty"`
	Pool    client.PoolStats         `json:"pool"`
	Impact  client.GatewayImpact     `json:"impact"`
	Metrics *client.ExecutionMetrics `json:"metrics,omitempty"`
}

// fetchStatus queries the Gateway endpoints concurrently. Only a pool stats
// failure is fatal; version and metrics are optional.
func fetchStatus(ctx context.Context, c *client.Client) (*gatewayStatus, error) {
	st := &gatewayStatus{Gateway: c.GatewayURL()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pool, err := c.PoolStats(gctx)
		if err != nil {
			return err
		}
		st.Pool = *pool
		return nil
	})
	g.Go(func() error {
		st.Healthy = c.Healthy(gctx)
		return nil
	})
	g.Go(func() error {
		st.Impact = c.GatewayImpact(gctx)
		return nil
	})
	g.Go(func() error {
		if v, err := c.PythonVersion(gctx); err == nil {
			st.Python = v
		}
		return nil
	})
	g.Go(func() error {
		raw, err := c.Diagnostics(gctx)
		if err != nil {
			return nil
		}
		if m, err := client.ParseExecutionMetrics(raw); err == nil {
			st.Metrics = &m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return st, nil
}

// runStatus executes the status query and returns exit code
func runStatus(ctx context.Context, w io.Writer) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	st, err := fetchStatus(ctx, c)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(st))
	} else {
		fmt.Fprintln(w, formatStatusHuman(st))
	}

	return 0
}

// formatStatusHuman formats the status for human readability
func formatStatusHuman(st *gatewayStatus) string {
	python := st.Python
	if python == "" {
		python = "unknown"
	}

	out := fmt.Sprintf(`Gateway:        %s
Python:         %s

Pool:           %d processes [%s]
  Healthy:      %d
  Available:    %d
  In use:       %d (%.0f%%)

Impact:         %s (health score %d)`,
		st.Gateway, python,
		st.Pool.TotalSize, poolStatus(st.Pool),
		st.Pool.Healthy,
		st.Pool.Available,
		st.Pool.InUse, st.Pool.Utilization(),
		st.Impact.ImpactLevel, st.Impact.HealthScore)

	if rec := st.Impact.RecommendationText(); rec != "" {
		out += fmt.Sprintf("\nRecommendation: %s", rec)
	}

	if st.Metrics != nil {
		out += fmt.Sprintf(`

Executions:     %d (%d ok, %d failed, %.1f%% success)
Average time:   %.2fms`,
			st.Metrics.TotalExecutions, st.Metrics.SuccessfulExecutions, st.Metrics.FailedExecutions,
			st.Metrics.SuccessRate(), st.Metrics.AverageExecutionTime)
	}

	return out
}

// formatStatusJSON formats the status as JSON
func formatStatusJSON(st *gatewayStatus) string {
	data, _ := json.MarshalIndent(st, "", "  ")
	return string(data)
}

// poolStatus returns ok/degraded/busy for a pool snapshot
func poolStatus(p client.PoolStats) string {
	if !p.IsHealthy() {
		return "degraded"
	}
	if p.TotalSize > 0 && p.Available == 0 {
		return "busy"
	}
	return "ok"
}
