// ABOUTME: Pool, impact and diagnostics commands for the py3ide CLI
// ABOUTME: Inspect and resize the Gateway's Python process pool

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/spf13/cobra"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Inspect or resize the Python process pool",
}

var poolStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pool statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runPoolStats(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var poolResizeCmd = &cobra.Command{
	Use:   "resize SIZE",
	Short: fmt.Sprintf("Resize the pool (%d-%d processes)", client.MinPoolSize, client.MaxPoolSize),
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runPoolResize(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Show the Gateway impact assessment",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runImpact(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "Show execution metrics from the Gateway",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runDiagnostics(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	poolCmd.AddCommand(poolStatsCmd)
	poolCmd.AddCommand(poolResizeCmd)
	rootCmd.AddCommand(poolCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(diagnosticsCmd)
}

func runPoolStats(ctx context.Context, w io.Writer) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	stats, err := c.PoolStats(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, `Total:      %d [%s]
Healthy:    %d
Available:  %d
In use:     %d (%.0f%%)
`, stats.TotalSize, poolStatus(*stats), stats.Healthy, stats.Available, stats.InUse, stats.Utilization())
	}
	return 0
}

func runPoolResize(ctx context.Context, w io.Writer, arg string) int {
	size, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(w, "Error: invalid pool size %q\n", arg)
		return 2
	}

	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := c.SetPoolSize(ctx, size); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "Pool resized to %d processes\n", size)
	return 0
}

func runImpact(ctx context.Context, w io.Writer) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	impact := c.GatewayImpact(ctx)
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(impact, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintf(w, "Impact:         %s\nHealth score:   %d\n", impact.ImpactLevel, impact.HealthScore)
	if impact.MemoryUsageMB != nil {
		fmt.Fprintf(w, "Memory:         %.1f MB\n", *impact.MemoryUsageMB)
	}
	if impact.CPUUsagePercent != nil {
		fmt.Fprintf(w, "CPU:            %.1f%%\n", *impact.CPUUsagePercent)
	}
	if impact.AverageCPUTimeMs != nil {
		fmt.Fprintf(w, "Avg CPU time:   %.1f ms\n", *impact.AverageCPUTimeMs)
	}
	if rec := impact.RecommendationText(); rec != "" {
		fmt.Fprintf(w, "Recommendation: %s\n", rec)
	}
	return 0
}

func runDiagnostics(ctx context.Context, w io.Writer) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	raw, err := c.Diagnostics(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
			fmt.Fprintln(w, raw)
		} else {
			fmt.Fprintln(w, buf.String())
		}
		return 0
	}

	m, err := client.ParseExecutionMetrics(raw)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintf(w, `Executions:    %d
Successful:    %d
Failed:        %d
Success rate:  %.1f%%
Average time:  %.2fms
`, m.TotalExecutions, m.SuccessfulExecutions, m.FailedExecutions, m.SuccessRate(), m.AverageExecutionTime)
	return 0
}
