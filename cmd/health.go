// ABOUTME: Health command for the py3ide CLI
// ABOUTME: Checks Gateway reachability and the Python version the pool runs

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check Gateway connectivity",
	Long: `Check that the Python 3 Integration module on the Gateway answers its health endpoint.

Exit codes:
  0 - Gateway healthy
  1 - Gateway unhealthy or unreachable
  2 - Error (invalid configuration)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// healthReport is what the health command prints
type healthReport struct {
	Gateway string
	Healthy bool
	Python  string
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	report := healthReport{Gateway: c.GatewayURL(), Healthy: c.Healthy(ctx)}
	if report.Healthy {
		if v, err := c.PythonVersion(ctx); err == nil {
			report.Python = v
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(report))
	} else {
		fmt.Fprintln(w, formatHealthHuman(report))
	}

	if !report.Healthy {
		return 1
	}
	return 0
}

// formatHealthHuman formats the health report for human readability
func formatHealthHuman(r healthReport) string {
	status := "healthy"
	if !r.Healthy {
		status = "unreachable or unhealthy"
	}
	python := r.Python
	if python == "" {
		python = "unknown"
	}
	return fmt.Sprintf(`Gateway:  %s
Status:   %s
Python:   %s`, r.Gateway, status, python)
}

// formatHealthJSON formats the health report as JSON
func formatHealthJSON(r healthReport) string {
	output := map[string]interface{}{
		"gateway": r.Gateway,
		"healthy": r.Healthy,
		"python":  r.Python,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
