// ABOUTME: Check command for the py3ide CLI
// ABOUTME: Validates Python pool health and Gateway impact for CI/CD pipelines

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
)

var (
	minHealthScore     int
	maxImpact          string
	requireHealthyPool bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check pool health and Gateway impact thresholds",
	Long: `Check the Python pool and Gateway impact and exit non-zero if any check fails.

Exit codes:
  0 - All checks passed
  1 - One or more checks failed
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCheck(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVar(&minHealthScore, "min-health-score", 50, "Minimum Gateway health score (0-100)")
	checkCmd.Flags().StringVar(&maxImpact, "max-impact", string(client.ImpactHigh), "Highest acceptable impact level (LOW, MODERATE, HIGH, CRITICAL)")
	checkCmd.Flags().BoolVar(&requireHealthyPool, "require-healthy-pool", true, "Fail when any pool process is unhealthy")
}

// checkResult represents the result of a single check
type checkResult struct {
	name      string
	value     string
	threshold string
	passed    bool
}

// runCheck executes the checks and returns exit code
func runCheck(ctx context.Context, w io.Writer) int {
	limit, err := validateThresholds(minHealthScore, maxImpact)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

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

	results := performChecks(st, limit)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatCheckJSON(results))
	} else {
		fmt.Fprintln(w, formatCheckHuman(results))
	}

	_, failed := countResults(results)
	if failed > 0 {
		return 1
	}
	return 0
}

// validateThresholds ensures threshold values are valid
func validateThresholds(score int, impact string) (client.ImpactLevel, error) {
	if score < 0 || score > 100 {
		return "", fmt.Errorf("--min-health-score must be between 0 and 100")
	}
	level, err := client.ParseImpactLevel(impact)
	if err != nil {
		return "", fmt.Errorf("--max-impact: %w", err)
	}
	return level, nil
}

// performChecks runs all checks against the gathered status
func performChecks(st *gatewayStatus, limit client.ImpactLevel) []checkResult {
	results := []checkResult{
		{
			name:      "Gateway reachable",
			value:     fmt.Sprintf("%t", st.Healthy),
			threshold: "true",
			passed:    st.Healthy,
		},
	}

	if requireHealthyPool {
		results = append(results, checkResult{
			name:      "Pool health",
			value:     fmt.Sprintf("%d/%d healthy", st.Pool.Healthy, st.Pool.TotalSize),
			threshold: "all healthy",
			passed:    st.Pool.IsHealthy(),
		})
	}

	results = append(results,
		checkResult{
			name:      "Health score",
			value:     fmt.Sprintf("%d", st.Impact.HealthScore),
			threshold: fmt.Sprintf(">= %d", minHealthScore),
			passed:    st.Impact.HealthScore >= minHealthScore,
		},
		checkResult{
			name:      "Impact level",
			value:     string(st.Impact.ImpactLevel),
			threshold: "<= " + string(limit),
			passed:    st.Impact.ImpactLevel.Rank() >= 0 && st.Impact.ImpactLevel.Rank() <= limit.Rank(),
		},
	)

	return results
}

// countResults returns the count of passed and failed checks
func countResults(results []checkResult) (passed, failed int) {
	for _, r := range results {
		if r.passed {
			passed++
		} else {
			failed++
		}
	}
	return
}

// formatCheckHuman formats check results for human readability
func formatCheckHuman(results []checkResult) string {
	var output string

	for _, r := range results {
		symbol := "✓"
		if !r.passed {
			symbol = "✗"
		}
		output += fmt.Sprintf("%s %s: %s (threshold: %s)\n", symbol, r.name, r.value, r.threshold)
	}

	passed, failed := countResults(results)
	if failed > 0 {
		output += fmt.Sprintf("\nFAILED: %d check(s) did not pass", failed)
	} else {
		output += fmt.Sprintf("\nPASSED: All %d check(s) passed", passed)
	}

	return output
}

// formatCheckJSON formats check results as JSON
func formatCheckJSON(results []checkResult) string {
	_, failed := countResults(results)

	checks := make([]map[string]interface{}, len(results))
	for i, r := range results {
		checks[i] = map[string]interface{}{
			"name":      r.name,
			"value":     r.value,
			"threshold": r.threshold,
			"passed":    r.passed,
		}
	}

	status := "passed"
	if failed > 0 {
		status = "failed"
	}

	output := map[string]interface{}{
		"status": status,
		"checks": checks,
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
