// ABOUTME: Version command for the py3ide CLI
// ABOUTME: Prints the CLI build version and the Gateway's Python version

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI and Gateway Python versions",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runVersion(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// runVersion prints versions. A Gateway failure is reported but the CLI
// version is still printed.
func runVersion(ctx context.Context, w io.Writer) int {
	fmt.Fprintf(w, "py3ide %s\n", Version)

	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	v, err := c.PythonVersion(ctx)
	if err != nil {
		fmt.Fprintf(w, "Gateway Python: unavailable (%v)\n", err)
		return 2
	}
	fmt.Fprintf(w, "Gateway Python: %s\n", v)
	return 0
}
