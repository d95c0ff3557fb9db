// ABOUTME: IDE command launching the terminal editor for Gateway scripts
// ABOUTME: Logs go to a debug file in the config directory while the alt screen is active

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/logger"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var ideCmd = &cobra.Command{
	Use:   "ide",
	Short: "Open the terminal IDE",
	Long: `Open a full-screen editor connected to the Gateway.

Keys:
  ctrl+r  run the buffer          ctrl+e  evaluate the current line
  esc     cancel the execution    ctrl+s  save to the Gateway
  ctrl+o  browse saved scripts    ctrl+n  new script
  ctrl+p  refresh pool stats      ctrl+c  quit

Logs are written to debug.log in the config directory (PY3IDE_CONFIG_DIR).`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runIDE(os.Stderr, term.IsTerminal(int(os.Stdout.Fd())))
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(ideCmd)
}

// runIDE starts the IDE and returns the exit code. Errors go to errOut
// because stdout belongs to the alt screen.
func runIDE(errOut io.Writer, interactive bool) int {
	if !interactive {
		fmt.Fprintln(errOut, "Error: the IDE needs an interactive terminal")
		return 2
	}

	c, cfg, err := newClient()
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 2
	}

	level := cfg.LogLevel
	if rootCmd.PersistentFlags().Changed("log-level") {
		level = logLevel
	}
	if err := logger.InitFile(cfg.ConfigDir, level, cfg.LogFormat); err != nil {
		fmt.Fprintf(errOut, "Warning: debug log disabled: %v\n", err)
	}
	defer logger.Close()

	if err := tui.Run(c, cfg); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}
