// ABOUTME: Shell command for the py3ide CLI
// ABOUTME: One-shot commands or an interactive shell session on the Gateway host

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var shellOnce string

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run shell commands on the Gateway host",
	Long: `Run shell commands on the Gateway host.

With --once, run a single command and exit with 0 on success, 1 on failure.
Without it, open an interactive session: each line read from stdin is run in
the same shell, until "exit" or end of input.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var exitCode int
		if shellOnce != "" {
			exitCode = runShellOnce(ctx, os.Stdout, shellOnce)
		} else {
			exitCode = runShellSession(ctx, os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
		}
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVar(&shellOnce, "once", "", "Run a single command and exit")
}

func runShellOnce(ctx context.Context, w io.Writer, command string) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	res, err := c.ExecuteShellCommand(ctx, command)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatResultJSON(res))
	} else {
		writeShellOutput(w, res)
	}

	if !res.Success {
		return 1
	}
	return 0
}

// runShellSession reads commands line by line until "exit" or EOF. The prompt
// is only shown when stdin is a terminal.
func runShellSession(ctx context.Context, in io.Reader, w io.Writer, interactive bool) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	sessionID, err := c.CreateShellSession(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer func() {
		// ctx may already be cancelled by Ctrl+C; closing still needs a live context
		if err := c.CloseShellSession(context.WithoutCancel(ctx), sessionID); err != nil {
			fmt.Fprintf(w, "Warning: failed to close session: %v\n", err)
		}
	}()

	if interactive {
		fmt.Fprintf(w, "Connected to %s (session %s). Type \"exit\" to quit.\n", c.GatewayURL(), sessionID)
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(w, "gateway$ ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		res, err := c.ExecShellSession(ctx, sessionID, line)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			if client.IsConnectivity(err) {
				return 2
			}
			continue
		}
		writeShellOutput(w, res)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}

func writeShellOutput(w io.Writer, res *client.ExecutionResult) {
	if out := res.Output(); out != "" {
		fmt.Fprint(w, out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Fprintln(w)
		}
	}
	if msg := res.ErrorMessage(); msg != "" {
		fmt.Fprintf(w, "Error: %s\n", msg)
	}
}
