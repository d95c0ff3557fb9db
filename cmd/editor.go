// ABOUTME: Syntax and completion commands for the py3ide CLI
// ABOUTME: Editor services from the Gateway, usable from scripts and other editors

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

var (
	completeLine   int
	completeColumn int
)

var syntaxCmd = &cobra.Command{
	Use:   "syntax [FILE]",
	Short: "Check Python syntax on the Gateway",
	Long: `Check a file (or stdin) for Python syntax errors using the Gateway's parser.

Exit codes:
  0 - No errors
  1 - Syntax errors found
  2 - Error (connectivity, invalid input)`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		code, err := readSource("", args, os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(2)
		}

		exitCode := runSyntax(ctx, os.Stdout, code)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [FILE]",
	Short: "List code completions at a position",
	Args:  cobra.MaximumNArgs(1),
	Example: `  py3ide complete script.py --line 3 --col 7`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		code, err := readSource("", args, os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(2)
		}

		exitCode := runComplete(ctx, os.Stdout, code, completeLine, completeColumn)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(syntaxCmd)
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().IntVar(&completeLine, "line", 1, "Cursor line (1-based)")
	completeCmd.Flags().IntVar(&completeColumn, "col", 0, "Cursor column (0-based)")
}

func runSyntax(ctx context.Context, w io.Writer, code string) int {
	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	check, err := c.CheckSyntax(ctx, code)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(check, "", "  ")
		fmt.Fprintln(w, string(data))
	} else if len(check.Errors) == 0 {
		fmt.Fprintln(w, "✓ No syntax errors")
	} else {
		for _, e := range check.Errors {
			fmt.Fprintf(w, "✗ %s\n", e)
		}
	}

	if len(check.Errors) > 0 {
		return 1
	}
	return 0
}

func runComplete(ctx context.Context, w io.Writer, code string, line, column int) int {
	if line < 1 || column < 0 {
		fmt.Fprintln(w, "Error: --line must be >= 1 and --col >= 0")
		return 2
	}

	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	items, err := c.Completions(ctx, code, line, column)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(items, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	for _, item := range items {
		if item.Signature != "" {
			fmt.Fprintf(w, "%-24s %-10s %s\n", item.Text, item.Type, item.Signature)
		} else {
			fmt.Fprintf(w, "%-24s %s\n", item.Text, item.Type)
		}
	}
	return 0
}
