// ABOUTME: Exec and eval commands for the py3ide CLI
// ABOUTME: Run Python code or evaluate an expression in the Gateway's pool

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	execCode     string
	execVars     []string
	execVarsFile string
)

var execCmd = &cobra.Command{
	Use:   "exec [FILE]",
	Short: "Execute Python code on the Gateway",
	Long: `Execute Python code in the Gateway's Python 3 process pool.

Code comes from -c, from FILE, or from stdin when neither is given (or FILE is "-").
Set the "result" variable in your code to return a value.

Exit codes:
  0 - Code ran successfully
  1 - Python raised an error
  2 - Error (connectivity, invalid input)`,
	Example: `  py3ide exec -c 'result = 2 + 2'
  py3ide exec report.py --var site=north --var limit=10
  echo 'result = x * 2' | py3ide exec --vars-file vars.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		code, err := readSource(execCode, args, os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(2)
		}

		exitCode := runExec(ctx, os.Stdout, false, code)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval EXPRESSION",
	Short: "Evaluate a Python expression on the Gateway",
	Long: `Evaluate a single Python expression in the Gateway's Python 3 process pool and print its value.

Exit codes:
  0 - Expression evaluated
  1 - Python raised an error
  2 - Error (connectivity, invalid input)`,
	Example: `  py3ide eval '2 ** 10'
  py3ide eval 'x + y' --var x=1 --var y=2`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runExec(ctx, os.Stdout, true, strings.Join(args, " "))
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(evalCmd)

	execCmd.Flags().StringVarP(&execCode, "code", "c", "", "Python code to execute")
	for _, c := range []*cobra.Command{execCmd, evalCmd} {
		c.Flags().StringArrayVar(&execVars, "var", nil, "Variable as name=value (value parsed as YAML, repeatable)")
		c.Flags().StringVar(&execVarsFile, "vars-file", "", "YAML or JSON file of variables")
	}
}

// readSource picks the code from -c, a file argument, or stdin
func readSource(code string, args []string, stdin io.Reader) (string, error) {
	if code != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("use either -c or a file argument, not both")
		}
		return code, nil
	}

	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read code: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no code to execute")
	}
	return string(data), nil
}

// parseVariables merges --vars-file and --var pairs; pairs win
func parseVariables(pairs []string, file string) (map[string]interface{}, error) {
	vars := map[string]interface{}{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read vars file: %w", err)
		}
		if err := yaml.Unmarshal(data, &vars); err != nil {
			return nil, fmt.Errorf("failed to parse vars file %s: %w", file, err)
		}
		if vars == nil {
			vars = map[string]interface{}{}
		}
	}

	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q (want name=value)", pair)
		}
		var value interface{}
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		vars[name] = value
	}

	return vars, nil
}

// runExec sends the code or expression and returns exit code
func runExec(ctx context.Context, w io.Writer, evaluate bool, source string) int {
	vars, err := parseVariables(execVars, execVarsFile)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	c, _, err := newClient()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	var res *client.ExecutionResult
	if evaluate {
		res, err = c.EvaluateExpression(ctx, source, vars)
	} else {
		res, err = c.ExecuteCode(ctx, source, vars)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatResultJSON(res))
	} else {
		fmt.Fprintln(w, formatResultHuman(res))
	}

	if !res.Success {
		return 1
	}
	return 0
}

// formatResultHuman prints the result, or the Python error
func formatResultHuman(res *client.ExecutionResult) string {
	if !res.Success {
		msg := res.ErrorMessage()
		if msg == "" {
			msg = "Unknown error"
		}
		return "Error: " + msg
	}
	return res.Output()
}

// formatResultJSON formats an execution result as JSON
func formatResultJSON(res *client.ExecutionResult) string {
	data, _ := json.MarshalIndent(res, "", "  ")
	return string(data)
}
