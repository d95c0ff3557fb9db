// ABOUTME: Root command for the py3ide CLI
// ABOUTME: Handles global flags, configuration and logging setup

package cmd

import (
	"os"
	"time"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/config"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/logger"
	"github.com/spf13/cobra"
)

var (
	gatewayURL  string
	basePath    string
	timeoutSecs int
	jsonOutput  bool
	logLevel    string
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "py3ide",
	Short: "CLI and terminal IDE for the Ignition Python 3 Integration Gateway module",
	Long: `py3ide talks to the Python 3 Integration module running on an Ignition Gateway.

It runs code and expressions in the Gateway's Python process pool, manages saved
scripts, reports pool health for CI/CD checks, and offers a terminal IDE (py3ide ide).

Environment Variables:
  IGNITION_GATEWAY_URL        Gateway URL (default: http://localhost:8088)
  PY3IDE_BASE_PATH            API base path (default: /data/python3integration/api/v1)
  PY3IDE_REQUEST_TIMEOUT      Request timeout in seconds (default: 30)
  PY3IDE_CONNECT_TIMEOUT      Connect timeout in seconds (default: 10)
  IGNITION_GATEWAY_ALL_PROXY  ssh+socks5://user@host:port?private-key=/path
  PY3IDE_AUTHOR               Author recorded when saving scripts
  LOG_LEVEL, LOG_FORMAT       Logging (debug|info|warn|error, text|json)

A .env file in the working directory is read when present.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if env := os.Getenv(config.EnvLogLevel); env != "" {
				level = env
			}
		}
		logger.Init(os.Stderr, level, os.Getenv(config.EnvLogFormat))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway-url", "", "Gateway URL (overrides IGNITION_GATEWAY_URL)")
	rootCmd.PersistentFlags().StringVar(&basePath, "base-path", "", "API base path (overrides PY3IDE_BASE_PATH)")
	rootCmd.PersistentFlags().IntVar(&timeoutSecs, "timeout", 0, "Request timeout in seconds (overrides PY3IDE_REQUEST_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level for stderr output")
}

// loadConfig reads .env and the environment, then applies flag overrides
// before validating
func loadConfig() (*config.Config, error) {
	return config.Load(applyFlags)
}

func applyFlags(cfg *config.Config) {
	if gatewayURL != "" {
		cfg.GatewayURL = gatewayURL
	}
	if basePath != "" {
		cfg.BasePath = basePath
	}
	if timeoutSecs > 0 {
		cfg.RequestTimeout = time.Duration(timeoutSecs) * time.Second
	}
}

// newClient builds a Gateway client from the effective configuration
func newClient() (*client.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return client.New(cfg.GatewayURL, cfg.ClientOptions()...), cfg, nil
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
