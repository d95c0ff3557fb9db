// ABOUTME: Configuration loader for the py3ide CLI and terminal IDE
// ABOUTME: Reads an optional .env file, then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
)

// Environment variable names
const (
	EnvGatewayURL     = "IGNITION_GATEWAY_URL"
	EnvBasePath       = "PY3IDE_BASE_PATH"
	EnvRequestTimeout = "PY3IDE_REQUEST_TIMEOUT"
	EnvConnectTimeout = "PY3IDE_CONNECT_TIMEOUT"
	EnvAllProxy       = "IGNITION_GATEWAY_ALL_PROXY"
	EnvAuthor         = "PY3IDE_AUTHOR"
	EnvConfigDir      = "PY3IDE_CONFIG_DIR"
	EnvPoolRefresh    = "PY3IDE_POOL_REFRESH"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
)

const defaultPoolRefresh = 5 * time.Second

type Config struct {
	// Gateway
	GatewayURL     string
	BasePath       string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	AllProxy       string // ssh+socks5://user@host:port?private-key=/path

	// Scripts
	Author string // default author recorded on save

	// IDE
	ConfigDir   string
	PoolRefresh time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Override adjusts a loaded config before it is validated, e.g. from CLI flags
type Override func(*Config)

// Load reads .env from the working directory (if present) and then the
// process environment. Variables already set in the environment win over .env,
// and overrides win over both.
func Load(overrides ...Override) (*Config, error) {
	return LoadWithEnvFile(".env", overrides...)
}

// LoadWithEnvFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadWithEnvFile(envFile string, overrides ...Override) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		GatewayURL:     getEnv(EnvGatewayURL, client.DefaultGatewayURL),
		BasePath:       getEnv(EnvBasePath, client.DefaultBasePath),
		RequestTimeout: getEnvSeconds(EnvRequestTimeout, client.DefaultRequestTimeout),
		ConnectTimeout: getEnvSeconds(EnvConnectTimeout, client.DefaultConnectTimeout),
		AllProxy:       os.Getenv(EnvAllProxy),

		Author: getEnv(EnvAuthor, defaultAuthor()),

		ConfigDir:   getEnv(EnvConfigDir, DefaultConfigDir()),
		PoolRefresh: getEnvSeconds(EnvPoolRefresh, defaultPoolRefresh),

		LogLevel:  getEnv(EnvLogLevel, "info"),
		LogFormat: getEnv(EnvLogFormat, "text"),
	}

	for _, o := range overrides {
		o(cfg)
	}
	cfg.GatewayURL = NormalizeGatewayURL(cfg.GatewayURL)
	cfg.BasePath = client.NormalizeBasePath(cfg.BasePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that would otherwise fail later at request time
func (c *Config) Validate() error {
	if c.GatewayURL == "" {
		return fmt.Errorf("%s must not be empty", EnvGatewayURL)
	}
	if !strings.HasPrefix(c.GatewayURL, "http://") && !strings.HasPrefix(c.GatewayURL, "https://") {
		return fmt.Errorf("gateway URL must use http or https, got %q", c.GatewayURL)
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base path must start with '/', got %q", c.BasePath)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{EnvRequestTimeout, c.RequestTimeout},
		{EnvConnectTimeout, c.ConnectTimeout},
		{EnvPoolRefresh, c.PoolRefresh},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}

	if c.AllProxy != "" {
		if _, err := client.ParseAllProxy(c.AllProxy); err != nil {
			return fmt.Errorf("%s: %w", EnvAllProxy, err)
		}
	}
	return nil
}

// ClientOptions translates the config into client construction options
func (c *Config) ClientOptions() []client.Option {
	opts := []client.Option{
		client.WithBasePath(c.BasePath),
		client.WithRequestTimeout(c.RequestTimeout),
		client.WithConnectTimeout(c.ConnectTimeout),
	}
	if c.AllProxy != "" {
		opts = append(opts, client.WithAllProxy(c.AllProxy))
	}
	return opts
}

// NormalizeGatewayURL adds http:// when no scheme is given and strips a trailing slash
func NormalizeGatewayURL(url string) string {
	return client.NormalizeGatewayURL(url)
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "py3ide")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "py3ide")
}

func defaultAuthor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "Unknown"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvSeconds parses an integer number of seconds, falling back on bad input
func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
