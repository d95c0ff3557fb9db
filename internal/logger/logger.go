// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: CLI commands log to stderr; the IDE logs to a debug file so the alt screen stays clean.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init configures the default slog logger writing to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// InitFile points the default logger at <dir>/debug.log.
// If dir is empty, logging is discarded.
func InitFile(dir, level, format string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	if dir == "" {
		Init(io.Discard, level, format)
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		Init(io.Discard, level, format)
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		Init(io.Discard, level, format)
		return err
	}

	logFile = f
	Init(f, level, format)
	return nil
}

// Close closes the debug log file, if one is open, and restores stderr logging
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		closeLocked()
		Init(os.Stderr, "info", "text")
	}
}

func closeLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
