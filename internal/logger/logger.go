// Package logger provides the process-wide structured logger.
//
// It wraps log/slog with a text handler on stderr. The level comes from the
// LOG_LEVEL environment variable (debug, info, warn, error) and can be
// changed at runtime with SetLevel or SetVerbose.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// DefaultLogger is the global structured logger instance.
var DefaultLogger *slog.Logger

var (
	mu    sync.Mutex
	out   io.Writer      = os.Stderr
	level *slog.LevelVar = new(slog.LevelVar)
)

func init() {
	level.Set(ParseLevel(os.Getenv("LOG_LEVEL")))
	rebuild()
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func rebuild() {
	DefaultLogger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// SetLevel changes the level for all subsequent log calls.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetVerbose switches between debug and info.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	rebuild()
}

func Debug(msg string, args ...any) { DefaultLogger.Debug(msg, args...) }

func Info(msg string, args ...any) { DefaultLogger.Info(msg, args...) }

func Warn(msg string, args ...any) { DefaultLogger.Warn(msg, args...) }

func Error(msg string, args ...any) { DefaultLogger.Error(msg, args...) }
