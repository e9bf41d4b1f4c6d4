// Package logger writes structured logs to a file so they never interleave
// with the console's own rendering.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu       sync.Mutex
	base     *slog.Logger
	levelVar = new(slog.LevelVar)
	logFile  *os.File
)

// Init opens path for appending and installs it as the log destination.
// Calling Init again replaces the previous destination.
func Init(path string, debug bool) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	setDebugLocked(debug)
	base = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	base.Info("logger initialized", "path", path, "debug", debug)
	return nil
}

// SetOutput routes logs to w. Tests use it to capture output.
func SetOutput(w io.Writer, debug bool) {
	mu.Lock()
	defer mu.Unlock()
	setDebugLocked(debug)
	base = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

// SetDebug toggles debug level at runtime.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	setDebugLocked(enabled)
}

func setDebugLocked(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Component returns a logger tagged with the component attribute. Before Init
// it discards everything.
//
// Example:
//
//	log := logger.Component("history")
//	log.Warn("refresh failed", "owner", email, "error", err)
func Component(name string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return base.With(slog.String("component", name))
}

// Close closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base = nil
}
