// Package logger writes structured logs to a file. The TUI owns the terminal,
// so nothing is ever logged to stdout or stderr.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	root     = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelVar}))
	logFile  *os.File
	logPath  string
)

// DefaultPath is $TMPDIR/lefocus-debug.log.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "lefocus-debug.log")
}

// DebugFromEnv reports whether LEFOCUS_DEBUG asks for debug logging.
func DebugFromEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LEFOCUS_DEBUG"))) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// Init opens path for appending and routes every component logger to it.
// Until Init is called loggers discard their output.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", path, err)
	}
	logFile = f
	logPath = path
	root = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	root.Info("logger initialized", "path", path, "level", levelVar.Level().String())
	return nil
}

// SetDebug toggles debug level output.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Path returns the file Init opened, or "".
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Component returns a logger tagged with component=name. Loggers obtained
// before Init keep discarding.
func Component(name string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return root.With(slog.String("component", name))
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logPath = ""
	root = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelVar}))
}
