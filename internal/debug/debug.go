// Package debug holds mtodo's logging: verbose diagnostics, quiet-aware
// user output, and the append-only event log of todo mutations.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	enabled     = os.Getenv("MTODO_DEBUG") != ""
	verboseMode = false
	quietMode   = false

	mu       sync.Mutex
	logger   *zap.SugaredLogger  // verbose diagnostics; nil until first use
	logOut   zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	logFile  *os.File
	events   *zap.Logger // nil when no event log is configured
	eventOut *os.File

	stdout io.Writer = os.Stdout
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// SetLogFile sends diagnostics to path instead of stderr. The TUI needs this
// because stderr shares the terminal with the alternate screen.
func SetLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	// #nosec G304 - path comes from the data directory
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	logOut = zapcore.Lock(zapcore.AddSync(f))
	logger = nil
	return nil
}

func diagnostics() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), logOut, zapcore.DebugLevel)
		logger = zap.New(core).Sugar()
	}
	return logger
}

// Logf writes a diagnostic line when debug or verbose mode is on.
func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		diagnostics().Debugf(strings.TrimRight(format, "\n"), args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Fprintf(stdout, format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Fprintln(stdout, args...)
	}
}

// OpenEventLog starts appending events to path as JSON lines.
func OpenEventLog(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create event log dir: %w", err)
	}
	// #nosec G304 - path comes from the data directory
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	enc.MessageKey = "event"
	enc.LevelKey = ""
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(zapcore.AddSync(f)), zapcore.InfoLevel)

	mu.Lock()
	defer mu.Unlock()
	if eventOut != nil {
		_ = eventOut.Close()
	}
	eventOut = f
	events = zap.New(core)
	return nil
}

// LogEvent records a mutation. Without an open event log it is a no-op.
func LogEvent(eventCode string, todoID int64, details string) {
	mu.Lock()
	l := events
	mu.Unlock()
	if l == nil {
		return
	}
	actor := os.Getenv("MTODO_ACTOR")
	if actor == "" {
		actor = os.Getenv("USER")
	}
	if actor == "" {
		actor = "unknown"
	}
	l.Info(eventCode,
		zap.Int64("todo_id", todoID),
		zap.String("actor", actor),
		zap.String("details", details),
	)
}

// Close flushes and closes the log files opened by this package.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if events != nil {
		_ = events.Sync()
		events = nil
	}
	if eventOut != nil {
		_ = eventOut.Close()
		eventOut = nil
	}
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
		logOut = zapcore.Lock(os.Stderr)
	}
}
