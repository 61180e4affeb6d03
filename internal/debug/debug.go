// Package debug provides component-tagged logging for pagedit.
//
// Lines are written as "[LEVEL] [component] message". DEBUG and TRACE lines
// are only emitted while debug mode is on; INFO, WARN and ERROR always are.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// EnvVar enables debug mode at startup when set to any non-empty value.
const EnvVar = "PAGEDIT_DEBUG"

var (
	enabled atomic.Bool

	logFile     *os.File
	logFileMu   sync.Mutex
	logFilePath string

	logger = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	if os.Getenv(EnvVar) != "" {
		Enable()
	}
}

// Enable turns on debug logging.
func Enable() {
	enabled.Store(true)
}

// Disable turns off debug logging.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	return enabled.Load()
}

// SetOutput redirects log output. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	logger.SetOutput(w)
}

// SetLogFile mirrors log output into name under the user cache directory.
// An empty name restores stderr-only output.
func SetLogFile(name string) error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if name == "" {
		logger.SetOutput(os.Stderr)
		logFilePath = ""
		return nil
	}

	dir, err := logDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f
	logFilePath = path
	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

func logDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	dir := filepath.Join(cacheDir, "pagedit", "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return dir, nil
}

// GetLogFilePath returns the current log file path, or empty if not set.
func GetLogFilePath() string {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	return logFilePath
}

// Close closes the log file if open.
func Close() {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func emit(level, component, format string, args []interface{}) {
	logger.Printf("[%s] [%s] %s", level, component, fmt.Sprintf(format, args...))
}

// Log logs a debug message if debug mode is enabled.
func Log(component, format string, args ...interface{}) {
	if !enabled.Load() {
		return
	}
	emit("DEBUG", component, format, args)
}

// Trace logs a high-frequency message, such as a single pointer move,
// with a microsecond timestamp. Only emitted in debug mode.
func Trace(component, format string, args ...interface{}) {
	if !enabled.Load() {
		return
	}
	ts := time.Now().Format("15:04:05.000000")
	emit("TRACE", component, "["+ts+"] "+format, args)
}

// Info logs an informational message.
func Info(component, format string, args ...interface{}) {
	emit("INFO", component, format, args)
}

// Warn logs a warning message.
func Warn(component, format string, args ...interface{}) {
	emit("WARN", component, format, args)
}

// Error logs an error message.
func Error(component, format string, args ...interface{}) {
	emit("ERROR", component, format, args)
}
