// Package logger appends structured JSON records to a file under the user's
// config directory. Long scans and cleanups leave their trail there instead
// of interleaving with terminal output.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	logDir = filepath.Join(os.Getenv("HOME"), ".config", "maccleaner")
	sink   *os.File

	// Log discards everything until Init installs a file handler.
	Log = slog.New(slog.NewJSONHandler(io.Discard, nil))
)

// Init opens the log file and installs the package-level handler. With debug
// set every level is recorded; otherwise only warnings and errors.
func Init(debug bool) error {
	Close()

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(logDir, "engine.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	sink = f

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	Log = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

func Debug(msg string, args ...any) { Log.Debug(msg, args...) }
func Info(msg string, args ...any)  { Log.Info(msg, args...) }
func Warn(msg string, args ...any)  { Log.Warn(msg, args...) }
func Error(msg string, args ...any) { Log.Error(msg, args...) }

// Close releases the log file handle. Further records go nowhere until the
// next Init.
func Close() {
	if sink != nil {
		sink.Close()
		sink = nil
		Log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
}
