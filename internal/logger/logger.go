// Package logger provides the structured slog logger used by the worker.
// All logs are written in JSON format to a size-rotated file.
//
// Log files are organized as:
//
//	<logDir>/system.log       current file
//	<logDir>/system-*.log.gz  rotated backups
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the system log.
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 28
)

// Options configures NewSystemLogger.
type Options struct {
	Level slog.Level
	// Stderr also writes every record to stderr.
	Stderr bool
}

// NewSystemLogger creates a JSON slog.Logger that writes to <logDir>/system.log,
// rotated by lumberjack. The directory is created if it does not exist.
// The returned closer flushes and closes the log file.
func NewSystemLogger(logDir string, opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "system.log"),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	var w io.Writer = rotator
	if opts.Stderr {
		w = io.MultiWriter(rotator, os.Stderr)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})
	return slog.New(handler), rotator, nil
}
