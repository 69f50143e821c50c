// Package logging installs the process-wide slog logger
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// New returns a slog logger backed by a charmbracelet logger writing to w
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "poshana",
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
	})
	return slog.New(handler), nil
}

// Setup makes a logger writing to w the default
func Setup(w io.Writer, level string) error {
	logger, err := New(w, level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// OpenFile opens path for appending, creating its directory if needed
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
