package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a logger that writes human-readable entries to stdout,
// the same console format the rest of the codebase expects from a
// component-scoped logger.
func NewLogger() *zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(console).With().Timestamp().Logger()
	return &logger
}

// NewFileLogger returns a logger that writes to both stdout and the file at
// path, mirroring the dual stdout+file handler pair buganime installs once
// per run.
func NewFileLogger(path string) (*zerolog.Logger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	multi := io.MultiWriter(console, file)
	logger := zerolog.New(multi).With().Timestamp().Logger()
	return &logger, nil
}
