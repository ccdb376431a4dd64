// Package logger builds the slog.Logger used by the ledger command.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Options selects the handler and level.
type Options struct {
	// Debug level instead of Info
	Verbose bool

	// JSON lines instead of logfmt-style text
	JSON bool

	// Destination; nil means stderr
	Output io.Writer
}

// New returns a logger configured from opts.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
