// Package cli implements the wzrd command-line interface.
//
// Commands cover the whole round trip: importing a script into a node graph,
// laying it out, generating the script back, rendering it, persisting it in a
// store, and editing it live. The CLI is built with cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - import: Parse a script into graph JSON
//   - generate: Produce script text from graph JSON
//   - layout: Auto-layout a graph
//   - render: Draw a script or graph as SVG, PNG, PDF or DOT
//   - templates: List the built-in node templates
//   - store: Save, load, list and delete persisted graphs
//   - watch: Live preview that re-imports a script on change
//   - serve: Run the HTTP API
//   - cache: Manage the pipeline cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// also attached to the command context so long-running commands can hand it
// to background work.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of a single sequential operation.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Imported 6 nodes (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the attached logger or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
