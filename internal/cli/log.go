// Package cli implements the shopfloor command-line interface.
//
// The CLI hosts a layout editing session either in the terminal (edit) or
// over HTTP (serve), and offers a few maintenance commands for the machine
// catalog and the persisted layout. It is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - edit: Interactive terminal editor with mouse drag, pan and zoom
//   - serve: HTTP API for browser hosts, with Prometheus metrics
//   - machines: List the asset catalog and which machines are placed
//   - snapshot: Show, export, import or reset the persisted layout
//   - completion: Shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The edit
// command silences the logger while the terminal UI owns the screen unless
// --log-file is given.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created,
// e.g. "Restored 24 items (12ms)".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg+" ("+time.Since(p.start).Round(time.Millisecond).String()+")", keyvals...)
}
