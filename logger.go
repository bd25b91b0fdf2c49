package qd

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/qd/backend"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for qd and its sub-packages.
// By default, qd produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by qd:
//   - [slog.LevelDebug]: internal diagnostics (atlas utilization, batch sizes)
//   - [slog.LevelInfo]: atlas growth (new glyph cache page created)
//   - [slog.LevelWarn]: non-fatal issues (released resource after context loss)
//   - [slog.LevelError]: skipped operations (oversized glyph, failed upload)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Backends log resource lifecycle events through their own package
	// to avoid an import cycle; keep them on the same logger.
	backend.SetLogger(l)
}

// Logger returns the current logger used by qd.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
