package graph

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures logging for the render graph and its
// sub-packages. By default nothing is logged. Pass nil to restore the
// silent default. Safe for concurrent use.
//
// Levels used:
//   - [slog.LevelDebug]: resource lifecycle (framebuffer recreation,
//     pipeline builds)
//   - [slog.LevelWarn]: recoverable rendering gaps (item skipped for
//     lack of a registered pipeline)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages call this so the
// whole module shares one configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
