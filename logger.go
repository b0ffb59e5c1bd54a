package rhi

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silentHandler drops every record. Enabled reports false, so renderers
// skip building the attributes of native call traces.
type silentHandler struct{}

func (silentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (silentHandler) Handle(context.Context, slog.Record) error { return nil }
func (silentHandler) WithAttrs([]slog.Attr) slog.Handler        { return silentHandler{} }
func (silentHandler) WithGroup(string) slog.Handler             { return silentHandler{} }

var silent = slog.New(silentHandler{})

// current is shared by every renderer; backends may log from loader
// goroutines while the host swaps loggers.
var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger routes rhi diagnostics to l. A nil l silences them again,
// which is also the state before the first call.
//
// Levels:
//   - [slog.LevelDebug]: native calls issued by state binds and draws,
//     swap chain resizes, renderer creation
//   - [slog.LevelInfo]: device opened, renderer created by name
//   - [slog.LevelWarn]: degraded behavior such as a missing capability,
//     an owner mismatch or resources still live at Close
//
// Trace every native call of every backend:
//
//	rhi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return current.Load()
}

// BackendLogger returns Logger with the backend attribute set to name.
// It is resolved on each call so a later SetLogger takes effect.
func BackendLogger(name string) *slog.Logger {
	return Logger().With("backend", name)
}
