package gpu

import (
	"log/slog"
	"sync/atomic"
)

// current is the logger of the GPU resource layer. Records are tagged
// with component=gpu.
var current atomic.Pointer[slog.Logger]

func init() { SetLogger(nil) }

func slogger() *slog.Logger { return current.Load() }

// SetLogger installs l for pool, pipeline and resource diagnostics.
// A nil l drops every record. uirender.SetLogger forwards here.
func SetLogger(l *slog.Logger) {
	if l == nil {
		current.Store(slog.New(slog.DiscardHandler))
		return
	}
	current.Store(l.With("component", "gpu"))
}
