package gpu

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/uirender/internal/gputest"
)

func TestSetLogger_TagsComponent(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	p, _ := NewFramePool(gputest.NewDevice(), 1)
	if err := p.EnsureCapacity(p.Slot(0), 1, 1); err != nil {
		t.Fatalf("EnsureCapacity() = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "vertex buffer grown") || !strings.Contains(out, "component=gpu") {
		t.Errorf("log output = %q, want a growth record tagged component=gpu", out)
	}

	SetLogger(nil)
	if slogger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) left an enabled logger")
	}
}
