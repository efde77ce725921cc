package xasm

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// traceHandler is a slog.Handler that renders records as single lines of
// "time level message attr=val ..." into the `-d` trace file, mirroring
// the teacher pack's own slog-wrapping convention rather than reaching for
// slog.NewTextHandler's default key=value layout directly.
type traceHandler struct {
	out io.Writer
	h   slog.Handler
	mu  *sync.Mutex
}

func (t *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.h.Enabled(ctx, level)
}

func (t *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{out: t.out, h: t.h.WithAttrs(attrs), mu: t.mu}
}

func (t *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{out: t.out, h: t.h.WithGroup(name), mu: t.mu}
}

func (t *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("15:04:05.000"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Key+"="+a.Value.String())
		return true
	})
	line := strings.Join(parts, " ") + "\n"

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.out.Write([]byte(line))
	return err
}

// NewTraceLogger builds the `-d` debug-trace sink: each completed pass,
// and each branch frozen in its long form, is logged at slog.LevelDebug
// through it.
func NewTraceLogger(w io.Writer) *slog.Logger {
	h := &traceHandler{
		out: w,
		h:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		mu:  &sync.Mutex{},
	}
	return slog.New(h)
}
