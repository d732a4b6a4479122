// Package testlog sends slog records to the test log, so session output shows
// up next to the failing assertion and only under -v or on failure.
package testlog

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
)

// sink is shared by every handler derived from one logger.
type sink struct {
	mu  sync.Mutex
	t   testing.TB
	buf bytes.Buffer
}

type handler struct {
	slog.Handler
	sink *sink
}

func (h handler) Handle(ctx context.Context, rec slog.Record) error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.buf.Reset()
	if err := h.Handler.Handle(ctx, rec); err != nil {
		return err
	}

	h.sink.t.Helper()
	h.sink.t.Log(string(bytes.TrimSuffix(h.sink.buf.Bytes(), []byte("\n"))))
	return nil
}

func (h handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handler{Handler: h.Handler.WithAttrs(attrs), sink: h.sink}
}

func (h handler) WithGroup(name string) slog.Handler {
	return handler{Handler: h.Handler.WithGroup(name), sink: h.sink}
}

// New returns a text logger at debug level that writes each record with t.Log.
// Records must not be logged after t has finished.
func New(t testing.TB) *slog.Logger {
	s := &sink{t: t}
	text := slog.NewTextHandler(&s.buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler{Handler: text, sink: s})
}
