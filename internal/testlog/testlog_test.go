package testlog

import (
	"log/slog"
	"strings"
	"testing"
)

type recorder struct {
	testing.TB
	lines []string
}

func (r *recorder) Helper() {}

func (r *recorder) Log(args ...any) {
	for _, a := range args {
		r.lines = append(r.lines, a.(string))
	}
}

func TestNewWritesOneLinePerRecord(t *testing.T) {
	rec := &recorder{TB: t}
	l := New(rec).With(slog.String("component", "session")).WithGroup("rpc")

	l.Debug("first", slog.String("method", "m"))
	l.Info("second")

	if len(rec.lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(rec.lines), rec.lines)
	}
	for i, want := range []string{"msg=first", "msg=second"} {
		line := rec.lines[i]
		if !strings.Contains(line, want) || !strings.Contains(line, "component=session") {
			t.Errorf("line %d = %q, missing %q", i, line, want)
		}
		if strings.HasSuffix(line, "\n") {
			t.Errorf("line %d has a trailing newline", i)
		}
	}
	if !strings.Contains(rec.lines[0], "rpc.method=m") {
		t.Errorf("group not applied: %q", rec.lines[0])
	}
}
