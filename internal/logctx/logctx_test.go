package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerAddsContextGroups(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx := WithRPCMessage(context.Background(), &RPCMessage{Method: "getServerTime", ID: "0", Type: "request"})
	ctx = WithExchange(ctx, &Exchange{Endpoint: "http://example.test/rpc"})

	l.With("component", "test").DebugContext(ctx, "exchange completed")

	out := buf.String()
	for _, want := range []string{
		"rpc.method=getServerTime",
		"rpc.id=0",
		"rpc.type=request",
		"http.endpoint=http://example.test/rpc",
		"component=test",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestNewIsIdempotent(t *testing.T) {
	l := New(slog.New(slog.DiscardHandler))
	if New(l) != l {
		t.Error("expected New to return an already wrapped logger unchanged")
	}
}
