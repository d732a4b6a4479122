// Package logctx decorates slog records with per-call attributes carried in
// the context.
package logctx

import (
	"context"
	"log/slog"
)

// Handler adds "rpc" and "http" groups to records logged with a context
// populated by WithRPCMessage and WithExchange.
type Handler struct {
	slog.Handler
}

// New wraps l so that its records carry the context attributes.
func New(l *slog.Logger) *slog.Logger {
	if _, ok := l.Handler().(Handler); ok {
		return l
	}
	return slog.New(Handler{Handler: l.Handler()})
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if msg, ok := ctx.Value(rpcMsg{}).(*RPCMessage); ok {
		r.AddAttrs(slog.Group("rpc",
			slog.String("method", msg.Method),
			slog.String("id", msg.ID),
			slog.String("type", msg.Type),
		))
	}

	if ex, ok := ctx.Value(exchangeKey{}).(*Exchange); ok {
		r.AddAttrs(slog.Group("http",
			slog.String("endpoint", ex.Endpoint),
			slog.Bool("trust_all_certs", ex.TrustAllCerts),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type rpcMsg struct{}

type RPCMessage struct {
	Method string
	ID     string
	Type   string
}

func WithRPCMessage(ctx context.Context, msg *RPCMessage) context.Context {
	return context.WithValue(ctx, rpcMsg{}, msg)
}

type exchangeKey struct{}

type Exchange struct {
	Endpoint      string
	TrustAllCerts bool
}

func WithExchange(ctx context.Context, ex *Exchange) context.Context {
	return context.WithValue(ctx, exchangeKey{}, ex)
}
