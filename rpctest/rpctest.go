// Package rpctest provides JSON-RPC 2.0 stub endpoints over httptest for
// exercising clients.
package rpctest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/jsonrpc-http-go/jsonrpc"
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// HandlerFunc answers a decoded message. Returning nil writes an empty body,
// which is what a server typically does for notifications.
type HandlerFunc func(r *http.Request, msg *jsonrpc.AnyMessage) *jsonrpc.Response

// Result returns a handler that answers every request with v and echoes the
// request ID.
func Result(v any) HandlerFunc {
	return func(_ *http.Request, msg *jsonrpc.AnyMessage) *jsonrpc.Response {
		if msg.Type() != "request" {
			return nil
		}
		resp, err := jsonrpc.NewResultResponse(msg.ID, v)
		if err != nil {
			return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrorCodeInternalError, err.Error(), nil)
		}
		return resp
	}
}

// Recorded is a request as received by a Server.
type Recorded struct {
	Header    http.Header
	MediaType contenttype.MediaType
	Body      []byte
}

// Server is a JSON-RPC endpoint backed by httptest.
type Server struct {
	*httptest.Server

	handler     HandlerFunc
	contentType string
	status      int
	cookies     []*http.Cookie

	mu       sync.Mutex
	requests []Recorded
}

// Option configures a Server.
type Option func(*Server)

// WithContentType overrides the response Content-Type (application/json by
// default).
func WithContentType(ct string) Option {
	return func(s *Server) { s.contentType = ct }
}

// WithStatus overrides the response status code (200 by default).
func WithStatus(code int) Option {
	return func(s *Server) { s.status = code }
}

// WithCookies adds a Set-Cookie header per cookie to every response.
func WithCookies(cookies ...*http.Cookie) Option {
	return func(s *Server) { s.cookies = append(s.cookies, cookies...) }
}

// NewServer starts a plain HTTP endpoint that is closed when t finishes.
func NewServer(t testing.TB, h HandlerFunc, opts ...Option) *Server {
	t.Helper()
	s := newServer(h, opts...)
	s.Server = httptest.NewServer(s)
	t.Cleanup(s.Close)
	return s
}

// NewTLSServer starts an HTTPS endpoint with a self-signed certificate that is
// closed when t finishes.
func NewTLSServer(t testing.TB, h HandlerFunc, opts ...Option) *Server {
	t.Helper()
	s := newServer(h, opts...)
	s.Server = httptest.NewTLSServer(s)
	t.Cleanup(s.Close)
	return s
}

func newServer(h HandlerFunc, opts ...Option) *Server {
	s := &Server{
		handler:     h,
		contentType: jsonMediaType.String(),
		status:      http.StatusOK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// A missing or unparsable Content-Type is recorded as the zero MediaType.
	mt, _ := contenttype.GetMediaType(r)

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{Header: r.Header.Clone(), MediaType: mt, Body: body})
	s.mu.Unlock()

	for _, c := range s.cookies {
		http.SetCookie(w, c)
	}

	var resp *jsonrpc.Response
	var msg jsonrpc.AnyMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		resp = jsonrpc.NewErrorResponse(nil, jsonrpc.ErrorCodeParseError, "Parse error", nil)
	} else if s.handler != nil {
		resp = s.handler(r, &msg)
	}

	if resp == nil {
		w.WriteHeader(s.status)
		return
	}

	out, err := jsonrpc.Encode(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.contentType)
	w.WriteHeader(s.status)
	_, _ = w.Write(out)
}

// StaticHandler always answers with the given status, content type and body,
// regardless of the request.
func StaticHandler(status int, contentType, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}
