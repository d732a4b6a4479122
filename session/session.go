package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/ggoodman/jsonrpc-http-go/internal/logctx"
	"github.com/ggoodman/jsonrpc-http-go/jsonrpc"
	"github.com/google/uuid"
)

const (
	contentTypeHeader = "Content-Type"
	originHeader      = "Origin"
)

// Session sends JSON-RPC 2.0 requests and notifications to one endpoint by
// HTTP POST. It is safe for concurrent use; cookies accepted by one call are
// visible to later ones.
type Session struct {
	mu           sync.RWMutex
	endpoint     *url.URL
	options      Options
	configurator ConnectionConfigurator
	inspector    ResponseInspector

	client       *http.Client
	insecureOnce sync.Once
	insecure     *http.Transport
	insecureErr  error

	cookies cookieJar
	log     *slog.Logger
}

// Option configures a Session at construction.
type Option func(*Session)

// WithOptions replaces the default Options.
func WithOptions(o Options) Option {
	return func(s *Session) { s.options = o.clone() }
}

// WithHTTPClient sets the base client. Each call works on a shallow copy of
// it. Defaults to http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		if c != nil {
			s.client = c
		}
	}
}

// WithLogger sets the logger used by the session. If not provided, logs are
// discarded.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConnectionConfigurator installs a ConnectionConfigurator.
func WithConnectionConfigurator(c ConnectionConfigurator) Option {
	return func(s *Session) { s.configurator = c }
}

// WithResponseInspector installs a ResponseInspector.
func WithResponseInspector(i ResponseInspector) Option {
	return func(s *Session) { s.inspector = i }
}

// New creates a session for endpoint, which must be an http or https URL.
func New(endpoint string, opts ...Option) (*Session, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	s := &Session{
		endpoint: u,
		options:  DefaultOptions(),
		client:   http.DefaultClient,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logctx.New(s.log)

	return s, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, raw)
	}
	return u, nil
}

// Endpoint returns a copy of the endpoint URL.
func (s *Session) Endpoint() *url.URL {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := *s.endpoint
	return &u
}

// SetEndpoint changes the endpoint for subsequent calls. The same scheme
// rules as New apply.
func (s *Session) SetEndpoint(endpoint string) error {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.endpoint = u
	s.mu.Unlock()
	return nil
}

// Options returns a copy of the current options.
func (s *Session) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options.clone()
}

// SetOptions replaces the options for subsequent calls.
func (s *Session) SetOptions(o Options) {
	s.mu.Lock()
	s.options = o.clone()
	s.mu.Unlock()
}

// ConnectionConfigurator returns the installed configurator, or nil.
func (s *Session) ConnectionConfigurator() ConnectionConfigurator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configurator
}

// SetConnectionConfigurator installs c; nil removes the current one.
func (s *Session) SetConnectionConfigurator(c ConnectionConfigurator) {
	s.mu.Lock()
	s.configurator = c
	s.mu.Unlock()
}

// ResponseInspector returns the installed inspector, or nil.
func (s *Session) ResponseInspector() ResponseInspector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inspector
}

// SetResponseInspector installs i; nil removes the current one.
func (s *Session) SetResponseInspector(i ResponseInspector) {
	s.mu.Lock()
	s.inspector = i
	s.mu.Unlock()
}

// Cookies returns copies of the cookies received so far, in the order they
// were first stored. It is empty unless Options.AcceptCookies is set.
func (s *Session) Cookies() []*http.Cookie {
	return s.cookies.snapshot()
}

// CookieHeader returns the Cookie header value the next call would send when
// cookies are accepted.
func (s *Session) CookieHeader() string {
	return s.cookies.header()
}

type callState struct {
	endpoint     *url.URL
	opts         Options
	configurator ConnectionConfigurator
	inspector    ResponseInspector
}

func (s *Session) snapshot() callState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := *s.endpoint
	return callState{
		endpoint:     &u,
		opts:         s.options.clone(),
		configurator: s.configurator,
		inspector:    s.inspector,
	}
}

// Send posts req and returns the server's response. Any HTTP status is
// accepted as long as the body is a JSON-RPC 2.0 response whose ID matches
// req. Failures are *Error values classified by Kind, except for a request
// that cannot be encoded, which is returned as is.
func (s *Session) Send(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	st := s.snapshot()
	ctx = s.withLogContext(ctx, st, req.Method, idString(req.ID), "request")

	body, err := jsonrpc.Encode(req)
	if err != nil {
		return nil, fmt.Errorf("session: encode request: %w", err)
	}

	raw, xerr := s.exchange(ctx, st, body)
	if xerr != nil {
		return nil, s.fail(ctx, xerr)
	}

	if !st.opts.IsAllowedResponseContentType(raw.contentType) {
		return nil, s.fail(ctx, unexpectedContentTypeError(raw.contentType))
	}

	resp, err := jsonrpc.ParseResponse(raw.body, st.opts.parseOptions())
	if err != nil {
		return nil, s.fail(ctx, badResponseError("invalid JSON-RPC 2.0 response", err))
	}

	if cerr := correlate(req.ID, resp); cerr != nil {
		return nil, s.fail(ctx, cerr)
	}

	s.log.DebugContext(ctx, "request completed",
		slog.Int("status", raw.statusCode),
		slog.Bool("success", resp.IndicatesSuccess()),
	)
	return resp, nil
}

// Call builds a request for method with a random UUID identifier and sends
// it. Params marshal failures are returned as is.
func (s *Session) Call(ctx context.Context, method string, params any) (*jsonrpc.Response, error) {
	req, err := jsonrpc.NewRequest(method, params, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("session: build request: %w", err)
	}
	return s.Send(ctx, req)
}

// Notify posts n. The HTTP exchange is still completed and the raw response
// goes to the inspector, but its body is not interpreted.
func (s *Session) Notify(ctx context.Context, n *jsonrpc.Notification) error {
	st := s.snapshot()
	ctx = s.withLogContext(ctx, st, n.Method, "", "notification")

	body, err := jsonrpc.Encode(n)
	if err != nil {
		return fmt.Errorf("session: encode notification: %w", err)
	}

	raw, xerr := s.exchange(ctx, st, body)
	if xerr != nil {
		return s.fail(ctx, xerr)
	}

	s.log.DebugContext(ctx, "notification completed", slog.Int("status", raw.statusCode))
	return nil
}

// exchange performs the POST and the steps shared by requests and
// notifications: headers, TLS mode, configurator, read, inspector, cookies.
func (s *Session) exchange(ctx context.Context, st callState, body []byte) (*RawResponse, *Error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, st.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, networkError(err)
	}
	s.applyHeaders(httpReq, st.opts)

	client, err := s.clientFor(st)
	if err != nil {
		return nil, networkError(err)
	}

	if st.configurator != nil {
		st.configurator.Configure(client, httpReq)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, networkError(err)
	}
	defer httpResp.Body.Close()

	raw, err := readRawResponse(httpResp)
	if err != nil {
		return nil, networkError(err)
	}

	if st.inspector != nil {
		st.inspector.Inspect(raw)
	}

	if st.opts.AcceptCookies {
		for _, v := range s.cookies.merge(raw.header) {
			s.log.WarnContext(ctx, "skipping malformed cookie", slog.String("set_cookie", v))
		}
	}

	return raw, nil
}

func (s *Session) applyHeaders(req *http.Request, opts Options) {
	if opts.RequestContentType != "" {
		req.Header.Set(contentTypeHeader, opts.RequestContentType)
	}
	if opts.Origin != "" {
		req.Header.Set(originHeader, opts.Origin)
	}
	if opts.AcceptCookies {
		if h := s.cookies.header(); h != "" {
			req.Header.Set(cookieHeader, h)
		}
	}
}

func (s *Session) withLogContext(ctx context.Context, st callState, method, id, typ string) context.Context {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: method, ID: id, Type: typ})
	return logctx.WithExchange(ctx, &logctx.Exchange{
		Endpoint:      st.endpoint.String(),
		TrustAllCerts: st.opts.TrustAllCerts,
	})
}

func (s *Session) fail(ctx context.Context, err *Error) error {
	s.log.DebugContext(ctx, "call failed",
		slog.String("kind", err.Kind.String()),
		slog.String("error", err.Error()),
	)
	return err
}

// correlate checks that resp answers a request with ID reqID. Errors the
// server may raise before it can read the request ID (parse error, invalid
// request, internal error) are accepted regardless of ID.
func correlate(reqID *jsonrpc.RequestID, resp *jsonrpc.Response) *Error {
	if reqID.Equal(resp.ID) {
		return nil
	}
	if resp.Error != nil {
		switch resp.Error.Code {
		case jsonrpc.ErrorCodeParseError, jsonrpc.ErrorCodeInvalidRequest, jsonrpc.ErrorCodeInternalError:
			return nil
		}
	}
	return badResponseError(
		fmt.Sprintf("invalid JSON-RPC 2.0 response: ID mismatch: returned %s, expected %s", idString(resp.ID), idString(reqID)),
		nil,
	)
}

// idString renders an ID as it appears on the wire.
func idString(id *jsonrpc.RequestID) string {
	b, err := id.MarshalJSON()
	if err != nil {
		return id.String()
	}
	return string(b)
}
