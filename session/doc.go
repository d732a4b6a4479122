// Package session is a client for JSON-RPC 2.0 over HTTP(S).
//
// A Session POSTs encoded requests and notifications to a single endpoint.
// For requests it checks the response content type, decodes the body and
// verifies that the response ID matches the request ID:
//
//	s, err := session.New("https://rpc.example.com/")
//	if err != nil {
//		return err
//	}
//	req, _ := jsonrpc.NewRequest("getServerTime", nil, 0)
//	resp, err := s.Send(ctx, req)
//	switch {
//	case errors.Is(err, session.ErrNetwork):
//		// connect, write or read failure
//	case errors.Is(err, session.ErrUnexpectedContentType):
//		// not application/json or text/plain
//	case errors.Is(err, session.ErrBadResponse):
//		// undecodable body or ID mismatch
//	}
//
// Every call is a single attempt: there are no retries, no built-in timeout
// and no connection management beyond what the http.Client does. Timeouts and
// extra headers belong in a ConnectionConfigurator; a ResponseInspector sees
// each raw HTTP response before it is interpreted.
//
// # Cookies
//
// With Options.AcceptCookies set, cookies from Set-Cookie headers are kept for
// the life of the Session and replayed on every later call. They are never
// expired, scoped or persisted.
//
// # Insecure TLS
//
// Options.TrustAllCerts turns off certificate and host name verification for
// https endpoints. Use it only against development servers with self-signed
// certificates.
package session
