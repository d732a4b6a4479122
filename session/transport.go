package session

import (
	"crypto/tls"
	"net/http"
)

// trustAllTransport returns a clone of the session's base transport that
// accepts any server certificate, including self-signed ones, and skips host
// name verification. It is built once per Session.
func (s *Session) trustAllTransport() (*http.Transport, error) {
	s.insecureOnce.Do(func() {
		base := s.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		bt, ok := base.(*http.Transport)
		if !ok {
			s.insecureErr = ErrInsecureTransportUnsupported
			return
		}
		t := bt.Clone()
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{}
		}
		t.TLSClientConfig.InsecureSkipVerify = true
		s.insecure = t
	})
	return s.insecure, s.insecureErr
}

// clientFor returns the per-call client copy handed to the configurator.
func (s *Session) clientFor(st callState) (*http.Client, error) {
	c := *s.client
	if st.opts.TrustAllCerts && st.endpoint.Scheme == "https" {
		t, err := s.trustAllTransport()
		if err != nil {
			return nil, err
		}
		c.Transport = t
	}
	return &c, nil
}
