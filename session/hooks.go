package session

import "net/http"

// ConnectionConfigurator customizes the outbound exchange after the session
// has applied its own headers and TLS mode and before the request is sent.
// It receives a per-call copy of the session's http.Client, so setting
// Timeout or Transport affects that call only. This is the place for custom
// headers and timeouts.
type ConnectionConfigurator interface {
	Configure(client *http.Client, req *http.Request)
}

// ConnectionConfiguratorFunc adapts a function to ConnectionConfigurator.
type ConnectionConfiguratorFunc func(client *http.Client, req *http.Request)

func (f ConnectionConfiguratorFunc) Configure(client *http.Client, req *http.Request) {
	f(client, req)
}

// ResponseInspector observes the raw HTTP response of every request and
// notification before it is interpreted.
type ResponseInspector interface {
	Inspect(raw *RawResponse)
}

// ResponseInspectorFunc adapts a function to ResponseInspector.
type ResponseInspectorFunc func(raw *RawResponse)

func (f ResponseInspectorFunc) Inspect(raw *RawResponse) { f(raw) }
