package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/jsonrpc-http-go/jsonrpc"
	"github.com/joeshaw/envdecode"
)

var (
	jsonMediaType = contenttype.NewMediaType("application/json")
	textMediaType = contenttype.NewMediaType("text/plain")
)

// Options is the per-session configuration. A snapshot is taken at the start
// of every call, so changes made with SetOptions only affect later calls.
type Options struct {
	// RequestContentType is sent as the Content-Type header. Empty omits the
	// header.
	RequestContentType string
	// AllowedResponseContentTypes gates the response Content-Type by prefix
	// match. Nil or empty disables the check.
	AllowedResponseContentTypes []string
	// AcceptCookies stores cookies from Set-Cookie response headers and
	// replays them in a Cookie header on later calls.
	AcceptCookies bool
	// Origin is sent as the Origin header when non-empty.
	Origin string
	// PreserveParseOrder keeps non-standard response members in source order.
	PreserveParseOrder bool
	// IgnoreVersion tolerates a missing or incorrect "jsonrpc" member.
	IgnoreVersion bool
	// ParseNonStdAttributes retains unrecognized top-level response members
	// instead of rejecting the response.
	ParseNonStdAttributes bool
	// TrustAllCerts disables TLS certificate chain and host name
	// verification for https endpoints. This is an insecure mode for
	// development against self-signed servers and is never on by default.
	TrustAllCerts bool
}

// DefaultOptions returns the options a new Session starts with.
func DefaultOptions() Options {
	return Options{
		RequestContentType:          jsonMediaType.String(),
		AllowedResponseContentTypes: []string{jsonMediaType.String(), textMediaType.String()},
	}
}

// IsAllowedResponseContentType reports whether contentType starts with one of
// the allowed types, so "application/json; charset=utf-8" matches
// "application/json". It is always true when no allowed types are set.
func (o Options) IsAllowedResponseContentType(contentType string) bool {
	if len(o.AllowedResponseContentTypes) == 0 {
		return true
	}
	for _, allowed := range o.AllowedResponseContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func (o Options) clone() Options {
	o.AllowedResponseContentTypes = slices.Clone(o.AllowedResponseContentTypes)
	return o
}

func (o Options) parseOptions() jsonrpc.ParseOptions {
	return jsonrpc.ParseOptions{
		PreserveOrder:         o.PreserveParseOrder,
		IgnoreVersion:         o.IgnoreVersion,
		ParseNonStdAttributes: o.ParseNonStdAttributes,
	}
}

// envOptions mirrors Options for envdecode. Defaults match DefaultOptions.
type envOptions struct {
	RequestContentType          string   `env:"JSONRPC_REQUEST_CONTENT_TYPE,default=application/json"`
	AllowedResponseContentTypes []string `env:"JSONRPC_ALLOWED_RESPONSE_CONTENT_TYPES,default=application/json;text/plain"`
	CheckResponseContentType    bool     `env:"JSONRPC_CHECK_RESPONSE_CONTENT_TYPE,default=true"`
	AcceptCookies               bool     `env:"JSONRPC_ACCEPT_COOKIES,default=false"`
	Origin                      string   `env:"JSONRPC_ORIGIN"`
	PreserveParseOrder          bool     `env:"JSONRPC_PRESERVE_PARSE_ORDER,default=false"`
	IgnoreVersion               bool     `env:"JSONRPC_IGNORE_VERSION,default=false"`
	ParseNonStdAttributes       bool     `env:"JSONRPC_PARSE_NON_STD_ATTRIBUTES,default=false"`
	TrustAllCerts               bool     `env:"JSONRPC_TRUST_ALL_CERTS,default=false"`
}

// OptionsFromEnv builds Options from JSONRPC_* environment variables, falling
// back to DefaultOptions for anything unset. Setting
// JSONRPC_CHECK_RESPONSE_CONTENT_TYPE=false disables the content type check.
func OptionsFromEnv() (Options, error) {
	var cfg envOptions
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Options{}, fmt.Errorf("session: decode options from environment: %w", err)
	}

	opts := Options{
		RequestContentType:    cfg.RequestContentType,
		AcceptCookies:         cfg.AcceptCookies,
		Origin:                cfg.Origin,
		PreserveParseOrder:    cfg.PreserveParseOrder,
		IgnoreVersion:         cfg.IgnoreVersion,
		ParseNonStdAttributes: cfg.ParseNonStdAttributes,
		TrustAllCerts:         cfg.TrustAllCerts,
	}
	if cfg.CheckResponseContentType {
		for _, ct := range cfg.AllowedResponseContentTypes {
			if ct = strings.TrimSpace(ct); ct != "" {
				opts.AllowedResponseContentTypes = append(opts.AllowedResponseContentTypes, ct)
			}
		}
	}
	return opts, nil
}
