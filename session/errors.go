package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork matches classified errors of kind KindNetwork.
	ErrNetwork = errors.New("network error")
	// ErrUnexpectedContentType matches classified errors of kind
	// KindUnexpectedContentType.
	ErrUnexpectedContentType = errors.New("unexpected response content type")
	// ErrBadResponse matches classified errors of kind KindBadResponse.
	ErrBadResponse = errors.New("bad response")
)

var (
	ErrInvalidEndpoint              = errors.New("session: endpoint must be an absolute http or https URL")
	ErrInsecureTransportUnsupported = errors.New("session: trusting all certificates requires an *http.Transport")
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork covers connection, write and read failures.
	KindNetwork Kind = iota + 1
	// KindUnexpectedContentType means the response content type is not in
	// the allowed list.
	KindUnexpectedContentType
	// KindBadResponse covers undecodable responses and ID mismatches.
	KindBadResponse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK"
	case KindUnexpectedContentType:
		return "UNEXPECTED_CONTENT_TYPE"
	case KindBadResponse:
		return "BAD_RESPONSE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindUnexpectedContentType:
		return ErrUnexpectedContentType
	case KindBadResponse:
		return ErrBadResponse
	default:
		return nil
	}
}

// Error is the single error type returned by a failed Send or Notify. It
// matches the sentinel for its Kind under errors.Is and unwraps to the
// underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network error", Err: err}
}

func unexpectedContentTypeError(contentType string) *Error {
	return &Error{
		Kind:    KindUnexpectedContentType,
		Message: fmt.Sprintf("the server returned an unexpected content type %q", contentType),
	}
}

func badResponseError(msg string, err error) *Error {
	return &Error{Kind: KindBadResponse, Message: msg, Err: err}
}
