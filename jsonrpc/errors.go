package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

const (
	// ErrorCodeParseError indicates invalid JSON was received by the server.
	ErrorCodeParseError ErrorCode = -32700
	// ErrorCodeInvalidRequest indicates the JSON sent is not a valid Request object.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound indicates the method does not exist / is not available.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams indicates invalid method parameters.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternalError indicates an internal JSON-RPC error.
	ErrorCodeInternalError ErrorCode = -32603
)

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

// Error implements the error interface so that a JSON-RPC error object can be
// returned directly from Go code.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// ParseError reports a message that could not be decoded as a JSON-RPC 2.0
// envelope.
type ParseError struct {
	Message string
	// Raw is the offending input, kept for diagnostics.
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jsonrpc: %s: %v", e.Message, e.Err)
	}
	return "jsonrpc: " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(raw []byte, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Raw: string(raw)}
}

// rawData keeps decoded error data as the exact JSON received.
func rawData(raw string) any {
	if raw == "" {
		return nil
	}
	return json.RawMessage(raw)
}
