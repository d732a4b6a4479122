// Package jsonrpc models JSON-RPC 2.0 envelopes and their wire encoding.
//
// Requests and notifications are built by callers and serialized with Encode.
// Responses are decoded with ParseResponse, whose ParseOptions control how
// strictly the "jsonrpc" version tag and unrecognized top-level members are
// treated:
//
//	resp, err := jsonrpc.ParseResponse(body, jsonrpc.ParseOptions{IgnoreVersion: true})
//	var perr *jsonrpc.ParseError
//	if errors.As(err, &perr) {
//		// malformed envelope
//	}
//
// Identifiers may be strings, numbers, booleans or null. A nil *RequestID is
// the null identifier.
package jsonrpc
