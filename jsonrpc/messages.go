package jsonrpc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

// Message is any JSON-RPC envelope that can be put on the wire.
type Message interface {
	json.Marshaler
	isMessage()
}

var (
	_ Message = (*Request)(nil)
	_ Message = (*Notification)(nil)
	_ Message = (*Response)(nil)
)

// reservedMembers are the top-level member names defined by JSON-RPC 2.0.
var reservedMembers = map[string]bool{
	"jsonrpc": true,
	"method":  true,
	"params":  true,
	"id":      true,
	"result":  true,
	"error":   true,
}

// Request represents a JSON-RPC request. A nil ID is sent as "id": null.
type Request struct {
	Method string
	Params json.RawMessage
	ID     *RequestID
	// NonStd holds additional top-level members to emit alongside the
	// standard ones.
	NonStd map[string]any
}

// NewRequest builds a request. Params may be nil, a json.RawMessage, or any
// value that marshals to JSON. The id may be a string, number, boolean or nil.
func NewRequest(method string, params any, id any) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Request{Method: method, Params: raw, ID: NewRequestID(id)}, nil
}

func (*Request) isMessage() {}

// MarshalJSON implements json.Marshaler.
func (r *Request) MarshalJSON() ([]byte, error) {
	env := struct {
		JSONRPCVersion string          `json:"jsonrpc"`
		Method         string          `json:"method"`
		Params         json.RawMessage `json:"params,omitempty"`
		ID             *RequestID      `json:"id"`
	}{ProtocolVersion, r.Method, r.Params, r.ID}

	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return spliceNonStd(b, r.NonStd)
}

// Notification represents a JSON-RPC notification: a request without an ID.
type Notification struct {
	Method string
	Params json.RawMessage
	NonStd map[string]any
}

// NewNotification builds a notification with the same params handling as
// NewRequest.
func NewNotification(method string, params any) (*Notification, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Notification{Method: method, Params: raw}, nil
}

func (*Notification) isMessage() {}

// MarshalJSON implements json.Marshaler.
func (n *Notification) MarshalJSON() ([]byte, error) {
	env := struct {
		JSONRPCVersion string          `json:"jsonrpc"`
		Method         string          `json:"method"`
		Params         json.RawMessage `json:"params,omitempty"`
	}{ProtocolVersion, n.Method, n.Params}

	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return spliceNonStd(b, n.NonStd)
}

// Response represents a JSON-RPC response.
type Response struct {
	// Version is the "jsonrpc" member as received. Empty means ProtocolVersion
	// when encoding.
	Version string
	Result  json.RawMessage
	Error   *Error
	ID      *RequestID
	// NonStd holds unrecognized top-level members. It is only populated when
	// parsing with ParseNonStdAttributes.
	NonStd *orderedmap.OrderedMap[string, json.RawMessage]
}

// NewResultResponse builds a successful JSON-RPC response object.
func NewResultResponse(id *RequestID, result any) (*Response, error) {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Response{
		Version: ProtocolVersion,
		Result:  resultBytes,
		ID:      id,
	}, nil
}

// NewErrorResponse builds an error JSON-RPC response with the given code.
func NewErrorResponse(id *RequestID, code ErrorCode, message string, data any) *Response {
	return &Response{
		Version: ProtocolVersion,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}

func (*Response) isMessage() {}

// IndicatesSuccess reports whether the response carries a result rather than
// an error.
func (r *Response) IndicatesSuccess() bool {
	return r.Error == nil
}

// DecodeResult unmarshals the result into v. If the response carries an error
// object, that error is returned instead.
func (r *Response) DecodeResult(v any) error {
	if r.Error != nil {
		return r.Error
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *Response) MarshalJSON() ([]byte, error) {
	version := r.Version
	if version == "" {
		version = ProtocolVersion
	}
	result := r.Result
	if r.Error == nil && len(result) == 0 {
		result = json.RawMessage("null")
	}
	env := struct {
		JSONRPCVersion string          `json:"jsonrpc"`
		Result         json.RawMessage `json:"result,omitempty"`
		Error          *Error          `json:"error,omitempty"`
		ID             *RequestID      `json:"id"`
	}{version, result, r.Error, r.ID}

	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	if r.NonStd == nil {
		return b, nil
	}
	for pair := r.NonStd.Oldest(); pair != nil; pair = pair.Next() {
		if b, err = setMember(b, pair.Key, pair.Value); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Encode serializes a message to its wire form.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// AnyMessage is a generic JSON-RPC message (request, notification, or response)
// as seen by the receiving side of an exchange.
type AnyMessage struct {
	JSONRPCVersion string
	Method         string
	Params         json.RawMessage
	Result         json.RawMessage
	Error          *Error
	ID             *RequestID
	// HasMethod is set when a "method" member is present, even if empty.
	HasMethod bool
	// HasID distinguishes a request carrying "id": null from a notification.
	HasID bool
}

// UnmarshalJSON implements custom JSON unmarshaling for AnyMessage
// It enforces JSON-RPC 2.0 semantics and validates message structure
func (m *AnyMessage) UnmarshalJSON(data []byte) error {
	// Define a temporary struct to capture raw JSON
	type rawMessage struct {
		JSONRPCVersion string          `json:"jsonrpc"`
		Method         string          `json:"method,omitempty"`
		Params         json.RawMessage `json:"params,omitempty"`
		Result         json.RawMessage `json:"result,omitempty"`
		Error          *Error          `json:"error,omitempty"`
		ID             *RequestID      `json:"id,omitempty"`
	}

	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	// Validate JSON-RPC version
	if raw.JSONRPCVersion != ProtocolVersion {
		return fmt.Errorf("invalid JSON-RPC version: expected %q, got %q", ProtocolVersion, raw.JSONRPCVersion)
	}

	// Determine message type and validate structure
	hasMethod := gjson.GetBytes(data, "method").Exists()
	hasResult := gjson.GetBytes(data, "result").Exists()
	hasError := raw.Error != nil

	if hasMethod {
		if hasResult || hasError {
			return fmt.Errorf("request message cannot have result or error fields")
		}
	} else {
		if hasResult && hasError {
			return fmt.Errorf("response message cannot have both result and error fields")
		}
		if !hasResult && !hasError {
			return fmt.Errorf("response message must have either result or error field")
		}
	}

	m.JSONRPCVersion = raw.JSONRPCVersion
	m.Method = raw.Method
	m.Params = raw.Params
	m.Result = raw.Result
	m.Error = raw.Error
	m.ID = raw.ID
	m.HasMethod = hasMethod
	m.HasID = gjson.GetBytes(data, "id").Exists()

	return nil
}

// Type returns "request" if the message is a request, "response" if it's a response, or "notification" if it's a notification
func (m *AnyMessage) Type() string {
	if m.HasMethod {
		if !m.HasID {
			return "notification"
		}
		return "request"
	}
	return "response"
}

// AsRequest returns the message as a Request if it is a request message, otherwise nil
func (m *AnyMessage) AsRequest() *Request {
	if m.Type() != "request" {
		return nil
	}

	return &Request{
		Method: m.Method,
		Params: m.Params,
		ID:     m.ID,
	}
}

// AsNotification returns the message as a Notification if it is a notification message, otherwise nil
func (m *AnyMessage) AsNotification() *Notification {
	if m.Type() != "notification" {
		return nil
	}

	return &Notification{
		Method: m.Method,
		Params: m.Params,
	}
}

func marshalParams(params any) (json.RawMessage, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	return b, nil
}

// spliceNonStd adds extra top-level members to an encoded envelope in sorted
// key order.
func spliceNonStd(b []byte, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return b, nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := json.Marshal(extra[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal non-standard attribute %q: %w", k, err)
		}
		if b, err = setMember(b, k, v); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func setMember(b []byte, key string, value []byte) ([]byte, error) {
	if reservedMembers[key] {
		return nil, fmt.Errorf("non-standard attribute %q shadows a reserved member", key)
	}
	out, err := sjson.SetRawBytes(b, escapePathComponent(key), value)
	if err != nil {
		return nil, fmt.Errorf("failed to set non-standard attribute %q: %w", key, err)
	}
	return out, nil
}

var pathEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`)

func escapePathComponent(key string) string {
	return pathEscaper.Replace(key)
}
