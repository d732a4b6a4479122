package jsonrpc

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ParseOptions tune how leniently ParseResponse treats its input.
type ParseOptions struct {
	// PreserveOrder keeps non-standard members in source order. Otherwise
	// they are sorted by name.
	PreserveOrder bool
	// IgnoreVersion tolerates a missing or incorrect "jsonrpc" member.
	IgnoreVersion bool
	// ParseNonStdAttributes retains unrecognized top-level members in
	// Response.NonStd. Otherwise such members are rejected.
	ParseNonStdAttributes bool
}

type member struct {
	key   string
	value json.RawMessage
}

// ParseResponse decodes a JSON-RPC 2.0 response. All failures are reported as
// *ParseError.
func ParseResponse(data []byte, opts ParseOptions) (*Response, error) {
	if !gjson.ValidBytes(data) {
		return nil, parseErrorf(data, "invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, parseErrorf(data, "response must be a JSON object")
	}

	var (
		version, result, errObj, id gjson.Result
		extra                       []member
	)
	root.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "jsonrpc":
			version = value
		case "result":
			result = value
		case "error":
			errObj = value
		case "id":
			id = value
		default:
			extra = append(extra, member{key: key.String(), value: json.RawMessage(value.Raw)})
		}
		return true
	})

	resp := &Response{}

	if version.Exists() && version.Type == gjson.String {
		resp.Version = version.Str
	}
	if !opts.IgnoreVersion {
		if !version.Exists() {
			return nil, parseErrorf(data, "missing %q member", "jsonrpc")
		}
		if resp.Version != ProtocolVersion {
			return nil, parseErrorf(data, "invalid JSON-RPC version: expected %q, got %s", ProtocolVersion, version.Raw)
		}
	}

	switch {
	case result.Exists() && errObj.Exists():
		return nil, parseErrorf(data, "response cannot have both result and error members")
	case result.Exists():
		resp.Result = json.RawMessage(result.Raw)
	case errObj.Exists():
		e, perr := parseErrorObject(data, errObj)
		if perr != nil {
			return nil, perr
		}
		resp.Error = e
	default:
		return nil, parseErrorf(data, "response must have either a result or an error member")
	}

	rid, perr := parseID(data, id)
	if perr != nil {
		return nil, perr
	}
	resp.ID = rid

	if len(extra) > 0 {
		if !opts.ParseNonStdAttributes {
			return nil, parseErrorf(data, "unexpected member %q", extra[0].key)
		}
		if !opts.PreserveOrder {
			sort.SliceStable(extra, func(i, j int) bool { return extra[i].key < extra[j].key })
		}
		resp.NonStd = orderedmap.New[string, json.RawMessage]()
		for _, m := range extra {
			resp.NonStd.Set(m.key, m.value)
		}
	}

	return resp, nil
}

func parseErrorObject(data []byte, v gjson.Result) (*Error, *ParseError) {
	if !v.IsObject() {
		return nil, parseErrorf(data, "error member must be an object")
	}
	code := v.Get("code")
	if code.Type != gjson.Number {
		return nil, parseErrorf(data, "error code must be a number")
	}
	n, err := strconv.ParseInt(code.Raw, 10, 64)
	if err != nil {
		return nil, &ParseError{Message: "error code must be an integer", Raw: string(data), Err: err}
	}
	msg := v.Get("message")
	if msg.Type != gjson.String {
		return nil, parseErrorf(data, "error message must be a string")
	}
	return &Error{
		Code:    ErrorCode(n),
		Message: msg.Str,
		Data:    rawData(v.Get("data").Raw),
	}, nil
}

func parseID(data []byte, v gjson.Result) (*RequestID, *ParseError) {
	if !v.Exists() {
		return nil, nil
	}
	switch v.Type {
	case gjson.Null:
		return nil, nil
	case gjson.String:
		return NewRequestID(v.Str), nil
	case gjson.True, gjson.False:
		return NewRequestID(v.Bool()), nil
	case gjson.Number:
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return NewRequestID(n), nil
		}
		f := v.Float()
		if f == float64(int64(f)) {
			return NewRequestID(int64(f)), nil
		}
		return NewRequestID(f), nil
	default:
		return nil, parseErrorf(data, "id must be a string, number, boolean or null, got %s", v.Raw)
	}
}
