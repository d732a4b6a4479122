package session

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elnormous/contenttype"
)

// RawResponse is the unparsed HTTP response to a request or notification,
// handed to a ResponseInspector before any JSON-RPC interpretation. It is
// immutable; accessors return copies.
type RawResponse struct {
	statusCode      int
	statusMessage   string
	header          http.Header
	body            []byte
	contentLength   int64
	contentType     string
	contentEncoding string
}

// readRawResponse reads resp fully. It fails only on I/O errors; the HTTP
// status is recorded, never judged.
func readRawResponse(resp *http.Response) (*RawResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	header := resp.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	return &RawResponse{
		statusCode:      resp.StatusCode,
		statusMessage:   statusMessage(resp),
		header:          header,
		body:            body,
		contentLength:   resp.ContentLength,
		contentType:     header.Get("Content-Type"),
		contentEncoding: header.Get("Content-Encoding"),
	}, nil
}

// statusMessage extracts the reason phrase from a status line such as
// "404 Not Found".
func statusMessage(resp *http.Response) string {
	msg := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	return strings.TrimSpace(msg)
}

// StatusCode is the HTTP status code, e.g. 200.
func (r *RawResponse) StatusCode() int { return r.statusCode }

// StatusMessage is the reason phrase sent with the status code, if any.
func (r *RawResponse) StatusMessage() string { return r.statusMessage }

// Header returns a copy of the response headers.
func (r *RawResponse) Header() http.Header { return r.header.Clone() }

// HeaderValue returns the first value of the named header, matched
// case-insensitively, or "".
func (r *RawResponse) HeaderValue(name string) string { return r.header.Get(name) }

// Body is the response body as text.
func (r *RawResponse) Body() string { return string(r.body) }

// ContentLength is the declared body length, or -1 if unknown.
func (r *RawResponse) ContentLength() int64 { return r.contentLength }

// ContentType is the raw Content-Type header value, or "".
func (r *RawResponse) ContentType() string { return r.contentType }

// ContentEncoding is the Content-Encoding header value, or "".
func (r *RawResponse) ContentEncoding() string { return r.contentEncoding }

// MediaType parses ContentType. It returns the zero MediaType when the
// header is missing or malformed.
func (r *RawResponse) MediaType() contenttype.MediaType {
	if r.contentType == "" {
		return contenttype.MediaType{}
	}
	return contenttype.NewMediaType(r.contentType)
}
