package http

import (
	"bytes"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Response accumulates a status line, headers and a body. It is written out
// once, after the handler chain and fallbacks are done with it.
type Response struct {
	version string
	code    int
	message string
	headers Headers
	body    strings.Builder
}

// NewResponse returns a 200 OK response carrying the version of the request
// that triggered it.
func NewResponse(version string) *Response {
	return &Response{
		version: version,
		code:    StatusOK,
		message: StatusText(StatusOK),
		headers: Headers{},
	}
}

func (res *Response) Version() string {
	return res.version
}

func (res *Response) Code() int {
	return res.code
}

func (res *Response) Message() string {
	return res.message
}

func (res *Response) SetCode(code int) {
	res.code = code
}

func (res *Response) SetMessage(message string) {
	res.message = message
}

// WithStatus sets the code together with its standard reason phrase.
func (res *Response) WithStatus(code int) *Response {
	res.code = code
	res.message = StatusText(code)
	return res
}

// SetHeader replaces any previous value stored under key.
func (res *Response) SetHeader(key, value string) {
	res.headers[key] = value
}

func (res *Response) Header(key string) (string, bool) {
	v, ok := res.headers[key]
	return v, ok
}

func (res *Response) Headers() Headers {
	return cloneHeaders(res.headers)
}

// AddBody appends s to the body without any separator.
func (res *Response) AddBody(s string) *Response {
	res.body.WriteString(s)
	return res
}

func (res *Response) Body() string {
	return res.body.String()
}

// WithText sets a plain text content type and appends payload.
func (res *Response) WithText(payload string) *Response {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	return res.AddBody(payload)
}

// WithHTML sets an HTML content type and appends payload.
func (res *Response) WithHTML(payload string) *Response {
	res.SetHeader("Content-Type", "text/html; charset=utf-8")
	return res.AddBody(payload)
}

// Redirect turns the response into a 302 pointing at location.
func (res *Response) Redirect(location string) *Response {
	res.SetHeader("Location", location)
	return res.WithStatus(StatusFound)
}

// Bytes serializes the response with RFC 7230 framing: CRLF line endings,
// a Content-Length computed from the body and Connection: close. Headers are
// written in sorted order. Calling Bytes does not modify the response.
func (res *Response) Bytes() []byte {
	body := res.body.String()

	headers := cloneHeaders(res.headers)
	headers["Content-Length"] = strconv.Itoa(len(body))
	headers["Connection"] = "close"

	var buf bytes.Buffer
	buf.Grow(64 + len(body))
	res.writeStatusLine(&buf, "\r\n")
	writeHeaders(&buf, headers, "\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}

// LegacyBytes serializes the response in the simplified LF-only format:
// status line, one line per header, then a blank line and the body only when
// the body is non-empty. There is no Content-Length, so clients must read to
// end of stream.
func (res *Response) LegacyBytes() []byte {
	var buf bytes.Buffer
	res.writeStatusLine(&buf, "\n")
	writeHeaders(&buf, res.headers, "\n")
	if res.body.Len() > 0 {
		buf.WriteString("\n")
		buf.WriteString(res.body.String())
	}
	return buf.Bytes()
}

// WriteTo writes the RFC 7230 serialization to w in a single Write call.
func (res *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(res.Bytes())
	return int64(n), err
}

func (res *Response) writeStatusLine(buf *bytes.Buffer, eol string) {
	buf.WriteString(res.version)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(res.code))
	buf.WriteByte(' ')
	buf.WriteString(res.message)
	buf.WriteString(eol)
}

func writeHeaders(buf *bytes.Buffer, headers Headers, eol string) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(headers[k])
		buf.WriteString(eol)
	}
}

func cloneHeaders(h Headers) Headers {
	out := make(Headers, len(h)+2)
	for k, v := range h {
		out[k] = v
	}
	return out
}
