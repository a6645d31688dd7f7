package http

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

// Headers maps header names, as received, to their last value.
type Headers map[string]string

// Request is a parsed start line plus header block. It is not modified after
// ReadRequest returns.
type Request struct {
	method  Method
	target  string
	version string
	headers Headers
}

func (req *Request) Method() Method {
	return req.method
}

// Target returns the raw request target, query string included.
func (req *Request) Target() string {
	return req.target
}

func (req *Request) Version() string {
	return req.version
}

// Headers returns a copy of the header mapping.
func (req *Request) Headers() Headers {
	return maps.Clone(req.headers)
}

// Header looks name up exactly first and then by Unicode case folding.
func (req *Request) Header(name string) (string, bool) {
	if v, ok := req.headers[name]; ok {
		return v, true
	}

	fold := cases.Fold()
	want := fold.String(name)
	for k, v := range req.headers {
		if fold.String(k) == want {
			return v, true
		}
	}
	return "", false
}

// Path returns the target up to the first '?'.
func (req *Request) Path() string {
	path, _, _ := strings.Cut(req.target, "?")
	return path
}

// Query parses the part of the target after '?'. Unparseable queries yield
// an empty set.
func (req *Request) Query() url.Values {
	_, raw, found := strings.Cut(req.target, "?")
	if !found {
		return url.Values{}
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}
	}
	return values
}

// ParseRequest reads a request from r. See ReadRequest.
func ParseRequest(r io.Reader) (*Request, error) {
	return ReadRequest(bufio.NewReaderSize(r, DefaultReadBufferSize))
}

// ReadRequest reads lines until the first empty line or end of stream and
// parses them into a Request. Header values have surrounding spaces and tabs
// trimmed; names are kept verbatim. The body, if any, is left unread.
func ReadRequest(reader *bufio.Reader) (*Request, error) {
	lines, err := readHead(reader)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty request", ErrMalformedRequest)
	}

	req, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}

	for _, line := range lines[1:] {
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("%w: header line without colon: %q", ErrMalformedRequest, line)
		}
		req.headers[key] = strings.Trim(value, " \t")
	}

	return req, nil
}

func parseRequestLine(line string) (*Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: request line %q", ErrMalformedRequest, line)
	}

	method, err := ParseMethod(parts[0])
	if err != nil {
		return nil, err
	}

	// Target and version are not validated beyond being present.
	if parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("%w: request line %q", ErrMalformedRequest, line)
	}

	return &Request{
		method:  method,
		target:  parts[1],
		version: parts[2],
		headers: Headers{},
	}, nil
}

func readHead(reader *bufio.Reader) ([]string, error) {
	var lines []string
	for {
		line, err := readLine(reader)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		if line == "" {
			// Blank line or end of stream.
			return lines, nil
		}

		lines = append(lines, line)
		if len(lines) > MaxRequestHeaders+1 {
			return nil, fmt.Errorf("%w: more than %d header lines", ErrMalformedRequest, MaxRequestHeaders)
		}

		if err != nil {
			return lines, nil
		}
	}
}

// readLine returns one line without its LF or CRLF terminator. A final line
// cut short by end of stream is returned together with io.EOF.
func readLine(reader *bufio.Reader) (string, error) {
	data, err := reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedRequest, reader.Size())
	}

	data = bytes.TrimSuffix(data, []byte("\n"))
	data = bytes.TrimSuffix(data, []byte("\r"))
	return string(data), err
}
