package http

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	for _, token := range []string{"GET", "HEAD", "POST", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH"} {
		m, err := ParseMethod(token)
		require.NoError(t, err, token)
		assert.Equal(t, token, m.String())
	}

	for _, token := range []string{"", "get", "Get", "FOO", "GET ", " GET", "PROPFIND"} {
		_, err := ParseMethod(token)
		require.Error(t, err, token)
		assert.ErrorIs(t, err, ErrInvalidMethod)

		var methodErr *MethodError
		require.True(t, errors.As(err, &methodErr))
		assert.Equal(t, token, methodErr.Token)
	}

	assert.Equal(t, "UNKNOWN", Method(0).String())
}

func TestRequestLineParse(t *testing.T) {
	cases := []struct {
		data                            string
		wantMethod, wantTarget, wantVer string
	}{
		{"GET / HTTP/1.1\r\nHost: x\r\n\r\n", "GET", "/", "HTTP/1.1"},
		{"POST /add?text=milk HTTP/1.1\r\n\r\n", "POST", "/add?text=milk", "HTTP/1.1"},
		{"DELETE /tasks/1 HTTP/1.0\n\n", "DELETE", "/tasks/1", "HTTP/1.0"},
		{"PATCH * whatever\r\n\r\n", "PATCH", "*", "whatever"},
		{"OPTIONS /a/../b HTTP/2\r\n", "OPTIONS", "/a/../b", "HTTP/2"},
	}
	for _, c := range cases {
		for _, reader := range []io.Reader{strings.NewReader(c.data), iotest.OneByteReader(strings.NewReader(c.data))} {
			req, err := ParseRequest(reader)
			require.NoError(t, err, c.data)
			require.NotNil(t, req)
			assert.Equal(t, c.wantMethod, req.Method().String())
			assert.Equal(t, c.wantTarget, req.Target())
			assert.Equal(t, c.wantVer, req.Version())
		}
	}
}

func TestRequestParseHello(t *testing.T) {
	req, err := ParseRequest(strings.NewReader("GET /hello HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	assert.Equal(t, MethodGet, req.Method())
	assert.Equal(t, "/hello", req.Target())
	assert.Empty(t, req.Headers())
}

func TestRequestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty stream":          "",
		"blank first line":      "\r\nGET / HTTP/1.1\r\n\r\n",
		"two tokens":            "GET /\r\n\r\n",
		"four tokens":           "GET / HTTP/1.1 extra\r\n\r\n",
		"double space":          "GET  / HTTP/1.1\r\n\r\n",
		"empty target":          "GET  HTTP/1.1\r\n\r\n",
		"header without colon":  "GET / HTTP/1.1\r\nHost example.com\r\n\r\n",
		"late bad header":       "GET / HTTP/1.1\r\nHost: a\r\nAccept: */*\r\nbogus\r\n\r\n",
		"bad header at EOF":     "GET / HTTP/1.1\r\nbogus",
		"line exceeds buffer":   "GET /" + strings.Repeat("a", 2*DefaultReadBufferSize) + " HTTP/1.1\r\n\r\n",
		"too many header lines": "GET / HTTP/1.1\r\n" + strings.Repeat("X-A: b\r\n", MaxRequestHeaders+1) + "\r\n",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := ParseRequest(strings.NewReader(data))
			require.Error(t, err)
			assert.Nil(t, req)
			assert.ErrorIs(t, err, ErrMalformedRequest)
			assert.NotErrorIs(t, err, ErrInvalidMethod)
		})
	}
}

func TestRequestParseInvalidMethod(t *testing.T) {
	for _, data := range []string{
		"get / HTTP/1.1\r\n\r\n",
		"FETCH / HTTP/1.1\r\n\r\n",
		" / HTTP/1.1\r\n\r\n",
	} {
		req, err := ParseRequest(strings.NewReader(data))
		require.Error(t, err, data)
		assert.Nil(t, req)
		assert.ErrorIs(t, err, ErrInvalidMethod)
		assert.NotErrorIs(t, err, ErrMalformedRequest)
	}
}

func TestRequestParseHeaders(t *testing.T) {
	data := "GET / HTTP/1.1\r\n" +
		"Host:example.com\r\n" +
		"Accept:  text/html \t\r\n" +
		"X-Empty:\r\n" +
		"X-Dup: first\r\n" +
		"Referer: http://example.com:8080/x\r\n" +
		"X-Dup: second\r\n" +
		"x-dup: lower\r\n" +
		"\r\n"

	req, err := ParseRequest(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, Headers{
		"Host":    "example.com",
		"Accept":  "text/html",
		"X-Empty": "",
		"X-Dup":   "second",
		"Referer": "http://example.com:8080/x",
		"x-dup":   "lower",
	}, req.Headers())
}

func TestRequestParseWithoutTerminator(t *testing.T) {
	req, err := ParseRequest(strings.NewReader("GET /x HTTP/1.1\r\nHost: a\r\nAccept: b"))
	require.NoError(t, err)

	assert.Equal(t, "/x", req.Target())
	assert.Equal(t, Headers{"Host": "a", "Accept": "b"}, req.Headers())

	req, err = ParseRequest(strings.NewReader("HEAD /x HTTP/1.1"))
	require.NoError(t, err)
	assert.Equal(t, MethodHead, req.Method())
	assert.Empty(t, req.Headers())
}

func TestRequestParseLeavesBody(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("POST /submit HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"))

	req, err := ReadRequest(reader)
	require.NoError(t, err)
	assert.Equal(t, MethodPost, req.Method())

	rest, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(rest))
}

func TestRequestParseReadError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := ParseRequest(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMalformedRequest)
}

func TestRequestHeadersAreCopied(t *testing.T) {
	req, err := ParseRequest(strings.NewReader("GET / HTTP/1.1\r\nHost: a\r\n\r\n"))
	require.NoError(t, err)

	headers := req.Headers()
	headers["Host"] = "mutated"
	headers["New"] = "x"

	assert.Equal(t, Headers{"Host": "a"}, req.Headers())
}

func TestRequestAccessors(t *testing.T) {
	req, err := ParseRequest(strings.NewReader("GET /update?check=2&x=a%20b HTTP/1.1\r\nCONTENT-TYPE: text/plain\r\nX-Ünïcode: yes\r\n\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "/update", req.Path())
	assert.Equal(t, "2", req.Query().Get("check"))
	assert.Equal(t, "a b", req.Query().Get("x"))

	v, ok := req.Header("Content-Type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)

	v, ok = req.Header("x-üNÏCODE")
	assert.True(t, ok)
	assert.Equal(t, "yes", v)

	_, ok = req.Header("Accept")
	assert.False(t, ok)

	req, err = ParseRequest(strings.NewReader("GET /plain HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "/plain", req.Path())
	assert.Empty(t, req.Query())

	req, err = ParseRequest(strings.NewReader("GET /bad?%zz HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	assert.Empty(t, req.Query())
}

func BenchmarkRequestParse(b *testing.B) {
	reqMsg := "GET /test HTTP/1.1\r\nAccept: text/css\r\nConnection: keep-alive\r\nContent-Length: 0\r\n\r\n"

	reader := strings.NewReader(reqMsg)
	br := bufio.NewReaderSize(reader, DefaultReadBufferSize)

	for b.Loop() {
		reader.Reset(reqMsg)
		br.Reset(reader)

		if _, err := ReadRequest(br); err != nil {
			b.Error(err)
		}
	}
}
