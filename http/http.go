package http

import "errors"

const (
	DefaultReadBufferSize  = 4096 // 4kB
	DefaultWriteBufferSize = 4096 // 4kB
	DefaultQueueSize       = 2000
	MaxRequestHeaders      = 255

	DefaultPublicRoot   = "./public"
	DefaultNotFoundPage = "./pages/not_found.html"

	ProtocolHTTP11 = "HTTP/1.1"
)

var (
	ErrMalformedRequest = errors.New("http: malformed request")
	ErrInvalidMethod    = errors.New("http: invalid method")
	ErrBind             = errors.New("http: bind failed")
	ErrServerClosed     = errors.New("http: server closed")
	ErrServerStarted    = errors.New("http: server already started")
	ErrPoolClosed       = errors.New("http: worker pool closed")
)

const notFoundFallbackBody = "<html><body><h1>404 Not Found</h1></body></html>"
