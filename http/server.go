package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	// Workers defaults to runtime.NumCPU().
	Workers   int
	QueueSize int

	PublicRoot   string
	NotFoundPage string

	// Zero means no deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// LegacyFraming writes responses in the LF-only format without
	// Content-Length.
	LegacyFraming bool

	Logger *slog.Logger
}

type Server struct {
	config Config
	logger *slog.Logger
	static Static

	mu       sync.Mutex
	handlers []Handler
	chain    Chain
	listener net.Listener
	pool     *WorkerPool

	started atomic.Bool
	closed  atomic.Bool
}

func NewServer(config Config, handlers ...Handler) (*Server, error) {
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.QueueSize == 0 {
		config.QueueSize = DefaultQueueSize
	}
	if config.PublicRoot == "" {
		config.PublicRoot = DefaultPublicRoot
	}
	if config.NotFoundPage == "" {
		config.NotFoundPage = DefaultNotFoundPage
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	static, err := NewStatic(config.PublicRoot, config.NotFoundPage)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: config,
		logger: config.Logger,
		static: static,
	}
	s.handlers = append(s.handlers, handlers...)
	s.chain = NewChain(s.handlers...)

	return s, nil
}

// Handle appends handlers to the chain. The chain is fixed once serving has
// started.
func (s *Server) Handle(handlers ...Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started.Load() {
		return ErrServerStarted
	}

	s.handlers = append(s.handlers, handlers...)
	s.chain = NewChain(s.handlers...)
	return nil
}

// ListenAndServe binds addr and serves until Shutdown. A bind failure is
// returned wrapped in ErrBind.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBind, addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve starts the worker pool and accepts connections from listener, one
// pool job per connection. It returns ErrServerClosed after Shutdown.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		listener.Close()
		return ErrServerClosed
	}
	if !s.started.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return ErrServerStarted
	}

	pool, err := NewWorkerPool(s.config.Workers, s.config.QueueSize, s.logger)
	if err != nil {
		s.mu.Unlock()
		listener.Close()
		return err
	}
	s.pool = pool
	s.listener = listener
	chain := s.chain
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "listening", "addr", listener.Addr().String(), "workers", pool.Size(), "handlers", chain.Len())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}

			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.WarnContext(ctx, "accept timeout", "error", err)
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			s.logger.ErrorContext(ctx, "failed to accept connection", "error", err)
			continue
		}

		connectionCnt.Add(ctx, 1)
		if err := pool.Submit(func() { s.serveConn(ctx, chain, conn) }); err != nil {
			s.logger.ErrorContext(ctx, "dropping connection", "remote", conn.RemoteAddr().String(), "error", err)
			conn.Close()
		}
	}
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown closes the listener and waits for queued and in-flight
// connections to finish, or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	listener, pool := s.listener, s.pool
	s.mu.Unlock()

	var err error
	if listener != nil {
		if cerr := listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	if pool == nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}

// ServeConn runs one connection through parsing, the handler chain, the
// static fallback and the not-found page, writes the response and closes
// the connection.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	s.mu.Lock()
	chain := s.chain
	s.mu.Unlock()

	s.serveConn(ctx, chain, conn)
}

func (s *Server) serveConn(ctx context.Context, chain Chain, conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	remote := conn.RemoteAddr().String()

	ctx, span := tracer.Start(ctx, "http.connection", trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("client.address", remote)))
	defer span.End()

	logger := s.logger.With("remote", remote)

	if s.config.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	}

	res, err := s.dispatch(ctx, chain, bufio.NewReaderSize(conn, DefaultReadBufferSize), logger, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	if s.config.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}

	if _, err := conn.Write(s.serialize(res)); err != nil {
		logger.ErrorContext(ctx, "failed to write response", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return
	}

	status := attribute.Int("http.response.status_code", res.Code())
	span.SetAttributes(status)
	requestCnt.Add(ctx, 1, metric.WithAttributes(status))
	requestDuration.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(status))
}

// dispatch produces the response for one request. A nil response with a
// non-nil error means the connection is dropped without a response.
func (s *Server) dispatch(ctx context.Context, chain Chain, reader *bufio.Reader, logger *slog.Logger, span trace.Span) (*Response, error) {
	req, err := ReadRequest(reader)
	if err != nil {
		if !errors.Is(err, ErrMalformedRequest) && !errors.Is(err, ErrInvalidMethod) {
			logger.ErrorContext(ctx, "failed to read request", "error", err)
			return nil, err
		}

		logger.WarnContext(ctx, "bad request", "error", err)
		res := NewResponse(ProtocolHTTP11).WithStatus(StatusBadRequest)
		res.WithText(StatusText(StatusBadRequest))
		return res, nil
	}

	span.SetAttributes(
		attribute.String("http.request.method", req.Method().String()),
		attribute.String("url.full", req.Target()),
		attribute.String("network.protocol.version", req.Version()),
	)
	logger = logger.With("method", req.Method().String(), "target", req.Target())

	res := NewResponse(req.Version())

	handled, err := chain.Handle(req, res)
	if err != nil {
		logger.ErrorContext(ctx, "handler failed", "error", err)
		handlerFailureCnt.Add(ctx, 1)
		return nil, err
	}

	switch {
	case handled:
		logger.InfoContext(ctx, "served", "status", res.Code())
	case s.static.Serve(req, res):
		logger.DebugContext(ctx, "served static file", "status", res.Code())
	default:
		if err := s.static.NotFound(res); err != nil {
			logger.WarnContext(ctx, "not found page unavailable", "error", err)
		}
		logger.InfoContext(ctx, "not found", "status", res.Code())
	}

	return res, nil
}

func (s *Server) serialize(res *Response) []byte {
	if s.config.LegacyFraming {
		return res.LegacyBytes()
	}
	return res.Bytes()
}
