package http

import "fmt"

// Handler is offered every request the chain has not yet claimed. It returns
// true when it has fully prepared res. A non-nil error aborts the connection
// without a response.
//
// Handlers run concurrently on every worker. A handler holding mutable state
// must synchronize it itself.
type Handler interface {
	Handle(req *Request, res *Response) (bool, error)
}

type HandlerFunc func(req *Request, res *Response) (bool, error)

func (f HandlerFunc) Handle(req *Request, res *Response) (bool, error) {
	return f(req, res)
}

// HandlerError reports a handler failing, or panicking, while handling a request.
type HandlerError struct {
	Index int
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("http: handler %d failed: %v", e.Index, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Chain tries its handlers in registration order; the first to claim a
// request wins and later handlers are not called.
type Chain struct {
	handlers []Handler
}

func NewChain(handlers ...Handler) Chain {
	return Chain{handlers: append([]Handler(nil), handlers...)}
}

func (chain Chain) Len() int {
	return len(chain.handlers)
}

// Handle implements Handler. Errors are wrapped in *HandlerError.
func (chain Chain) Handle(req *Request, res *Response) (bool, error) {
	for i, handler := range chain.handlers {
		handled, err := handler.Handle(req, res)
		if err != nil {
			return false, &HandlerError{Index: i, Err: err}
		}
		if handled {
			return true, nil
		}
	}
	return false, nil
}
