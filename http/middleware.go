package http

import (
	"fmt"
	"runtime/debug"
)

type Middleware func(next Handler) Handler

// Wrap applies middleware to handler; the first middleware ends up outermost.
func Wrap(handler Handler, middleware ...Middleware) Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

// Recover converts a panic in next into an error so that it is treated as a
// handler failure instead of taking down the worker.
func Recover() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(req *Request, res *Response) (handled bool, err error) {
			defer func() {
				if r := recover(); r != nil {
					handled = false
					err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
				}
			}()

			return next.Handle(req, res)
		})
	}
}

// Only restricts next to the given methods; other requests pass through
// unclaimed.
func Only(methods ...Method) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(req *Request, res *Response) (bool, error) {
			for _, m := range methods {
				if req.Method() == m {
					return next.Handle(req, res)
				}
			}
			return false, nil
		})
	}
}
