package dispatch

import "github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"

// Handler is the terminal step of a chain. Returned errors are mapped onto the
// error envelope at the HTTP boundary.
type Handler func(c *Context) (*httpx.Response, error)

// Middleware wraps a Handler. Returning a Response without calling next
// short-circuits the rest of the chain.
type Middleware interface {
	Name() string
	Handle(c *Context, next Handler) (*httpx.Response, error)
}

type namedMiddleware struct {
	name string
	fn   func(c *Context, next Handler) (*httpx.Response, error)
}

func (m namedMiddleware) Name() string { return m.name }

func (m namedMiddleware) Handle(c *Context, next Handler) (*httpx.Response, error) {
	return m.fn(c, next)
}

// MiddlewareFunc adapts a function into a named Middleware.
func MiddlewareFunc(name string, fn func(c *Context, next Handler) (*httpx.Response, error)) Middleware {
	return namedMiddleware{name: name, fn: fn}
}

// Chain composes mws around final. mws[0] runs first.
func Chain(mws []Middleware, final Handler) Handler {
	h := final
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], h
		h = func(c *Context) (*httpx.Response, error) {
			return mw.Handle(c, next)
		}
	}
	return h
}

func containsMiddleware(mws []Middleware, name string) bool {
	for _, mw := range mws {
		if mw.Name() == name {
			return true
		}
	}
	return false
}
