package dispatch

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
)

// SessionIDSource extracts the opaque session id from an inbound request.
type SessionIDSource interface {
	SessionID(r *http.Request) string
}

// Options configures a Dispatcher.
type Options struct {
	Table *Table
	// Authenticator is inserted into the chain of every route that requires auth.
	Authenticator Middleware
	// Global middleware runs for every matched route, before the authenticator.
	Global       []Middleware
	Sessions     SessionIDSource
	Logger       *slog.Logger
	MaxBodyBytes int64
}

// Dispatcher matches requests against a Table and runs the assembled chain.
type Dispatcher struct {
	table        *Table
	auth         Middleware
	global       []Middleware
	sessions     SessionIDSource
	logger       *slog.Logger
	maxBodyBytes int64
}

// New validates opts and seals the route table.
func New(opts Options) (*Dispatcher, error) {
	if opts.Table == nil {
		return nil, errors.New("dispatch: route table required")
	}
	if opts.Authenticator == nil {
		return nil, errors.New("dispatch: authenticator required")
	}
	for _, mw := range opts.Global {
		if mw == nil {
			return nil, errors.New("dispatch: nil global middleware")
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Table.Seal()
	return &Dispatcher{
		table:        opts.Table,
		auth:         opts.Authenticator,
		global:       append([]Middleware(nil), opts.Global...),
		sessions:     opts.Sessions,
		logger:       logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}, nil
}

// Dispatch routes c and runs its chain. Handler errors are returned unchanged.
func (d *Dispatcher) Dispatch(c *Context) (*httpx.Response, error) {
	route, params, ok := d.table.Match(c.method, c.path)
	if !ok {
		return httpx.NotFound("Endpoint not found"), nil
	}
	c.route = route
	c.params = params
	c.requiredPermission = route.Permission

	return Chain(d.assemble(route), route.Handler)(c)
}

// assemble returns global ++ [auth] ++ route middleware. The authenticator is
// added only when the route requires auth and no middleware of that name is present.
func (d *Dispatcher) assemble(route *Route) []Middleware {
	chain := make([]Middleware, 0, len(d.global)+len(route.Middleware)+1)
	chain = append(chain, d.global...)
	if route.RequiresAuth && !containsMiddleware(d.global, d.auth.Name()) && !containsMiddleware(route.Middleware, d.auth.Name()) {
		chain = append(chain, d.auth)
	}
	return append(chain, route.Middleware...)
}

// ServeHTTP is the process boundary: it turns returned errors into envelopes.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if d.sessions != nil {
		sessionID = d.sessions.SessionID(r)
	}
	c, err := newContext(r, sessionID, d.maxBodyBytes)
	if err != nil {
		d.write(w, r, httpx.BadRequest("Request body could not be read", nil))
		return
	}

	resp, err := d.Dispatch(c)
	if err != nil {
		resp = httpx.FromError(err)
		if resp.Status >= http.StatusInternalServerError {
			d.logger.Error("dispatch handler failed",
				slog.String("method", c.method),
				slog.String("path", c.path),
				slog.Int64("user_id", c.UserID()),
				slog.Any("error", err))
		}
	}
	if resp == nil {
		resp = httpx.NoContent()
	}
	d.write(w, r, resp)
}

func (d *Dispatcher) write(w http.ResponseWriter, r *http.Request, resp *httpx.Response) {
	if err := resp.Write(w); err != nil {
		d.logger.Warn("write response", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}
