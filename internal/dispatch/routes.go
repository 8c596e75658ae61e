package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
)

var (
	// ErrInvalidPattern indicates a malformed route pattern.
	ErrInvalidPattern = errors.New("dispatch: invalid route pattern")
	// ErrTableSealed indicates registration after the table was handed to a Dispatcher.
	ErrTableSealed = errors.New("dispatch: route table sealed")
)

var placeholderRE = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Route is one registered endpoint.
type Route struct {
	Method       string
	Pattern      string
	Handler      Handler
	Permission   string
	RequiresAuth bool
	Middleware   []Middleware

	matcher *regexp.Regexp
}

// RouteOption customises a route at registration.
type RouteOption func(*Route)

// WithPermission declares the permission a caller must hold.
func WithPermission(name string) RouteOption {
	return func(r *Route) { r.Permission = strings.TrimSpace(name) }
}

// WithAuth sets whether the route requires an authenticated session. Routes require it by default.
func WithAuth(required bool) RouteOption {
	return func(r *Route) { r.RequiresAuth = required }
}

// Public marks a route as reachable without a session.
func Public() RouteOption {
	return WithAuth(false)
}

// WithMiddleware appends route-specific middleware, run in the given order.
func WithMiddleware(mw ...Middleware) RouteOption {
	return func(r *Route) { r.Middleware = append(r.Middleware, mw...) }
}

// Table holds routes in registration order.
type Table struct {
	routes []*Route
	sealed atomic.Bool
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Register compiles pattern and appends the route.
func (t *Table) Register(method, pattern string, h Handler, opts ...RouteOption) error {
	if t.sealed.Load() {
		return ErrTableSealed
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := allowedMethods[method]; !ok {
		return fmt.Errorf("dispatch: unsupported method %q", method)
	}
	if h == nil {
		return fmt.Errorf("dispatch: nil handler for %s %s", method, pattern)
	}
	matcher, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	r := &Route{
		Method:       method,
		Pattern:      normalizePath(pattern),
		Handler:      h,
		RequiresAuth: true,
		matcher:      matcher,
	}
	for _, opt := range opts {
		opt(r)
	}
	for i, mw := range r.Middleware {
		if mw == nil {
			return fmt.Errorf("dispatch: nil middleware at %d for %s %s", i, method, pattern)
		}
	}
	t.routes = append(t.routes, r)
	return nil
}

// MustRegister is Register that panics on error, for static route sets.
func (t *Table) MustRegister(method, pattern string, h Handler, opts ...RouteOption) {
	if err := t.Register(method, pattern, h, opts...); err != nil {
		panic(err)
	}
}

// Match returns the first route registered for method whose pattern matches path.
func (t *Table) Match(method, path string) (*Route, map[string]string, bool) {
	method = strings.ToUpper(method)
	path = normalizePath(path)
	for _, r := range t.routes {
		if r.Method != method {
			continue
		}
		m := r.matcher.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		params := make(map[string]string, len(m)-1)
		for i, name := range r.matcher.SubexpNames() {
			if i > 0 && name != "" {
				params[name] = m[i]
			}
		}
		return r, params, true
	}
	return nil, nil, false
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Seal forbids further registration.
func (t *Table) Seal() {
	t.sealed.Store(true)
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, pattern)
	}
	pattern = normalizePath(pattern)

	var b strings.Builder
	b.WriteString("^")
	seen := map[string]struct{}{}
	last := 0
	for _, loc := range placeholderRE.FindAllStringSubmatchIndex(pattern, -1) {
		literal := pattern[last:loc[0]]
		if strings.ContainsAny(literal, "{}") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
		name := pattern[loc[2]:loc[3]]
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate placeholder %q in %q", ErrInvalidPattern, name, pattern)
		}
		seen[name] = struct{}{}
		b.WriteString(regexp.QuoteMeta(literal))
		b.WriteString("(?P<" + name + ">[^/]+)")
		last = loc[1]
	}
	tail := pattern[last:]
	if strings.ContainsAny(tail, "{}") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	b.WriteString(regexp.QuoteMeta(tail))
	b.WriteString("$")
	return regexp.Compile(b.String())
}
