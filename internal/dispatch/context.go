package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

// DefaultMaxBodyBytes bounds the request body read into a Context.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrBodyTooLarge is returned when the request body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("dispatch: request body too large")

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID     int64  `json:"id"`
	TenantID   int64  `json:"company_id"`
	RoleID     int64  `json:"role_id"`
	RoleName   string `json:"role_name"`
	Email      string `json:"email"`
	EmployeeID *int64 `json:"employee_id"`
}

// Context carries a single request through the middleware chain.
// It is owned by one request and must not be shared between goroutines.
type Context struct {
	req       *http.Request
	method    string
	path      string
	query     url.Values
	rawBody   []byte
	body      map[string]any
	params    map[string]string
	sessionID string

	route              *Route
	requiredPermission string

	principal   *Principal
	permissions map[string]struct{}
	granted     []string
}

// NewContext reads r into a Context using the default body limit.
func NewContext(r *http.Request, sessionID string) (*Context, error) {
	return newContext(r, sessionID, DefaultMaxBodyBytes)
}

func newContext(r *http.Request, sessionID string, maxBody int64) (*Context, error) {
	c := &Context{
		req:       r,
		method:    strings.ToUpper(r.Method),
		path:      normalizePath(r.URL.Path),
		query:     r.URL.Query(),
		body:      map[string]any{},
		params:    map[string]string{},
		sessionID: sessionID,
	}
	if r.Body == nil || r.Body == http.NoBody {
		return c, nil
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("dispatch: read body: %w", err)
	}
	if int64(len(raw)) > maxBody {
		return nil, ErrBodyTooLarge
	}
	c.rawBody = raw
	c.body = parseBody(r.Header.Get("Content-Type"), raw)
	return c, nil
}

// parseBody decodes JSON objects and urlencoded forms. Anything else yields an empty map.
func parseBody(contentType string, raw []byte) map[string]any {
	body := map[string]any{}
	if len(raw) == 0 {
		return body
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/json":
		if err := json.Unmarshal(raw, &body); err != nil {
			return map[string]any{}
		}
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return body
		}
		for key := range values {
			body[key] = values.Get(key)
		}
	}
	return body
}

func normalizePath(p string) string {
	return "/" + strings.Trim(p, "/")
}

// Context returns the request's context.Context for store calls.
func (c *Context) Context() context.Context {
	return c.req.Context()
}

// Method returns the upper-cased HTTP method.
func (c *Context) Method() string { return c.method }

// Path returns the normalised request path without query string.
func (c *Context) Path() string { return c.path }

// Query returns a query string value or "".
func (c *Context) Query(key string) string { return c.query.Get(key) }

// Input returns a decoded body field, or nil.
func (c *Context) Input(key string) any { return c.body[key] }

// InputString returns a body field when it is a string.
func (c *Context) InputString(key string) string {
	s, _ := c.body[key].(string)
	return s
}

// Bind decodes the raw JSON body into dst. An empty body leaves dst untouched.
func (c *Context) Bind(dst any) error {
	if len(c.rawBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.rawBody, dst); err != nil {
		return httpx.NewError(httpx.ErrBadRequest, "Malformed JSON body")
	}
	return nil
}

// Header returns a request header value.
func (c *Context) Header(key string) string { return c.req.Header.Get(key) }

// Param returns a named route parameter or "".
func (c *Context) Param(key string) string { return c.params[key] }

// ParamInt64 parses a named route parameter as a positive integer.
func (c *Context) ParamInt64(key string) (int64, error) {
	id, err := strconv.ParseInt(c.params[key], 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.NewError(httpx.ErrBadRequest, "Invalid "+key)
	}
	return id, nil
}

// Params returns a copy of the route parameters.
func (c *Context) Params() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

// SessionID returns the session id carried by the request cookie.
func (c *Context) SessionID() string { return c.sessionID }

// Route returns the matched route, or nil before matching.
func (c *Context) Route() *Route { return c.route }

// RequiredPermission returns the permission declared by the matched route.
func (c *Context) RequiredPermission() string { return c.requiredPermission }

// Pagination reads page and per_page from the query string.
func (c *Context) Pagination(defaultPerPage int) shared.PageRequest {
	page, _ := strconv.Atoi(c.query.Get("page"))
	perPage := defaultPerPage
	if raw := c.query.Get("per_page"); raw != "" {
		perPage, _ = strconv.Atoi(raw)
	}
	return shared.NewPageRequest(page, perPage)
}

// Authenticate records the principal and its granted permissions.
// Only the authentication middleware calls it.
func (c *Context) Authenticate(p Principal, permissions []string) {
	c.principal = &p
	c.permissions = make(map[string]struct{}, len(permissions))
	c.granted = make([]string, 0, len(permissions))
	for _, name := range permissions {
		name = normalizePermission(name)
		if name == "" {
			continue
		}
		if _, dup := c.permissions[name]; dup {
			continue
		}
		c.permissions[name] = struct{}{}
		c.granted = append(c.granted, name)
	}
	sort.Strings(c.granted)
}

// IsAuthenticated reports whether a principal is attached.
func (c *Context) IsAuthenticated() bool { return c.principal != nil }

// Principal returns the authenticated principal.
func (c *Context) Principal() (Principal, bool) {
	if c.principal == nil {
		return Principal{}, false
	}
	return *c.principal, true
}

// UserID returns the authenticated user id, or 0.
func (c *Context) UserID() int64 {
	if c.principal == nil {
		return 0
	}
	return c.principal.UserID
}

// TenantID returns the principal's company id. ok is false when unset.
func (c *Context) TenantID() (int64, bool) {
	if c.principal == nil || c.principal.TenantID <= 0 {
		return 0, false
	}
	return c.principal.TenantID, true
}

// EmployeeID returns the employee linked to the principal, if any.
func (c *Context) EmployeeID() (int64, bool) {
	if c.principal == nil || c.principal.EmployeeID == nil {
		return 0, false
	}
	return *c.principal.EmployeeID, true
}

// RoleName returns the principal's role name, or "".
func (c *Context) RoleName() string {
	if c.principal == nil {
		return ""
	}
	return c.principal.RoleName
}

// HasPermission reports whether name is in the granted set.
func (c *Context) HasPermission(name string) bool {
	_, ok := c.permissions[normalizePermission(name)]
	return ok
}

// HasAnyPermission reports whether at least one of names is granted.
func (c *Context) HasAnyPermission(names ...string) bool {
	for _, name := range names {
		if c.HasPermission(name) {
			return true
		}
	}
	return false
}

// Permissions returns the granted permission names, sorted.
func (c *Context) Permissions() []string {
	out := make([]string, len(c.granted))
	copy(out, c.granted)
	return out
}

func normalizePermission(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
