package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
)

// trace records middleware and handler invocations in order.
type trace struct {
	calls []string
}

func (tr *trace) mw(name string) Middleware {
	return MiddlewareFunc(name, func(c *Context, next Handler) (*httpx.Response, error) {
		tr.calls = append(tr.calls, name)
		return next(c)
	})
}

func (tr *trace) stop(name string, resp *httpx.Response) Middleware {
	return MiddlewareFunc(name, func(c *Context, next Handler) (*httpx.Response, error) {
		tr.calls = append(tr.calls, name)
		return resp, nil
	})
}

func (tr *trace) handler() Handler {
	return func(c *Context) (*httpx.Response, error) {
		tr.calls = append(tr.calls, "handler")
		return httpx.OK(c.Params()), nil
	}
}

// fakeAuth authenticates when the session id is "valid".
func fakeAuth(tr *trace) Middleware {
	return MiddlewareFunc("auth", func(c *Context, next Handler) (*httpx.Response, error) {
		tr.calls = append(tr.calls, "auth")
		if c.SessionID() != "valid" {
			return httpx.Unauthorized(""), nil
		}
		c.Authenticate(Principal{UserID: 1, TenantID: 1, RoleName: "HR"}, []string{"employee.view"})
		return next(c)
	})
}

type cookieSource struct{}

func (cookieSource) SessionID(r *http.Request) string {
	if c, err := r.Cookie("sid"); err == nil {
		return c.Value
	}
	return ""
}

func newDispatcher(t *testing.T, tr *trace, table *Table, global ...Middleware) *Dispatcher {
	t.Helper()
	d, err := New(Options{Table: table, Authenticator: fakeAuth(tr), Global: global, Sessions: cookieSource{}})
	require.NoError(t, err)
	return d
}

func contextFor(t *testing.T, method, target, sessionID string) *Context {
	t.Helper()
	c, err := NewContext(httptest.NewRequest(method, target, nil), sessionID)
	require.NoError(t, err)
	return c
}

func TestDispatchUnmatchedRunsNoMiddleware(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodGet, "/api/employees", tr.handler())
	d := newDispatcher(t, tr, table, tr.mw("global"))

	resp, err := d.Dispatch(contextFor(t, http.MethodGet, "/api/unknown", "valid"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	body := resp.Body.(httpx.ErrorEnvelope)
	assert.Equal(t, httpx.CodeNotFound, body.Error.Code)
	assert.Equal(t, "Endpoint not found", body.Error.Message)
	assert.Empty(t, tr.calls)
}

func TestDispatchAuthGateNeverReachesHandler(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodGet, "/api/employees", tr.handler())
	d := newDispatcher(t, tr, table)

	resp, err := d.Dispatch(contextFor(t, http.MethodGet, "/api/employees", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, []string{"auth"}, tr.calls)
}

func TestDispatchPublicRouteSkipsAuth(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodPost, "/api/auth/login", tr.handler(), Public())
	d := newDispatcher(t, tr, table)

	resp, err := d.Dispatch(contextFor(t, http.MethodPost, "/api/auth/login", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, []string{"handler"}, tr.calls)
}

func TestDispatchChainOrder(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodGet, "/api/employees/{id}", tr.handler(),
		WithPermission("employee.view"),
		WithMiddleware(tr.mw("tenant"), tr.mw("rbac")))
	d := newDispatcher(t, tr, table, tr.mw("global"))

	c := contextFor(t, http.MethodGet, "/api/employees/5", "valid")
	resp, err := d.Dispatch(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, []string{"global", "auth", "tenant", "rbac", "handler"}, tr.calls)
	assert.Equal(t, "employee.view", c.RequiredPermission())
	assert.Equal(t, "5", c.Param("id"))
	assert.Equal(t, "/api/employees/{id}", c.Route().Pattern)
}

func TestDispatchAuthInsertedOnce(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodGet, "/declared", tr.handler(), WithMiddleware(fakeAuth(tr), tr.mw("rbac")))
	table.MustRegister(http.MethodGet, "/global", tr.handler())
	d := newDispatcher(t, tr, table)

	_, err := d.Dispatch(contextFor(t, http.MethodGet, "/declared", "valid"))
	require.NoError(t, err)
	assert.Equal(t, []string{"auth", "rbac", "handler"}, tr.calls)

	tr.calls = nil
	withGlobalAuth := newDispatcher(t, tr, NewTable(), fakeAuth(tr))
	assert.Len(t, withGlobalAuth.assemble(&Route{RequiresAuth: true}), 1)
}

func TestDispatchShortCircuitStopsPropagation(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodGet, "/x", tr.handler(),
		WithMiddleware(tr.mw("first"), tr.stop("blocker", httpx.Forbidden("nope")), tr.mw("after")))
	d := newDispatcher(t, tr, table)

	resp, err := d.Dispatch(contextFor(t, http.MethodGet, "/x", "valid"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, []string{"auth", "first", "blocker"}, tr.calls)
}

func TestDispatchReturnsHandlerErrorsUnchanged(t *testing.T) {
	tr := &trace{}
	boom := errors.New("boom")
	table := NewTable()
	table.MustRegister(http.MethodGet, "/x", func(c *Context) (*httpx.Response, error) { return nil, boom }, Public())
	d := newDispatcher(t, tr, table)

	_, err := d.Dispatch(contextFor(t, http.MethodGet, "/x", ""))
	assert.ErrorIs(t, err, boom)
}

func TestServeHTTPMapsErrorsWithoutLeakingDetail(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodGet, "/boom", func(c *Context) (*httpx.Response, error) {
		return nil, errors.New("pq: relation users does not exist")
	}, Public())
	table.MustRegister(http.MethodGet, "/missing", func(c *Context) (*httpx.Response, error) {
		return nil, httpx.NewError(httpx.ErrNotFound, "Employee not found")
	}, Public())
	table.MustRegister(http.MethodDelete, "/empty", func(c *Context) (*httpx.Response, error) { return nil, nil }, Public())
	d := newDispatcher(t, tr, table)

	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotContains(t, rr.Body.String(), "relation")
	assert.Contains(t, rr.Body.String(), `"code":"SERVER_ERROR"`)

	rr = httptest.NewRecorder()
	d.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Employee not found")

	rr = httptest.NewRecorder()
	d.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/empty", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestServeHTTPReadsSessionCookie(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodGet, "/api/employees", tr.handler())
	d := newDispatcher(t, tr, table)

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "valid"})
	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}

func TestServeHTTPRejectsOversizedBody(t *testing.T) {
	tr := &trace{}
	table := NewTable()
	table.MustRegister(http.MethodPost, "/x", tr.handler(), Public())
	d, err := New(Options{Table: table, Authenticator: fakeAuth(tr), MaxBodyBytes: 8})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	d.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"too":"large"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, tr.calls)
}

func TestNewValidatesOptions(t *testing.T) {
	tr := &trace{}
	_, err := New(Options{Authenticator: fakeAuth(tr)})
	assert.Error(t, err)
	_, err = New(Options{Table: NewTable()})
	assert.Error(t, err)
	_, err = New(Options{Table: NewTable(), Authenticator: fakeAuth(tr), Global: []Middleware{nil}})
	assert.Error(t, err)

	table := NewTable()
	_, err = New(Options{Table: table, Authenticator: fakeAuth(tr)})
	require.NoError(t, err)
	assert.ErrorIs(t, table.Register(http.MethodGet, "/late", tr.handler()), ErrTableSealed)
}
