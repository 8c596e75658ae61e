package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-hrms/internal/auth"
	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

type recorder struct {
	called bool
	ctx    *dispatch.Context
}

func (r *recorder) next(c *dispatch.Context) (*httpx.Response, error) {
	r.called = true
	r.ctx = c
	return httpx.OK(nil), nil
}

func run(t *testing.T, mw *auth.Middleware, sessionID string) (*httpx.Response, *recorder) {
	t.Helper()
	c, err := dispatch.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), sessionID)
	require.NoError(t, err)
	rec := &recorder{}
	resp, err := mw.Handle(c, rec.next)
	require.NoError(t, err)
	return resp, rec
}

func errorMessage(t *testing.T, resp *httpx.Response) string {
	t.Helper()
	body, ok := resp.Body.(httpx.ErrorEnvelope)
	require.True(t, ok, "expected error envelope")
	return body.Error.Message
}

func TestMiddlewareRejectsMissingSession(t *testing.T) {
	sessions, _ := newSessions(t)
	repo := seededRepo()
	mw := auth.NewMiddleware(repo, repo, sessions, nil)

	resp, rec := run(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "Authentication required", errorMessage(t, resp))
	assert.False(t, rec.called)

	resp, rec = run(t, mw, "unknown")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.False(t, rec.called)
}

func TestMiddlewareRejectsSessionWithoutUser(t *testing.T) {
	sessions, _ := newSessions(t)
	repo := seededRepo()
	require.NoError(t, sessions.Set(context.Background(), "guest", shared.SessionData{}))
	mw := auth.NewMiddleware(repo, repo, sessions, nil)

	resp, rec := run(t, mw, "guest")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.False(t, rec.called)
}

func TestMiddlewareDestroysSessionOfInactiveOrMissingUser(t *testing.T) {
	for _, userID := range []int64{2, 99} {
		sessions, mr := newSessions(t)
		repo := seededRepo()
		require.NoError(t, sessions.Set(context.Background(), "sid", shared.SessionData{User: &shared.SessionUser{ID: userID}}))
		mw := auth.NewMiddleware(repo, repo, sessions, nil)

		resp, rec := run(t, mw, "sid")
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		assert.Equal(t, "Session expired or user inactive", errorMessage(t, resp))
		assert.False(t, rec.called)
		assert.False(t, mr.Exists("session:sid"))
	}
}

func TestMiddlewarePopulatesContextAndRefreshesSession(t *testing.T) {
	sessions, _ := newSessions(t)
	repo := seededRepo()
	stale := shared.SessionData{
		User:        &shared.SessionUser{ID: 1, RoleName: "Stale"},
		Permissions: []string{"payroll.create"},
	}
	require.NoError(t, sessions.Set(context.Background(), "sid", stale))
	mw := auth.NewMiddleware(repo, repo, sessions, nil)

	resp, rec := run(t, mw, "sid")
	assert.Equal(t, http.StatusOK, resp.Status)
	require.True(t, rec.called)

	c := rec.ctx
	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, int64(1), c.UserID())
	tenant, ok := c.TenantID()
	assert.True(t, ok)
	assert.Equal(t, int64(10), tenant)
	emp, ok := c.EmployeeID()
	assert.True(t, ok)
	assert.Equal(t, int64(5), emp)
	assert.Equal(t, shared.RoleHR, c.RoleName())
	assert.True(t, c.HasPermission(shared.PermEmployeeView))
	assert.False(t, c.HasPermission(shared.PermPayrollCreate))

	refreshed, err := sessions.Get(context.Background(), "sid")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleHR, refreshed.User.RoleName)
	assert.Equal(t, []string{shared.PermEmployeeView, shared.PermLeaveApprove}, refreshed.Permissions)
}

func TestMiddlewareStoreFailuresAreServerErrors(t *testing.T) {
	sessions, _ := newSessions(t)
	repo := seededRepo()
	require.NoError(t, sessions.Set(context.Background(), "sid", shared.SessionData{User: &shared.SessionUser{ID: 1}}))
	mw := auth.NewMiddleware(repo, repo, sessions, nil)

	repo.usersErr = errStore
	resp, rec := run(t, mw, "sid")
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.NotContains(t, errorMessage(t, resp), "store")
	assert.False(t, rec.called)

	repo.usersErr = nil
	repo.permsErr = errStore
	resp, rec = run(t, mw, "sid")
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.False(t, rec.called)
}

func TestMiddlewareSessionStoreDown(t *testing.T) {
	sessions, mr := newSessions(t)
	repo := seededRepo()
	mw := auth.NewMiddleware(repo, repo, sessions, nil)
	mr.Close()

	resp, rec := run(t, mw, "sid")
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.False(t, rec.called)
}

func TestMiddlewareName(t *testing.T) {
	assert.Equal(t, auth.MiddlewareName, auth.NewMiddleware(nil, nil, nil, nil).Name())
}
