package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func TestSessionSetGetDestroy(t *testing.T) {
	sm, mr := newSessionManager(t)
	ctx := context.Background()
	emp := int64(5)

	data := SessionData{
		User:        &SessionUser{ID: 1, CompanyID: 2, RoleID: 3, RoleName: RoleHR, Email: "hr@hrms.local", EmployeeID: &emp},
		Permissions: []string{PermEmployeeView},
	}
	require.NoError(t, sm.Set(ctx, "abc", data))
	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	loaded, err := sm.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
	assert.Equal(t, int64(1), loaded.UserID())

	require.NoError(t, sm.Destroy(ctx, "abc"))
	_, err = sm.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	require.NoError(t, sm.Destroy(ctx, "abc"))
}

func TestSessionGetUnknownOrEmpty(t *testing.T) {
	sm, _ := newSessionManager(t)

	_, err := sm.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sm.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Error(t, sm.Set(context.Background(), " ", SessionData{}))
}

func TestSessionSetStoresEmptyPermissionList(t *testing.T) {
	sm, mr := newSessionManager(t)
	require.NoError(t, sm.Set(context.Background(), "x", SessionData{}))

	raw, err := mr.Get("session:x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"permissions":[]}`, raw)

	loaded, err := sm.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Zero(t, loaded.UserID())
}

func TestSessionExpires(t *testing.T) {
	sm, mr := newSessionManager(t)
	require.NoError(t, sm.Set(context.Background(), "ttl", SessionData{User: &SessionUser{ID: 1}}))

	mr.FastForward(2 * time.Hour)
	_, err := sm.Get(context.Background(), "ttl")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionGetCorruptPayload(t *testing.T) {
	sm, mr := newSessionManager(t)
	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := sm.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionCookies(t *testing.T) {
	sm, _ := newSessionManager(t)

	id := sm.NewID()
	assert.NotEmpty(t, id)
	assert.NotEqual(t, id, sm.NewID())

	cookie := sm.Cookie(id)
	assert.Equal(t, "test_session", cookie.Name)
	assert.Equal(t, id, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	expired := sm.ExpiredCookie()
	assert.Equal(t, -1, expired.MaxAge)
	assert.Empty(t, expired.Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, sm.SessionID(req))
	req.AddCookie(cookie)
	assert.Equal(t, id, sm.SessionID(req))
}
