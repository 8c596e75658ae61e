package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

// MiddlewareName identifies the authentication middleware in route declarations.
const MiddlewareName = "auth"

const (
	msgAuthRequired   = "Authentication required"
	msgSessionExpired = "Session expired or user inactive"
)

// SessionStore persists session data keyed by the cookie-carried session id.
type SessionStore interface {
	Get(ctx context.Context, id string) (shared.SessionData, error)
	Set(ctx context.Context, id string, data shared.SessionData) error
	Destroy(ctx context.Context, id string) error
}

// Middleware resolves the caller from its session and re-validates it on every request.
type Middleware struct {
	users       UserStore
	permissions PermissionStore
	sessions    SessionStore
	logger      *slog.Logger
}

// NewMiddleware constructs the authentication middleware.
func NewMiddleware(users UserStore, permissions PermissionStore, sessions SessionStore, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{users: users, permissions: permissions, sessions: sessions, logger: logger}
}

// Name implements dispatch.Middleware.
func (m *Middleware) Name() string { return MiddlewareName }

// Handle implements dispatch.Middleware.
func (m *Middleware) Handle(c *dispatch.Context, next dispatch.Handler) (*httpx.Response, error) {
	ctx := c.Context()
	sid := c.SessionID()
	if sid == "" {
		return httpx.Unauthorized(msgAuthRequired), nil
	}

	sess, err := m.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, shared.ErrSessionNotFound) {
			return httpx.Unauthorized(msgAuthRequired), nil
		}
		m.logger.Error("auth load session", slog.Any("error", err))
		return httpx.ServerError(""), nil
	}
	userID := sess.UserID()
	if userID <= 0 {
		return httpx.Unauthorized(msgAuthRequired), nil
	}

	// Missing and inactive users share one response so callers cannot tell them apart.
	user, err := m.users.FindActiveUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if derr := m.sessions.Destroy(ctx, sid); derr != nil {
				m.logger.Warn("auth destroy session", slog.Any("error", derr))
			}
			return httpx.Unauthorized(msgSessionExpired), nil
		}
		m.logger.Error("auth load user", slog.Int64("user_id", userID), slog.Any("error", err))
		return httpx.ServerError(""), nil
	}

	perms, err := m.permissions.FindPermissionsByRole(ctx, user.RoleID)
	if err != nil {
		m.logger.Error("auth load permissions", slog.Int64("role_id", user.RoleID), slog.Any("error", err))
		return httpx.ServerError(""), nil
	}

	c.Authenticate(dispatch.Principal{
		UserID:     user.ID,
		TenantID:   user.CompanyID,
		RoleID:     user.RoleID,
		RoleName:   user.RoleName,
		Email:      user.Email,
		EmployeeID: user.EmployeeID,
	}, perms)

	if err := m.sessions.Set(ctx, sid, shared.SessionData{User: Snapshot(user), Permissions: perms}); err != nil {
		m.logger.Error("auth refresh session", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return httpx.ServerError(""), nil
	}

	return next(c)
}

var _ dispatch.Middleware = (*Middleware)(nil)
