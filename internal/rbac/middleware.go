package rbac

import (
	"log/slog"

	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
)

// MiddlewareName identifies the RBAC middleware in route declarations.
const MiddlewareName = "rbac"

// Decision is the outcome of an authorization check.
type Decision int

const (
	// AllowNoPermission: the route declares no permission.
	AllowNoPermission Decision = iota
	// DenyUnauthenticated: a permission is required and nobody is signed in.
	DenyUnauthenticated
	// AllowSuperRole: the caller holds the super role.
	AllowSuperRole
	// AllowGranted: the caller's role grants the permission.
	AllowGranted
	// DenyMissingPermission: the caller's role lacks the permission.
	DenyMissingPermission
)

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d == AllowNoPermission || d == AllowSuperRole || d == AllowGranted
}

// Decide evaluates the route's required permission against the context.
func Decide(c *dispatch.Context) Decision {
	required := c.RequiredPermission()
	switch {
	case required == "":
		return AllowNoPermission
	case !c.IsAuthenticated():
		return DenyUnauthenticated
	case IsSuperRole(c.RoleName()):
		return AllowSuperRole
	case c.HasPermission(required):
		return AllowGranted
	default:
		return DenyMissingPermission
	}
}

// Middleware enforces the permission declared by the matched route.
type Middleware struct {
	Logger *slog.Logger
}

// Name implements dispatch.Middleware.
func (m Middleware) Name() string { return MiddlewareName }

// Handle implements dispatch.Middleware.
func (m Middleware) Handle(c *dispatch.Context, next dispatch.Handler) (*httpx.Response, error) {
	switch Decide(c) {
	case DenyUnauthenticated:
		return httpx.Unauthorized("Authentication required"), nil
	case DenyMissingPermission:
		if m.Logger != nil {
			m.Logger.Info("rbac denied",
				slog.Int64("user_id", c.UserID()),
				slog.String("permission", c.RequiredPermission()),
				slog.String("path", c.Path()))
		}
		return httpx.Forbidden("You don't have permission to perform this action. Required: " + c.RequiredPermission()), nil
	default:
		return next(c)
	}
}

var _ dispatch.Middleware = Middleware{}
