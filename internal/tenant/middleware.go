package tenant

import (
	"log/slog"

	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
)

// MiddlewareName identifies the tenant middleware in route declarations.
const MiddlewareName = "tenant"

// Middleware requires the authenticated principal to belong to a company.
type Middleware struct {
	Logger *slog.Logger
}

// Name implements dispatch.Middleware.
func (m Middleware) Name() string { return MiddlewareName }

// Handle implements dispatch.Middleware.
func (m Middleware) Handle(c *dispatch.Context, next dispatch.Handler) (*httpx.Response, error) {
	if !c.IsAuthenticated() {
		return httpx.Unauthorized("Authentication required"), nil
	}
	if _, ok := c.TenantID(); !ok {
		logger := m.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("tenant context missing",
			slog.Int64("user_id", c.UserID()),
			slog.String("path", c.Path()))
		return httpx.ServerError("Company context not available"), nil
	}
	return next(c)
}

var _ dispatch.Middleware = Middleware{}
