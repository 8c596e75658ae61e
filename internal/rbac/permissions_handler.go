package rbac

import (
	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
)

// PermissionsHandler serves the permission catalog.
type PermissionsHandler struct {
	service *Service
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(service *Service) *PermissionsHandler {
	return &PermissionsHandler{service: service}
}

// RegisterHandlers binds the permission handler names.
func (h *PermissionsHandler) RegisterHandlers(reg *dispatch.Registry) {
	reg.Handle("permissions.index", h.List)
}

// List returns permissions grouped by module.
func (h *PermissionsHandler) List(c *dispatch.Context) (*httpx.Response, error) {
	groups, err := h.service.GroupedPermissions(c.Context())
	if err != nil {
		return nil, err
	}
	return httpx.OK(groups), nil
}
