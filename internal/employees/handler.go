package employees

import (
	"errors"

	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
	"github.com/odyssey-erp/odyssey-hrms/internal/tenant"
)

const defaultPerPage = 20

// Handler serves the employee endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterHandlers binds the employee handler names.
func (h *Handler) RegisterHandlers(reg *dispatch.Registry) {
	reg.Handle("employees.index", h.Index)
	reg.Handle("employees.me", h.Me)
	reg.Handle("employees.show", h.Show)
}

// Index lists employees of the caller's company.
func (h *Handler) Index(c *dispatch.Context) (*httpx.Response, error) {
	scope, err := tenant.ScopeFrom(c)
	if err != nil {
		return nil, err
	}
	filters := ListFilters{
		Department: c.Query("department"),
		Status:     c.Query("status"),
		Search:     c.Query("search"),
	}
	items, page, err := h.service.List(c.Context(), scope, filters, c.Pagination(defaultPerPage))
	if err != nil {
		return nil, err
	}
	return httpx.Paginated(items, page), nil
}

// Me returns the caller's own employee record.
func (h *Handler) Me(c *dispatch.Context) (*httpx.Response, error) {
	scope, err := tenant.ScopeFrom(c)
	if err != nil {
		return nil, err
	}
	e, err := h.service.Mine(c.Context(), scope, c.UserID())
	if errors.Is(err, ErrNotLinked) {
		return httpx.NotFound("No employee record linked to this account"), nil
	}
	if err != nil {
		return nil, err
	}
	return httpx.OK(e), nil
}

// Show returns a single employee of the caller's company.
func (h *Handler) Show(c *dispatch.Context) (*httpx.Response, error) {
	id, err := c.ParamInt64("id")
	if err != nil {
		return nil, err
	}
	scope, err := tenant.ScopeFrom(c)
	if err != nil {
		return nil, err
	}
	e, err := h.service.Get(c.Context(), scope, id)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.NotFound("Employee not found"), nil
	}
	if err != nil {
		return nil, err
	}
	return httpx.OK(e), nil
}
