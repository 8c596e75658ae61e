package employees

import (
	"context"
	"errors"

	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
	"github.com/odyssey-erp/odyssey-hrms/internal/tenant"
)

// ErrNotLinked is returned when the caller has no employee record.
var ErrNotLinked = errors.New("employees: user has no linked employee")

// Service exposes employee read operations.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of employees in scope.
func (s *Service) List(ctx context.Context, scope tenant.Scope, filters ListFilters, req shared.PageRequest) ([]Employee, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, scope, filters, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Get returns one employee in scope.
func (s *Service) Get(ctx context.Context, scope tenant.Scope, id int64) (Employee, error) {
	return s.repo.Get(ctx, scope, id)
}

// Mine returns the employee linked to userID.
func (s *Service) Mine(ctx context.Context, scope tenant.Scope, userID int64) (Employee, error) {
	e, err := s.repo.GetByUser(ctx, scope, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return Employee{}, ErrNotLinked
	}
	return e, err
}
