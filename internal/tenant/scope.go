package tenant

import (
	"errors"

	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
)

// ErrNoTenant is returned when a request carries no company context.
var ErrNoTenant = errors.New("tenant: company context not available")

// Scope is the company a data access is bound to. The zero value is invalid;
// a Scope can only be obtained from an authenticated request.
type Scope struct {
	companyID int64
}

// ScopeFrom derives the Scope of an authenticated request.
func ScopeFrom(c *dispatch.Context) (Scope, error) {
	id, ok := c.TenantID()
	if !ok {
		return Scope{}, ErrNoTenant
	}
	return Scope{companyID: id}, nil
}

// CompanyID returns the bound company id.
func (s Scope) CompanyID() int64 { return s.companyID }

// Valid reports whether the scope is bound to a company.
func (s Scope) Valid() bool { return s.companyID > 0 }
