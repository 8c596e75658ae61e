package rbac

import "github.com/odyssey-erp/odyssey-hrms/internal/shared"

// SuperRole is the role name that bypasses permission checks. The bypass does
// not depend on the role_permissions rows seeded for it.
const SuperRole = shared.RoleAdmin

// IsSuperRole reports whether roleName is the super role. Only Middleware calls it.
func IsSuperRole(roleName string) bool {
	return roleName == SuperRole
}

// Permission represents an atomic capability.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Module      string `json:"module"`
	Description string `json:"description"`
}

// ModuleGroup is the permissions of one module.
type ModuleGroup struct {
	Module      string       `json:"module"`
	Permissions []Permission `json:"permissions"`
}
