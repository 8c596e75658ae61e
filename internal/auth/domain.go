package auth

import "time"

// Account statuses stored in users.status.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusLocked   = "locked"
)

// User is a user row joined with its role and linked employee.
type User struct {
	ID           int64
	CompanyID    int64
	RoleID       int64
	RoleName     string
	Email        string
	PasswordHash string
	Status       string
	EmployeeID   *int64
}

// IsActive reports whether the account may sign in.
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// Profile holds the employee details shown by the "me" endpoint.
type Profile struct {
	FirstName    *string
	LastName     *string
	EmployeeCode *string
	LastLogin    *time.Time
}
