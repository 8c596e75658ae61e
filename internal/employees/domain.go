package employees

import "time"

// Employee status values.
const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusTerminated = "terminated"
)

// Employee is a company's staff member, optionally linked to a user account.
type Employee struct {
	ID           int64      `json:"id"`
	CompanyID    int64      `json:"company_id"`
	UserID       *int64     `json:"user_id"`
	EmployeeCode string     `json:"employee_code"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Department   *string    `json:"department"`
	Position     *string    `json:"position"`
	Status       string     `json:"status"`
	Email        *string    `json:"email"`
	RoleName     *string    `json:"role_name"`
	HireDate     *time.Time `json:"hire_date"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ListFilters narrows the employee listing.
type ListFilters struct {
	Department string
	Status     string
	Search     string
}
