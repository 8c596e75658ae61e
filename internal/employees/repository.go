package employees

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
	"github.com/odyssey-erp/odyssey-hrms/internal/tenant"
)

// Repository reads employees of a single company.
type Repository interface {
	List(ctx context.Context, scope tenant.Scope, filters ListFilters, page shared.PageRequest) ([]Employee, int, error)
	Get(ctx context.Context, scope tenant.Scope, id int64) (Employee, error)
	GetByUser(ctx context.Context, scope tenant.Scope, userID int64) (Employee, error)
}

// PGRepository implements Repository with PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var errInvalidScope = errors.New("employees: invalid tenant scope")

const employeeColumns = `SELECT e.id, e.company_id, e.user_id, e.employee_code, e.first_name, e.last_name,
	e.department, e.position, e.status, u.email, r.name, e.hire_date, e.created_at
FROM employees e
LEFT JOIN users u ON u.id = e.user_id AND u.company_id = e.company_id
LEFT JOIN roles r ON r.id = u.role_id`

// List returns a page of employees plus the total matching count.
func (r *PGRepository) List(ctx context.Context, scope tenant.Scope, filters ListFilters, page shared.PageRequest) ([]Employee, int, error) {
	if !scope.Valid() {
		return nil, 0, errInvalidScope
	}
	where, args := buildWhere(scope, filters)

	var total int
	countSQL := `SELECT COUNT(*) FROM employees e LEFT JOIN users u ON u.id = e.user_id AND u.company_id = e.company_id WHERE ` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("employees: count: %w", err)
	}

	args = append(args, page.PerPage, page.Offset)
	listSQL := employeeColumns + ` WHERE ` + where +
		` ORDER BY e.created_at DESC, e.id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("employees: list: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Employee, error) {
		return scanEmployee(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("employees: scan list: %w", err)
	}
	return items, total, nil
}

// Get returns one employee of the scoped company.
func (r *PGRepository) Get(ctx context.Context, scope tenant.Scope, id int64) (Employee, error) {
	if !scope.Valid() {
		return Employee{}, errInvalidScope
	}
	row := r.pool.QueryRow(ctx, employeeColumns+` WHERE e.company_id = $1 AND e.id = $2`, scope.CompanyID(), id)
	return scanOne(row)
}

// GetByUser returns the employee linked to userID within the scoped company.
func (r *PGRepository) GetByUser(ctx context.Context, scope tenant.Scope, userID int64) (Employee, error) {
	if !scope.Valid() {
		return Employee{}, errInvalidScope
	}
	row := r.pool.QueryRow(ctx, employeeColumns+` WHERE e.company_id = $1 AND e.user_id = $2`, scope.CompanyID(), userID)
	return scanOne(row)
}

func buildWhere(scope tenant.Scope, filters ListFilters) (string, []any) {
	clauses := []string{"e.company_id = $1"}
	args := []any{scope.CompanyID()}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filters.Department != "" {
		clauses = append(clauses, "e.department = "+next(filters.Department))
	}
	if filters.Status != "" {
		clauses = append(clauses, "e.status = "+next(filters.Status))
	}
	if filters.Search != "" {
		p := next("%" + filters.Search + "%")
		clauses = append(clauses, "(e.first_name ILIKE "+p+" OR e.last_name ILIKE "+p+" OR e.employee_code ILIKE "+p+" OR u.email ILIKE "+p+")")
	}
	return strings.Join(clauses, " AND "), args
}

func scanOne(row pgx.Row) (Employee, error) {
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, shared.ErrNotFound
		}
		return Employee{}, fmt.Errorf("employees: scan: %w", err)
	}
	return e, nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.CompanyID, &e.UserID, &e.EmployeeCode, &e.FirstName, &e.LastName,
		&e.Department, &e.Position, &e.Status, &e.Email, &e.RoleName, &e.HireDate, &e.CreatedAt)
	return e, err
}

var _ Repository = (*PGRepository)(nil)
