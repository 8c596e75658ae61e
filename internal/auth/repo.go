package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindActiveUserByID(ctx context.Context, id int64) (User, error)
	FindPermissionsByRole(ctx context.Context, roleID int64) ([]string, error)
	FindProfile(ctx context.Context, userID int64) (Profile, error)
	RecordLogin(ctx context.Context, userID int64, at time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `SELECT u.id, u.company_id, u.role_id, r.name, u.email, u.password_hash, u.status, e.id
FROM users u
JOIN roles r ON r.id = u.role_id
LEFT JOIN employees e ON e.user_id = u.id AND e.company_id = u.company_id`

// FindByEmail fetches a user by email regardless of status. Emails are unique across tenants.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, userColumns+` WHERE lower(u.email) = lower($1) LIMIT 1`, email)
	return scanUser(row)
}

// FindActiveUserByID fetches a user only while its status is active.
func (r *PGRepository) FindActiveUserByID(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, userColumns+` WHERE u.id = $1 AND u.status = $2 LIMIT 1`, id, StatusActive)
	return scanUser(row)
}

// FindPermissionsByRole lists the permission names granted to a role.
func (r *PGRepository) FindPermissionsByRole(ctx context.Context, roleID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.name
FROM permissions p
JOIN role_permissions rp ON rp.permission_id = p.id
WHERE rp.role_id = $1
ORDER BY p.name`, roleID)
	if err != nil {
		return nil, fmt.Errorf("auth: permissions by role: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("auth: scan permissions: %w", err)
	}
	return names, nil
}

// FindProfile loads the employee details linked to a user.
func (r *PGRepository) FindProfile(ctx context.Context, userID int64) (Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `SELECT e.first_name, e.last_name, e.employee_code, u.last_login
FROM users u
LEFT JOIN employees e ON e.user_id = u.id AND e.company_id = u.company_id
WHERE u.id = $1`, userID).Scan(&p.FirstName, &p.LastName, &p.EmployeeCode, &p.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrNotFound
		}
		return Profile{}, fmt.Errorf("auth: profile: %w", err)
	}
	return p, nil
}

// RecordLogin stamps users.last_login.
func (r *PGRepository) RecordLogin(ctx context.Context, userID int64, at time.Time) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, userID, at.UTC()); err != nil {
		return fmt.Errorf("auth: record login: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.CompanyID, &u.RoleID, &u.RoleName, &u.Email, &u.PasswordHash, &u.Status, &u.EmployeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, fmt.Errorf("auth: scan user: %w", err)
	}
	return u, nil
}

var _ Repository = (*PGRepository)(nil)
