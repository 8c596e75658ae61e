package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

// UserStore resolves users for the authentication middleware.
type UserStore interface {
	FindActiveUserByID(ctx context.Context, id int64) (User, error)
}

// PermissionStore resolves the permission names granted to a role.
type PermissionStore interface {
	FindPermissionsByRole(ctx context.Context, roleID int64) ([]string, error)
}

// LoginRecorder is notified after a successful login.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, userID int64, at time.Time) error
}

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	permissions PermissionStore
	recorder    LoginRecorder
	now         func() time.Time
}

// NewService constructs a new Service. permissions and recorder default to repo.
func NewService(repo Repository, permissions PermissionStore, recorder LoginRecorder) *Service {
	if permissions == nil {
		permissions = repo
	}
	if recorder == nil {
		recorder = repo
	}
	return &Service{repo: repo, permissions: permissions, recorder: recorder, now: time.Now}
}

// Authenticate validates email/password credentials and loads the role's permissions.
// Unknown emails and wrong passwords both return shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, []string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, nil, shared.ErrInvalidCredentials
		}
		return User{}, nil, err
	}
	if !user.IsActive() {
		return User{}, nil, shared.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, nil, shared.ErrInvalidCredentials
	}
	perms, err := s.permissions.FindPermissionsByRole(ctx, user.RoleID)
	if err != nil {
		return User{}, nil, err
	}
	return user, perms, nil
}

// RecordLogin forwards the login event to the configured recorder.
func (s *Service) RecordLogin(ctx context.Context, userID int64) error {
	return s.recorder.RecordLogin(ctx, userID, s.now())
}

// Profile loads the employee details of a signed-in user.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	p, err := s.repo.FindProfile(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return Profile{}, nil
	}
	return p, err
}

// Snapshot converts a user into the identity stored in its session.
func Snapshot(u User) *shared.SessionUser {
	return &shared.SessionUser{
		ID:         u.ID,
		CompanyID:  u.CompanyID,
		RoleID:     u.RoleID,
		RoleName:   u.RoleName,
		Email:      u.Email,
		EmployeeID: u.EmployeeID,
	}
}
