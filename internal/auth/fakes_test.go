package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-hrms/internal/auth"
	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
	_ "github.com/odyssey-erp/odyssey-hrms/testing"
)

type stubRepo struct {
	mu          sync.Mutex
	users       map[int64]auth.User
	permissions map[int64][]string
	profile     auth.Profile
	usersErr    error
	permsErr    error
	logins      []int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[int64]auth.User{}, permissions: map[int64][]string{}}
}

func (s *stubRepo) add(u auth.User, password string) {
	if password != "" {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		u.PasswordHash = string(hash)
	}
	s.users[u.ID] = u
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	if s.usersErr != nil {
		return auth.User{}, s.usersErr
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return auth.User{}, shared.ErrNotFound
}

func (s *stubRepo) FindActiveUserByID(ctx context.Context, id int64) (auth.User, error) {
	if s.usersErr != nil {
		return auth.User{}, s.usersErr
	}
	u, ok := s.users[id]
	if !ok || !u.IsActive() {
		return auth.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) FindPermissionsByRole(ctx context.Context, roleID int64) ([]string, error) {
	if s.permsErr != nil {
		return nil, s.permsErr
	}
	return s.permissions[roleID], nil
}

func (s *stubRepo) FindProfile(ctx context.Context, userID int64) (auth.Profile, error) {
	return s.profile, nil
}

func (s *stubRepo) RecordLogin(ctx context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins = append(s.logins, userID)
	return nil
}

var errStore = errors.New("store unavailable")

func newSessions(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func int64Ptr(v int64) *int64 { return &v }

func seededRepo() *stubRepo {
	repo := newStubRepo()
	repo.add(auth.User{ID: 1, CompanyID: 10, RoleID: 2, RoleName: shared.RoleHR, Email: "hr@hrms.local", Status: auth.StatusActive, EmployeeID: int64Ptr(5)}, "secret123")
	repo.add(auth.User{ID: 2, CompanyID: 10, RoleID: 3, RoleName: shared.RoleEmployee, Email: "off@hrms.local", Status: auth.StatusInactive}, "secret123")
	repo.permissions[2] = []string{shared.PermEmployeeView, shared.PermLeaveApprove}
	return repo
}
