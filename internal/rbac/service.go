package rbac

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

// PermissionSource loads the permission names of a role.
type PermissionSource interface {
	FindPermissionsByRole(ctx context.Context, roleID int64) ([]string, error)
}

// PermissionLoader coalesces concurrent loads for the same role into one store query.
// Nothing is cached between calls, so grant changes are visible to the next request.
type PermissionLoader struct {
	source PermissionSource
	group  singleflight.Group
}

// NewPermissionLoader wraps source.
func NewPermissionLoader(source PermissionSource) *PermissionLoader {
	return &PermissionLoader{source: source}
}

// FindPermissionsByRole implements PermissionSource.
func (l *PermissionLoader) FindPermissionsByRole(ctx context.Context, roleID int64) ([]string, error) {
	ch := l.group.DoChan(strconv.FormatInt(roleID, 10), func() (any, error) {
		return l.source.FindPermissionsByRole(context.WithoutCancel(ctx), roleID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		names, _ := res.Val.([]string)
		out := make([]string, len(names))
		copy(out, names)
		return out, nil
	}
}

// Repository lists the permission catalog.
type Repository interface {
	ListPermissions(ctx context.Context) ([]Permission, error)
}

// PGRepository reads permissions from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListPermissions returns all permissions ordered by name.
func (r *PGRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("rbac: list permissions: %w", err)
	}
	perms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Permission, error) {
		var p Permission
		err := row.Scan(&p.ID, &p.Name, &p.Description)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("rbac: scan permissions: %w", err)
	}
	return perms, nil
}

// Service orchestrates RBAC read operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GroupedPermissions returns the catalog grouped by module, modules sorted by name.
func (s *Service) GroupedPermissions(ctx context.Context) ([]ModuleGroup, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return groupByModule(perms), nil
}

func groupByModule(perms []Permission) []ModuleGroup {
	index := make(map[string]int)
	groups := make([]ModuleGroup, 0)
	for _, p := range perms {
		p.Module = shared.PermissionModule(p.Name)
		i, ok := index[p.Module]
		if !ok {
			i = len(groups)
			index[p.Module] = i
			groups = append(groups, ModuleGroup{Module: p.Module})
		}
		groups[i].Permissions = append(groups[i].Permissions, p)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Module < groups[b].Module })
	return groups
}
