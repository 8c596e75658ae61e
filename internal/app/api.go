package app

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/odyssey-erp/odyssey-hrms/internal/auth"
	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/employees"
	"github.com/odyssey-erp/odyssey-hrms/internal/observability"
	"github.com/odyssey-erp/odyssey-hrms/internal/rbac"
	"github.com/odyssey-erp/odyssey-hrms/internal/tenant"
)

// APISessions is the session surface the API needs: storage, cookies and id extraction.
type APISessions interface {
	auth.SessionIssuer
	dispatch.SessionIDSource
}

// APIParams groups the dependencies of the API dispatcher.
type APIParams struct {
	Logger *slog.Logger
	// Routes overrides RoutesFile when non-nil.
	Routes       []dispatch.Declaration
	RoutesFile   string
	MaxBodyBytes int64

	Sessions    APISessions
	Users       auth.Repository
	Recorder    auth.LoginRecorder
	Employees   employees.Repository
	Permissions rbac.Repository
	Metrics     *observability.Metrics
}

// NewAPI builds the route table from the declarations and returns the sealed dispatcher.
func NewAPI(p APIParams) (*dispatch.Dispatcher, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p.Sessions == nil || p.Users == nil {
		return nil, errors.New("app: api requires sessions and users")
	}

	decls := p.Routes
	if decls == nil {
		loaded, err := dispatch.LoadDeclarations(p.RoutesFile)
		if err != nil {
			return nil, err
		}
		decls = loaded
	}
	if err := checkPermissionGuards(decls); err != nil {
		return nil, err
	}

	loader := rbac.NewPermissionLoader(p.Users)
	authService := auth.NewService(p.Users, loader, p.Recorder)
	authMiddleware := auth.NewMiddleware(p.Users, loader, p.Sessions, logger)

	reg := dispatch.NewRegistry()
	reg.Use(
		authMiddleware,
		tenant.Middleware{Logger: logger},
		rbac.Middleware{Logger: logger},
	)

	authHandler := auth.NewHandler(logger, authService, p.Sessions)
	if p.Metrics != nil {
		authHandler.ObserveWith(p.Metrics)
	}
	authHandler.RegisterHandlers(reg)
	if p.Employees != nil {
		employees.NewHandler(employees.NewService(p.Employees)).RegisterHandlers(reg)
	}
	if p.Permissions != nil {
		rbac.NewPermissionsHandler(rbac.NewService(p.Permissions)).RegisterHandlers(reg)
	}

	table := dispatch.NewTable()
	if err := reg.Apply(table, decls); err != nil {
		return nil, err
	}

	var global []dispatch.Middleware
	if p.Metrics != nil {
		global = append(global, p.Metrics.Dispatch())
	}
	return dispatch.New(dispatch.Options{
		Table:         table,
		Authenticator: authMiddleware,
		Global:        global,
		Sessions:      p.Sessions,
		Logger:        logger,
		MaxBodyBytes:  p.MaxBodyBytes,
	})
}

// checkPermissionGuards rejects routes that declare a permission without the RBAC middleware.
func checkPermissionGuards(decls []dispatch.Declaration) error {
	var errs []error
	for i, d := range decls {
		if d.Permission != "" && !slices.Contains(d.Middleware, rbac.MiddlewareName) {
			errs = append(errs, fmt.Errorf("route %d (%s %s): permission %q declared without %s middleware",
				i, d.Method, d.Path, d.Permission, rbac.MiddlewareName))
		}
	}
	return errors.Join(errs...)
}
