package dispatch

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
)

const routesYAML = `routes:
  - method: POST
    path: /api/auth/login
    handler: auth.login
    auth: false
  - method: GET
    path: /api/employees/{id}
    handler: employees.show
    permission: employee.view
    middleware: [tenant, rbac]
`

func writeRoutes(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDeclarations(t *testing.T) {
	decls, err := LoadDeclarations(writeRoutes(t, routesYAML))
	require.NoError(t, err)
	require.Len(t, decls, 2)

	assert.Equal(t, "POST", decls[0].Method)
	assert.Equal(t, "auth.login", decls[0].Handler)
	require.NotNil(t, decls[0].Auth)
	assert.False(t, *decls[0].Auth)

	assert.Nil(t, decls[1].Auth)
	assert.Equal(t, "employee.view", decls[1].Permission)
	assert.Equal(t, []string{"tenant", "rbac"}, decls[1].Middleware)
}

func TestLoadDeclarationsMissingFile(t *testing.T) {
	_, err := LoadDeclarations(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRegistryApply(t *testing.T) {
	decls, err := LoadDeclarations(writeRoutes(t, routesYAML))
	require.NoError(t, err)

	reg := NewRegistry()
	reg.Handle("auth.login", named("login"))
	reg.Handle("employees.show", named("show"))
	pass := func(name string) Middleware {
		return MiddlewareFunc(name, func(c *Context, next Handler) (*httpx.Response, error) { return next(c) })
	}
	reg.Use(pass("tenant"), pass("rbac"))

	table := NewTable()
	require.NoError(t, reg.Apply(table, decls))
	require.Equal(t, 2, table.Len())

	login, _, ok := table.Match(http.MethodPost, "/api/auth/login")
	require.True(t, ok)
	assert.False(t, login.RequiresAuth)

	show, params, ok := table.Match(http.MethodGet, "/api/employees/3")
	require.True(t, ok)
	assert.True(t, show.RequiresAuth)
	assert.Equal(t, "employee.view", show.Permission)
	assert.Equal(t, "3", params["id"])
	require.Len(t, show.Middleware, 2)
	assert.Equal(t, "tenant", show.Middleware[0].Name())
	assert.Equal(t, "rbac", show.Middleware[1].Name())
}

func TestRegistryApplyReportsAllUnknownNames(t *testing.T) {
	reg := NewRegistry()
	reg.Handle("known", named("known"))
	decls := []Declaration{
		{Method: "GET", Path: "/a", Handler: "missing"},
		{Method: "GET", Path: "/b", Handler: "known", Middleware: []string{"ghost"}},
		{Method: "GET", Path: "/c", Handler: "known"},
	}

	table := NewTable()
	err := reg.Apply(table, decls)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown handler "missing"`)
	assert.Contains(t, err.Error(), `unknown middleware "ghost"`)
	assert.Equal(t, 1, table.Len())
}
