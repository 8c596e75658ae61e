package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Declaration is one entry of the declarative route file.
type Declaration struct {
	Method     string   `koanf:"method"`
	Path       string   `koanf:"path"`
	Handler    string   `koanf:"handler"`
	Auth       *bool    `koanf:"auth"`
	Permission string   `koanf:"permission"`
	Middleware []string `koanf:"middleware"`
}

// LoadDeclarations reads the "routes" list from a YAML file.
func LoadDeclarations(path string) ([]Declaration, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("dispatch: load routes %s: %w", path, err)
	}
	var decls []Declaration
	if err := k.Unmarshal("routes", &decls); err != nil {
		return nil, fmt.Errorf("dispatch: decode routes %s: %w", path, err)
	}
	return decls, nil
}

// Registry resolves declaration names to handlers and middleware instances.
type Registry struct {
	handlers   map[string]Handler
	middleware map[string]Middleware
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:   make(map[string]Handler),
		middleware: make(map[string]Middleware),
	}
}

// Handle binds a handler name.
func (r *Registry) Handle(name string, h Handler) {
	r.handlers[name] = h
}

// Use makes middleware addressable by their Name().
func (r *Registry) Use(mws ...Middleware) {
	for _, mw := range mws {
		r.middleware[mw.Name()] = mw
	}
}

// Apply registers every declaration on t in order. All resolution failures are reported together.
func (r *Registry) Apply(t *Table, decls []Declaration) error {
	var errs []error
	for i, decl := range decls {
		if err := r.apply(t, decl); err != nil {
			errs = append(errs, fmt.Errorf("route %d (%s %s): %w", i, decl.Method, decl.Path, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) apply(t *Table, decl Declaration) error {
	h, ok := r.handlers[strings.TrimSpace(decl.Handler)]
	if !ok {
		return fmt.Errorf("unknown handler %q", decl.Handler)
	}
	opts := make([]RouteOption, 0, 3)
	if decl.Auth != nil {
		opts = append(opts, WithAuth(*decl.Auth))
	}
	if decl.Permission != "" {
		opts = append(opts, WithPermission(decl.Permission))
	}
	for _, name := range decl.Middleware {
		mw, ok := r.middleware[strings.TrimSpace(name)]
		if !ok {
			return fmt.Errorf("unknown middleware %q", name)
		}
		opts = append(opts, WithMiddleware(mw))
	}
	return t.Register(decl.Method, decl.Path, h, opts...)
}
