package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-hrms/internal/dispatch"
	"github.com/odyssey-erp/odyssey-hrms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-hrms/internal/shared"
)

// SessionIssuer is the session store plus the cookie plumbing needed at login and logout.
type SessionIssuer interface {
	SessionStore
	NewID() string
	Cookie(id string) *http.Cookie
	ExpiredCookie() *http.Cookie
}

// LoginObserver is told the outcome of every login attempt.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  SessionIssuer
	validator *validator.Validate
	observer  LoginObserver
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions SessionIssuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Handler{logger: logger, service: service, sessions: sessions, validator: v}
}

// ObserveWith attaches a login outcome observer.
func (h *Handler) ObserveWith(o LoginObserver) *Handler {
	h.observer = o
	return h
}

func (h *Handler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveLogin(outcome)
	}
}

// RegisterHandlers binds the auth handler names used by the route file.
func (h *Handler) RegisterHandlers(reg *dispatch.Registry) {
	reg.Handle("auth.login", h.Login)
	reg.Handle("auth.logout", h.Logout)
	reg.Handle("auth.me", h.Me)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResult struct {
	User        *shared.SessionUser `json:"user"`
	Permissions []string            `json:"permissions"`
}

// Login authenticates credentials and opens a new session.
func (h *Handler) Login(c *dispatch.Context) (*httpx.Response, error) {
	form := loginRequest{
		Email:    strings.TrimSpace(c.InputString("email")),
		Password: c.InputString("password"),
	}
	if fields := h.validate(form); len(fields) > 0 {
		return httpx.ValidationFailed(fields), nil
	}

	user, perms, err := h.service.Authenticate(c.Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		h.observe("invalid")
		return httpx.Unauthorized("Invalid email or password"), nil
	case errors.Is(err, shared.ErrAccountInactive):
		h.observe("inactive")
		return httpx.Unauthorized("Your account is not active. Please contact administrator."), nil
	case err != nil:
		return nil, err
	}
	if perms == nil {
		perms = []string{}
	}

	// A fresh id on every login; the previous session, if any, is dropped.
	if old := c.SessionID(); old != "" {
		if err := h.sessions.Destroy(c.Context(), old); err != nil {
			h.logger.Warn("login drop previous session", slog.Any("error", err))
		}
	}
	sid := h.sessions.NewID()
	snapshot := Snapshot(user)
	if err := h.sessions.Set(c.Context(), sid, shared.SessionData{User: snapshot, Permissions: perms}); err != nil {
		return nil, err
	}
	if err := h.service.RecordLogin(c.Context(), user.ID); err != nil {
		h.logger.Warn("record login", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}

	h.observe("success")
	resp := httpx.Success(loginResult{User: snapshot, Permissions: perms}, "Login successful")
	return resp.WithCookie(h.sessions.Cookie(sid)), nil
}

// Logout destroys the current session.
func (h *Handler) Logout(c *dispatch.Context) (*httpx.Response, error) {
	if err := h.sessions.Destroy(c.Context(), c.SessionID()); err != nil {
		return nil, err
	}
	return httpx.Success(nil, "Logout successful").WithCookie(h.sessions.ExpiredCookie()), nil
}

type meUser struct {
	dispatch.Principal
	FirstName    *string    `json:"first_name"`
	LastName     *string    `json:"last_name"`
	EmployeeCode *string    `json:"employee_code"`
	LastLogin    *time.Time `json:"last_login"`
}

type meResult struct {
	User        meUser   `json:"user"`
	Permissions []string `json:"permissions"`
}

// Me returns the authenticated principal with its employee profile.
func (h *Handler) Me(c *dispatch.Context) (*httpx.Response, error) {
	principal, ok := c.Principal()
	if !ok {
		return httpx.Unauthorized("Not authenticated"), nil
	}
	profile, err := h.service.Profile(c.Context(), principal.UserID)
	if err != nil {
		return nil, err
	}
	return httpx.OK(meResult{
		User: meUser{
			Principal:    principal,
			FirstName:    profile.FirstName,
			LastName:     profile.LastName,
			EmployeeCode: profile.EmployeeCode,
			LastLogin:    profile.LastLogin,
		},
		Permissions: c.Permissions(),
	}), nil
}

func (h *Handler) validate(form loginRequest) map[string]string {
	err := h.validator.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"general": "Invalid input"}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ToUpper(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email format"
	default:
		return label + " is invalid"
	}
}
