package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionUser is the identity snapshot kept in a session.
type SessionUser struct {
	ID         int64  `json:"id"`
	CompanyID  int64  `json:"company_id"`
	RoleID     int64  `json:"role_id"`
	RoleName   string `json:"role_name"`
	Email      string `json:"email"`
	EmployeeID *int64 `json:"employee_id"`
}

// SessionData is the value stored under a session id.
type SessionData struct {
	User        *SessionUser `json:"user,omitempty"`
	Permissions []string     `json:"permissions"`
}

// UserID returns the session-bound user id, or 0 when nobody is signed in.
func (d SessionData) UserID() int64 {
	if d.User == nil {
		return 0
	}
	return d.User.ID
}

// SessionManager stores sessions in Redis and issues the cookie that carries their id.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Get loads the session stored under id. Unknown ids return ErrSessionNotFound.
func (sm *SessionManager) Get(ctx context.Context, id string) (SessionData, error) {
	if strings.TrimSpace(id) == "" {
		return SessionData{}, ErrSessionNotFound
	}
	payload, err := sm.client.Get(ctx, sm.redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return SessionData{}, ErrSessionNotFound
		}
		return SessionData{}, fmt.Errorf("session: get: %w", err)
	}
	var stored SessionData
	if err := json.Unmarshal(payload, &stored); err != nil {
		return SessionData{}, fmt.Errorf("session: decode: %w", err)
	}
	return stored, nil
}

// Set replaces the session stored under id and refreshes its expiry.
func (sm *SessionManager) Set(ctx context.Context, id string, data SessionData) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("session: empty id")
	}
	if data.Permissions == nil {
		data.Permissions = []string{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := sm.client.Set(ctx, sm.redisKey(id), encoded, sm.ttl).Err(); err != nil {
		return fmt.Errorf("session: set: %w", err)
	}
	return nil
}

// Destroy removes the session. Destroying an unknown id is not an error.
func (sm *SessionManager) Destroy(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: destroy: %w", err)
	}
	return nil
}

// SessionID extracts the session id from the request cookie.
func (sm *SessionManager) SessionID(r *http.Request) string {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// NewID returns a fresh random session id.
func (sm *SessionManager) NewID() string {
	return sm.generateSessionID()
}

// Cookie builds the cookie carrying id.
func (sm *SessionManager) Cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(sm.ttl),
	}
}

// ExpiredCookie builds a cookie instructing the browser to drop the session.
func (sm *SessionManager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(sm.secret) > 0 {
		for i := range b {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
