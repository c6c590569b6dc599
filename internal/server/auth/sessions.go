package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clubhouse/internal/server/database"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CookieName carries the opaque session identifier. The cookie holds no
// other client-visible token format; all authority lives server-side.
const CookieName = "clubhouse_sid"

const (
	principalKey = "auth.principal"
	sidKey       = "auth.sid"
)

// SessionStore is the subset of the repository the session manager needs.
type SessionStore interface {
	InsertSession(ctx context.Context, sid, username string, expiresAt time.Time) error
	GetSession(ctx context.Context, sid string) (*database.Session, error)
	TouchSession(ctx context.Context, sid string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// UserStore resolves principals. The principal is re-fetched on every request
// so role changes land without mutating any cached copy.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*database.User, error)
}

// Manager establishes, resolves and destroys server-side sessions. The cookie
// value is "sid.hex(hmac-sha256(secret, sid))"; a bad signature is treated as
// no session before any database lookup happens.
type Manager struct {
	sessions SessionStore
	users    UserStore
	secret   []byte
	ttl      time.Duration
}

// NewManager creates a session manager.
func NewManager(sessions SessionStore, users UserStore, secret string, ttl time.Duration) *Manager {
	return &Manager{
		sessions: sessions,
		users:    users,
		secret:   []byte(secret),
		ttl:      ttl,
	}
}

// Establish creates a session for username and sets the signed cookie.
func (m *Manager) Establish(c echo.Context, username string) error {
	sid := uuid.NewString()
	expiresAt := time.Now().Add(m.ttl)

	if err := m.sessions.InsertSession(c.Request().Context(), sid, username, expiresAt); err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    m.signSID(sid),
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy invalidates the current session. The cookie is cleared even when
// the row deletion fails, so the client is always logged out locally.
func (m *Manager) Destroy(c echo.Context) error {
	var err error
	if sid, ok := c.Get(sidKey).(string); ok && sid != "" {
		err = m.sessions.DeleteSession(c.Request().Context(), sid)
		if errors.Is(err, database.ErrSessionNotFound) {
			err = nil
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

// Middleware resolves the authenticated principal from the session cookie and
// attaches it to the echo context. Requests without a valid session proceed
// anonymously; rejection is the gate's job, not the resolver's.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			sid, ok := m.verifySID(cookie.Value)
			if !ok {
				return next(c)
			}

			ctx := c.Request().Context()
			session, err := m.sessions.GetSession(ctx, sid)
			if err != nil {
				if !errors.Is(err, database.ErrSessionNotFound) {
					slog.Error("failed to load session", "error", err)
				}
				return next(c)
			}

			user, err := m.users.GetUserByUsername(ctx, session.Username)
			if err != nil {
				// A session whose user vanished is invalid; drop it.
				if errors.Is(err, database.ErrUserNotFound) {
					if derr := m.sessions.DeleteSession(ctx, sid); derr != nil && !errors.Is(derr, database.ErrSessionNotFound) {
						slog.Error("failed to drop orphaned session", "error", derr)
					}
				} else {
					slog.Error("failed to load principal", "error", err)
				}
				return next(c)
			}

			// Refresh on activity, last writer wins.
			if err := m.sessions.TouchSession(ctx, sid, time.Now().Add(m.ttl)); err != nil {
				slog.Error("failed to refresh session", "sid", sid, "error", err)
			}

			c.Set(principalKey, user)
			c.Set(sidKey, sid)
			return next(c)
		}
	}
}

// RequireLogin rejects requests that carry no established session with a
// plain 401. No redirect, no retry.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Principal(c) == nil {
			return c.String(http.StatusUnauthorized, "You must be logged in to access this page.")
		}
		return next(c)
	}
}

// Principal returns the authenticated user for this request, or nil.
func Principal(c echo.Context) *database.User {
	user, _ := c.Get(principalKey).(*database.User)
	return user
}

func (m *Manager) signSID(sid string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sid))
	return sid + "." + hex.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verifySID(value string) (string, bool) {
	sid, sig, ok := strings.Cut(value, ".")
	if !ok || sid == "" {
		return "", false
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sid))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return sid, true
}
