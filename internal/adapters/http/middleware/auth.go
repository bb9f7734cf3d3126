package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"eventdesk/internal/adapters/http/metrics"
	"eventdesk/internal/application/session"
	"eventdesk/internal/application/shell"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/user"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const (
	sessionIDContextKey contextKey = "session_id"
	userContextKey      contextKey = "user"
)

// SessionCookieName names the browser session id cookie.
const SessionCookieName = "eventdesk_sid"

// sessionCookieMaxAge keeps the browser session for a year of inactivity.
const sessionCookieMaxAge = 365 * 24 * 60 * 60

// SecureCookies marks cookies Secure. Set in production.
var SecureCookies = false

// Sessions opens the value store of a browser session.
type Sessions interface {
	Open(sessionID string) *session.Session
}

// BrowserSession returns middleware that ensures every request carries a
// signed browser session id. A missing or forged cookie is replaced by a
// fresh id.
func BrowserSession(codec *securecookie.SecureCookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if err := codec.Decode(SessionCookieName, c.Value, &sid); err != nil {
					slog.Info("session_event", "event", "cookie_rejected", "error", err)
					sid = ""
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				encoded, err := codec.Encode(SessionCookieName, sid)
				if err != nil {
					slog.Error("session_event", "event", "cookie_encode_failed", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    encoded,
					HttpOnly: true,
					Secure:   SecureCookies,
					SameSite: http.SameSiteLaxMode,
					Path:     "/",
					MaxAge:   sessionCookieMaxAge,
				})
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSessionID(r.Context(), sid)))
		})
	}
}

// NewSessionCodec creates the codec of the browser session id cookie.
// PRE: len(hashKey) >= 32
func NewSessionCodec(hashKey []byte) *securecookie.SecureCookie {
	return securecookie.New(hashKey, nil).MaxAge(sessionCookieMaxAge)
}

// RequireRole returns middleware that admits only sessions whose cached user
// has the required role. Everyone else is redirected with 303 and nothing of
// the page is rendered.
func RequireRole(sessions Sessions, required role.Role, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := SessionIDFromContext(r.Context())
			if sid == "" {
				http.Redirect(w, r, role.LoginPath, http.StatusSeeOther)
				return
			}
			d := shell.Evaluate(r.Context(), sessions.Open(sid), required, now())
			metrics.GuardDecisionsTotal.WithLabelValues(d.Outcome.String(), d.Reason).Inc()
			if d.Outcome != shell.Authenticated {
				slog.Debug("guard_event", "outcome", d.Outcome.String(), "reason", d.Reason,
					"path", r.URL.Path, "required", required.String())
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), d.User)))
		})
	}
}

// SessionIDFromContext returns the browser session id, or "".
func SessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDContextKey).(string)
	return sid
}

// ContextWithSessionID returns a context carrying the browser session id.
func ContextWithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sid)
}

// UserFromContext returns the authenticated user placed by RequireRole.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userContextKey).(user.User)
	return u, ok
}

// ContextWithUser returns a context carrying an authenticated user.
// Intended for RequireRole and tests.
func ContextWithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// ExpireCookie writes an epoch-expired cookie named name on path "/".
func ExpireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetFlowCookie writes a short-lived auth-flow cookie.
func SetFlowCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
