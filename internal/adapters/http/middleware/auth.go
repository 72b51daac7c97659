package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"bogoninja/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "ninja_session"

// SecureCookies marks session cookies Secure; set in production.
var SecureCookies bool

// ProtectedPrefixes lists the paths that require an admin session.
var ProtectedPrefixes = []string{"/dashboard", "/api/admin"}

// SessionVerifier validates session tokens.
type SessionVerifier interface {
	Verify(token string) (session.Session, bool)
}

// Auth returns middleware that guards ProtectedPrefixes. A valid session is
// stored in the request context; unprotected paths pass through untouched.
func Auth(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsProtected(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			api := strings.HasPrefix(r.URL.Path, "/api/")

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				if api {
					writeError(w, http.StatusUnauthorized, "No autorizado")
				} else {
					http.Redirect(w, r, "/login", http.StatusSeeOther)
				}
				return
			}

			sess, ok := verifier.Verify(cookie.Value)
			if !ok {
				slog.Info("auth_event", "event", "session_rejected", "path", r.URL.Path)
				ClearSessionCookie(w)
				if api {
					writeError(w, http.StatusUnauthorized, "Sesión expirada")
				} else {
					http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// IsProtected reports whether path needs an admin session.
func IsProtected(path string) bool {
	for _, p := range ProtectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(session.Session)
	return sess, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(session.Duration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
