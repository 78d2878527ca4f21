package middleware

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/gridclip/internal/clipboard"
	"github.com/JonMunkholm/gridclip/internal/core"
)

// SessionCookie configures the clipboard session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// ClipboardSession attaches a server-side clipboard session to each request.
// A missing, unknown or expired session cookie gets a fresh session; client
// supplied IDs are never adopted. The session ID is stored with
// core.ContextWithSessionID.
func ClipboardSession(store *clipboard.SessionStore, cookie SessionCookie) func(http.Handler) http.Handler {
	if cookie.Name == "" {
		cookie.Name = "gridclip_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cookie.Name); err == nil && store.Exists(c.Value) {
				id = c.Value
			}
			if id == "" {
				id = store.NewSession()
			}

			// Refresh on every request so the cookie outlives activity, not creation.
			http.SetCookie(w, &http.Cookie{
				Name:     cookie.Name,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cookie.MaxAge / time.Second),
				HttpOnly: true,
				Secure:   cookie.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(core.ContextWithSessionID(r.Context(), id)))
		})
	}
}
