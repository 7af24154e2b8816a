package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/readmegen/internal/model"
)

// CookieName is the opaque session-ID cookie. The cookie carries nothing
// but the ID — all state lives server-side in the Store.
const CookieName = "session_id"

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the session value.
type contextKey struct{}

var sessionKey contextKey

// Middleware attaches a session to every request.
//
// FIRST-INTERACTION CREATION:
// If the request carries no cookie, or the cookie points at a missing or
// expired record, a fresh anonymous session is created and its cookie set.
// Handlers therefore always find a session in the context — they never deal
// with the "no session yet" case themselves.
//
// The cookie is HttpOnly (JavaScript cannot read it) and SameSite=Lax
// (not sent on cross-site POSTs), matching how the OAuth state is protected.
func Middleware(store Store, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := load(r, store, logger)
			if sess == nil {
				sess = &model.Session{
					ID:        NewID(),
					CreatedAt: time.Now(),
					ExpiresAt: time.Now().Add(ttl),
				}
				if err := store.Set(r.Context(), sess); err != nil {
					// The request can still proceed with the transient
					// record; it just won't survive into the next request.
					logger.Warn("failed to persist new session", slog.String("error", err.Error()))
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    sess.ID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// load returns the live session referenced by the request cookie, or nil.
func load(r *http.Request, store Store, logger *slog.Logger) *model.Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sess, err := store.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("session lookup failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return sess
}

// FromContext retrieves the request's session. The middleware guarantees
// one is present on every route it wraps; the bool is false only when the
// middleware was not applied (e.g. a bare handler under test).
func FromContext(ctx context.Context) (*model.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*model.Session)
	return s, ok && s != nil
}

// NewContext returns ctx with the session attached. Exported for tests that
// exercise handlers without the middleware.
func NewContext(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}
