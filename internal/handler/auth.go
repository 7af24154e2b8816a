package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/readmegen/internal/service"
	"github.com/sakif/readmegen/internal/session"
)

// AuthHandler exposes the OAuth flow controller over HTTP:
//
//	GET  /auth/github          → redirect to the provider authorize URL
//	GET  /auth/github/callback → complete the handshake, redirect to the app
//	POST /auth/logout          → destroy the session
//	GET  /auth/status          → {authenticated, user}; never fails
type AuthHandler struct {
	flow        *service.AuthFlow
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. frontendURL is where the callback
// sends the browser afterwards, with an ?auth= marker appended.
func NewAuthHandler(flow *service.AuthFlow, frontendURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{flow: flow, frontendURL: frontendURL, logger: logger}
}

// HandleLogin starts the handshake. Misconfiguration (no callback URL) is
// a 500 and no redirect is attempted.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, errNoSession())
		return
	}

	authorizeURL, err := h.flow.Start(r.Context(), sess)
	if err != nil {
		h.logger.Error("login start failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.Redirect(w, r, authorizeURL, http.StatusTemporaryRedirect)
}

// HandleCallback completes the handshake. Whatever happens, the browser
// ends up back at the frontend — success, denial, and failure differ only
// in the marker, never in leaked detail.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.marker("error"), http.StatusSeeOther)
		return
	}

	// The provider reports user denial as an error query parameter.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, h.marker("denied"), http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if err := h.flow.Callback(r.Context(), sess, code, state); err != nil {
		// Generic marker on purpose: a CSRF probe learns nothing about
		// what failed. The specifics are in the server log only.
		h.logger.Warn("callback failed", slog.String("error", err.Error()))
		http.Redirect(w, r, h.marker("error"), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.marker("success"), http.StatusSeeOther)
}

// HandleLogout destroys the session server-side and expires the cookie.
// POST, not GET: logout is state-changing and must not be pre-fetchable.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if ok {
		if err := h.flow.Logout(r.Context(), sess); err != nil {
			h.logger.Error("logout failed", slog.String("error", err.Error()))
			writeError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleStatus reports the session's auth state. Pure read, never fails:
// a missing session simply reads as unauthenticated.
func (h *AuthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, service.StatusResult{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, h.flow.Status(sess))
}

// marker builds the post-callback redirect target.
func (h *AuthHandler) marker(outcome string) string {
	return h.frontendURL + "?auth=" + outcome
}
