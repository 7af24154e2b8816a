// Package service holds the business logic: the OAuth flow controller, the
// repository data aggregator, and the document generator. Services sit
// between the HTTP handlers and the outward-facing clients; they know
// nothing about routing or response encoding.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/sakif/readmegen/internal/apperror"
	"github.com/sakif/readmegen/internal/model"
	"github.com/sakif/readmegen/internal/session"
)

// OAuthProvider is what the flow controller needs from the identity
// provider. auth.GitHubProvider is the production implementation; tests
// substitute a fake.
type OAuthProvider interface {
	Configured() bool
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchUser(ctx context.Context, accessToken string) (*model.User, error)
}

// AuthFlow drives the three-legged OAuth handshake against the session
// store. It owns the state-nonce lifecycle and the atomic commit of
// token+user; the HTTP handler above it only translates redirects.
type AuthFlow struct {
	provider OAuthProvider
	store    session.Store
	logger   *slog.Logger
}

// NewAuthFlow creates an AuthFlow with all dependencies injected.
func NewAuthFlow(provider OAuthProvider, store session.Store, logger *slog.Logger) *AuthFlow {
	return &AuthFlow{provider: provider, store: store, logger: logger}
}

// Start begins the handshake: generates a single-use state nonce, stores it
// on the session, and returns the provider authorize URL to redirect to.
//
// If the OAuth app is not configured (no callback URL / client ID) the flow
// refuses to start with a Configuration error and the session is left
// untouched — sending the provider a malformed authorize request would only
// produce a confusing provider-side error page.
func (f *AuthFlow) Start(ctx context.Context, sess *model.Session) (string, error) {
	if !f.provider.Configured() {
		return "", apperror.New(apperror.Configuration, "OAuth is not configured: set GITHUB_CLIENT_ID and GITHUB_CALLBACK_URL")
	}

	sess.OAuthState = newStateNonce()
	if err := f.store.Set(ctx, sess); err != nil {
		sess.OAuthState = ""
		return "", apperror.Wrap(apperror.Storage, "persisting OAuth state", err)
	}

	return f.provider.AuthURL(sess.OAuthState), nil
}

// Callback completes the handshake.
//
// ORDER MATTERS HERE:
//  1. Verify state against the session's nonce. A mismatch (or a session
//     with no pending nonce) is treated as CSRF: InvalidState, session
//     untouched, and the error carries no detail about what mismatched.
//  2. Consume the nonce — cleared and persisted BEFORE the code exchange,
//     so replaying the same (code, state) pair can succeed at most once
//     even if the exchange below blows up mid-flight.
//  3. Exchange the code and fetch the identity. Any failure leaves the
//     session exactly as it was: unauthenticated, nonce already spent.
//  4. Commit AccessToken and User together in one store write. The session
//     is never visible holding one without the other.
func (f *AuthFlow) Callback(ctx context.Context, sess *model.Session, code, state string) error {
	if sess.OAuthState == "" || state != sess.OAuthState {
		f.logger.Warn("OAuth callback state mismatch", slog.String("sessionID", sess.ID))
		return apperror.New(apperror.InvalidState, "invalid OAuth state")
	}

	// Consume the nonce first — single use, success or not.
	sess.OAuthState = ""
	if err := f.store.Set(ctx, sess); err != nil {
		return apperror.Wrap(apperror.Storage, "consuming OAuth state", err)
	}

	token, err := f.provider.ExchangeCode(ctx, code)
	if err != nil {
		f.logger.Error("OAuth code exchange failed", slog.String("error", err.Error()))
		return apperror.Wrap(apperror.TokenExchange, "authentication failed", err)
	}

	user, err := f.provider.FetchUser(ctx, token)
	if err != nil {
		f.logger.Error("fetching identity failed", slog.String("error", err.Error()))
		return apperror.Wrap(apperror.TokenExchange, "authentication failed", err)
	}

	// Atomic commit: token and user land in the store in a single write.
	sess.AccessToken = token
	sess.User = user
	if err := f.store.Set(ctx, sess); err != nil {
		// Roll the in-memory copy back so the caller never observes a
		// half-authenticated session either.
		sess.AccessToken = ""
		sess.User = nil
		return apperror.Wrap(apperror.Storage, "persisting authenticated session", err)
	}

	f.logger.Info("user authenticated",
		slog.String("sessionID", sess.ID),
		slog.String("login", user.Login),
	)
	return nil
}

// Logout destroys the session record server-side. The handler clears the
// cookie; destroying the record is what actually revokes access, since the
// token lives only there.
func (f *AuthFlow) Logout(ctx context.Context, sess *model.Session) error {
	if err := f.store.Destroy(ctx, sess.ID); err != nil {
		return apperror.Wrap(apperror.Storage, "destroying session", err)
	}
	return nil
}

// StatusResult is the always-safe projection of a session's auth state.
type StatusResult struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user"`
}

// Status is a pure read — it never fails and never exposes the token.
func (f *AuthFlow) Status(sess *model.Session) StatusResult {
	if !sess.Authenticated() {
		return StatusResult{Authenticated: false, User: nil}
	}
	return StatusResult{Authenticated: true, User: sess.User}
}

// newStateNonce returns a cryptographically random, hex-encoded nonce for
// the OAuth state parameter. 16 bytes is far beyond guessable within the
// nonce's lifetime.
func newStateNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("service: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
