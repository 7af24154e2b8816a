// Package apperror defines the error taxonomy shared by every layer.
//
// WHY A TAGGED KIND INSTEAD OF MESSAGE MATCHING?
// Upstream failures must be translated to exactly one HTTP status plus a
// "requiresAuth" hint for the frontend. Sniffing substrings out of
// human-readable messages to decide the status is fragile — messages change,
// wording drifts. So each Kind carries its own status code and flag, and
// classification happens exactly once, at the point where the upstream
// response is observed. Everything downstream just reads the tag.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one class of failure. Kinds are compared by identity via
// errors.Is, so handlers never inspect messages.
type Kind struct {
	Code         string // machine-readable, e.g. "not_found"
	Status       int    // the one HTTP status this kind maps to
	RequiresAuth bool   // hint: logging in (again) may resolve this
}

// The full taxonomy. Each kind is the single source of truth for its HTTP
// mapping; adding a kind here is the only step needed to teach the API
// surface about it.
var (
	// Configuration: the server itself is misconfigured (e.g. no OAuth
	// callback URL). Operator-visible, never the caller's fault.
	Configuration = &Kind{Code: "configuration_error", Status: http.StatusInternalServerError}

	// InvalidState: OAuth callback state did not match the session's nonce.
	// Treated as a CSRF attempt — the caller gets a generic failure with no
	// detail about what mismatched.
	InvalidState = &Kind{Code: "invalid_state", Status: http.StatusBadRequest}

	// TokenExchange: the code-for-token exchange returned no usable token.
	TokenExchange = &Kind{Code: "token_exchange_failed", Status: http.StatusBadGateway}

	// AuthExpired: upstream rejected our bearer token (401). The stored
	// token is stale; a fresh login fixes it.
	AuthExpired = &Kind{Code: "auth_expired", Status: http.StatusUnauthorized, RequiresAuth: true}

	// AuthRequired: the operation needs a token and the session has none.
	AuthRequired = &Kind{Code: "auth_required", Status: http.StatusUnauthorized, RequiresAuth: true}

	// RateLimit: upstream 403 with the rate-limit budget exhausted.
	RateLimit = &Kind{Code: "rate_limited", Status: http.StatusTooManyRequests}

	// Permission: upstream 403 that is not a rate limit. Logging in with an
	// account that can see the resource may help.
	Permission = &Kind{Code: "permission_denied", Status: http.StatusForbidden, RequiresAuth: true}

	// NotFound: upstream 404. For repositories this can also mean "private
	// and you are not logged in", hence the auth hint.
	NotFound = &Kind{Code: "not_found", Status: http.StatusNotFound, RequiresAuth: true}

	// UnknownFetch: any other upstream failure, including transport errors
	// and timeouts.
	UnknownFetch = &Kind{Code: "fetch_failed", Status: http.StatusInternalServerError}

	// Validation: the caller's input was malformed. Rejected before any
	// upstream call is made.
	Validation = &Kind{Code: "validation_error", Status: http.StatusBadRequest}

	// Storage: the session store could not complete an operation.
	Storage = &Kind{Code: "storage_error", Status: http.StatusInternalServerError}
)

// Error implements error so a bare Kind can be an errors.Is target.
func (k *Kind) Error() string { return k.Code }

// AppError couples a Kind with a human-readable message and an optional
// wrapped cause. The cause is for logs only — handlers must never forward it.
type AppError struct {
	Kind    *Kind
	Message string
	Err     error // underlying cause, may be nil
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, apperror.NotFound) work across wrapping: an
// AppError matches a target Kind when it carries that exact kind.
func (e *AppError) Is(target error) bool {
	k, ok := target.(*Kind)
	return ok && e.Kind == k
}

// New builds an AppError of the given kind.
func New(kind *Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap builds an AppError of the given kind around an underlying cause.
func Wrap(kind *Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from anywhere in err's chain. Unclassified errors
// report as UnknownFetch so the API surface always has a status to send.
func KindOf(err error) *Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return UnknownFetch
}
