package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	// Each case checks that errors.Is() identifies the kind through wrapping.
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "New carries its kind",
			err:       New(NotFound, "repository not found"),
			target:    NotFound,
			wantMatch: true,
		},
		{
			name:      "Wrap carries its kind",
			err:       Wrap(TokenExchange, "exchanging code", errors.New("boom")),
			target:    TokenExchange,
			wantMatch: true,
		},
		{
			name:      "fmt.Errorf %w preserves the kind",
			err:       fmt.Errorf("fetching repo: %w", New(RateLimit, "rate limited")),
			target:    RateLimit,
			wantMatch: true,
		},
		{
			name:      "NotFound does not match Permission",
			err:       New(NotFound, "repository not found"),
			target:    Permission,
			wantMatch: false,
		},
		{
			name:      "plain error matches no kind",
			err:       errors.New("plain"),
			target:    NotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *Kind
	}{
		{"direct AppError", New(AuthExpired, "token stale"), AuthExpired},
		{"wrapped AppError", fmt.Errorf("outer: %w", New(Validation, "bad url")), Validation},
		{"unclassified error falls back to UnknownFetch", errors.New("dial tcp: timeout"), UnknownFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got.Code, tt.want.Code)
			}
		})
	}
}

// The status and auth-hint mapping is part of the public contract — the API
// surface sends exactly these.
func TestKindHTTPMapping(t *testing.T) {
	tests := []struct {
		kind         *Kind
		wantStatus   int
		requiresAuth bool
	}{
		{Configuration, http.StatusInternalServerError, false},
		{InvalidState, http.StatusBadRequest, false},
		{AuthExpired, http.StatusUnauthorized, true},
		{AuthRequired, http.StatusUnauthorized, true},
		{RateLimit, http.StatusTooManyRequests, false},
		{Permission, http.StatusForbidden, true},
		{NotFound, http.StatusNotFound, true},
		{UnknownFetch, http.StatusInternalServerError, false},
		{Validation, http.StatusBadRequest, false},
		{Storage, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.Code, func(t *testing.T) {
			if tt.kind.Status != tt.wantStatus {
				t.Errorf("%s.Status = %d, want %d", tt.kind.Code, tt.kind.Status, tt.wantStatus)
			}
			if tt.kind.RequiresAuth != tt.requiresAuth {
				t.Errorf("%s.RequiresAuth = %v, want %v", tt.kind.Code, tt.kind.RequiresAuth, tt.requiresAuth)
			}
		})
	}
}
