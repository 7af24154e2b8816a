package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/readmegen/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestMiddlewareCreatesSessionOnFirstInteraction(t *testing.T) {
	store := NewMemoryStore()
	var captured *model.Session

	h := Middleware(store, time.Hour, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.NotNil(t, captured, "handler should always see a session")
	assert.False(t, captured.Authenticated())

	// The cookie must be HttpOnly and SameSite=Lax, carrying only the ID.
	cookies := rr.Result().Cookies()
	var sessCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == CookieName {
			sessCookie = c
		}
	}
	if assert.NotNil(t, sessCookie, "session cookie must be set") {
		assert.Equal(t, captured.ID, sessCookie.Value)
		assert.True(t, sessCookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, sessCookie.SameSite)
	}

	// And the record must be in the store.
	stored, err := store.Get(context.Background(), captured.ID)
	assert.NoError(t, err)
	assert.Equal(t, captured.ID, stored.ID)
}

func TestMiddlewareReusesExistingSession(t *testing.T) {
	store := NewMemoryStore()
	existing := &model.Session{
		ID:          NewID(),
		AccessToken: "gho_token",
		User:        &model.User{Login: "octocat"},
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	if err := store.Set(context.Background(), existing); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var captured *model.Session
	h := Middleware(store, time.Hour, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: existing.ID})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, existing.ID, captured.ID)
	assert.True(t, captured.Authenticated())

	// No replacement cookie for a known session.
	for _, c := range rr.Result().Cookies() {
		assert.NotEqual(t, CookieName, c.Name, "existing session should not get a new cookie")
	}
}

func TestMiddlewareReplacesExpiredSession(t *testing.T) {
	store := NewMemoryStore()
	expired := &model.Session{
		ID:        NewID(),
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}
	_ = store.Set(context.Background(), expired)

	var captured *model.Session
	h := Middleware(store, time.Hour, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: expired.ID})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.NotEqual(t, expired.ID, captured.ID, "expired session must be replaced, not resurrected")
}
