package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sakif/readmegen/internal/model"
)

// Both backends must satisfy the same contract, so the behavioural tests run
// against each implementation through this table.
func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	sqlStore, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore(:memory:): %v", err)
	}
	t.Cleanup(func() { sqlStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := &model.Session{
				ID:          NewID(),
				OAuthState:  "nonce-123",
				AccessToken: "gho_secret",
				User:        &model.User{Login: "octocat", DisplayName: "The Octocat", AvatarURL: "https://example.com/a.png"},
				CreatedAt:   time.Now().Truncate(time.Second),
				ExpiresAt:   time.Now().Add(time.Hour).Truncate(time.Second),
			}

			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := store.Get(ctx, sess.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.AccessToken != "gho_secret" {
				t.Errorf("AccessToken = %q, want %q", got.AccessToken, "gho_secret")
			}
			if got.OAuthState != "nonce-123" {
				t.Errorf("OAuthState = %q, want %q", got.OAuthState, "nonce-123")
			}
			if got.User == nil || got.User.Login != "octocat" {
				t.Errorf("User = %+v, want login octocat", got.User)
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "no-such-id")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := &model.Session{
				ID:        NewID(),
				CreatedAt: time.Now().Add(-2 * time.Hour),
				ExpiresAt: time.Now().Add(-time.Hour), // already expired
			}
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(expired) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreDestroy(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := &model.Session{ID: NewID(), CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if err := store.Destroy(ctx, sess.ID); err != nil {
				t.Fatalf("Destroy() error = %v", err)
			}
			if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(destroyed) error = %v, want ErrNotFound", err)
			}

			// Destroying again is a no-op, not an error.
			if err := store.Destroy(ctx, sess.ID); err != nil {
				t.Errorf("Destroy(absent) error = %v, want nil", err)
			}
		})
	}
}

// Set must replace, not merge — the flow controller relies on this to commit
// token+user atomically in one write.
func TestStoreSetReplaces(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := &model.Session{
				ID:         NewID(),
				OAuthState: "first-nonce",
				CreatedAt:  time.Now(),
				ExpiresAt:  time.Now().Add(time.Hour),
			}
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			sess.OAuthState = ""
			sess.AccessToken = "gho_after_callback"
			sess.User = &model.User{Login: "octocat"}
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set() replace error = %v", err)
			}

			got, err := store.Get(ctx, sess.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.OAuthState != "" {
				t.Errorf("OAuthState = %q after replace, want empty", got.OAuthState)
			}
			if got.AccessToken != "gho_after_callback" {
				t.Errorf("AccessToken = %q, want gho_after_callback", got.AccessToken)
			}
		})
	}
}

func TestMemoryStoreReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	sess := &model.Session{ID: NewID(), CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, _ := store.Get(ctx, sess.ID)
	got.AccessToken = "mutated-locally"

	again, _ := store.Get(ctx, sess.ID)
	if again.AccessToken != "" {
		t.Error("mutating a Get() result leaked into the store; Get must return a copy")
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("NewID() produced duplicate %q", id)
		}
		if len(id) < 40 {
			t.Fatalf("NewID() = %q, too short to be unguessable", id)
		}
		seen[id] = true
	}
}

func TestNewIDNoPadding(t *testing.T) {
	if id := NewID(); strings.ContainsAny(id, "=+/") {
		t.Errorf("NewID() = %q contains non-cookie-safe characters", id)
	}
}
