// Package config centralises all environment configuration for the server.
// It should be imported only by cmd/server (and test code) — every other
// layer receives an already-built Config or the individual values it needs
// via dependency injection. The Config is built once at startup and never
// mutated afterwards.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option the server needs.
// Keep it flat and simple — prefer primitive types over embedded structs.
type Config struct {
	// Network
	Port int

	// GitHub OAuth app credentials. CallbackURL may legitimately be empty:
	// the login flow refuses to start (ConfigurationError) rather than
	// sending GitHub a malformed authorize request, so the rest of the
	// server still works anonymously.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// Where the callback redirects the browser after the handshake.
	FrontendURL string

	// Session store. Backend is chosen exactly once at startup:
	// "memory" (default) or "sqlite".
	SessionBackend string
	SessionDBPath  string
	SessionTTL     time.Duration

	// Vertex AI. If ProjectID is empty the AI backend is not constructed
	// and every generation uses the deterministic fallback.
	GeminiProject  string
	GeminiLocation string
	GeminiModel    string
}

// Load parses the environment (and an optional .env file) into Config.
// Nothing here is fatal: values the server cannot run without are checked
// where they are used, so a partially configured server still serves the
// surfaces it can.
func Load() Config {
	// godotenv.Load() is a no-op if .env doesn't exist — safe in production.
	_ = godotenv.Load()

	return Config{
		Port:               getInt("PORT", 8080),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
		FrontendURL:        getEnv("FRONTEND_URL", "/"),
		SessionBackend:     getEnv("SESSION_BACKEND", "memory"),
		SessionDBPath:      getEnv("SESSION_DB_PATH", "data/sessions.db"),
		SessionTTL:         time.Duration(getInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		GeminiProject:      os.Getenv("GCP_PROJECT_ID"),
		GeminiLocation:     getEnv("GCP_LOCATION", "us-central1"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash-lite-001"),
	}
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt reads an integer from env, falling back to defaultVal on absence
// or parse failure.
func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
