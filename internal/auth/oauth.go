// Package auth wraps golang.org/x/oauth2 for the GitHub Authorization Code
// flow.
//
// The exchange happens server-to-server using the client secret, so the
// access token never touches the browser. The flow controller
// (service.AuthFlow) drives these primitives; this package knows nothing
// about sessions or HTTP handlers.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/sakif/readmegen/internal/model"
)

// defaultUserEndpoint is GitHub's authenticated-user profile endpoint.
// Provider instances carry it as a field so tests can point it at an
// httptest server.
const defaultUserEndpoint = "https://api.github.com/user"

// GitHubProvider performs the three provider-facing steps of the handshake:
// build the authorize URL, exchange the code for a token, fetch the identity
// behind a token. Token exchange and identity fetch are deliberately
// separate methods — the caller commits their results to the session
// together, or not at all.
type GitHubProvider struct {
	config       *oauth2.Config
	userEndpoint string
}

// NewGitHubProvider creates a provider for the registered OAuth app.
// callbackURL must match the app's configured authorization callback URL
// exactly; it may be empty, in which case Configured() reports false and
// the login flow refuses to start.
//
// Scopes: "read:user" for the profile, "repo" so the delegated token can
// read the user's private repositories.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "repo"},
			Endpoint:     github.Endpoint,
		},
		userEndpoint: defaultUserEndpoint,
	}
}

// Configured reports whether the provider has everything it needs to issue
// a well-formed authorize request.
func (p *GitHubProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.RedirectURL != ""
}

// AuthURL returns the GitHub authorize URL carrying the client ID, redirect
// URI, scopes, and the given state nonce.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCode trades the authorization code for an access token
// (server-to-server). An empty token from a 200 response is still a
// failure — there is nothing to store.
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("auth: token endpoint returned no access token")
	}
	return tok.AccessToken, nil
}

// FetchUser retrieves the profile of the user the token belongs to.
func (p *GitHubProvider) FetchUser(ctx context.Context, accessToken string) (*model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building /user request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	// GitHub returns a much larger object — unmarshal only what we keep.
	var gh struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}
	if gh.Login == "" {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (empty login)")
	}

	name := gh.Name
	if name == "" {
		name = gh.Login
	}
	return &model.User{Login: gh.Login, DisplayName: name, AvatarURL: gh.AvatarURL}, nil
}
