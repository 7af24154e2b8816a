// Package github is a minimal wrapper around GitHub's REST API v3.
// It is intentionally light — just the endpoints the aggregator and the
// repository listing require. Every call accepts an optional bearer token;
// with an empty token the request goes out anonymously (public data only,
// low rate limits).
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sakif/readmegen/internal/apperror"
	"github.com/sakif/readmegen/internal/model"
)

const defaultBaseURL = "https://api.github.com"

// Client is a ready-to-use GitHub API client. It holds no credentials —
// the token travels with each call, because different sessions carry
// different delegated tokens through the same client.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a client for api.github.com with a bounded per-call
// timeout. A timed-out call classifies as UnknownFetch like any other
// transport failure.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL points the client at a different API root — used by
// tests (httptest) and GitHub Enterprise deployments.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

// Repository is the portion of GitHub's repository object we consume.
type Repository struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	Private     bool     `json:"private"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	License     *struct {
		Name string `json:"name"`
	} `json:"license"`
	HTMLURL       string    `json:"html_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	OpenIssues    int       `json:"open_issues_count"`
	Watchers      int       `json:"watchers_count"`
	DefaultBranch string    `json:"default_branch"`
}

// GetRepository fetches the repository profile. Required call — failures
// come back classified.
func (c *Client) GetRepository(ctx context.Context, token, owner, repo string) (*Repository, error) {
	u := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	var out Repository
	if err := c.get(ctx, token, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLanguages fetches the byte-share breakdown, e.g. {"Go": 12345}.
// Required call.
func (c *Client) ListLanguages(ctx context.Context, token, owner, repo string) (map[string]int64, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/languages", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	out := make(map[string]int64)
	if err := c.get(ctx, token, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRootContents returns the names of entries at the repository root, in
// API order. Best-effort from the aggregator's point of view — it still
// returns classified errors, the caller just chooses to degrade.
func (c *Client) ListRootContents(ctx context.Context, token, owner, repo string) ([]string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	var entries []struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, token, u, &entries); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// GetLatestCommit returns the message of the most recent commit on the
// default branch. Best-effort; an empty repository 409s here, which the
// aggregator degrades to its placeholder.
func (c *Client) GetLatestCommit(ctx context.Context, token, owner, repo string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=1", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	var commits []struct {
		Commit struct {
			Message string `json:"message"`
		} `json:"commit"`
	}
	if err := c.get(ctx, token, u, &commits); err != nil {
		return "", err
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("github: repository has no commits")
	}
	return commits[0].Commit.Message, nil
}

// ListOptions controls the authenticated-user repository listing.
type ListOptions struct {
	Visibility string // "all" | "public" | "private"
	Sort       string // "created" | "updated" | "pushed" | "full_name"
	PerPage    int
	Page       int
}

// ListUserRepositories lists repositories of the token's user. Requires a
// token — GitHub has no anonymous variant of this endpoint.
func (c *Client) ListUserRepositories(ctx context.Context, token string, opts ListOptions) ([]model.RepositoryListItem, error) {
	u, err := url.Parse(c.baseURL + "/user/repos")
	if err != nil {
		return nil, fmt.Errorf("github: building /user/repos URL: %w", err)
	}

	q := u.Query()
	if opts.Visibility != "" {
		q.Set("visibility", opts.Visibility)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	u.RawQuery = q.Encode()

	var repos []Repository
	if err := c.get(ctx, token, u.String(), &repos); err != nil {
		return nil, err
	}

	items := make([]model.RepositoryListItem, 0, len(repos))
	for _, r := range repos {
		items = append(items, model.RepositoryListItem{
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			Private:     r.Private,
			Stars:       r.Stars,
			Forks:       r.Forks,
			Language:    r.Language,
			URL:         r.HTMLURL,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return items, nil
}

// get executes a GET and decodes the JSON body into v. Non-2xx responses
// come back as classified AppErrors; the upstream body is discarded, never
// forwarded.
func (c *Client) get(ctx context.Context, token, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return apperror.Wrap(apperror.UnknownFetch, "building GitHub request", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "readmegen")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport errors and client timeouts land here.
		return apperror.Wrap(apperror.UnknownFetch, "calling GitHub API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return classify(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return apperror.Wrap(apperror.UnknownFetch, "decoding GitHub response", err)
	}
	return nil
}

// classify maps an upstream status to the error taxonomy. The decision uses
// only the status code and the rate-limit header — never the response body.
func classify(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperror.New(apperror.AuthExpired, "GitHub rejected the access token")
	case http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return apperror.New(apperror.RateLimit, "GitHub API rate limit exceeded")
		}
		return apperror.New(apperror.Permission, "access to this repository is forbidden")
	case http.StatusNotFound:
		return apperror.New(apperror.NotFound, "repository not found — it may be private and require login")
	default:
		return apperror.New(apperror.UnknownFetch, fmt.Sprintf("GitHub API returned status %d", resp.StatusCode))
	}
}
