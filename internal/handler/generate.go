package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/readmegen/internal/apperror"
	"github.com/sakif/readmegen/internal/github"
	"github.com/sakif/readmegen/internal/model"
	"github.com/sakif/readmegen/internal/service"
	"github.com/sakif/readmegen/internal/session"
)

// GenerateHandler exposes the aggregation-and-generation pipeline:
//
//	POST /api/generate-readme {repoUrl} → {success, readme, source, repoData}
//	GET  /api/repositories              → the user's own repositories (auth required)
type GenerateHandler struct {
	aggregator *service.Aggregator
	generator  *service.Generator
	logger     *slog.Logger
}

// NewGenerateHandler creates a GenerateHandler with injected services.
func NewGenerateHandler(aggregator *service.Aggregator, generator *service.Generator, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{aggregator: aggregator, generator: generator, logger: logger}
}

type generateRequest struct {
	RepoURL string `json:"repoUrl"`
}

type generateResponse struct {
	Success  bool                 `json:"success"`
	Readme   string               `json:"readme"`
	Source   model.DocumentSource `json:"source"`
	RepoData model.RepoSummary    `json:"repoData"`
}

// HandleGenerateReadme runs the pipeline for one repository. Input
// validation happens before anything upstream is touched: a malformed
// repoUrl is a 400 with zero GitHub calls issued.
func (h *GenerateHandler) HandleGenerateReadme(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.Validation, "request body must be JSON with a repoUrl field"))
		return
	}

	owner, repo, err := parseRepoURL(req.RepoURL)
	if err != nil {
		writeError(w, err)
		return
	}

	// Anonymous requests work for public repositories; a session token
	// unlocks private ones.
	var token string
	if sess, ok := session.FromContext(r.Context()); ok {
		token = sess.AccessToken
	}

	desc, err := h.aggregator.Fetch(r.Context(), owner, repo, token)
	if err != nil {
		h.logger.Warn("repository fetch failed",
			slog.String("repo", owner+"/"+repo),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	doc := h.generator.Generate(r.Context(), desc)

	h.logger.Info("readme generated",
		slog.String("repo", owner+"/"+repo),
		slog.String("source", string(doc.Source)),
		slog.Int("bytes", doc.Length),
	)

	writeJSON(w, http.StatusOK, generateResponse{
		Success:  true,
		Readme:   doc.Body,
		Source:   doc.Source,
		RepoData: desc.Summary(),
	})
}

// HandleListRepositories lists the authenticated user's repositories.
func (h *GenerateHandler) HandleListRepositories(w http.ResponseWriter, r *http.Request) {
	var token string
	if sess, ok := session.FromContext(r.Context()); ok {
		token = sess.AccessToken
	}

	q := r.URL.Query()
	opts := github.ListOptions{
		Visibility: q.Get("visibility"),
		Sort:       q.Get("sort"),
	}
	if n, err := strconv.Atoi(q.Get("perPage")); err == nil {
		opts.PerPage = n
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = n
	}

	page, err := h.aggregator.ListRepositories(r.Context(), token, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// parseRepoURL extracts owner and repository name from the accepted input
// forms:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo.git
//	github.com/owner/repo
//	owner/repo
//
// Anything else is a Validation error.
func parseRepoURL(raw string) (owner, repo string, err error) {
	invalid := apperror.New(apperror.Validation, "repoUrl must look like https://github.com/owner/repo")

	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", invalid
	}

	var path string
	if strings.Contains(s, "://") {
		u, parseErr := url.Parse(s)
		if parseErr != nil {
			return "", "", invalid
		}
		host := strings.TrimPrefix(u.Hostname(), "www.")
		if host != "github.com" {
			return "", "", invalid
		}
		path = u.Path
	} else {
		// Shorthand forms: strip a leading host if present.
		path = strings.TrimPrefix(strings.TrimPrefix(s, "www."), "github.com/")
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", invalid
	}

	owner = parts[0]
	repo = strings.TrimSuffix(parts[1], ".git")
	if repo == "" {
		return "", "", invalid
	}
	return owner, repo, nil
}
