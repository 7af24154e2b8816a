package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/sakif/readmegen/internal/apperror"
	"github.com/sakif/readmegen/internal/github"
	"github.com/sakif/readmegen/internal/model"
)

// noCommitsPlaceholder is the deterministic stand-in when the latest-commit
// call fails or the repository has no commits.
const noCommitsPlaceholder = "No commits yet"

// maxRootFiles caps the root listing carried on a descriptor.
const maxRootFiles = 10

// Aggregator assembles a RepositoryDescriptor from four independent GitHub
// calls issued concurrently:
//
//	required:    profile, languages   — failure aborts the fetch, classified
//	best-effort: contents, commit     — failure degrades to empty values
//
// The join point waits for all four to settle before deciding the outcome,
// so a best-effort failure is always observed alongside the required
// results rather than short-circuiting them.
type Aggregator struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewAggregator creates an Aggregator around an injected GitHub client.
func NewAggregator(gh *github.Client, logger *slog.Logger) *Aggregator {
	return &Aggregator{gh: gh, logger: logger}
}

// Fetch retrieves and normalizes the metadata for owner/repo. token may be
// empty for anonymous access to public repositories.
func (a *Aggregator) Fetch(ctx context.Context, owner, repo, token string) (*model.RepositoryDescriptor, error) {
	// Fixed result slots, one per call. Each goroutine writes only its own
	// slot, so the WaitGroup is the only synchronization needed.
	var (
		wg sync.WaitGroup

		profile    *github.Repository
		profileErr error

		languages    map[string]int64
		languagesErr error

		rootFiles    []string
		rootFilesErr error

		commitMsg    string
		commitMsgErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		profile, profileErr = a.gh.GetRepository(ctx, token, owner, repo)
	}()
	go func() {
		defer wg.Done()
		languages, languagesErr = a.gh.ListLanguages(ctx, token, owner, repo)
	}()
	go func() {
		defer wg.Done()
		rootFiles, rootFilesErr = a.gh.ListRootContents(ctx, token, owner, repo)
	}()
	go func() {
		defer wg.Done()
		commitMsg, commitMsgErr = a.gh.GetLatestCommit(ctx, token, owner, repo)
	}()
	wg.Wait()

	// Required calls first. Either failure aborts the whole fetch; the
	// github client already classified it.
	if profileErr != nil {
		return nil, profileErr
	}
	if languagesErr != nil {
		return nil, languagesErr
	}

	// Best-effort calls degrade to empty values instead of aborting.
	if rootFilesErr != nil {
		a.logger.Warn("root listing unavailable, continuing without it",
			slog.String("repo", owner+"/"+repo),
			slog.String("error", rootFilesErr.Error()),
		)
		rootFiles = []string{}
	}
	if len(rootFiles) > maxRootFiles {
		rootFiles = rootFiles[:maxRootFiles]
	}

	if commitMsgErr != nil || commitMsg == "" {
		if commitMsgErr != nil {
			a.logger.Warn("latest commit unavailable, continuing without it",
				slog.String("repo", owner+"/"+repo),
				slog.String("error", commitMsgErr.Error()),
			)
		}
		commitMsg = noCommitsPlaceholder
	}

	// Language names sorted so the descriptor (and everything derived from
	// it, notably the fallback document) is stable across fetches.
	langNames := make([]string, 0, len(languages))
	for name := range languages {
		langNames = append(langNames, name)
	}
	sort.Strings(langNames)

	desc := &model.RepositoryDescriptor{
		Name:          profile.Name,
		Description:   profile.Description,
		Private:       profile.Private,
		Stars:         profile.Stars,
		Forks:         profile.Forks,
		Language:      profile.Language,
		Languages:     langNames,
		Topics:        profile.Topics,
		RootFiles:     rootFiles,
		URL:           profile.HTMLURL,
		CreatedAt:     profile.CreatedAt,
		UpdatedAt:     profile.UpdatedAt,
		OpenIssues:    profile.OpenIssues,
		Watchers:      profile.Watchers,
		DefaultBranch: profile.DefaultBranch,
		LastCommitMsg: commitMsg,
	}
	if profile.License != nil {
		desc.License = profile.License.Name
	}
	if desc.Topics == nil {
		desc.Topics = []string{}
	}
	return desc, nil
}

// RepositoryPage is one page of the authenticated user's repositories.
type RepositoryPage struct {
	Repositories []model.RepositoryListItem `json:"repositories"`
	Total        int                        `json:"total"`
	Page         int                        `json:"page"`
	HasMore      bool                       `json:"hasMore"`
}

// ListRepositories lists the token's own repositories. A credential is
// mandatory — GitHub has no anonymous form of this listing — so an empty
// token fails fast with AuthRequired before any upstream call.
//
// GitHub's list endpoint reports no grand total, so Total is the size of
// the returned page and HasMore is inferred from a full page.
func (a *Aggregator) ListRepositories(ctx context.Context, token string, opts github.ListOptions) (*RepositoryPage, error) {
	if token == "" {
		return nil, apperror.New(apperror.AuthRequired, "listing repositories requires login")
	}

	if opts.Visibility == "" {
		opts.Visibility = "all"
	}
	if opts.Sort == "" {
		opts.Sort = "updated"
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 30
	}
	if opts.PerPage > 100 {
		opts.PerPage = 100 // GitHub's hard page cap
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	items, err := a.gh.ListUserRepositories(ctx, token, opts)
	if err != nil {
		return nil, err
	}

	return &RepositoryPage{
		Repositories: items,
		Total:        len(items),
		Page:         opts.Page,
		HasMore:      len(items) == opts.PerPage,
	}, nil
}
