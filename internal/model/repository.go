package model

import "time"

// RepositoryDescriptor is the canonical, normalized view of one repository,
// assembled from four independent GitHub calls (profile, languages, root
// contents, latest commit). Fields fed by best-effort calls degrade to their
// zero values when the call fails; the descriptor itself is all-or-nothing
// only with respect to the required calls.
type RepositoryDescriptor struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Private       bool      `json:"private"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	Language      string    `json:"language"`  // primary language per GitHub
	Languages     []string  `json:"languages"` // unordered set of language names
	Topics        []string  `json:"topics"`
	License       string    `json:"license"`   // display name, empty if none
	RootFiles     []string  `json:"rootFiles"` // first 10 root entries, API order
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	OpenIssues    int       `json:"openIssues"`
	Watchers      int       `json:"watchers"`
	DefaultBranch string    `json:"defaultBranch"`
	LastCommitMsg string    `json:"lastCommitMessage"`
}

// RepoSummary is the client-visible projection of a descriptor returned
// alongside a generated README.
type RepoSummary struct {
	Name        string `json:"name"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	Forks       int    `json:"forks"`
}

// Summary builds the repoData projection for API responses.
func (d *RepositoryDescriptor) Summary() RepoSummary {
	return RepoSummary{
		Name:        d.Name,
		Stars:       d.Stars,
		Language:    d.Language,
		Description: d.Description,
		Private:     d.Private,
		Forks:       d.Forks,
	}
}

// RepositoryListItem is one entry of the authenticated user's repository
// listing (GET /api/repositories).
type RepositoryListItem struct {
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description"`
	Private     bool      `json:"private"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Language    string    `json:"language"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
