package loader

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v77/github"

	"github.com/Yates-Labs/quarry/internal/document"
)

// GitHubLoader reads the issues of a repository into documents, one per
// issue. Pull requests are excluded; the issue title and body become the
// document text.
type GitHubLoader struct {
	client *github.Client
	owner  string
	repo   string

	// State filters issues ("open", "closed", "all"). Default "all".
	State string
}

// NewGitHubLoader creates a loader for "owner/repo". The token may be empty
// for public repositories, at the cost of a lower rate limit.
func NewGitHubLoader(ownerRepo, token string) (*GitHubLoader, error) {
	parts := strings.SplitN(ownerRepo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: expected owner/repo, got %q", ErrInvalidSource, ownerRepo)
	}

	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &GitHubLoader{
		client: client,
		owner:  parts[0],
		repo:   parts[1],
		State:  "all",
	}, nil
}

// Load fetches all issues page by page and converts each to a document.
func (l *GitHubLoader) Load(ctx context.Context) ([]document.Document, error) {
	opts := &github.IssueListByRepoOptions{
		State:       l.State,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var docs []document.Document
	for {
		issues, resp, err := l.client.Issues.ListByRepo(ctx, l.owner, l.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list issues: %v", ErrUnreadable, err)
		}

		for _, issue := range issues {
			if issue == nil || issue.IsPullRequest() {
				continue
			}
			docs = append(docs, l.issueDocument(issue, len(docs)))
		}

		if resp.NextPage == 0 {
			break
		}
		// IssueListByRepoOptions embeds both cursor and page options, so the
		// page field must be addressed through ListOptions.
		opts.ListOptions.Page = resp.NextPage
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s/%s has no issues", ErrNoDocuments, l.owner, l.repo)
	}

	return docs, nil
}

func (l *GitHubLoader) issueDocument(issue *github.Issue, ordinal int) document.Document {
	text := issue.GetTitle()
	if body := issue.GetBody(); body != "" {
		text += "\n\n" + body
	}

	return document.Document{
		ID:   fmt.Sprintf("doc-%d", ordinal),
		Text: text,
		Metadata: map[string]string{
			"repository":   l.owner + "/" + l.repo,
			"issue_number": strconv.Itoa(issue.GetNumber()),
			"state":        issue.GetState(),
			"author":       issue.GetUser().GetLogin(),
			"page_label":   "1",
		},
	}
}
