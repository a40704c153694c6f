package loader

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/Yates-Labs/quarry/internal/document"
)

// GitLoader reads every text blob in a repository's HEAD tree into a
// document. The repository is either opened from a local path or cloned
// into memory from a URL.
type GitLoader struct {
	// Source is a local repository path or a clone URL.
	Source string
}

// NewGitLoader creates a loader for the given repository path or URL.
func NewGitLoader(source string) *GitLoader {
	return &GitLoader{Source: source}
}

// Load walks the HEAD tree and returns one document per text file. Binary
// blobs are skipped. An empty tree is an error.
func (l *GitLoader) Load(ctx context.Context) ([]document.Document, error) {
	if l.Source == "" {
		return nil, fmt.Errorf("%w: repository source is empty", ErrInvalidSource)
	}

	repo, err := l.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve HEAD: %v", ErrInvalidSource, err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load HEAD commit: %v", ErrInvalidSource, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load HEAD tree: %v", ErrInvalidSource, err)
	}

	var docs []document.Document
	err = tree.Files().ForEach(func(file *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		isBinary, err := file.IsBinary()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnreadable, file.Name, err)
		}
		if isBinary {
			return nil
		}

		contents, err := file.Contents()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnreadable, file.Name, err)
		}

		docs = append(docs, document.Document{
			ID:   fmt.Sprintf("doc-%d", len(docs)),
			Text: contents,
			Metadata: map[string]string{
				"file_name":  file.Name,
				"file_path":  file.Name,
				"repository": l.Source,
				"commit":     commit.Hash.String(),
				"page_label": "1",
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: repository %s has no text files at HEAD", ErrNoDocuments, l.Source)
	}

	return docs, nil
}

// open opens a local repository, falling back to an in-memory clone when the
// source looks like a URL.
func (l *GitLoader) open(ctx context.Context) (*git.Repository, error) {
	if isRemoteURL(l.Source) {
		return git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
			URL:   l.Source,
			Depth: 1,
		})
	}
	return git.PlainOpen(l.Source)
}

func isRemoteURL(source string) bool {
	for _, prefix := range []string{"http://", "https://", "git@", "ssh://"} {
		if len(source) >= len(prefix) && source[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
