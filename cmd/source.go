package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Yates-Labs/quarry/internal/loader"
)

// buildLoader maps the source argument and flags to a document loader.
// Precedence: --github, then --git, then a plain directory.
func buildLoader(source string, useGit bool, useGitHub bool, recursive bool) (loader.Loader, error) {
	if useGitHub {
		owner, repo, err := parseGitHubRepo(source)
		if err != nil {
			return nil, err
		}
		return loader.NewGitHubLoader(owner+"/"+repo, os.Getenv("GITHUB_TOKEN"))
	}

	if useGit {
		return loader.NewGitLoader(source), nil
	}

	return &loader.DirectoryLoader{Dir: source, Recursive: recursive}, nil
}

// parseGitHubRepo accepts "owner/repo" or a github.com URL (https or SSH)
// and extracts the owner and repository name.
func parseGitHubRepo(source string) (owner, repo string, err error) {
	cleaned := source
	cleaned = strings.TrimPrefix(cleaned, "https://")
	cleaned = strings.TrimPrefix(cleaned, "http://")
	cleaned = strings.TrimPrefix(cleaned, "git@")

	// Replace colon with slash for SSH URLs
	cleaned = strings.Replace(cleaned, ":", "/", 1)

	cleaned = strings.TrimPrefix(cleaned, "github.com/")
	cleaned = strings.TrimSuffix(cleaned, ".git")
	cleaned = strings.TrimSuffix(cleaned, "/")

	parts := strings.Split(cleaned, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository %q, expected owner/repo", source)
	}

	return parts[0], parts[1], nil
}
