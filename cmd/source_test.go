package cmd

import (
	"testing"

	"github.com/Yates-Labs/quarry/internal/loader"
)

func TestParseGitHubRepo(t *testing.T) {
	tests := []struct {
		input   string
		owner   string
		repo    string
		wantErr bool
	}{
		{"user/project", "user", "project", false},
		{"https://github.com/user/project", "user", "project", false},
		{"https://github.com/user/project.git", "user", "project", false},
		{"git@github.com:user/project.git", "user", "project", false},
		{"https://github.com/user/project/", "user", "project", false},
		{"justaname", "", "", true},
		{"/project", "", "", true},
		{"user/", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := parseGitHubRepo(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseGitHubRepo(%q) expected error, got %s/%s", tt.input, owner, repo)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseGitHubRepo(%q) failed: %v", tt.input, err)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("parseGitHubRepo(%q) = %s/%s, expected %s/%s", tt.input, owner, repo, tt.owner, tt.repo)
		}
	}
}

func TestBuildLoaderSelectsBackend(t *testing.T) {
	l, err := buildLoader("./docs", false, false, true)
	if err != nil {
		t.Fatalf("buildLoader failed: %v", err)
	}
	dirLoader, ok := l.(*loader.DirectoryLoader)
	if !ok {
		t.Fatalf("Expected DirectoryLoader, got %T", l)
	}
	if !dirLoader.Recursive {
		t.Error("Expected recursive flag to pass through")
	}

	l, err = buildLoader("/path/to/repo", true, false, false)
	if err != nil {
		t.Fatalf("buildLoader failed: %v", err)
	}
	if _, ok := l.(*loader.GitLoader); !ok {
		t.Errorf("Expected GitLoader, got %T", l)
	}

	l, err = buildLoader("user/project", false, true, false)
	if err != nil {
		t.Fatalf("buildLoader failed: %v", err)
	}
	if _, ok := l.(*loader.GitHubLoader); !ok {
		t.Errorf("Expected GitHubLoader, got %T", l)
	}

	if _, err := buildLoader("notarepo", false, true, false); err == nil {
		t.Error("Expected error for invalid GitHub source")
	}
}
