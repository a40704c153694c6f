package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Yates-Labs/quarry/internal/document"
)

// DirectoryLoader reads every regular file in a directory into a document.
// Files are loaded in lexical order so document IDs are stable across runs.
type DirectoryLoader struct {
	// Dir is the directory to read.
	Dir string

	// Recursive walks subdirectories when true. Default is top level only.
	Recursive bool
}

// NewDirectoryLoader creates a loader for the given directory.
func NewDirectoryLoader(dir string) *DirectoryLoader {
	return &DirectoryLoader{Dir: dir}
}

// Load reads all regular files under the directory. An unreadable file or
// an empty directory is an error.
func (l *DirectoryLoader) Load(ctx context.Context) ([]document.Document, error) {
	if l.Dir == "" {
		return nil, fmt.Errorf("%w: directory path is empty", ErrInvalidSource)
	}

	info, err := os.Stat(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidSource, l.Dir)
	}

	paths, err := l.collectPaths()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: directory %s is empty", ErrNoDocuments, l.Dir)
	}
	sort.Strings(paths)

	docs := make([]document.Document, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := loadFile(path, fmt.Sprintf("doc-%d", i))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (l *DirectoryLoader) collectPaths() ([]string, error) {
	if !l.Recursive {
		entries, err := os.ReadDir(l.Dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}

		var paths []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			paths = append(paths, filepath.Join(l.Dir, entry.Name()))
		}
		return paths, nil
	}

	var paths []string
	err := filepath.WalkDir(l.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return paths, nil
}

// loadFile reads a single file into a document with the default file
// metadata (name, path, size, dates). page_label is set so downstream
// metadata shaping has the key to exclude.
func loadFile(path, id string) (document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	return document.Document{
		ID:   id,
		Text: string(data),
		Metadata: map[string]string{
			"file_name":          filepath.Base(path),
			"file_path":          path,
			"file_size":          strconv.FormatInt(info.Size(), 10),
			"last_modified_date": info.ModTime().Format("2006-01-02"),
			"page_label":         "1",
		},
	}, nil
}
