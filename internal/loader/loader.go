// Package loader provides document sources for the ingestion pipeline.
// Every loader turns an external corpus (a directory, a git tree, a GitHub
// issue tracker) into a list of documents with provenance metadata.
package loader

import (
	"context"
	"errors"

	"github.com/Yates-Labs/quarry/internal/document"
)

// Common errors for loading operations
var (
	ErrNoDocuments   = errors.New("no documents found")
	ErrUnreadable    = errors.New("failed to read source file")
	ErrInvalidSource = errors.New("invalid document source")
)

// Loader defines the interface for document sources.
// Implementations must return at least one document or fail.
type Loader interface {
	// Load reads all documents from the source.
	Load(ctx context.Context) ([]document.Document, error)
}
