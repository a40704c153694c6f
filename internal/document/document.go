// Package document defines the core document and chunk types shared by the
// ingestion and retrieval pipeline. A Document is a loaded source text with
// metadata; a Node is a chunk of exactly one document, sized for embedding
// and retrieval. Both render their content with metadata visibility that
// depends on the consumer (embedding model vs. LLM).
package document

import (
	"sort"
	"strings"
)

// MetadataMode controls which metadata keys are visible when rendering
// content for a downstream consumer.
type MetadataMode string

const (
	// MetadataModeAll includes every metadata key.
	MetadataModeAll MetadataMode = "all"
	// MetadataModeEmbed includes metadata visible to the embedding model
	// (everything except ExcludedEmbedKeys).
	MetadataModeEmbed MetadataMode = "embed"
	// MetadataModeLLM includes metadata visible to the language model
	// (everything except ExcludedLLMKeys).
	MetadataModeLLM MetadataMode = "llm"
	// MetadataModeNone renders the bare text without metadata.
	MetadataModeNone MetadataMode = "none"
)

// Default render templates. TextTemplate placeholders are {metadata_str} and
// {content}; MetadataTemplate placeholders are {key} and {value}.
const (
	DefaultTextTemplate     = "{metadata_str}\n\n{content}"
	DefaultMetadataTemplate = "{key}: {value}"
	DefaultMetadataSep      = "\n"
)

// Document represents a single loaded source text with its metadata and
// rendering configuration. Loaders create documents; the metadata shaping
// step mutates them in place; the splitter consumes them.
type Document struct {
	// ID uniquely identifies the document within a pipeline run.
	ID string `json:"id"`

	// Text is the raw document content.
	Text string `json:"text"`

	// Metadata maps metadata keys to values (file name, path, dates, ...).
	Metadata map[string]string `json:"metadata,omitempty"`

	// TextTemplate controls how metadata and content are combined when
	// rendering. Empty means DefaultTextTemplate.
	TextTemplate string `json:"text_template,omitempty"`

	// MetadataTemplate controls how a single key/value pair is rendered.
	// Empty means DefaultMetadataTemplate.
	MetadataTemplate string `json:"metadata_template,omitempty"`

	// MetadataSeparator joins rendered key/value pairs. Empty means
	// DefaultMetadataSep.
	MetadataSeparator string `json:"metadata_separator,omitempty"`

	// ExcludedEmbedKeys lists metadata keys hidden from the embedding model.
	ExcludedEmbedKeys []string `json:"excluded_embed_keys,omitempty"`

	// ExcludedLLMKeys lists metadata keys hidden from the language model.
	ExcludedLLMKeys []string `json:"excluded_llm_keys,omitempty"`
}

// Content renders the document text with metadata visibility for the given
// mode.
func (d *Document) Content(mode MetadataMode) string {
	return renderContent(d.Text, d.Metadata, mode, renderConfig{
		textTemplate:      d.TextTemplate,
		metadataTemplate:  d.MetadataTemplate,
		metadataSeparator: d.MetadataSeparator,
		excludedEmbed:     d.ExcludedEmbedKeys,
		excludedLLM:       d.ExcludedLLMKeys,
	})
}

// Node represents a chunk of exactly one source document. The splitter
// creates nodes; extractors mutate their metadata; the indexer consumes
// them. Every node keeps provenance back to its source document.
type Node struct {
	// ID uniquely identifies the node.
	ID string `json:"id"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Metadata starts as a copy of the source document metadata and is
	// augmented by extractors (document_title, questions, ...).
	Metadata map[string]string `json:"metadata,omitempty"`

	// DocumentID identifies the source document this node was split from.
	DocumentID string `json:"document_id"`

	// ChunkIndex is the zero-based position of this chunk within its
	// source document.
	ChunkIndex int `json:"chunk_index"`

	// Rendering configuration inherited from the source document.
	TextTemplate      string   `json:"text_template,omitempty"`
	MetadataTemplate  string   `json:"metadata_template,omitempty"`
	MetadataSeparator string   `json:"metadata_separator,omitempty"`
	ExcludedEmbedKeys []string `json:"excluded_embed_keys,omitempty"`
	ExcludedLLMKeys   []string `json:"excluded_llm_keys,omitempty"`
}

// Content renders the node text with metadata visibility for the given mode.
func (n *Node) Content(mode MetadataMode) string {
	return renderContent(n.Text, n.Metadata, mode, renderConfig{
		textTemplate:      n.TextTemplate,
		metadataTemplate:  n.MetadataTemplate,
		metadataSeparator: n.MetadataSeparator,
		excludedEmbed:     n.ExcludedEmbedKeys,
		excludedLLM:       n.ExcludedLLMKeys,
	})
}

type renderConfig struct {
	textTemplate      string
	metadataTemplate  string
	metadataSeparator string
	excludedEmbed     []string
	excludedLLM       []string
}

// renderContent applies the text and metadata templates for a mode. Metadata
// keys are rendered in sorted order so output is deterministic.
func renderContent(text string, metadata map[string]string, mode MetadataMode, cfg renderConfig) string {
	if mode == MetadataModeNone {
		return text
	}

	metadataStr := renderMetadata(metadata, mode, cfg)
	if metadataStr == "" {
		return text
	}

	textTemplate := cfg.textTemplate
	if textTemplate == "" {
		textTemplate = DefaultTextTemplate
	}

	out := strings.ReplaceAll(textTemplate, "{metadata_str}", metadataStr)
	out = strings.ReplaceAll(out, "{content}", text)
	return out
}

func renderMetadata(metadata map[string]string, mode MetadataMode, cfg renderConfig) string {
	if len(metadata) == 0 {
		return ""
	}

	var excluded []string
	switch mode {
	case MetadataModeEmbed:
		excluded = cfg.excludedEmbed
	case MetadataModeLLM:
		excluded = cfg.excludedLLM
	}

	skip := make(map[string]struct{}, len(excluded))
	for _, key := range excluded {
		skip[key] = struct{}{}
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		if _, ok := skip[key]; ok {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	metadataTemplate := cfg.metadataTemplate
	if metadataTemplate == "" {
		metadataTemplate = DefaultMetadataTemplate
	}
	separator := cfg.metadataSeparator
	if separator == "" {
		separator = DefaultMetadataSep
	}

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pair := strings.ReplaceAll(metadataTemplate, "{key}", key)
		pair = strings.ReplaceAll(pair, "{value}", metadata[key])
		pairs = append(pairs, pair)
	}

	return strings.Join(pairs, separator)
}

// CopyMetadata returns a copy of the given metadata map. Nodes must never
// alias their source document's map, otherwise extractor writes would leak
// across chunks.
func CopyMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(metadata))
	for key, value := range metadata {
		out[key] = value
	}
	return out
}

// HasKey reports whether keys contains key.
func HasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
