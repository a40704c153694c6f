package ingest

import "github.com/Yates-Labs/quarry/internal/document"

// ChunkTextTemplate is the rendering template applied to every loaded
// document before splitting. It makes metadata explicit to both the
// embedding model and the LLM.
const ChunkTextTemplate = "Metadata:\n{metadata_str}\n-----\nContent:\n{content}"

// PageLabelKey is hidden from the embedding model: page numbers carry no
// semantic signal and pollute similarity search.
const PageLabelKey = "page_label"

// ShapeDocuments mutates documents in place: it sets the chunk text
// template and excludes the page label from embed rendering. Idempotent.
func ShapeDocuments(docs []document.Document) {
	for i := range docs {
		docs[i].TextTemplate = ChunkTextTemplate

		if !document.HasKey(docs[i].ExcludedEmbedKeys, PageLabelKey) {
			docs[i].ExcludedEmbedKeys = append(docs[i].ExcludedEmbedKeys, PageLabelKey)
		}
	}
}
