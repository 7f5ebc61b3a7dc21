package model

// DocumentType classifies the declared format of a source document
type DocumentType string

const (
	DocTypePDF     DocumentType = "pdf"
	DocTypeDOCX    DocumentType = "docx"
	DocTypeHTML    DocumentType = "html"
	DocTypeText    DocumentType = "text"
	DocTypeUnknown DocumentType = "unknown"
)

// DocumentChunk is a bounded contiguous slice of a source document's
// normalized text. Chunks are immutable once created; only the embedding
// vector is populated later, by the retriever's indexing phase.
type DocumentChunk struct {
	ID             string    `json:"id"`                    // Derived from source + chunk index, unique within a run
	Content        string    `json:"content"`               // Normalized chunk text
	ChunkIndex     int       `json:"chunk_index"`           // 0-based position within the document
	DocumentSource string    `json:"document_source"`       // Source locator the chunk came from
	PageNumber     int       `json:"page_number,omitempty"` // 1-based page, 0 when unknown
	Embedding      []float32 `json:"embedding,omitempty"`   // Populated by the retriever, never re-created
}

// SearchResult is a candidate chunk returned by the retriever for one
// question. RelevanceScore may be revised by the retriever's own reranking
// before handoff; downstream stages treat the result as read-only.
type SearchResult struct {
	Chunk           *DocumentChunk `json:"chunk"`
	SimilarityScore float64        `json:"similarity_score"`
	RelevanceScore  float64        `json:"relevance_score"`
	SourceSection   string         `json:"source_section,omitempty"`
}
