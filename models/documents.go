package models

// SourceDocument represents a chunk of text and its origin.
type SourceDocument struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentChunk is a single indexed chunk as stored in the vector database.
type DocumentChunk struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ListDocumentsResponse is the body of GET /api/v1/documents.
type ListDocumentsResponse struct {
	Count     int             `json:"count"`
	Documents []DocumentChunk `json:"documents"`
}
