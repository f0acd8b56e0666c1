package models

// AskResponse is the body of a successful POST /ask. Answer is always
// present; SourceDocs carries the chunks the answer was grounded on.
type AskResponse struct {
	Answer     string           `json:"answer"`
	SourceDocs []SourceDocument `json:"source_docs,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// IngestResponse describes what happened to a submitted PDF. For a duplicate
// upload only Status, ExistingPDF and SHA256 are filled in; the fields
// without omitempty still serialize with their zero values.
type IngestResponse struct {
	Status      string                 `json:"status"`
	ExistingPDF string                 `json:"existing_pdf,omitempty"`
	PDFFilename string                 `json:"pdf_filename,omitempty"`
	PDFPath     string                 `json:"pdf_path,omitempty"`
	SHA256      string                 `json:"sha256"`
	Source      string                 `json:"source"`
	Language    string                 `json:"language,omitempty"`
	NeedsOCR    bool                   `json:"needs_ocr"`
	NextStep    string                 `json:"next_step,omitempty"`
	NumChunks   int                    `json:"num_chunks"`
	ChunkIDs    []string               `json:"chunk_ids,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}
