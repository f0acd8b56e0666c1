package models

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// IngestURLRequest is the body of POST /ingest.
type IngestURLRequest struct {
	PDFURL string `json:"pdf_url" binding:"required"`
	Source string `json:"source"`
}
