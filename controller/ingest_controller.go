package controller

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sujalamkhade/sasad/models"
	"github.com/sujalamkhade/sasad/services"
)

// IngestController handles the HTTP requests that bring new PDFs into the
// system.
type IngestController struct {
	ingestService services.IngestService
}

func NewIngestController(service services.IngestService) *IngestController {
	return &IngestController{
		ingestService: service,
	}
}

// IngestURL is the Gin handler for the POST /ingest endpoint. The body names
// a remote PDF to download and index.
func (c *IngestController) IngestURL(ctx *gin.Context) {
	var req models.IngestURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.ingestService.IngestFromURL(ctx.Request.Context(), req)
	if err != nil {
		writeIngestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// IngestFile is the Gin handler for the POST /ingest-file endpoint. It
// accepts a multipart upload with a "file" part and an optional "source"
// form field.
func (c *IngestController) IngestFile(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload: " + err.Error()})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + err.Error()})
		return
	}

	source := ctx.PostForm("source")
	resp, err := c.ingestService.IngestUpload(ctx.Request.Context(), fileHeader.Filename, source, data)
	if err != nil {
		writeIngestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// writeIngestError maps pipeline failures onto HTTP statuses.
func writeIngestError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPDFTooLarge):
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "PDF file too large"})
	case errors.Is(err, services.ErrDownloadFailed):
		cause := strings.TrimPrefix(err.Error(), services.ErrDownloadFailed.Error()+": ")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Download failed: " + cause})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest PDF"})
	}
}
