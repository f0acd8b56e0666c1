package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalamkhade/sasad/models"
	"github.com/sujalamkhade/sasad/services"
)

// RAGController handles the HTTP requests for the question answering API. It
// depends on the RAGService to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
}

// NewRAGController is a constructor function that creates a new RAGController.
// This is called from main.go to inject the service dependency.
func NewRAGController(service services.RAGService) *RAGController {
	return &RAGController{
		ragService: service,
	}
}

// Ask is the Gin handler for the POST /ask endpoint. It parses the request,
// calls the service layer, and returns the HTTP response.
func (c *RAGController) Ask(ctx *gin.Context) {
	var req models.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.ragService.Ask(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuestion) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Question must not be empty"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate answer"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// ListDocuments is the Gin handler for the GET /api/v1/documents endpoint.
func (c *RAGController) ListDocuments(ctx *gin.Context) {
	resp, err := c.ragService.ListDocuments(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documents"})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Health is the Gin handler for the GET /health endpoint.
func (c *RAGController) Health(ctx *gin.Context) {
	payload := gin.H{
		"status":  "healthy",
		"service": "sasad-rag-api",
		"version": "1.0.0",
	}
	if chunks, err := c.ragService.TotalChunks(ctx.Request.Context()); err == nil {
		payload["chunks"] = chunks
	}
	ctx.JSON(http.StatusOK, payload)
}
