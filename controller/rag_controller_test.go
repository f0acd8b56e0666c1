package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalamkhade/sasad/models"
	"github.com/sujalamkhade/sasad/services"
)

type stubRAGService struct {
	askResp   *models.AskResponse
	askErr    error
	listResp  *models.ListDocumentsResponse
	listErr   error
	chunks    int
	chunksErr error

	gotReq models.AskRequest
}

func (s *stubRAGService) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	s.gotReq = req
	return s.askResp, s.askErr
}

func (s *stubRAGService) ListDocuments(ctx context.Context) (*models.ListDocumentsResponse, error) {
	return s.listResp, s.listErr
}

func (s *stubRAGService) TotalChunks(ctx context.Context) (int, error) {
	return s.chunks, s.chunksErr
}

func newRAGRouter(svc services.RAGService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	ctrl := NewRAGController(svc)
	router.POST("/ask", ctrl.Ask)
	router.GET("/health", ctrl.Health)
	router.GET("/api/v1/documents", ctrl.ListDocuments)
	return router
}

func TestAskReturnsAnswer(t *testing.T) {
	svc := &stubRAGService{askResp: &models.AskResponse{Answer: "42"}}
	router := newRAGRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"What is the answer?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "42", resp.Answer)
	assert.Equal(t, "What is the answer?", svc.gotReq.Question)
}

func TestAskRejectsInvalidBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing question", `{}`},
		{"malformed json", `{"question":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRAGRouter(&stubRAGService{})

			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAskEmptyQuestionIsBadRequest(t *testing.T) {
	svc := &stubRAGService{askErr: services.ErrEmptyQuestion}
	router := newRAGRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Question must not be empty")
}

func TestAskServiceFailureIsInternalError(t *testing.T) {
	svc := &stubRAGService{askErr: errors.New("gemini exploded")}
	router := newRAGRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"anything"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to generate answer")
	assert.NotContains(t, rec.Body.String(), "gemini exploded")
}

func TestHealthReportsChunkCount(t *testing.T) {
	svc := &stubRAGService{chunks: 7}
	router := newRAGRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.EqualValues(t, 7, payload["chunks"])
}

func TestHealthSurvivesCountFailure(t *testing.T) {
	svc := &stubRAGService{chunksErr: errors.New("chroma down")}
	router := newRAGRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
	assert.NotContains(t, payload, "chunks")
}

func TestListDocuments(t *testing.T) {
	svc := &stubRAGService{listResp: &models.ListDocumentsResponse{
		Count: 1,
		Documents: []models.DocumentChunk{
			{ID: "doc-1", Text: "chunk text"},
		},
	}}
	router := newRAGRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ListDocumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "doc-1", resp.Documents[0].ID)
}

func TestListDocumentsFailure(t *testing.T) {
	svc := &stubRAGService{listErr: errors.New("chroma down")}
	router := newRAGRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
