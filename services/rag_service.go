package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sujalamkhade/sasad/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ErrEmptyQuestion is returned when a question is blank after trimming.
var ErrEmptyQuestion = errors.New("question is empty")

const (
	generationModel = "gemini-2.5-flash"
	topKChunks      = 5

	answerNoData    = "No data found. Run ingestion first."
	answerNoContext = "No relevant context found."
)

// RAGService answers questions over the indexed parliament documents.
type RAGService interface {
	Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error)
	ListDocuments(ctx context.Context) (*models.ListDocumentsResponse, error)
	TotalChunks(ctx context.Context) (int, error)
}

type ragServiceImpl struct {
	collection   chromago.Collection
	geminiClient *genai.Client
	embedder     *OllamaEmbedder
	logger       zerolog.Logger
}

// NewRAGService wires the retrieval collection, the generation client, and
// the embedder into a RAGService.
func NewRAGService(collection chromago.Collection, geminiClient *genai.Client, embedder *OllamaEmbedder) RAGService {
	return &ragServiceImpl{
		collection:   collection,
		geminiClient: geminiClient,
		embedder:     embedder,
		logger:       log.With().Str("component", "rag-service").Logger(),
	}
}

// TotalChunks reports how many chunks the collection currently holds.
func (s *ragServiceImpl) TotalChunks(ctx context.Context) (int, error) {
	count, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// Ask runs the full retrieval and generation pipeline for one question.
func (s *ragServiceImpl) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	total, err := s.TotalChunks(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &models.AskResponse{Answer: answerNoData}, nil
	}

	docs, err := s.retrieveDocuments(ctx, question, topKChunks)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &models.AskResponse{Answer: answerNoContext}, nil
	}

	prompt := BuildAskPrompt(docs, question)
	answer, err := s.generateAnswer(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("could not generate response from gemini: %w", err)
	}

	return &models.AskResponse{
		Answer:     answer,
		SourceDocs: docs,
	}, nil
}

// retrieveDocuments embeds the question and pulls the closest chunks from
// the collection.
func (s *ragServiceImpl) retrieveDocuments(ctx context.Context, question string, topK int) ([]models.SourceDocument, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("could not embed question: %w", err)
	}

	result, err := s.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("could not query collection: %w", err)
	}

	var docs []models.SourceDocument
	docGroups := result.GetDocumentsGroups()
	metaGroups := result.GetMetadatasGroups()
	for gi, group := range docGroups {
		for di, doc := range group {
			content := doc.ContentString()
			if content == "" {
				continue
			}
			sourceDoc := models.SourceDocument{Text: content}
			if gi < len(metaGroups) && di < len(metaGroups[gi]) {
				sourceDoc.Metadata = metadataToMap(metaGroups[gi][di])
			}
			docs = append(docs, sourceDoc)
		}
	}

	s.logger.Debug().Int("retrieved", len(docs)).Msg("Retrieved context chunks")
	return docs, nil
}

// generateAnswer sends the assembled prompt to Gemini and collects the text
// parts of the first candidate.
func (s *ragServiceImpl) generateAnswer(ctx context.Context, prompt string) (string, error) {
	result, err := s.geminiClient.Models.GenerateContent(ctx, generationModel, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "I'm sorry, I couldn't generate a response.", nil
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// ListDocuments returns every chunk in the collection with its metadata.
func (s *ragServiceImpl) ListDocuments(ctx context.Context) (*models.ListDocumentsResponse, error) {
	result, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection contents: %w", err)
	}

	ids := result.GetIDs()
	texts := result.GetDocuments()
	metas := result.GetMetadatas()

	chunks := make([]models.DocumentChunk, 0, len(ids))
	for i, id := range ids {
		chunk := models.DocumentChunk{ID: string(id)}
		if i < len(texts) {
			chunk.Text = texts[i].ContentString()
		}
		if i < len(metas) {
			chunk.Metadata = metadataToMap(metas[i])
		}
		chunks = append(chunks, chunk)
	}

	return &models.ListDocumentsResponse{
		Count:     len(chunks),
		Documents: chunks,
	}, nil
}
