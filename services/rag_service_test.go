package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalamkhade/sasad/models"
)

// stubCollection fakes the few collection methods the services touch.
// Anything else falls through to the embedded nil interface and panics.
type stubCollection struct {
	chromago.Collection

	count       int
	countErr    error
	queryResult chromago.QueryResult
	queryErr    error

	addCalls int
}

func (c *stubCollection) Count(ctx context.Context) (int, error) {
	return c.count, c.countErr
}

func (c *stubCollection) Query(ctx context.Context, opts ...chromago.CollectionQueryOption) (chromago.QueryResult, error) {
	return c.queryResult, c.queryErr
}

func (c *stubCollection) Add(ctx context.Context, opts ...chromago.CollectionAddOption) error {
	c.addCalls++
	return nil
}

// newTestEmbedder serves a fixed vector so pipeline tests can run without
// an Ollama instance.
func newTestEmbedder(t *testing.T) *OllamaEmbedder {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"embedding":[0.5,0.25,0.125]}`)
	}))
	t.Cleanup(server.Close)
	return NewOllamaEmbedder(server.Client(), server.URL, "")
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := NewRAGService(nil, nil, nil)

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), models.AskRequest{Question: question})
		require.ErrorIs(t, err, ErrEmptyQuestion, "question %q", question)
	}
}

func TestAskEmptyCollection(t *testing.T) {
	svc := NewRAGService(&stubCollection{count: 0}, nil, nil)

	resp, err := svc.Ask(context.Background(), models.AskRequest{Question: "Who raised the first question?"})
	require.NoError(t, err)

	assert.Equal(t, "No data found. Run ingestion first.", resp.Answer)
	assert.Empty(t, resp.SourceDocs)
}

func TestAskNoMatchingContext(t *testing.T) {
	collection := &stubCollection{count: 12, queryResult: &chromago.QueryResultImpl{}}
	svc := NewRAGService(collection, nil, newTestEmbedder(t))

	resp, err := svc.Ask(context.Background(), models.AskRequest{Question: "Who raised the first question?"})
	require.NoError(t, err)

	assert.Equal(t, "No relevant context found.", resp.Answer)
	assert.Empty(t, resp.SourceDocs)
}

func TestRetrieveDocumentsMapsQueryResults(t *testing.T) {
	meta := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("source_file", "/data/pdfs/session.pdf"),
	)
	collection := &stubCollection{
		queryResult: &chromago.QueryResultImpl{
			DocumentsLists: []chromago.Documents{{
				chromago.NewTextDocument("The house met at 11 a.m."),
				chromago.NewTextDocument(""),
			}},
			MetadatasLists: []chromago.DocumentMetadatas{{meta, nil}},
		},
	}
	svc := NewRAGService(collection, nil, newTestEmbedder(t)).(*ragServiceImpl)

	docs, err := svc.retrieveDocuments(context.Background(), "when did the house meet", topKChunks)
	require.NoError(t, err)

	// The empty chunk is dropped, the real one keeps its metadata.
	require.Len(t, docs, 1)
	assert.Equal(t, "The house met at 11 a.m.", docs[0].Text)
	assert.Equal(t, "/data/pdfs/session.pdf", docs[0].Metadata["source_file"])
}

func TestTotalChunks(t *testing.T) {
	svc := NewRAGService(&stubCollection{count: 42}, nil, nil)

	total, err := svc.TotalChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, total)
}
