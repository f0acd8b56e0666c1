package main

import (
	"context"
	"net/http"
	"os"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/sujalamkhade/sasad/controller"
	"github.com/sujalamkhade/sasad/services"
)

const (
	// serverPort matches the fixed endpoint baked into the ask client.
	serverPort     = "8000"
	collectionName = "sansad_sessions"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	chromaURL := os.Getenv("CHROMA_URL")
	if chromaURL == "" {
		chromaURL = "http://localhost:8001"
	}
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(chromaURL))
	if err != nil {
		log.Fatal().Err(err).Str("url", chromaURL).Msg("Failed to create chroma client")
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing chroma client")
		}
	}()

	collection, err := getOrCreateCollection(ctx, chromaClient, collectionName)
	if err != nil {
		log.Fatal().Err(err).Str("collection", collectionName).Msg("Failed to get or create collection")
	}

	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create gemini client. Make sure GEMINI_API_KEY is set.")
	}

	embedder := services.NewOllamaEmbedder(httpClient, "", "")

	store, err := services.NewPDFStore()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare pdf directory")
	}

	indexer := services.NewFileIndexingService(collection, embedder)
	ragService := services.NewRAGService(collection, geminiClient, embedder)
	ingestService := services.NewIngestService(services.NewPDFDownloader(), store, indexer)

	ragController := controller.NewRAGController(ragService)
	ingestController := controller.NewIngestController(ingestService)

	go func() {
		if err := indexer.ScanAndIndexDirectory(ctx, store.Dir); err != nil {
			log.Error().Err(err).Msg("Initial directory scan failed")
		}
		if err := indexer.WatchDirectory(ctx, store.Dir); err != nil {
			log.Error().Err(err).Msg("Directory watcher stopped")
		}
	}()

	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/health", ragController.Health)
	router.POST("/ask", ragController.Ask)
	router.POST("/ingest", ingestController.IngestURL)
	router.POST("/ingest-file", ingestController.IngestFile)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/ask", ragController.Ask)
		apiV1.POST("/ingest", ingestController.IngestURL)
		apiV1.POST("/ingest-file", ingestController.IngestFile)
		apiV1.GET("/documents", ragController.ListDocuments)
	}

	log.Info().Str("port", serverPort).Str("pdf_dir", store.Dir).Msg("Starting sasad server")
	if err := router.Run(":" + serverPort); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}

// corsMiddleware allows browser clients on other origins to reach the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func getOrCreateCollection(ctx context.Context, client chromago.Client, name string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(ctx, name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Indian Parliament session documents"),
				chromago.NewStringAttribute("created_by", "sasad-server"),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return collection, nil
}
