package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sujalamkhade/sasad/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxPDFSizeBytes caps how large an ingested PDF may be.
const MaxPDFSizeBytes = 25 * 1024 * 1024

var (
	// ErrPDFTooLarge is returned when an ingested PDF exceeds MaxPDFSizeBytes.
	ErrPDFTooLarge = errors.New("pdf file too large")
	// ErrDownloadFailed wraps failures while fetching a remote PDF.
	ErrDownloadFailed = errors.New("download failed")
)

const (
	statusIngested  = "ingested"
	statusDuplicate = "duplicate"

	nextStepOCR     = "ocr_required"
	nextStepIndexed = "indexed"
)

// IngestService brings new PDFs into the store and the vector collection.
type IngestService interface {
	IngestFromURL(ctx context.Context, req models.IngestURLRequest) (*models.IngestResponse, error)
	IngestUpload(ctx context.Context, filename, source string, data []byte) (*models.IngestResponse, error)
}

type ingestServiceImpl struct {
	downloader *PDFDownloader
	store      *PDFStore
	indexer    *FileIndexingService
	logger     zerolog.Logger
}

func NewIngestService(downloader *PDFDownloader, store *PDFStore, indexer *FileIndexingService) IngestService {
	return &ingestServiceImpl{
		downloader: downloader,
		store:      store,
		indexer:    indexer,
		logger:     log.With().Str("component", "ingest-service").Logger(),
	}
}

// IngestFromURL downloads a PDF and runs it through the ingest pipeline.
func (s *ingestServiceImpl) IngestFromURL(ctx context.Context, req models.IngestURLRequest) (*models.IngestResponse, error) {
	data, err := s.downloader.Download(ctx, req.PDFURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return s.processPDF(ctx, data, req.Source)
}

// IngestUpload runs an uploaded PDF through the ingest pipeline.
func (s *ingestServiceImpl) IngestUpload(ctx context.Context, filename, source string, data []byte) (*models.IngestResponse, error) {
	s.logger.Info().Str("filename", filename).Int("bytes", len(data)).Msg("Received PDF upload")
	return s.processPDF(ctx, data, source)
}

// processPDF dedupes, saves, and indexes raw PDF bytes.
func (s *ingestServiceImpl) processPDF(ctx context.Context, data []byte, source string) (*models.IngestResponse, error) {
	if len(data) > MaxPDFSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPDFTooLarge, len(data))
	}

	checksum := sha256Hex(data)
	if existing, ok := s.store.Lookup(checksum); ok {
		s.logger.Info().Str("sha256", checksum).Str("existing", existing).Msg("Duplicate PDF, skipping")
		return &models.IngestResponse{
			Status:      statusDuplicate,
			ExistingPDF: existing,
			SHA256:      checksum,
		}, nil
	}

	name, path, err := s.store.Save(data)
	if err != nil {
		return nil, fmt.Errorf("failed to save pdf: %w", err)
	}

	s.indexer.BeginManaged(path)
	defer s.indexer.EndManaged(path)

	result, err := s.indexer.IndexFile(ctx, path, checksum, source)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", name, err)
	}
	if err := s.store.Record(checksum, name); err != nil {
		return nil, fmt.Errorf("failed to record pdf in dedupe index: %w", err)
	}

	nextStep := nextStepIndexed
	if result.NeedsOCR {
		nextStep = nextStepOCR
	}

	return &models.IngestResponse{
		Status:      statusIngested,
		PDFFilename: name,
		PDFPath:     path,
		SHA256:      checksum,
		Source:      source,
		Language:    result.Language,
		NeedsOCR:    result.NeedsOCR,
		NextStep:    nextStep,
		NumChunks:   result.NumChunks,
		ChunkIDs:    result.ChunkIDs,
		Meta: map[string]interface{}{
			"num_pages":       result.Pages,
			"extracted_chars": result.Chars,
		},
	}, nil
}
