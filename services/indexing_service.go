package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	sourceLocal     = "local"
	chunkSize       = 1000
	chunkOverlap    = 100
	minExtractChars = 100
)

// FileIndexingService handles scanning, chunking, and embedding documents
// into the vector collection.
type FileIndexingService struct {
	collection chromago.Collection
	embedder   *OllamaEmbedder
	logger     zerolog.Logger

	mu      sync.Mutex
	managed map[string]struct{}
}

// NewFileIndexingService creates a new indexing service.
func NewFileIndexingService(collection chromago.Collection, embedder *OllamaEmbedder) *FileIndexingService {
	return &FileIndexingService{
		collection: collection,
		embedder:   embedder,
		logger:     log.With().Str("component", "indexer").Logger(),
		managed:    make(map[string]struct{}),
	}
}

// IndexResult describes what indexing a single file produced.
type IndexResult struct {
	ChunkIDs  []string
	NumChunks int
	Language  string
	NeedsOCR  bool
	Pages     int
	Chars     int
}

// IndexState holds the metadata for an indexed file.
type IndexState struct {
	Hash string
}

// BeginManaged marks a path as being written by the ingest pipeline so the
// directory watcher leaves it alone.
func (s *FileIndexingService) BeginManaged(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managed[path] = struct{}{}
}

// EndManaged removes the ingest-pipeline mark from a path.
func (s *FileIndexingService) EndManaged(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managed, path)
}

func (s *FileIndexingService) isManaged(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.managed[path]
	return ok
}

// WatchDirectory monitors a directory and keeps the collection in sync with
// file changes until the context is cancelled.
func (s *FileIndexingService) WatchDirectory(ctx context.Context, dirPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSupportedFile(event.Name) || s.isManaged(event.Name) {
					continue
				}
				// Editors often write via create+rename, so Create and Write
				// are handled the same way.
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					s.logger.Info().Str("file", event.Name).Str("op", event.Op.String()).Msg("Detected file change")
					hash, err := calculateFileHash(event.Name)
					if err != nil {
						s.logger.Warn().Err(err).Str("file", event.Name).Msg("Could not hash changed file")
						continue
					}
					if s.alreadyIndexed(ctx, event.Name, hash) {
						continue
					}
					if err := s.deleteDocumentsByFilepath(ctx, event.Name); err != nil {
						s.logger.Warn().Err(err).Str("file", event.Name).Msg("Could not delete stale chunks")
					}
					if _, err := s.IndexFile(ctx, event.Name, hash, sourceLocal); err != nil {
						s.logger.Error().Err(err).Str("file", event.Name).Msg("Failed to index changed file")
					}
				}
				if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					s.logger.Info().Str("file", event.Name).Msg("File removed, deleting its chunks")
					if err := s.deleteDocumentsByFilepath(ctx, event.Name); err != nil {
						s.logger.Warn().Err(err).Str("file", event.Name).Msg("Could not delete chunks for removed file")
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error().Err(err).Msg("File watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := watcher.Add(dirPath); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dirPath, err)
	}
	s.logger.Info().Str("dir", dirPath).Msg("Watching directory for changes")

	<-ctx.Done()
	return nil
}

// alreadyIndexed reports whether the collection holds chunks for path with
// the given content hash.
func (s *FileIndexingService) alreadyIndexed(ctx context.Context, path, hash string) bool {
	state, err := s.getCurrentIndexState(ctx)
	if err != nil {
		return false
	}
	current, ok := state[path]
	return ok && current.Hash == hash
}

// ScanAndIndexDirectory walks a directory once, indexing new and changed
// files and removing chunks for files that vanished.
func (s *FileIndexingService) ScanAndIndexDirectory(ctx context.Context, dirPath string) error {
	s.logger.Info().Str("dir", dirPath).Msg("Scanning directory")

	state, err := s.getCurrentIndexState(ctx)
	if err != nil {
		return fmt.Errorf("could not load current index state: %w", err)
	}
	seen := make(map[string]struct{})

	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isSupportedFile(path) {
			return nil
		}
		seen[path] = struct{}{}

		hash, err := calculateFileHash(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("Could not hash file, skipping")
			return nil
		}
		if current, ok := state[path]; ok && current.Hash == hash {
			return nil
		}

		s.logger.Info().Str("file", path).Msg("Indexing file")
		if err := s.deleteDocumentsByFilepath(ctx, path); err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("Could not delete stale chunks")
		}
		if _, err := s.IndexFile(ctx, path, hash, sourceLocal); err != nil {
			s.logger.Error().Err(err).Str("file", path).Msg("Failed to index file")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("directory scan failed: %w", err)
	}

	for path := range state {
		if _, ok := seen[path]; !ok {
			s.logger.Info().Str("file", path).Msg("Indexed file no longer on disk, deleting its chunks")
			if err := s.deleteDocumentsByFilepath(ctx, path); err != nil {
				s.logger.Warn().Err(err).Str("file", path).Msg("Could not delete chunks for vanished file")
			}
		}
	}

	s.logger.Info().Str("dir", dirPath).Msg("Directory scan complete")
	return nil
}

// IndexFile extracts, chunks, embeds, and stores a single file.
func (s *FileIndexingService) IndexFile(ctx context.Context, path, hash, source string) (*IndexResult, error) {
	doc, err := ExtractFile(path)
	if err != nil {
		// Unparsable files are treated like scanned documents with no text.
		s.logger.Warn().Err(err).Str("file", path).Msg("Text extraction failed, file likely needs OCR")
		return &IndexResult{Language: "unknown", NeedsOCR: true}, nil
	}

	trimmed := strings.TrimSpace(doc.Text)
	result := &IndexResult{
		Language: detectLanguage(doc.Text),
		NeedsOCR: utf8.RuneCountInString(trimmed) < minExtractChars,
		Pages:    doc.Pages,
		Chars:    utf8.RuneCountInString(doc.Text),
	}
	if trimmed == "" {
		s.logger.Warn().Str("file", path).Msg("No text extracted, file likely needs OCR")
		return result, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	chunks, err := splitter.SplitText(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to split text from %s: %w", path, err)
	}

	for i, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d of %s: %w", i, path, err)
		}
		embedding := embeddings.NewEmbeddingFromFloat32(vector)

		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source_file", path),
			chromago.NewStringAttribute("file_hash", hash),
			chromago.NewIntAttribute("chunk_num", int64(i)),
			chromago.NewStringAttribute("language", result.Language),
			chromago.NewStringAttribute("source", source),
		)
		docID := chromago.DocumentID(fmt.Sprintf("%s-chunk%d", uuid.New().String(), i))

		err = s.collection.Add(ctx,
			chromago.WithIDs(docID),
			chromago.WithTexts(chunk),
			chromago.WithEmbeddings(embedding),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to store chunk %d of %s: %w", i, path, err)
		}
		result.ChunkIDs = append(result.ChunkIDs, string(docID))
	}
	result.NumChunks = len(result.ChunkIDs)

	s.logger.Info().Str("file", path).Int("chunks", result.NumChunks).Str("language", result.Language).Msg("Indexed file")
	return result, nil
}

// getCurrentIndexState maps each indexed file path to its stored hash.
func (s *FileIndexingService) getCurrentIndexState(ctx context.Context) (map[string]IndexState, error) {
	result, err := s.collection.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection contents: %w", err)
	}

	state := make(map[string]IndexState)
	for _, meta := range result.GetMetadatas() {
		fields := metadataToMap(meta)
		path, ok := fields["source_file"].(string)
		if !ok {
			continue
		}
		hash, _ := fields["file_hash"].(string)
		state[path] = IndexState{Hash: hash}
	}
	return state, nil
}

// deleteDocumentsByFilepath removes every chunk whose metadata references
// the given file path.
func (s *FileIndexingService) deleteDocumentsByFilepath(ctx context.Context, path string) error {
	err := s.collection.Delete(ctx,
		chromago.WithWhereDelete(chromago.EqString("source_file", path)),
	)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", path, err)
	}
	return nil
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	default:
		return false
	}
}

// calculateFileHash returns the hex sha256 of a file's contents.
func calculateFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// sha256Hex returns the hex sha256 of in-memory bytes.
func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// metadataToMap flattens chroma document metadata into a plain map. The
// metadata type exposes no direct accessor for all values, so it goes
// through JSON.
func metadataToMap(meta chromago.DocumentMetadata) map[string]interface{} {
	fields := make(map[string]interface{})
	if meta == nil {
		return fields
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fields
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fields
	}
	return fields
}
