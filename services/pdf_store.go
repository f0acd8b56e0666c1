package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PDFStore owns the on-disk PDF directory and the checksum dedupe index
// that lives next to it.
type PDFStore struct {
	Dir string // absolute path to the PDF directory

	indexPath string
	mu        sync.Mutex
}

// NewPDFStore resolves the PDF directory from PDF_DIR (default data/pdfs)
// and creates it if needed.
func NewPDFStore() (*PDFStore, error) {
	dir := os.Getenv("PDF_DIR")
	if dir == "" {
		dir = filepath.Join("data", "pdfs")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for PDF_DIR: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create pdf directory %s: %w", absDir, err)
	}
	return &PDFStore{
		Dir:       absDir,
		indexPath: filepath.Join(filepath.Dir(absDir), "index.json"),
	}, nil
}

// Save writes pdf bytes under a fresh collision-free name and returns the
// file name and its absolute path.
func (ps *PDFStore) Save(data []byte) (string, string, error) {
	id := uuid.New()
	name := fmt.Sprintf("%d_%x.pdf", time.Now().Unix(), id[:4])
	path, err := ps.resolve(name)
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write pdf %s: %w", name, err)
	}
	return name, path, nil
}

// resolve joins a file name onto the store directory. Names that would
// escape the directory are rejected.
func (ps *PDFStore) resolve(name string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return "", fmt.Errorf("filename must end with .pdf")
	}
	cleanPath := filepath.Join(ps.Dir, filepath.Base(name))
	if !strings.HasPrefix(cleanPath, ps.Dir) {
		return "", fmt.Errorf("invalid filename, attempts to escape pdf directory")
	}
	return cleanPath, nil
}

// Lookup reports the stored file name for a checksum, if one was recorded.
func (ps *PDFStore) Lookup(checksum string) (string, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	index, err := ps.loadIndex()
	if err != nil {
		return "", false
	}
	name, ok := index[checksum]
	return name, ok
}

// Record persists a checksum to file name mapping in the dedupe index.
func (ps *PDFStore) Record(checksum, name string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	index, err := ps.loadIndex()
	if err != nil {
		return err
	}
	index[checksum] = name

	raw, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dedupe index: %w", err)
	}
	if err := os.WriteFile(ps.indexPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write dedupe index: %w", err)
	}
	return nil
}

func (ps *PDFStore) loadIndex() (map[string]string, error) {
	raw, err := os.ReadFile(ps.indexPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read dedupe index: %w", err)
	}
	index := make(map[string]string)
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("failed to parse dedupe index: %w", err)
	}
	return index, nil
}
