package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

func init() {
	// Load .env before any service reads its keys.
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, relying on environment variables")
	}
	if err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY")); err != nil {
		log.Error().Err(err).Msg("Failed to set UniPDF license key, PDF extraction will fail")
	}
}

// ExtractedDoc is the text content pulled out of a source file.
type ExtractedDoc struct {
	Text  string
	Pages int // zero for non-PDF sources
}

// ExtractFile reads a file and returns its text content. PDF, plain text
// and markdown sources are supported.
func ExtractFile(path string) (*ExtractedDoc, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return &ExtractedDoc{Text: string(content)}, nil
	case ".pdf":
		return extractPDF(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// extractPDF uses UniPDF to pull the text off every page.
func extractPDF(path string) (*ExtractedDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, err
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return &ExtractedDoc{Text: strings.TrimSpace(sb.String()), Pages: numPages}, nil
}
