package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	downloadUserAgent = "MySansadScraper/1.0 (+contact@example.com)"
	downloadTimeout   = 30 * time.Second
	downloadRetries   = 3
)

// PDFDownloader fetches remote PDFs, retrying 429 and 5xx responses with
// backoff.
type PDFDownloader struct {
	client *resty.Client
	logger zerolog.Logger
}

func NewPDFDownloader() *PDFDownloader {
	client := resty.New().
		SetTimeout(downloadTimeout).
		SetHeader("User-Agent", downloadUserAgent).
		SetRetryCount(downloadRetries).
		SetRetryWaitTime(800 * time.Millisecond).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	return &PDFDownloader{
		client: client,
		logger: log.With().Str("component", "downloader").Logger(),
	}
}

// Download fetches the document at url and returns its raw bytes.
func (d *PDFDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	d.logger.Info().Str("url", url).Msg("Downloading PDF")

	resp, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download of %s returned status %d", url, resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("download of %s returned an empty body", url)
	}
	return body, nil
}
