package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetries shrinks the backoff so retry tests finish quickly.
func fastRetries(d *PDFDownloader) *PDFDownloader {
	d.client.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)
	return d
}

func TestDownloadSendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "%PDF-1.4 content")
	}))
	defer server.Close()

	data, err := NewPDFDownloader().Download(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "MySansadScraper/1.0 (+contact@example.com)", gotUA)
	assert.Equal(t, []byte("%PDF-1.4 content"), data)
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, "%PDF-1.4 content")
	}))
	defer server.Close()

	data, err := fastRetries(NewPDFDownloader()).Download(context.Background(), server.URL)
	require.NoError(t, err)

	assert.EqualValues(t, 3, attempts.Load())
	assert.Equal(t, []byte("%PDF-1.4 content"), data)
}

func TestDownloadDoesNotRetryNotFound(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := fastRetries(NewPDFDownloader()).Download(context.Background(), server.URL)
	require.Error(t, err)

	assert.EqualValues(t, 1, attempts.Load())
	assert.Contains(t, err.Error(), "404")
}

func TestDownloadRejectsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	_, err := NewPDFDownloader().Download(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty body")
}

func TestDownloadGivesUpAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := fastRetries(NewPDFDownloader()).Download(context.Background(), server.URL)
	require.Error(t, err)

	assert.EqualValues(t, 1+downloadRetries, attempts.Load())
	assert.Contains(t, err.Error(), "502")
}
