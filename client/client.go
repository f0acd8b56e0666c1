// Package client talks to the sansad question answering backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is where a locally running backend answers questions.
const DefaultEndpoint = "http://localhost:8000/ask"

// Config controls how a Client reaches the backend. The zero value uses
// DefaultEndpoint and a client with a generous timeout.
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
}

// Client asks questions of the backend over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

type askRequest struct {
	Question string `json:"question"`
}

// askResponse uses a pointer so a missing answer field can be told apart
// from an empty one.
type askResponse struct {
	Answer *string `json:"answer"`
}

// Ask sends the question to the backend and returns its answer. The
// question is sent exactly as given, without trimming.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	payload, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("backend returned status %d: %s", resp.StatusCode, body)
	}

	var decoded askResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode backend response: %w", err)
	}
	if decoded.Answer == nil {
		return "", fmt.Errorf("backend response is missing the answer field")
	}
	return *decoded.Answer, nil
}
