// Package embed turns text into unit-normalized embedding vectors via an
// Ollama-compatible embeddings endpoint. The same client must be used for
// index build and query time: mixing embedding models silently degrades
// retrieval quality.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// Client requests embeddings from an Ollama-compatible endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the embedding model name this client was built with.
func (c *Client) Model() string {
	return c.model
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the unit-normalized embedding vector for text, retrying
// transient failures with backoff.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var vec []float64
	var err error
	for attempt := 0; ; attempt++ {
		vec, err = c.embedOnce(ctx, text)
		if err == nil {
			break
		}
		if attempt >= MaxRetries || !IsRetryable(err) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(Backoff(attempt)):
		}
	}
	return Normalize(vec), nil
}

func (c *Client) embedOnce(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding request status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response returned empty vector")
	}
	return parsed.Embedding, nil
}

// normEpsilon guards division when a vector has zero norm.
const normEpsilon = 1e-10

// Normalize scales v to unit L2 norm in place and returns it.
func Normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum) + normEpsilon
	for i := range v {
		v[i] /= norm
	}
	return v
}
