package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Generation options tuned for grounded Q&A: short answers, low
// temperature.
const (
	ollamaNumPredict  = 220
	ollamaTemperature = 0.1
)

// OllamaClient calls a local Ollama instance's generate endpoint.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	stats      *Stats
}

func NewOllamaClient(baseURL, model string, timeout time.Duration, stats *Stats) *OllamaClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		stats: stats,
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

type generateOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Complete generates an answer for the prompt, non-streaming.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() {
		if c.stats != nil {
			c.stats.Record(time.Since(start).Milliseconds())
		}
	}()

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			NumPredict:  ollamaNumPredict,
			Temperature: ollamaTemperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama generate status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse generate response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama error: %s", parsed.Error)
	}
	return strings.TrimSpace(parsed.Response), nil
}
