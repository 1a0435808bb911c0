// Package llm provides completion backends for the answer pipeline. Two
// providers are supported: a local Ollama instance and the OpenAI chat
// API, selected by configuration.
package llm

import (
	"context"
	"fmt"
	"strings"

	"bookrag/internal/config"
)

// Completer generates text for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// New builds the configured completion provider. An unknown provider name
// or a missing credential is operator misconfiguration and is rejected
// outright rather than deferred to request time. stats may be nil.
func New(cfg config.Config, stats *Stats) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.Model, cfg.RequestTimeout, stats), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, cfg.RequestTimeout, stats), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}
