// Package config loads the YAML config file and the environment
// overrides the retrieval pipeline recognizes.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds file-backed options plus environment overrides.
type Config struct {
	// Persisted artifacts.
	IndexPath string
	StorePath string
	MetaPath  string

	// Embedding.
	EmbedModel    string
	OllamaBaseURL string

	// Completion.
	Provider     string
	Model        string
	OpenAIAPIKey string

	// Retrieval.
	K            int
	SimThreshold float64

	RequestTimeout time.Duration

	// HTTP serving.
	Port   string
	APIKey string // optional bearer token; empty disables auth
}

// Load reads the config file at path and applies environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("index_path", "data/index.json")
	v.SetDefault("store_path", "data/chunk_store.json")
	v.SetDefault("meta_path", "data/chunk_meta.json")
	v.SetDefault("embed_model", "nomic-embed-text")
	v.SetDefault("provider", "ollama")
	v.SetDefault("k", 3)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Config{
		IndexPath:  v.GetString("index_path"),
		StorePath:  v.GetString("store_path"),
		MetaPath:   v.GetString("meta_path"),
		EmbedModel: v.GetString("embed_model"),
		Provider:   v.GetString("provider"),
		Model:      v.GetString("model"),
		K:          v.GetInt("k"),
	}

	if cfg.Model == "" {
		cfg.Model = envOr("GEN_MODEL", "llama3.2:3b")
	}
	cfg.OllamaBaseURL = envOr("OLLAMA_BASE_URL", "http://localhost:11434")
	cfg.K = envInt("TOP_K", cfg.K)
	cfg.SimThreshold = envFloat("SIM_THRESHOLD", 0.20)
	cfg.RequestTimeout = envDuration("REQUEST_TIMEOUT", 120*time.Second)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Port = envOr("PORT", "8090")
	cfg.APIKey = os.Getenv("BOOKRAG_API_KEY")

	if cfg.K <= 0 {
		cfg.K = 3
	}

	return cfg, nil
}

// Validate checks operator-supplied values that have no safe fallback.
// Failures here are misconfiguration, reported immediately, not mapped to
// the answer-time refusal path.
func (c Config) Validate() error {
	switch c.Provider {
	case "ollama":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when provider is openai")
		}
	default:
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	if c.IndexPath == "" {
		return fmt.Errorf("index_path is required")
	}
	if c.EmbedModel == "" {
		return fmt.Errorf("embed_model is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
