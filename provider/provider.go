package provider

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/regfaq/config"
)

// ErrService indicates the completion service returned a non-success
// response or could not be reached within the deadline. Callers match
// it with errors.Is; the taxonomy above it (fatal for answers,
// recoverable for suggestions) is decided by the caller.
var ErrService = errors.New("completion service error")

// Provider is the interface every completion backend must satisfy.
// It performs no prompt construction and no response interpretation;
// both belong to the agents calling it.
type Provider interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	// CreateEmbedding returns one vector per input text.
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// New creates a completion provider from configuration.
func New(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set")
		}
		return newOpenAIClient(cfg), nil
	default:
		return nil, errors.New("unsupported LLM provider: " + cfg.Provider)
	}
}
