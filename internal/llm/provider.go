// Package llm provides the pluggable text-generation backend used for
// category selection and synopsis generation. One provider is chosen from
// configuration at startup; everything downstream sees only the Provider
// interface.
package llm

import (
	"context"
	"fmt"

	"github.com/wattanit/wcm/internal/config"
)

// Provider is the capability set shared by all backends
type Provider interface {
	// Name identifies the backend in logs and errors
	Name() string
	// Generate produces text for a single prompt
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the configured backend
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return NewOpenAIClient(cfg.LLM.OpenAI.BaseURL, cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model)
	case "anthropic":
		return NewAnthropicClient(cfg.LLM.Anthropic.BaseURL, cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model)
	case "ollama":
		return NewOllamaClient(cfg.LLM.Ollama.BaseURL, cfg.LLM.Ollama.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic, ollama)", cfg.LLM.Provider)
	}
}
