package app

import (
	"context"
	"fmt"

	"github.com/osinachi-dev/voxgate/internal/config"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/llm"
	"github.com/osinachi-dev/voxgate/pkg/llm/gemini"
	"github.com/osinachi-dev/voxgate/pkg/llm/ollama"
	"github.com/osinachi-dev/voxgate/pkg/llm/openai"
)

// NewGenerator builds the configured LLM port. The orchestrator only sees
// the llm.Generator interface, so swapping providers is a config change.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *Logger.Logger) (llm.Generator, error) {
	switch cfg.Provider {
	case "ollama":
		if len(cfg.OllamaURLs) == 0 {
			return nil, fmt.Errorf("llm provider ollama needs at least one server url")
		}
		gen := ollama.New(cfg.OllamaURLs, cfg.Model, cfg.MaxTokens, logger)
		logger.Infof("ollama generator created for %v, model %s", cfg.OllamaURLs, cfg.Model)
		return gen, nil

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("llm provider openai needs an api key")
		}
		gen := openai.New(cfg.OpenAIAPIKey, cfg.Model, cfg.MaxTokens, logger)
		logger.Infof("openai generator created for model %s", cfg.Model)
		return gen, nil

	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("llm provider gemini needs an api key")
		}
		gen, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.MaxTokens, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini generator: %w", err)
		}
		logger.Infof("gemini generator created for model %s", cfg.Model)
		return gen, nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
