package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Vijaykv5/Intereractive-GD/internal/config"
	"github.com/Vijaykv5/Intereractive-GD/internal/llm"
)

// NewLLMClient returns the completion client shared by both participants and
// the evaluator, wrapped with upstream metrics.
func NewLLMClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (llm.Client, error) {
	var client llm.Client
	switch cfg.LLMProvider {
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			log.Warn().Msg("GD_OPENROUTER_API_KEY is empty; LLM calls will be rejected upstream")
		}
		client = llm.NewOpenRouter(llm.OpenRouterConfig{
			BaseURL: cfg.OpenRouterURL,
			APIKey:  cfg.OpenRouterAPIKey,
			Referer: cfg.OpenRouterReferer,
			Title:   cfg.OpenRouterTitle,
			Timeout: cfg.LLMTimeout,
		})
	case "gemini":
		g, err := llm.NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		client = g
	case "ollama":
		client = llm.NewOllama(cfg.OllamaURL, cfg.LLMTimeout)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER: %s", cfg.LLMProvider)
	}
	log.Debug().Str("provider", client.Name()).Msg("llm client ready")
	return llm.Instrument(client), nil
}
