package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Provider serves both chat completions and embeddings
type Provider interface {
	ChatModel
	Embedder
}

// NewProvider builds the provider named by cfg.Provider. The returned
// function releases provider resources.
func NewProvider(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (Provider, func() error, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAIClient(cfg, logger), func() error { return nil }, nil
	case "gemini":
		g, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
