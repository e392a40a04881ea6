package providers

import (
	"github.com/thomas-vilte/aicommits/internal/ai"
	"github.com/thomas-vilte/aicommits/internal/ai/gemini"
	"github.com/thomas-vilte/aicommits/internal/ai/openai"
	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
)

// NewCompleter creates the completion backend selected by cfg.Provider
func NewCompleter(cfg config.GenerationConfig) (ai.Completer, error) {
	switch cfg.Provider {
	case config.AIOpenAI, "":
		return openai.NewClient(cfg), nil
	case config.AIGemini:
		return gemini.NewClient(cfg), nil
	default:
		return nil, domainErrors.ErrProviderNotSupported.WithContext("provider", cfg.Provider)
	}
}
