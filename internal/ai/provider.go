package ai

import (
	"context"
	"fmt"

	"github.com/keshon/server-imouto/internal/config"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// NewProvider builds a provider from config. Call it once per role: the
// persona voice and the exchange judge each get their own instance, so the
// two calls never share client state.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.AIProvider {
	case "gemini", "":
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.AIModel)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.AIModel), nil
	case "pollinations":
		return NewPollinationsProvider(cfg.AIModel), nil
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s", cfg.AIProvider)
	}
}

// splitSystem separates the system directive from the conversation turns.
// Backends that take a dedicated system slot (Gemini) need them apart.
func splitSystem(messages []Message) (system string, rest []Message) {
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
