package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/ai-rag-weather/server/internal/core/errx"
)

// Config selects and configures the model providers, loaded from the
// environment. Chat and embeddings providers can differ.
type Config struct {
	Provider           string `envconfig:"LLM_PROVIDER" default:"openai"`
	EmbeddingsProvider string `envconfig:"EMBEDDINGS_PROVIDER" default:"openai"`

	OpenAIAPIKey          string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL         string `envconfig:"OPENAI_BASE_URL"`
	OpenAIChatModel       string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	OpenAIEmbeddingsModel string `envconfig:"OPENAI_EMBEDDINGS_MODEL" default:"text-embedding-3-small"`

	GeminiAPIKey          string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL         string `envconfig:"GEMINI_BASE_URL"`
	GeminiChatModel       string `envconfig:"GEMINI_CHAT_MODEL" default:"gemini-2.0-flash"`
	GeminiEmbeddingsModel string `envconfig:"GEMINI_EMBEDDINGS_MODEL" default:"text-embedding-004"`

	Temperature float32 `envconfig:"LLM_TEMPERATURE" default:"0.2"`
	MaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"2000"`
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewChatModel constructs the configured chat model. The graph and the
// retrieval gateway only depend on eino's model.BaseChatModel, so the
// provider can be swapped by configuration alone.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errx.NewConfig("OPENAI_API_KEY is not set")
		}
		return newOpenAIChatModel(cfg), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errx.NewConfig("GEMINI_API_KEY is not set")
		}
		return newGeminiChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// NewEmbedder constructs the configured embeddings provider.
func NewEmbedder(ctx context.Context, cfg Config) (Embedder, error) {
	switch cfg.EmbeddingsProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errx.NewConfig("OPENAI_API_KEY is not set")
		}
		return newOpenAIEmbedder(cfg), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errx.NewConfig("GEMINI_API_KEY is not set")
		}
		return newGeminiEmbedder(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", cfg.EmbeddingsProvider)
	}
}
