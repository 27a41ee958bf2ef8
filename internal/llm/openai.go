package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

func newOpenAIClient(cfg Config) *openai.Client {
	if cfg.OpenAIBaseURL != "" {
		clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
		clientCfg.BaseURL = cfg.OpenAIBaseURL
		return openai.NewClientWithConfig(clientCfg)
	}
	return openai.NewClient(cfg.OpenAIAPIKey)
}

// openAIChatModel adapts the go-openai client to eino's chat model
// interface so the rest of the code is provider-agnostic.
type openAIChatModel struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func newOpenAIChatModel(cfg Config) model.BaseChatModel {
	return &openAIChatModel{
		client:      newOpenAIClient(cfg),
		model:       cfg.OpenAIChatModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (m *openAIChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(input))
	for _, in := range input {
		if in == nil {
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(in.Role),
			Content: in.Content,
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    msgs,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

func (m *openAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	// The bot consumes complete answers only; streaming degrades to a
	// single-chunk stream around Generate.
	out, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

func toOpenAIRole(role schema.RoleType) string {
	switch role {
	case schema.System:
		return openai.ChatMessageRoleSystem
	case schema.Assistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

type openAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func newOpenAIEmbedder(cfg Config) Embedder {
	return &openAIEmbedder{
		client: newOpenAIClient(cfg),
		model:  openai.EmbeddingModel(cfg.OpenAIEmbeddingsModel),
	}
}

func (o *openAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: o.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embedding data")
	}
	return resp.Data[0].Embedding, nil
}
