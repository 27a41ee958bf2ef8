package rag

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/ai-rag-weather/server/internal/bot/model"
	"github.com/ai-rag-weather/server/internal/llm"
	"github.com/ai-rag-weather/server/internal/vectorstore/qdrant"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

// VectorSearcher is the slice of the vector store the retriever needs.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, topK int, scoreThreshold float64) ([]qdrant.ScoredPoint, error)
}

// Retriever implements the retrieval gateway: embed the query, search the
// vector store, and summarize the hits with the chat model.
type Retriever struct {
	store          VectorSearcher
	embedder       llm.Embedder
	chat           einomodel.BaseChatModel
	topK           int
	scoreThreshold float64
}

func NewRetriever(store VectorSearcher, embedder llm.Embedder, chat einomodel.BaseChatModel, cfg model.RetrievalConfig) *Retriever {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		store:          store,
		embedder:       embedder,
		chat:           chat,
		topK:           topK,
		scoreThreshold: cfg.ScoreThreshold,
	}
}

// Retrieve returns the ranked contexts for a query. Rank order is the
// store's order; contexts keep it as insertion order.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*model.RetrievalResult, error) {
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, vec, r.topK, r.scoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	contexts := make([]model.RetrievedContext, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, model.RetrievedContext{
			Page: payloadPage(hit.Payload),
			Text: payloadText(hit.Payload),
		})
	}

	logx.Debug().Int("hits", len(contexts)).Str("query", query).Msg("retrieval complete")
	return &model.RetrievalResult{Query: query, Contexts: contexts}, nil
}

// Summarize asks the chat model to answer the question from the retrieved
// contexts, citing page numbers.
func (r *Retriever) Summarize(ctx context.Context, query string, contexts []model.RetrievedContext) (string, error) {
	msgs, err := renderDocQA(ctx, contextBlock(contexts), query)
	if err != nil {
		return "", err
	}

	out, err := r.chat.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("summarize contexts: %w", err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("model returned an empty answer")
	}
	return out.Content, nil
}

// contextBlock renders contexts as numbered page-tagged chunks for the
// prompt.
func contextBlock(contexts []model.RetrievedContext) string {
	if len(contexts) == 0 {
		return "(no matching document passages found)"
	}
	var b strings.Builder
	for i, c := range contexts {
		fmt.Fprintf(&b, "[%d] (page %d) %s\n", i+1, c.Page, c.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func payloadPage(payload map[string]any) int {
	switch v := payload["page"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return -1
	}
}

func payloadText(payload map[string]any) string {
	if v, ok := payload["text"].(string); ok {
		return v
	}
	return ""
}

var _ model.RetrievalGateway = (*Retriever)(nil)
