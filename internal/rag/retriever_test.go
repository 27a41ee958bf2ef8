package rag

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-rag-weather/server/internal/bot/model"
	"github.com/ai-rag-weather/server/internal/vectorstore/qdrant"
)

type fakeStore struct {
	hits    []qdrant.ScoredPoint
	err     error
	gotTopK int
}

func (f *fakeStore) Search(_ context.Context, _ []float32, topK int, _ float64) ([]qdrant.ScoredPoint, error) {
	f.gotTopK = topK
	return f.hits, f.err
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

type fakeChat struct {
	reply   string
	err     error
	gotMsgs []*schema.Message
}

func (f *fakeChat) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.gotMsgs = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChat) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

func TestRetrieveKeepsRankOrder(t *testing.T) {
	store := &fakeStore{hits: []qdrant.ScoredPoint{
		{ID: 4, Score: 0.9, Payload: map[string]any{"page": float64(2), "text": "Relevant chunk 1"}},
		{ID: 1, Score: 0.6, Payload: map[string]any{"page": float64(5), "text": "Relevant chunk 2"}},
	}}
	r := NewRetriever(store, &fakeEmbedder{vec: []float32{0.1, 0.2}}, &fakeChat{}, model.RetrievalConfig{TopK: 5})

	res, err := r.Retrieve(context.Background(), "test query")
	require.NoError(t, err)
	assert.Equal(t, "test query", res.Query)
	require.Len(t, res.Contexts, 2)
	assert.Equal(t, 2, res.Contexts[0].Page)
	assert.Equal(t, "Relevant chunk 1", res.Contexts[0].Text)
	assert.Equal(t, 5, res.Contexts[1].Page)
	assert.Equal(t, 5, store.gotTopK)
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	store := &fakeStore{}
	r := NewRetriever(store, &fakeEmbedder{vec: []float32{0.1}}, &fakeChat{}, model.RetrievalConfig{})
	_, err := r.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 5, store.gotTopK)
}

func TestRetrieveEmbedFailure(t *testing.T) {
	r := NewRetriever(&fakeStore{}, &fakeEmbedder{err: errors.New("boom")}, &fakeChat{}, model.RetrievalConfig{})
	_, err := r.Retrieve(context.Background(), "q")
	assert.ErrorContains(t, err, "embed query")
}

func TestSummarizeIncludesContextsAndQuestion(t *testing.T) {
	chat := &fakeChat{reply: "Answer citing page 2."}
	r := NewRetriever(&fakeStore{}, &fakeEmbedder{}, chat, model.RetrievalConfig{})

	contexts := []model.RetrievedContext{
		{Page: 2, Text: "alpha"},
		{Page: 7, Text: "beta"},
	}
	answer, err := r.Summarize(context.Background(), "what is alpha?", contexts)
	require.NoError(t, err)
	assert.Equal(t, "Answer citing page 2.", answer)

	require.Len(t, chat.gotMsgs, 2)
	assert.Equal(t, schema.System, chat.gotMsgs[0].Role)
	user := chat.gotMsgs[1].Content
	assert.Contains(t, user, "(page 2) alpha")
	assert.Contains(t, user, "(page 7) beta")
	assert.Contains(t, user, "Question: what is alpha?")
}

func TestSummarizeModelFailure(t *testing.T) {
	r := NewRetriever(&fakeStore{}, &fakeEmbedder{}, &fakeChat{err: errors.New("rate limited")}, model.RetrievalConfig{})
	_, err := r.Summarize(context.Background(), "q", nil)
	assert.ErrorContains(t, err, "summarize contexts")
}
