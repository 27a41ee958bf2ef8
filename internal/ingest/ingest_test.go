package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-rag-weather/server/internal/bot/model"
	"github.com/ai-rag-weather/server/internal/vectorstore/qdrant"
)

type fakeWriter struct {
	ensuredDim int
	recreate   bool
	points     []qdrant.Point
	upsertErr  error
}

func (f *fakeWriter) EnsureCollection(_ context.Context, dim int, recreateIfMismatch bool) error {
	f.ensuredDim = dim
	f.recreate = recreateIfMismatch
	return nil
}

func (f *fakeWriter) Upsert(_ context.Context, points []qdrant.Point) error {
	f.points = points
	return f.upsertErr
}

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("provider down")
}

func TestIngestPagesNumbersChunksAcrossDocument(t *testing.T) {
	writer := &fakeWriter{}
	embedder := &countingEmbedder{}
	// four words per chunk, no overlap: two chunks per page below
	splitter := NewSplitter(&wordTokenizer{}, model.IngestConfig{ChunkSize: 4, ChunkOverlap: 1})
	p := NewPipeline(writer, embedder, splitter)

	pages := []Page{
		{Number: 1, Text: words(7, "a")},
		{Number: 3, Text: words(7, "b")},
	}
	n, err := p.ingestPages(context.Background(), "report", pages)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, writer.points, 4)

	assert.Equal(t, 3, writer.ensuredDim)
	assert.True(t, writer.recreate)

	// chunk numbering runs across the whole document, not per page
	for i, pt := range writer.points {
		assert.Equal(t, uint64(i), pt.ID)
		assert.Equal(t, i, pt.Payload["chunk"])
		assert.Equal(t, "report", pt.Payload["doc_id"])
	}
	assert.Equal(t, 1, writer.points[0].Payload["page"])
	assert.Equal(t, 1, writer.points[1].Payload["page"])
	assert.Equal(t, 3, writer.points[2].Payload["page"])
	assert.Equal(t, 3, writer.points[3].Payload["page"])

	// probe vector is reused for the first chunk
	assert.Equal(t, len(writer.points), embedder.calls)
}

func TestIngestPagesEmptyDocument(t *testing.T) {
	p := NewPipeline(&fakeWriter{}, &countingEmbedder{}, NewSplitter(&wordTokenizer{}, model.IngestConfig{}))
	_, err := p.ingestPages(context.Background(), "empty", []Page{{Number: 1, Text: "   "}})
	assert.ErrorContains(t, err, "no chunks produced")
}

func TestIngestPagesProbeEmbeddingFailure(t *testing.T) {
	p := NewPipeline(&fakeWriter{}, failingEmbedder{}, NewSplitter(&wordTokenizer{}, model.IngestConfig{}))
	_, err := p.ingestPages(context.Background(), "doc", []Page{{Number: 1, Text: "some short page"}})
	assert.ErrorContains(t, err, "probe embedding")
}
