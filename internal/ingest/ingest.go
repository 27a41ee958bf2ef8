package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ai-rag-weather/server/internal/llm"
	"github.com/ai-rag-weather/server/internal/vectorstore/qdrant"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

// VectorWriter is the slice of the vector store the pipeline needs.
type VectorWriter interface {
	EnsureCollection(ctx context.Context, dim int, recreateIfMismatch bool) error
	Upsert(ctx context.Context, points []qdrant.Point) error
}

// Pipeline turns a PDF into embedded chunks in the vector store.
type Pipeline struct {
	store    VectorWriter
	embedder llm.Embedder
	splitter *Splitter
}

func NewPipeline(store VectorWriter, embedder llm.Embedder, splitter *Splitter) *Pipeline {
	return &Pipeline{store: store, embedder: embedder, splitter: splitter}
}

// Run ingests one PDF end to end and returns the number of chunks
// written. The collection is sized from a probe embedding and recreated
// when its dimension no longer matches the embedding model.
func (p *Pipeline) Run(ctx context.Context, pdfPath string) (int, error) {
	docID := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))

	pages, err := ReadPages(pdfPath)
	if err != nil {
		return 0, err
	}
	logx.Info().Str("doc_id", docID).Int("pages", len(pages)).Msg("extracted pdf pages")

	return p.ingestPages(ctx, docID, pages)
}

// ingestPages chunks, embeds and upserts the pages of one document.
// Chunk numbering is document-global, matching the point IDs.
func (p *Pipeline) ingestPages(ctx context.Context, docID string, pages []Page) (int, error) {
	type chunkRef struct {
		page int
		text string
	}
	var chunks []chunkRef
	for _, page := range pages {
		for _, text := range p.splitter.Split(page.Text) {
			chunks = append(chunks, chunkRef{page: page.Number, text: text})
		}
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks produced from %s", docID)
	}

	probe, err := p.embedder.EmbedQuery(ctx, chunks[0].text)
	if err != nil {
		return 0, fmt.Errorf("probe embedding: %w", err)
	}
	if err := p.store.EnsureCollection(ctx, len(probe), true); err != nil {
		return 0, err
	}

	points := make([]qdrant.Point, 0, len(chunks))
	for i, c := range chunks {
		var vector []float32
		if i == 0 {
			vector = probe
		} else {
			vector, err = p.embedder.EmbedQuery(ctx, c.text)
			if err != nil {
				return 0, fmt.Errorf("embed chunk %d (page %d): %w", i, c.page, err)
			}
		}
		points = append(points, qdrant.Point{
			ID:     uint64(i),
			Vector: vector,
			Payload: map[string]any{
				"doc_id": docID,
				"page":   c.page,
				"chunk":  i,
				"text":   c.text,
			},
		})
	}

	if err := p.store.Upsert(ctx, points); err != nil {
		return 0, err
	}

	logx.Info().Str("doc_id", docID).Int("chunks", len(points)).Msg("ingestion complete")
	return len(points), nil
}
