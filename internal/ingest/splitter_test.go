package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-rag-weather/server/internal/bot/model"
)

// wordTokenizer treats each whitespace-separated word as one token so
// chunk math can be asserted without a real BPE vocabulary.
type wordTokenizer struct {
	words []string
}

func (w *wordTokenizer) Encode(text string) []int {
	w.words = strings.Fields(text)
	ids := make([]int, len(w.words))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (w *wordTokenizer) Decode(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, id := range tokens {
		parts[i] = w.words[id]
	}
	return strings.Join(parts, " ")
}

func words(n int, prefix string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = prefix + string(rune('a'+i%26))
	}
	return strings.Join(parts, " ")
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(&wordTokenizer{}, model.IngestConfig{ChunkSize: 10, ChunkOverlap: 2})
	chunks := s.Split("just a few words")
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a few words", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(&wordTokenizer{}, model.IngestConfig{ChunkSize: 10, ChunkOverlap: 2})
	assert.Nil(t, s.Split("   "))
}

func TestSplitOverlappingWindows(t *testing.T) {
	s := NewSplitter(&wordTokenizer{}, model.IngestConfig{ChunkSize: 10, ChunkOverlap: 4})
	text := words(25, "w")

	chunks := s.Split(text)
	// step of 6 over 25 tokens: windows at 0, 6, 12, and 18 (final
	// window absorbs the 25-token tail).
	require.Len(t, chunks, 4)

	for i := 0; i < len(chunks)-1; i++ {
		tail := strings.Fields(chunks[i])
		head := strings.Fields(chunks[i+1])
		if len(tail) == 10 {
			assert.Equal(t, tail[6:], head[:4], "chunks %d and %d should overlap", i, i+1)
		}
	}
}

func TestSplitterDefaults(t *testing.T) {
	s := NewSplitter(&wordTokenizer{}, model.IngestConfig{})
	assert.Equal(t, 512, s.chunkSize)
	assert.Equal(t, 64, s.overlap)
}

func TestSplitterRejectsOverlapGTEChunkSize(t *testing.T) {
	s := NewSplitter(&wordTokenizer{}, model.IngestConfig{ChunkSize: 8, ChunkOverlap: 8})
	assert.Equal(t, 1, s.overlap)
}
