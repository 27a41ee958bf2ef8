package ingest

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ai-rag-weather/server/internal/bot/model"
)

const defaultEncoding = "cl100k_base"

// Tokenizer encodes text into token IDs and back. Chunk boundaries are
// measured in tokens, not characters, so chunks line up with what the
// embedding model actually sees.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer returns a cl100k_base tokenizer, the encoding
// shared by the GPT chat and text-embedding model families.
func NewTiktokenTokenizer() (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding %s: %w", defaultEncoding, err)
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Splitter cuts text into overlapping token windows.
type Splitter struct {
	tokenizer Tokenizer
	chunkSize int
	overlap   int
}

func NewSplitter(tokenizer Tokenizer, cfg model.IngestConfig) *Splitter {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 512
	}
	overlap := cfg.ChunkOverlap
	if overlap <= 0 || overlap >= chunkSize {
		overlap = chunkSize / 8
	}
	return &Splitter{tokenizer: tokenizer, chunkSize: chunkSize, overlap: overlap}
}

// Split returns the chunks of text in document order. Consecutive
// chunks share the configured token overlap so sentences cut at a
// boundary stay retrievable from both sides.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	tokens := s.tokenizer.Encode(text)
	if len(tokens) <= s.chunkSize {
		return []string{text}
	}

	step := s.chunkSize - s.overlap
	var chunks []string
	for start := 0; start < len(tokens); start += step {
		end := start + s.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := strings.TrimSpace(s.tokenizer.Decode(tokens[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
