package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ai-rag-weather/server/internal/bot/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  model.Intent
	}{
		{"What is the weather in Mumbai?", model.IntentWeather},
		{"What is the current wheather in Hyderabad today", model.IntentWeather},
		{"Tell me about temperature forecast for Delhi", model.IntentWeather},
		{"Humidity levels?", model.IntentWeather},
		{"Will it rain tomorrow", model.IntentWeather},
		{"What does the PDF say about LangGraph?", model.IntentDocQA},
		{"Explain RAG from the document", model.IntentDocQA},
		{"Random query without keywords", model.IntentDocQA},
		{"Summarize the introduction of the document", model.IntentDocQA},
		{"", model.IntentDocQA},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassifyPhraseFallback(t *testing.T) {
	// No token fuzzy-matches a hint close enough, but the phrasing does.
	assert.Equal(t, model.IntentWeather, Classify("Whats the weather?"))
	assert.Equal(t, model.IntentWeather, Classify("How is the temperature"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("weather", "weather"))
	assert.InDelta(t, 0.875, similarity("wheather", "weather"), 1e-9)
	assert.Greater(t, fuzzyThreshold, similarity("whether", "wind"))
}
