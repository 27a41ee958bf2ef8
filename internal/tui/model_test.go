package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ai-rag-weather/server/internal/bot/model"
)

func TestRenderEvidenceWeatherCard(t *testing.T) {
	ev := renderEvidence(model.ChatMessage{
		Role:    model.RoleAssistant,
		Content: "answer",
		Weather: &model.WeatherRecord{
			City:        "Hyderabad",
			Country:     "IN",
			Description: "overcast clouds",
			Temp:        28.0,
			FeelsLike:   30.41,
			Humidity:    68,
			WindSpeed:   3.58,
		},
	})
	assert.Contains(t, ev, "Weather — Hyderabad, IN")
	assert.Contains(t, ev, "overcast clouds")
	assert.Contains(t, ev, "humidity 68%")
}

func TestRenderEvidenceContexts(t *testing.T) {
	ev := renderEvidence(model.ChatMessage{
		Role:    model.RoleAssistant,
		Content: "answer",
		Contexts: []model.RetrievedContext{
			{Page: 2, Text: "first chunk"},
			{Page: 7, Text: "second chunk"},
		},
	})
	lines := strings.Split(ev, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "Ctx 1 — Page 2: first chunk", lines[0])
	assert.Equal(t, "Ctx 2 — Page 7: second chunk", lines[1])
}

func TestRenderEvidenceNoneForPlainAnswer(t *testing.T) {
	assert.Empty(t, renderEvidence(model.ChatMessage{Role: model.RoleAssistant, Content: "plain"}))
}

func TestSnippetTruncatesLongText(t *testing.T) {
	long := strings.Repeat("word ", 100)
	s := snippet(long)
	assert.True(t, strings.HasSuffix(s, "…"))
	assert.LessOrEqual(t, len([]rune(s)), contextSnippetLen+1)

	assert.Equal(t, "short text", snippet("short   text"))
}
