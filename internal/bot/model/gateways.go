package model

import "context"

// WeatherGateway wraps the weather/geocoding API.
//
// Fetch returns no record (nil) for anything that is not a clean reading:
// exhausted transient retries as well as non-retryable HTTP statuses.
// SearchCities returns an empty slice on failure rather than an error.
type WeatherGateway interface {
	Fetch(ctx context.Context, city string) (*WeatherRecord, error)
	SearchCities(ctx context.Context, query string, limit int) []CitySuggestion
}

// RetrievalGateway wraps the embed-search-summarize pipeline.
type RetrievalGateway interface {
	Retrieve(ctx context.Context, query string) (*RetrievalResult, error)
	Summarize(ctx context.Context, query string, contexts []RetrievedContext) (string, error)
}

// ChatMessage is one persisted transcript entry. Evidence fields are set on
// assistant messages only, so the UI can re-render them after a reload.
type ChatMessage struct {
	Role     string             `json:"role"`
	Content  string             `json:"content"`
	Weather  *WeatherRecord     `json:"weather,omitempty"`
	Contexts []RetrievedContext `json:"contexts,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatHistoryRepository persists the chat transcript for a session.
type ChatHistoryRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg ChatMessage) error
	LoadHistory(ctx context.Context, sessionID string) ([]ChatMessage, error)
	ClearHistory(ctx context.Context, sessionID string) error
	MessageCount(ctx context.Context, sessionID string) (int, error)
}
