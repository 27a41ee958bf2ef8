package model

// Intent is the classified purpose of a user query.
type Intent string

const (
	IntentWeather Intent = "weather"
	IntentDocQA   Intent = "doc_qa"
)

// QueryInput represents one query submitted to the graph.
// Intent may be pre-set by the caller (the UI's force-weather toggle) in
// which case the router passes it through unchanged.
type QueryInput struct {
	UserInput string
	Intent    Intent
}

// WeatherRecord is a normalised current-weather reading. Created once per
// successful fetch and never mutated afterwards.
type WeatherRecord struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// RetrievedContext is one ranked passage from the vector store. Insertion
// order equals rank order.
type RetrievedContext struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// RetrievalResult holds the ranked contexts for one retrieval call.
type RetrievalResult struct {
	Query    string             `json:"query"`
	Contexts []RetrievedContext `json:"contexts"`
}

// CitySuggestion is a geocoding match offered when a weather lookup fails.
type CitySuggestion struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// QueryState is threaded through the routing graph. Each node works on its
// own copy (Clone) and returns the updated copy; two nodes never mutate the
// same instance. Exactly one of Weather/Retrieval is populated per run, and
// Answer is non-empty by the time the terminal state is reached.
type QueryState struct {
	UserInput string
	Intent    Intent
	Weather   *WeatherRecord
	Retrieval *RetrievalResult
	Answer    string
}

// Clone returns a copy of the state for the next node to update. The record
// fields are immutable once set, so a shallow copy is sufficient.
func (s *QueryState) Clone() *QueryState {
	c := *s
	return &c
}
