package model

// ================ Config ================

// RetrievalConfig tunes the similarity search.
type RetrievalConfig struct {
	TopK           int     `envconfig:"RETRIEVAL_TOP_K" default:"5"`
	ScoreThreshold float64 `envconfig:"RETRIEVAL_SCORE_THRESHOLD" default:"0"`
}

// IngestConfig tunes PDF chunking. Sizes are in tokens.
type IngestConfig struct {
	ChunkSize    int `envconfig:"INGEST_CHUNK_SIZE" default:"512"`
	ChunkOverlap int `envconfig:"INGEST_CHUNK_OVERLAP" default:"64"`
}

// ConversationConfig controls chat transcript persistence.
type ConversationConfig struct {
	TTL       string `envconfig:"CONVERSATION_TTL" default:"24h"`
	SessionID string `envconfig:"CONVERSATION_SESSION_ID"`
}
