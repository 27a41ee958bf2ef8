package history

import (
	"context"
	"sync"

	"github.com/ai-rag-weather/server/internal/bot/model"
)

// MemoryChatHistoryRepository keeps transcripts in process memory. It
// is the fallback when no Redis URL is configured; history does not
// survive a restart.
type MemoryChatHistoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]model.ChatMessage
}

func NewMemoryChatHistoryRepository() *MemoryChatHistoryRepository {
	return &MemoryChatHistoryRepository{sessions: make(map[string][]model.ChatMessage)}
}

func (r *MemoryChatHistoryRepository) AddMessage(_ context.Context, sessionID string, msg model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = append(r.sessions[sessionID], msg)
	return nil
}

func (r *MemoryChatHistoryRepository) LoadHistory(_ context.Context, sessionID string) ([]model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := make([]model.ChatMessage, len(r.sessions[sessionID]))
	copy(msgs, r.sessions[sessionID])
	return msgs, nil
}

func (r *MemoryChatHistoryRepository) ClearHistory(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryChatHistoryRepository) MessageCount(_ context.Context, sessionID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[sessionID]), nil
}

var _ model.ChatHistoryRepository = (*MemoryChatHistoryRepository)(nil)
