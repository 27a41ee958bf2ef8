package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ai-rag-weather/server/internal/bot/model"
	"github.com/ai-rag-weather/server/internal/core/errx"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

// RedisChatHistoryRepository stores each session's transcript as a
// Redis list of JSON-encoded messages.
type RedisChatHistoryRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisChatHistoryRepository(rdb redis.Cmdable, ttl time.Duration) *RedisChatHistoryRepository {
	return &RedisChatHistoryRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisChatHistoryRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("chat:%s:messages", sessionID)
}

func (r *RedisChatHistoryRepository) AddMessage(ctx context.Context, sessionID string, msg model.ChatMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("failed to marshal chat message")
		return fmt.Errorf("marshal chat message: %w", err)
	}
	key := r.sessionKey(sessionID)

	// append message
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push chat message to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on session key")
		}
	}
	return nil
}

func (r *RedisChatHistoryRepository) LoadHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	key := r.sessionKey(sessionID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.ChatMessage{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load chat history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]model.ChatMessage, 0, len(rows))
	for i, s := range rows {
		var m model.ChatMessage
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("sessionID", sessionID).Int("index", i).Msg("failed to unmarshal chat message")
			return nil, fmt.Errorf("unmarshal chat message at index %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *RedisChatHistoryRepository) ClearHistory(ctx context.Context, sessionID string) error {
	key := r.sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete chat history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisChatHistoryRepository) MessageCount(ctx context.Context, sessionID string) (int, error) {
	key := r.sessionKey(sessionID)
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get message count from redis")
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ChatHistoryRepository = (*RedisChatHistoryRepository)(nil)
