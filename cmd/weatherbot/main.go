package main

import (
	"context"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ai-rag-weather/server/internal/bot/graph"
	"github.com/ai-rag-weather/server/internal/bot/model"
	"github.com/ai-rag-weather/server/internal/core"
	"github.com/ai-rag-weather/server/internal/history"
	"github.com/ai-rag-weather/server/internal/llm"
	"github.com/ai-rag-weather/server/internal/rag"
	"github.com/ai-rag-weather/server/internal/tui"
	"github.com/ai-rag-weather/server/internal/vectorstore/qdrant"
	"github.com/ai-rag-weather/server/internal/weather"
	logx "github.com/ai-rag-weather/server/pkg/logger"
	pkgredis "github.com/ai-rag-weather/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the bot, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogFile     string `envconfig:"LOG_FILE" default:"weatherbot.log"`

	// Infrastructure
	Redis  pkgredis.Config
	Qdrant qdrant.Config

	// Providers
	LLM     llm.Config
	Weather weather.Config

	// Bot configs
	Retrieval    model.RetrievalConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("Failed to open log file %s: %v", cfg.LogFile, err)
	}
	defer logFile.Close()
	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(cfg.Environment),
		Output:      logFile,
	})

	embedder, err := llm.NewEmbedder(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialise embeddings provider: %v", err)
	}
	chatModel, err := llm.NewChatModel(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialise chat model: %v", err)
	}

	store := qdrant.New(cfg.Qdrant)
	retriever := rag.NewRetriever(store, embedder, chatModel, cfg.Retrieval)
	weatherClient := weather.New(cfg.Weather)

	runner, err := graph.BuildQueryGraph(ctx, graph.Config{
		Weather:   weatherClient,
		Retrieval: retriever,
	})
	if err != nil {
		log.Fatalf("Failed to build query graph: %v", err)
	}

	repo, cleanup, err := buildHistoryRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialise chat history: %v", err)
	}
	defer cleanup()

	sessionID := cfg.Conversation.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logx.Info().Str("sessionID", sessionID).Msg("starting chat session")

	program := tea.NewProgram(tui.New(runner, repo, sessionID), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("TUI exited with error: %v", err)
	}
}

// buildHistoryRepository picks Redis-backed history when a URL is
// configured and the in-memory fallback otherwise.
func buildHistoryRepository(ctx context.Context, cfg AppConfig) (model.ChatHistoryRepository, func(), error) {
	if !cfg.Redis.Enabled() {
		logx.Info().Msg("no Redis URL configured, chat history is in-memory only")
		return history.NewMemoryChatHistoryRepository(), func() {}, nil
	}

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		return nil, nil, err
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	logx.Info().Msg("connected to Redis")
	return history.NewRedisChatHistoryRepository(rdb, ttl), func() { _ = rdb.Close() }, nil
}
