package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ai-rag-weather/server/internal/bot/model"
	"github.com/ai-rag-weather/server/internal/core"
	"github.com/ai-rag-weather/server/internal/ingest"
	"github.com/ai-rag-weather/server/internal/llm"
	"github.com/ai-rag-weather/server/internal/vectorstore/qdrant"
	logx "github.com/ai-rag-weather/server/pkg/logger"
)

// AppConfig defines the parameters the ingestion tool reads from the
// environment.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	Qdrant qdrant.Config
	LLM    llm.Config
	Ingest model.IngestConfig
}

func main() {
	pdfPath := flag.String("pdf", "", "path to the PDF file to ingest")
	flag.Parse()
	if *pdfPath == "" {
		log.Fatal("usage: ingest --pdf <file.pdf>")
	}

	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	embedder, err := llm.NewEmbedder(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialise embeddings provider: %v", err)
	}

	tokenizer, err := ingest.NewTiktokenTokenizer()
	if err != nil {
		log.Fatalf("Failed to initialise tokenizer: %v", err)
	}

	pipeline := ingest.NewPipeline(
		qdrant.New(cfg.Qdrant),
		embedder,
		ingest.NewSplitter(tokenizer, cfg.Ingest),
	)

	chunks, err := pipeline.Run(ctx, *pdfPath)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
	log.Printf("Ingested %s: %d chunks written to collection %q", *pdfPath, chunks, cfg.Qdrant.Collection)
}
