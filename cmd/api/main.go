package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"

	"property-agent/internal/calendly"
	"property-agent/internal/chunker"
	"property-agent/internal/config"
	"property-agent/internal/handlers"
	"property-agent/internal/http"
	"property-agent/internal/llm"
	"property-agent/internal/retrieval"
	"property-agent/internal/service"
	"property-agent/internal/storage"
	"property-agent/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	offerRepo := storage.NewOfferRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Create retrieval engine
	engine := retrieval.NewEngine(embedder, vectorStore, retrieval.Config{
		Chunking: chunker.Config{
			ChunkSize: cfg.ChunkSize,
			Overlap:   cfg.ChunkOverlap,
		},
	})
	slog.Info("Retrieval engine initialized", "chunk_size", cfg.ChunkSize, "chunk_overlap", cfg.ChunkOverlap)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	answerService := service.NewAnswerService(engine, llmClient)

	// Tour scheduling is optional
	var tours handlers.TourScheduler
	if cfg.ToursEnabled() {
		tours = calendly.NewClient(cfg.CalendlyBaseURL, cfg.CalendlyAPIKey, cfg.CalendlyEventType)
		slog.Info("Tour scheduling enabled")
	} else {
		slog.Info("Tour scheduling disabled, CALENDLY_API_KEY not set")
	}

	deps := &http.Deps{
		Engine:        engine,
		AnswerService: answerService,
		OfferStore:    offerRepo,
		Tours:         tours,
		HealthChecker: vectorStore,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
