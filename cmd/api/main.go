package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"radreport-ai/internal/checklist"
	"radreport-ai/internal/config"
	"radreport-ai/internal/http"
	"radreport-ai/internal/indexer"
	"radreport-ai/internal/llm"
	"radreport-ai/internal/questionnaire"
	"radreport-ai/internal/report"
	"radreport-ai/internal/service"
	"radreport-ai/internal/storage"
	"radreport-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

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

	ctx := context.Background()

	var vectors vectorstore.VectorStore
	if cfg.QdrantURL != "" {
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		defer func() {
			_ = qdrantStore.Close()
		}()
		vectors = qdrantStore
		slog.Info("Using Qdrant vector store", "url", cfg.QdrantURL)
	} else {
		vectors = vectorstore.NewMemoryStore()
		slog.Info("Using in-process vector store")
	}

	var embedder indexer.Embedder
	if cfg.EmbeddingBaseURL != "" {
		client := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)

		// Fail fast on a model whose output size does not match the collection.
		probe, err := client.EmbedTexts(ctx, []string{"test"})
		if err != nil {
			log.Fatalf("Failed to validate embedding client: %v", err)
		}
		if len(probe) == 0 || len(probe[0]) != cfg.VectorSize {
			log.Fatalf("Embedding vector size mismatch: expected %d", cfg.VectorSize)
		}
		embedder = client
		slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.VectorSize)
	} else {
		embedder = indexer.NewHashEmbedder(cfg.VectorSize)
		slog.Info("Using hashing embedder", "vector_size", cfg.VectorSize)
	}

	index := indexer.NewIndex(
		storage.NewSourceRepo(db),
		storage.NewChunkRepo(db),
		vectors,
		embedder,
		indexer.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		cfg.QdrantCollection,
	)
	if err := index.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure vector collection: %v", err)
	}
	slog.Info("Vector collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)

	generation := llm.NewGuard(llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName), llm.GuardConfig{
		Name:       "generation",
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.LLMMaxRetries,
		RateLimit:  cfg.LLMRateLimit,
	})

	checklists, err := checklist.NewSynthesizer(index, generation, cfg.ChecklistCacheSize)
	if err != nil {
		log.Fatalf("Failed to create checklist synthesizer: %v", err)
	}

	records := storage.NewRecordRepo(db)
	reports := report.NewRecordStore(records)
	engine := questionnaire.NewEngine(questionnaire.NewRecordSessionStore(records), checklists)

	router := http.NewRouter(&http.Deps{
		CaseService:      service.NewCaseService(engine, report.NewSynthesizer(generation, reports), reports),
		ReferenceService: service.NewReferenceService(index, checklists),
		VectorStore:      vectors,
		Generation:       generation,
		CollectionName:   cfg.QdrantCollection,
		Ingester:         index,
		DocumentsPath:    cfg.DocumentsPath,
	})

	if cfg.DocumentsPath != "" {
		go func() {
			slog.Info("Starting background ingest of reference documents", "dir", cfg.DocumentsPath)
			res, err := index.IngestDirectory(context.Background(), cfg.DocumentsPath)
			if err != nil {
				slog.Error("Ingest completed with errors", "error", err)
				return
			}
			slog.Info("Ingest completed", "files", res.Files, "ingested", res.Ingested, "unchanged", res.Unchanged)
		}()
	}

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
