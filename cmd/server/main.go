// Command server runs the document question answering service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sabiqmohd/agentic-retrieval/internal/agents"
	"github.com/sabiqmohd/agentic-retrieval/internal/config"
	"github.com/sabiqmohd/agentic-retrieval/internal/handlers"
	"github.com/sabiqmohd/agentic-retrieval/internal/ingest"
	"github.com/sabiqmohd/agentic-retrieval/internal/llm"
	"github.com/sabiqmohd/agentic-retrieval/internal/observability/metrics"
	"github.com/sabiqmohd/agentic-retrieval/internal/rag"
	"github.com/sabiqmohd/agentic-retrieval/internal/vectordb/qdrant"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	gin.SetMode(cfg.Server.Mode)

	// The index client is constructed once and shared; construction failure
	// refuses startup instead of surfacing on the first query.
	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host:       cfg.Qdrant.Host,
		HTTPPort:   cfg.Qdrant.Port,
		APIKey:     cfg.Qdrant.APIKey,
		UseTLS:     cfg.Qdrant.UseTLS,
		Timeout:    cfg.Qdrant.Timeout,
		Collection: cfg.Qdrant.Collection,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Invalid Qdrant configuration")
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.Qdrant.Timeout)
	if err := qdrantClient.Connect(connectCtx); err != nil {
		logger.WithError(err).Warn("Qdrant is not reachable at startup, continuing degraded")
	}
	cancel()

	openaiClient, err := llm.NewOpenAIClient(&llm.OpenAIConfig{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.Model,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Invalid OpenAI configuration")
	}

	reranker := rag.NewCohereReranker(cfg.Cohere.APIKey, cfg.Cohere.Model, logger)

	collector := metrics.NewCollector()

	retriever := rag.NewHybridRetriever(qdrantClient, openaiClient, reranker, &rag.RetrieverConfig{
		Collection:     cfg.Qdrant.Collection,
		CandidateLimit: cfg.Pipeline.CandidateLimit,
		MaxSnippetLen:  cfg.Pipeline.MaxSnippetLen,
	}, collector, logger)

	pipeline := agents.NewPipeline(
		agents.NewClassifier(openaiClient, collector, logger),
		retriever,
		agents.NewSynthesizer(openaiClient, collector, logger),
		agents.NewSafetyChecker(openaiClient, collector, logger),
		&agents.PipelineConfig{
			TopK:        cfg.Pipeline.TopK,
			EntityTopK:  cfg.Pipeline.EntityTopK,
			MaxEntities: cfg.Pipeline.MaxEntities,
		},
		collector,
		logger,
	)

	indexer := ingest.NewIndexer(qdrantClient, openaiClient,
		ingest.NewChunker(&ingest.ChunkerConfig{
			ChunkSize:    cfg.Ingest.ChunkSize,
			ChunkOverlap: cfg.Ingest.ChunkOverlap,
		}),
		cfg.Qdrant.Collection, logger)

	router := handlers.NewRouter(
		handlers.NewQueryHandler(pipeline, cfg.Pipeline.SafetyEnabled, logger),
		handlers.NewIngestHandler(indexer, logger),
		handlers.NewHealthHandler(qdrantClient),
		collector,
		logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	_ = qdrantClient.Close()
}
