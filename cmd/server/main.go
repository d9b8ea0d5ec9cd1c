package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/papersum/papersum/internal/api"
	"github.com/papersum/papersum/internal/chunker"
	"github.com/papersum/papersum/internal/config"
	"github.com/papersum/papersum/internal/embed"
	"github.com/papersum/papersum/internal/grobid"
	"github.com/papersum/papersum/internal/highlight"
	"github.com/papersum/papersum/internal/llm"
	"github.com/papersum/papersum/internal/metrics"
	"github.com/papersum/papersum/internal/pipeline"
	"github.com/papersum/papersum/internal/qa"
	"github.com/papersum/papersum/internal/summarize"
)

func main() {
	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	metrics.Register(prometheus.DefaultRegisterer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.Model,
		Temperature: float32(cfg.Temperature),
		Timeout:     cfg.LLMTimeout,
		Logger:      log,
	})
	embedder := embed.NewOpenAIEmbedder(embed.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
		Timeout:    cfg.EmbedTimeout,
		Logger:     log,
	})
	structurer := grobid.NewClient(cfg.GrobidURL, cfg.GrobidTimeout, log)

	// Initialize pipeline.
	summarizer := summarize.New(llmClient, cfg.MaxConcurrentSummarize, log)
	linker := highlight.New(embedder, cfg.TopKHighlights, log)
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, structurer, summarizer, linker, cfg.HighlightsEnabled, log)
	orch.Start(ctx)

	// Initialize QA.
	qaSvc := qa.NewService(qa.ServiceConfig{
		Generator: llmClient,
		Embedder:  embedder,
		ChunkConfig: chunker.Config{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
			MinChunk:     20,
		},
		TopK:       cfg.TopKContext,
		PaperTTL:   cfg.PaperTTL,
		SessionTTL: cfg.SessionTTL,
		MaxTurns:   cfg.MaxQATurns,
		Logger:     log,
	})
	qaStop := make(chan struct{})
	qaSvc.Papers().StartCleanup(15*time.Minute, qaStop)
	qaSvc.Sessions().StartCleanup(15*time.Minute, qaStop)

	// Initialize HTTP server.
	srv := api.NewServer(orch, llmClient, qaSvc, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()
		close(qaStop)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting papersum", "port", cfg.Port, "model", cfg.Model, "grobid", cfg.GrobidURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
