package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	PapersumAPIKey string

	// GROBID structure extraction
	GrobidURL     string
	GrobidTimeout time.Duration

	// OpenAI-compatible generation
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	Temperature   float64
	LLMTimeout    time.Duration

	// Embeddings
	EmbeddingModel      string
	EmbeddingDimensions int
	EmbedTimeout        time.Duration

	// Worker pool
	WorkerCount            int
	MaxQueueSize           int
	MaxConcurrentSummarize int

	// Upload limits
	MaxUploadBytes  int64
	SummaryMaxChars int

	// Highlighting
	HighlightsEnabled bool
	TopKHighlights    int

	// QA retrieval
	ChunkSize    int
	ChunkOverlap int
	TopKContext  int
	MaxQATurns   int

	// State TTLs
	JobTTL     time.Duration
	PaperTTL   time.Duration
	SessionTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		PapersumAPIKey: os.Getenv("PAPERSUM_API_KEY"),

		GrobidURL:     envOr("GROBID_URL", "http://localhost:8070/api/processFulltextDocument"),
		GrobidTimeout: envDuration("GROBID_TIMEOUT", 2*time.Minute),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:         envOr("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature:   envFloat("MODEL_TEMPERATURE", 0.05),
		LLMTimeout:    envDuration("LLM_TIMEOUT", 2*time.Minute),

		EmbeddingModel:      envOr("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions: envInt("EMBEDDING_DIMENSIONS", 0),
		EmbedTimeout:        envDuration("EMBED_TIMEOUT", 1*time.Minute),

		WorkerCount:            envInt("WORKER_COUNT", 2),
		MaxQueueSize:           envInt("MAX_QUEUE_SIZE", 32),
		MaxConcurrentSummarize: envInt("MAX_CONCURRENT_SUMMARIZE", 5),

		MaxUploadBytes:  envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		SummaryMaxChars: envInt("SUMMARY_MAX_CHARS", 400000),

		HighlightsEnabled: envBool("HIGHLIGHTS_ENABLED", true),
		TopKHighlights:    envInt("TOP_K_HIGHLIGHTS", 1),

		ChunkSize:    envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 100),
		TopKContext:  envInt("TOP_K_CONTEXT", 5),
		MaxQATurns:   envInt("MAX_QA_TURNS", 10),

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		PaperTTL:   envDuration("PAPER_TTL", 24*time.Hour),
		SessionTTL: envDuration("SESSION_TTL", 2*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 32
	}
	if cfg.MaxConcurrentSummarize <= 0 {
		cfg.MaxConcurrentSummarize = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.SummaryMaxChars <= 0 {
		cfg.SummaryMaxChars = 400000
	}
	if cfg.TopKHighlights <= 0 {
		cfg.TopKHighlights = 1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 100
	}
	if cfg.TopKContext <= 0 {
		cfg.TopKContext = 5
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.PaperTTL <= 0 {
		cfg.PaperTTL = 24 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PapersumAPIKey == "" {
		return fmt.Errorf("PAPERSUM_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
