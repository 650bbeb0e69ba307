package config

import (
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EmbeddingBackendHash   = "hash"
	EmbeddingBackendOpenAI = "openai"
	EmbeddingBackendLocal  = "local"

	GenerationBackendOpenAI = "openai"
	GenerationBackendLocal  = "local"
	GenerationBackendNone   = "none"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`

	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	EmbeddingBackend   string `envconfig:"EMBEDDING_BACKEND" default:"hash"`
	EmbeddingModel     string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimension int    `envconfig:"EMBEDDING_DIMENSION" default:"384"`
	EmbeddingHost      string `envconfig:"EMBEDDING_HOST"`

	GenerationBackend     string        `envconfig:"GENERATION_BACKEND" default:"none"`
	GenerationModel       string        `envconfig:"GENERATION_MODEL" default:"gpt-4"`
	GenerationHost        string        `envconfig:"GENERATION_HOST"`
	GenerationTimeout     time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`
	GenerationTemperature float32       `envconfig:"GENERATION_TEMPERATURE" default:"0.3"`
	GenerationMaxTokens   int           `envconfig:"GENERATION_MAX_TOKENS" default:"2000"`
	FallbackContent       bool          `envconfig:"FALLBACK_CONTENT" default:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	SearchThreshold         float64 `envconfig:"SEARCH_THRESHOLD" default:"0.3"`
	PriorityThreshold       float64 `envconfig:"PRIORITY_THRESHOLD" default:"0.2"`
	HybridSemanticThreshold float64 `envconfig:"HYBRID_SEMANTIC_THRESHOLD" default:"0.2"`
	HybridSemanticWeight    float64 `envconfig:"HYBRID_SEMANTIC_WEIGHT" default:"0.7"`
	HybridPriorityWeight    float64 `envconfig:"HYBRID_PRIORITY_WEIGHT" default:"0.3"`
	DefaultLimit            int     `envconfig:"DEFAULT_LIMIT" default:"5"`
	MaxLimit                int     `envconfig:"MAX_LIMIT" default:"50"`

	BackfillInterval  time.Duration `envconfig:"BACKFILL_INTERVAL" default:"0s"`
	BackfillBatchSize int           `envconfig:"BACKFILL_BATCH_SIZE" default:"32"`
	BackfillWorkers   int           `envconfig:"BACKFILL_WORKERS" default:"4"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"draftwise-deliverables"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DRAFTWISE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate checks enum fields and cross-field requirements.
func (c *Config) Validate() error {
	switch c.EmbeddingBackend {
	case EmbeddingBackendHash:
	case EmbeddingBackendOpenAI:
		if !c.HasOpenAI() {
			return fmt.Errorf("EMBEDDING_BACKEND=openai requires OPENAI_API_KEY")
		}
	case EmbeddingBackendLocal:
		if c.EmbeddingHost == "" || c.EmbeddingModel == "" {
			return fmt.Errorf("EMBEDDING_BACKEND=local requires EMBEDDING_HOST and EMBEDDING_MODEL")
		}
	default:
		return fmt.Errorf("invalid EMBEDDING_BACKEND %q", c.EmbeddingBackend)
	}

	switch c.GenerationBackend {
	case GenerationBackendNone:
	case GenerationBackendOpenAI:
		if !c.HasOpenAI() {
			return fmt.Errorf("GENERATION_BACKEND=openai requires OPENAI_API_KEY")
		}
	case GenerationBackendLocal:
		if c.GenerationHost == "" {
			return fmt.Errorf("GENERATION_BACKEND=local requires GENERATION_HOST")
		}
	default:
		return fmt.Errorf("invalid GENERATION_BACKEND %q", c.GenerationBackend)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	// knowledge_embeddings.embedding is vector(384).
	if c.EmbeddingDimension != domain.DefaultEmbeddingDimension {
		return fmt.Errorf("EMBEDDING_DIMENSION must be %d to match the embeddings column, got %d",
			domain.DefaultEmbeddingDimension, c.EmbeddingDimension)
	}
	if c.DefaultLimit <= 0 || c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("DEFAULT_LIMIT must be positive and not exceed MAX_LIMIT")
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasGenerator reports whether a language model backend is configured.
func (c *Config) HasGenerator() bool {
	return c.GenerationBackend != GenerationBackendNone
}
