package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloo-solutions/draftwise/internal/config"
	"github.com/cloo-solutions/draftwise/internal/langchain"
	"github.com/cloo-solutions/draftwise/internal/openai"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/cloo-solutions/draftwise/internal/storage"
	"github.com/cloo-solutions/draftwise/internal/vectorizer"
)

// newVectorizer loads the configured embedding backend and probes it once.
// A failure here is fatal for the process.
func newVectorizer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*vectorizer.Vectorizer, error) {
	var backend vectorizer.Backend
	switch cfg.EmbeddingBackend {
	case config.EmbeddingBackendOpenAI:
		client, err := openai.NewClient(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      cfg.EmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimension,
		})
		if err != nil {
			return nil, err
		}
		backend = client
	case config.EmbeddingBackendLocal:
		embedder, err := langchain.NewEmbedder(langchain.Config{
			BaseURL:        cfg.EmbeddingHost,
			EmbeddingModel: cfg.EmbeddingModel,
		})
		if err != nil {
			return nil, err
		}
		backend = embedder
	default:
		backend = vectorizer.NewHashingBackend(cfg.EmbeddingDimension)
	}

	return vectorizer.New(ctx, backend,
		vectorizer.WithDimensions(cfg.EmbeddingDimension),
		vectorizer.WithLogger(logger),
	)
}

// newGenerator returns nil when generation is disabled.
func newGenerator(cfg *config.Config) (service.Generator, error) {
	switch cfg.GenerationBackend {
	case config.GenerationBackendOpenAI:
		gen, err := openai.NewChatGenerator(openai.ChatConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.GenerationModel,
			Temperature: cfg.GenerationTemperature,
			MaxTokens:   cfg.GenerationMaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	case config.GenerationBackendLocal:
		gen, err := langchain.NewGenerator(langchain.Config{
			BaseURL:   cfg.GenerationHost,
			ChatModel: cfg.GenerationModel,
		}, openai.DefaultSystemPrompt)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, nil
	}
}

// newArchiver returns nil when S3 is not configured.
func newArchiver(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Archiver, error) {
	if !cfg.HasS3() {
		logger.Info("S3 not configured, approved deliverables will not be archived")
		return nil, nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	logger.Info("S3 bucket ready", "bucket", cfg.S3Bucket)
	return client, nil
}

func searchSettings(cfg *config.Config) service.SearchSettings {
	settings := service.DefaultSearchSettings()
	settings.SemanticThreshold = cfg.SearchThreshold
	settings.PriorityThreshold = cfg.PriorityThreshold
	settings.HybridSemanticThreshold = cfg.HybridSemanticThreshold
	settings.Weights.Semantic = cfg.HybridSemanticWeight
	settings.Weights.Priority = cfg.HybridPriorityWeight
	settings.DefaultLimit = cfg.DefaultLimit
	settings.MaxLimit = cfg.MaxLimit
	return settings
}
