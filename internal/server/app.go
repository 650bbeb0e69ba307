package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cloo-solutions/draftwise/internal/api/handlers"
	"github.com/cloo-solutions/draftwise/internal/repository"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/cloo-solutions/draftwise/internal/vectorizer"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AppConfig carries everything NewApp needs. Generator and Archiver are
// optional.
type AppConfig struct {
	Pool       *pgxpool.Pool
	Logger     *slog.Logger
	Vectorizer *vectorizer.Vectorizer
	Generator  service.Generator
	Archiver   service.Archiver

	Search            service.SearchSettings
	Fallback          bool
	GenerationTimeout time.Duration
	BackfillWorkers   int
	BackfillBatchSize int
}

// App is the wired service graph behind the HTTP API.
type App struct {
	Router     http.Handler
	Backfiller *service.Backfiller
	Embeddings *service.EmbeddingService
}

// NewApp builds repositories, services and handlers on top of pool.
// Call Close when done.
func NewApp(cfg AppConfig) (*App, error) {
	if cfg.Vectorizer == nil {
		return nil, fmt.Errorf("vectorizer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clientRepo := repository.NewClientRepository(cfg.Pool)
	stakeholderRepo := repository.NewStakeholderRepository(cfg.Pool)
	engagementRepo := repository.NewEngagementRepository(cfg.Pool)
	knowledgeRepo := repository.NewKnowledgeRepository(cfg.Pool)
	embeddingRepo := repository.NewEmbeddingRepository(cfg.Pool)
	deliverableRepo := repository.NewDeliverableRepository(cfg.Pool)
	txRunner := repository.NewTxRunner(cfg.Pool)

	embeddingSvc := service.NewEmbeddingService(cfg.Vectorizer, embeddingRepo, knowledgeRepo)
	knowledgeSvc := service.NewKnowledgeService(knowledgeRepo, embeddingSvc)
	retriever := service.NewRetriever(cfg.Vectorizer, embeddingRepo, knowledgeRepo)
	searchSvc := service.NewSearchService(retriever, stakeholderRepo, cfg.Search)
	clientSvc := service.NewClientService(clientRepo, stakeholderRepo, engagementRepo)
	deliverableSvc := service.NewDeliverableService(deliverableRepo, cfg.Archiver)

	backfiller, err := service.NewBackfiller(cfg.Vectorizer, embeddingRepo,
		service.WithBackfillWorkers(cfg.BackfillWorkers),
		service.WithBatchSize(cfg.BackfillBatchSize),
		service.WithBackfillLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backfiller: %w", err)
	}

	opts := []service.AssemblerOption{
		service.WithGenerationTimeout(cfg.GenerationTimeout),
		service.WithAssemblerLogger(logger),
	}
	if cfg.Fallback {
		fallback, err := service.NewFallbackContent()
		if err != nil {
			backfiller.Release()
			return nil, fmt.Errorf("failed to load fallback templates: %w", err)
		}
		opts = append(opts, service.WithFallback(fallback))
	}
	if cfg.Archiver != nil {
		opts = append(opts, service.WithArchiver(cfg.Archiver))
	}

	assembler := service.NewContentAssembler(service.AssemblerDeps{
		Clients:      clientRepo,
		Stakeholders: stakeholderRepo,
		Engagements:  engagementRepo,
		Retriever:    retriever,
		Generator:    cfg.Generator,
		Deliverables: deliverableRepo,
		Tx:           txRunner,
		Embedder:     embeddingSvc,
	}, opts...)

	router := NewRouter(RouterConfig{
		Logger:             logger,
		ClientHandler:      handlers.NewClientHandler(clientSvc),
		KnowledgeHandler:   handlers.NewKnowledgeHandler(knowledgeSvc, embeddingSvc, backfiller),
		SearchHandler:      handlers.NewSearchHandler(searchSvc),
		DeliverableHandler: handlers.NewDeliverableHandler(assembler, deliverableSvc),
	})

	return &App{
		Router:     router,
		Backfiller: backfiller,
		Embeddings: embeddingSvc,
	}, nil
}

// Close releases the backfill worker pool.
func (a *App) Close() {
	if a.Backfiller != nil {
		a.Backfiller.Release()
	}
}
