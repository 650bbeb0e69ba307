package server

import (
	"log/slog"
	"net/http"

	"github.com/cloo-solutions/draftwise/internal/api"
	"github.com/cloo-solutions/draftwise/internal/api/handlers"
	"github.com/cloo-solutions/draftwise/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes int64 = 5 * 1024 * 1024

type RouterConfig struct {
	Logger             *slog.Logger
	ClientHandler      *handlers.ClientHandler
	KnowledgeHandler   *handlers.KnowledgeHandler
	SearchHandler      *handlers.SearchHandler
	DeliverableHandler *handlers.DeliverableHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/clients", func(r chi.Router) {
		r.Post("/", cfg.ClientHandler.CreateClient)
		r.Get("/", cfg.ClientHandler.ListClients)
		r.Get("/{id}", cfg.ClientHandler.GetClient)
		r.Put("/{id}", cfg.ClientHandler.UpdateClient)
		r.Delete("/{id}", cfg.ClientHandler.DeleteClient)
		r.Get("/{id}/stakeholders", cfg.ClientHandler.ListClientStakeholders)
	})

	r.Route("/stakeholders", func(r chi.Router) {
		r.Post("/", cfg.ClientHandler.CreateStakeholder)
		r.Get("/{id}", cfg.ClientHandler.GetStakeholder)
		r.Put("/{id}", cfg.ClientHandler.UpdateStakeholder)
		r.Delete("/{id}", cfg.ClientHandler.DeleteStakeholder)
	})

	r.Route("/engagements", func(r chi.Router) {
		r.Post("/", cfg.ClientHandler.CreateEngagement)
		r.Get("/", cfg.ClientHandler.ListEngagements)
		r.Get("/{id}", cfg.ClientHandler.GetEngagement)
	})

	r.Route("/knowledge", func(r chi.Router) {
		r.Post("/", cfg.KnowledgeHandler.Create)
		r.Get("/", cfg.KnowledgeHandler.List)
		r.Post("/ingest", cfg.KnowledgeHandler.Ingest)
		r.Post("/backfill", cfg.KnowledgeHandler.Backfill)
		r.Get("/{id}", cfg.KnowledgeHandler.Get)
		r.Put("/{id}", cfg.KnowledgeHandler.Update)
		r.Delete("/{id}", cfg.KnowledgeHandler.Delete)
		r.Post("/{id}/embed", cfg.KnowledgeHandler.Embed)
	})

	r.Route("/search", func(r chi.Router) {
		r.Get("/semantic", cfg.SearchHandler.Semantic)
		r.Get("/by-stakeholder-priority", cfg.SearchHandler.ByStakeholderPriority)
		r.Get("/hybrid", cfg.SearchHandler.Hybrid)
	})

	r.Route("/deliverables", func(r chi.Router) {
		r.Get("/", cfg.DeliverableHandler.List)
		r.Post("/generate", cfg.DeliverableHandler.Generate)
		r.Get("/{id}", cfg.DeliverableHandler.Get)
		r.Put("/{id}", cfg.DeliverableHandler.Update)
		r.Delete("/{id}", cfg.DeliverableHandler.Delete)
		r.Post("/{id}/approve", cfg.DeliverableHandler.Approve)
		r.Get("/{id}/archive", cfg.DeliverableHandler.Archive)
	})

	return r
}
