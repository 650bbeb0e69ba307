package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/draftwise/internal/config"
	"github.com/cloo-solutions/draftwise/internal/database"
	"github.com/cloo-solutions/draftwise/internal/jobs"
	"github.com/cloo-solutions/draftwise/internal/server"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the draftwise API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides DRAFTWISE_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", defaultMigrationsPath, "Directory holding the SQL migrations")

	return cmd
}

// runtime holds what every server-side command needs.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := telemetry.NewLogger(cfg.LogFormat, cfg.Debug)
	slog.SetDefault(logger)

	pool, err := database.NewPool(ctx, database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database")

	return &runtime{cfg: cfg, logger: logger, pool: pool}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.pool.Close()
	cfg, logger := rt.cfg, rt.logger

	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Debug:       cfg.Debug,
		Logger:      logger,
	})
	if err != nil {
		logger.Warn("telemetry init failed, continuing without tracing", "error", err)
	} else {
		defer shutdownTelemetry()
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		dir, _ := cmd.Flags().GetString("migrations")
		if err := database.Migrate(cfg.DatabaseURL, dir, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	vec, err := newVectorizer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("embedding model unavailable: %w", err)
	}
	generator, err := newGenerator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	if generator == nil {
		logger.Info("content generation disabled", "fallback", cfg.FallbackContent)
	}
	archiver, err := newArchiver(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app, err := server.NewApp(server.AppConfig{
		Pool:              rt.pool,
		Logger:            logger,
		Vectorizer:        vec,
		Generator:         generator,
		Archiver:          archiver,
		Search:            searchSettings(cfg),
		Fallback:          cfg.FallbackContent,
		GenerationTimeout: cfg.GenerationTimeout,
		BackfillWorkers:   cfg.BackfillWorkers,
		BackfillBatchSize: cfg.BackfillBatchSize,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	var worker *jobs.Worker
	if cfg.BackfillInterval > 0 {
		processor := jobs.NewBackfillProcessor(app.Backfiller, cfg.BackfillBatchSize, logger)
		worker = jobs.NewWorker(processor, cfg.BackfillInterval, logger,
			jobs.WithRunOnStart(), jobs.WithPassTimeout(cfg.BackfillInterval))
		go worker.Start(ctx)
		logger.Info("backfill worker started", "interval", cfg.BackfillInterval)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	if worker != nil {
		worker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
