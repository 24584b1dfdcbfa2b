// UKM Advisor - deterministic multi-agent recommendation server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/ukm-labs/advisor/internal/api"
	"github.com/ukm-labs/advisor/internal/catalog"
	"github.com/ukm-labs/advisor/internal/config"
	"github.com/ukm-labs/advisor/internal/llm"
	"github.com/ukm-labs/advisor/internal/middleware"
	"github.com/ukm-labs/advisor/internal/pipeline"
	"github.com/ukm-labs/advisor/internal/session"
	"github.com/ukm-labs/advisor/web"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize the club catalog.
	repo, err := catalog.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close catalog", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if err := seedCatalog(context.Background(), repo, cfg.CatalogCSV); err != nil {
		slog.Error("Failed to seed catalog", "error", err)
		os.Exit(1)
	}

	// Initialize services.
	searchTool := catalog.NewSearchTool(repo, cfg.Pipeline.ResultLimit)
	generator := llm.NewClient(llm.ClientConfig{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})

	runner := pipeline.NewRunner(
		pipeline.DefaultConfig(searchTool.Search, cfg.Pipeline.MaxRounds),
		generator,
	)
	sessions := session.NewManager(cfg.Stream.SessionTTL)

	// Initialize handlers.
	handler := api.NewHandler(sessions, runner, repo, cfg.Stream.PollTimeout)

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	allowedOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(allowedOrigins))

	handler.RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Note: SSE connections require long timeouts (no WriteTimeout).
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions.StartTTLWorker(ctx, time.Minute)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// seedCatalog imports the CSV spreadsheet export when the catalog is empty.
// A missing seed file is not fatal: the catalog may have been imported on a
// previous start, or will be seeded out of band.
func seedCatalog(ctx context.Context, repo catalog.Repository, csvPath string) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Catalog ready", "clubs", count)
		return nil
	}
	if csvPath == "" {
		slog.Warn("Catalog is empty and no CATALOG_CSV configured")
		return nil
	}
	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		slog.Warn("Catalog is empty and seed file does not exist", "path", csvPath)
		return nil
	}

	imported, err := catalog.ImportCSV(ctx, repo, csvPath)
	if err != nil {
		return err
	}
	slog.Info("Catalog seeded", "path", csvPath, "clubs", imported)
	return nil
}
