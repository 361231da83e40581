package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/passforge/passforge-go/internal/config"
	"github.com/passforge/passforge-go/internal/handler"
	"github.com/passforge/passforge-go/internal/middleware"
	"github.com/passforge/passforge-go/internal/repository"
	"github.com/passforge/passforge-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flashKey, err := cfg.FlashKey()
	if err != nil {
		slog.Error("flash secret unavailable", "error", err)
		os.Exit(1)
	}
	if cfg.FlashSecret == "" {
		slog.Warn("FLASH_SECRET not set, using an ephemeral key")
	}

	renderer, err := handler.NewRenderer()
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		os.Exit(1)
	}
	flashes := handler.NewFlashes(flashKey, cfg.Env == "production")

	files, err := repository.NewFileStore(cfg.UploadDir)
	if err != nil {
		slog.Error("upload directory unavailable", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// Upload metadata is recorded only when the database is reachable.
	var store service.UploadStore
	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Warn("database connection failed — upload metadata disabled", "error", err)
	} else {
		defer db.Close()
		if err := repository.Migrate(ctx, db); err != nil {
			slog.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		store = repository.NewUploadRepository(db)
	}

	genService := service.NewGeneratorService()
	genHandler := handler.NewGeneratorHandler(genService, renderer)

	uploadService := service.NewUploadService(files, store, cfg.AllowedExtensions)
	uploadHandler := handler.NewUploadHandler(uploadService, renderer, flashes, cfg.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", genHandler.HandleIndex)
	r.Get("/upload", uploadHandler.HandleUploadPage)
	r.Get("/uploads/{id}", uploadHandler.HandleDownload)
	r.Get("/api/v1/uploads", uploadHandler.HandleListUploads)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Post("/", genHandler.HandleIndexSubmit)
		r.Post("/upload", uploadHandler.HandleUploadForm)
		r.Post("/api/v1/generate", genHandler.HandleGenerate)
		r.Post("/api/v1/uploads", uploadHandler.HandleCreateUpload)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "upload_dir", files.Dir())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
