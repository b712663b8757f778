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

	"github.com/gin-gonic/gin"
	"github.com/storefront-ops/import-service/internal/cache"
	"github.com/storefront-ops/import-service/internal/config"
	"github.com/storefront-ops/import-service/internal/handlers"
	"github.com/storefront-ops/import-service/internal/importer"
	"github.com/storefront-ops/import-service/internal/media"
	"github.com/storefront-ops/import-service/internal/repositories/postgres"
	"github.com/storefront-ops/import-service/internal/services"
	"github.com/storefront-ops/import-service/internal/utils"
	"github.com/storefront-ops/import-service/internal/validator"
	"github.com/storefront-ops/import-service/pkg"
)

func main() {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger := utils.NewSlogLogger(slogger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		slogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		slogger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		slogger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	cacheService := cache.NewRedisCache(redisClient, slogger)

	publisher, err := config.LoadEventConfig().CreateActivityPublisher(slogger)
	if err != nil {
		slogger.Error("failed to create activity publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	httpClient := &http.Client{Timeout: cfg.RehostTimeout}
	fileStore, err := media.NewLocalFileStore(cfg.UploadDir, httpClient)
	if err != nil {
		slogger.Error("failed to prepare upload directory", "error", err)
		os.Exit(1)
	}
	contentStore, err := media.NewLocalContentStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		slogger.Error("failed to prepare media directory", "error", err)
		os.Exit(1)
	}
	rehoster := media.NewRehoster(contentStore, httpClient, cacheService, cfg.RehostTimeout, slogger)

	repo := postgres.NewRepository(db)
	v := validator.New()
	resolver := importer.NewResolver(rehoster)

	importService := services.NewImportService(repo, fileStore, resolver, publisher, v, logger, cfg.TxTimeout)
	exportService := services.NewExportService(repo, publisher, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))
	router.Static("/media", cfg.MediaDir)

	handlers.NewHandlerManager(importService, exportService, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slogger.Info("import service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slogger.Error("forced shutdown", "error", err)
	}
}
