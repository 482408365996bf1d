package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/config"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/handler"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/middleware"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/pkg/logger"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/service"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	docStore, err := service.NewDocumentStore(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize document store", "error", err)
		os.Exit(1)
	}
	if err := docStore.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure storage bucket", "error", err)
		os.Exit(1)
	}

	store, err := newStore(cfg)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}

	extractorSvc := service.NewExtractorService(&cfg.Extractor)
	ledger := service.NewLedger(store)
	pipeline := service.NewPipeline(store, &cfg.Validation)

	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(store, ledger, docStore, extractorSvc)
	validationHandler := handler.NewValidationHandler(store, pipeline, extractorSvc, docStore)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/extractor/callback", validationHandler.Callback)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/contracts/upload", contractHandler.Upload)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)

		protected.POST("/contracts/:id/events", contractHandler.RecordEvent)
		protected.GET("/contracts/:id/events", contractHandler.ListEvents)
		protected.GET("/contracts/:id/allowed-events", contractHandler.AllowedEvents)

		protected.GET("/contracts/:id/deadline", contractHandler.Deadline)
		protected.GET("/contracts/:id/notice-window", contractHandler.NoticeWindow)

		protected.POST("/contracts/:id/validations", validationHandler.RequestValidation)
		protected.GET("/contracts/:id/validation", validationHandler.GetValidation)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// newStore picks the persistence backend. SQLite is the default; the
// memory driver exists for local runs without a database file.
func newStore(cfg *config.Config) (service.Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		return service.NewMemoryStore(), nil
	case "", "sqlite":
		return service.NewGormStore(&cfg.Database)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
