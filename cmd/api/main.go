package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/adapter/handler"
	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/embedding"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insights"
	"github.com/johnquangdev/meeting-insights/internal/usecase/rag"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/logger"
	pkgvalidator "github.com/johnquangdev/meeting-insights/pkg/validator"
)

// @title           Meeting Insights API
// @version         1.0
// @description     Question answering over meeting transcripts and extracted insights
// @BasePath        /v1

// retrievalOverFetch is the candidate multiplier used by the per-meeting cap
const retrievalOverFetch = 3

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(zl)
	e.HideBanner = true

	e.Use(httpmw.RequestID())
	e.Use(httpmw.AccessLog(zl))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, httpmw.RequestIDHeader},
	}))

	zl.Info("🔧 Initializing dependencies...")

	// Database
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}

	n, err := database.Migrate(db, migrate.Up, 0)
	if err != nil {
		zl.Fatal("Failed to apply migrations", zap.Error(err))
	}
	zl.Info("✅ Migrations applied", zap.Int("count", n))

	// LLM provider
	ctx := context.Background()
	provider, closeProvider, err := pkgai.NewProvider(ctx, &cfg.LLM, zl)
	if err != nil {
		zl.Fatal("Failed to initialize LLM provider", zap.Error(err))
	}
	defer closeProvider()
	zl.Info("🤖 LLM provider ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("chat_model", provider.ModelName()),
	)

	// Query vector cache
	var vectorCache embedding.VectorCache
	var redisPing handler.HealthCheck
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			zl.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		vectorCache = cache.NewRedisVectorCache(redisClient, cfg.RAG.QueryCacheTTL)
		redisPing = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		memCache := cache.NewMemoryStore(cfg.RAG.QueryCacheTTL)
		defer memCache.Close()
		vectorCache = memCache
	}

	// Repositories
	meetingRepo := repository.NewMeetingRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	insightsRepo := repository.NewInsightsRepository(db)

	// Usecases
	generator := embedding.NewGenerator(provider,
		embedding.WithBatchSize(cfg.RAG.EmbeddingBatchSize),
		embedding.WithDimensions(cfg.LLM.EmbeddingDimensions),
		embedding.WithCache(vectorCache),
		embedding.WithLogger(zl),
	)
	checkEmbeddingWidth(ctx, cfg, generator, zl)
	synthesizer := rag.NewSynthesizer(
		generator,
		rag.NewRetriever(chunkRepo, retrievalOverFetch, zl),
		meetingRepo,
		provider,
		rag.Config{
			GlobalTopK:  cfg.RAG.GlobalTopK,
			MeetingTopK: cfg.RAG.MeetingTopK,
			MaxHistory:  cfg.RAG.MaxHistory,
			Model:       cfg.LLM.ChatModel,
			Temperature: cfg.RAG.AnswerTemperature,
			MaxTokens:   cfg.RAG.AnswerMaxTokens,
		},
		zl,
	)
	queries := insights.NewQueries(meetingRepo, insightsRepo, zl)

	// Router
	router := handler.NewRouter(cfg,
		handler.NewRAGController(synthesizer, zl),
		handler.NewMeetingController(queries, zl),
	)
	router.AddHealthCheck("database", func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})
	if cfg.Storage.Enabled {
		archive, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			zl.Warn("⚠️ Object storage unavailable, archive links disabled", zap.Error(err))
		} else {
			router.WithArchive(handler.NewArchiveController(archive, zl))
		}
	}
	if redisPing != nil {
		router.AddHealthCheck("redis", redisPing)
	}
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		zl.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	waitForShutdown(e, db, zl, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
}

// waitForShutdown blocks until SIGINT or SIGTERM and drains in-flight requests
func waitForShutdown(e *echo.Echo, db *gorm.DB, zl *zap.Logger, timeout time.Duration) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zl.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		zl.Error("❌ Server forced to shutdown", zap.Error(err))
	}
	if err := database.CloseDB(db); err != nil {
		zl.Warn("⚠️ Database close failed", zap.Error(err))
	}
	zl.Info("✅ Server stopped gracefully")
}

// checkEmbeddingWidth stops startup when the provider's vectors do not fit
// the meeting_chunks.embedding column
func checkEmbeddingWidth(ctx context.Context, cfg *config.Config, generator *embedding.Generator, zl *zap.Logger) {
	if cfg.LLM.EmbeddingDimensions != entities.EmbeddingDimensions {
		zl.Fatal("LLM_EMBEDDING_DIMENSIONS does not match the chunk store",
			zap.Int("configured", cfg.LLM.EmbeddingDimensions),
			zap.Int("column", entities.EmbeddingDimensions),
		)
	}
	timeout := cfg.LLM.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := generator.CheckDimensions(checkCtx); err != nil {
		zl.Fatal("Embedding model does not produce the configured width", zap.Error(err))
	}
	zl.Info("📐 Embedding width verified", zap.Int("dimensions", cfg.LLM.EmbeddingDimensions))
}
