package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/notify"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/embedding"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insights"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if _, err := database.Migrate(db, migrate.Up, 0); err != nil {
		zl.Fatal("Failed to apply migrations", zap.Error(err))
	}

	provider, closeProvider, err := pkgai.NewProvider(ctx, &cfg.LLM, zl)
	if err != nil {
		zl.Fatal("Failed to initialize LLM provider", zap.Error(err))
	}
	defer closeProvider()

	meetingRepo := repository.NewMeetingRepository(db)
	generator := embedding.NewGenerator(provider,
		embedding.WithBatchSize(cfg.RAG.EmbeddingBatchSize),
		embedding.WithDimensions(cfg.LLM.EmbeddingDimensions),
		embedding.WithLogger(zl),
	)
	checkEmbeddingWidth(ctx, cfg, generator, zl)

	service := insights.NewService(
		meetingRepo,
		repository.NewTranscriptRepository(db),
		repository.NewInsightsRepository(db),
		repository.NewChunkRepository(db),
		provider,
		generator,
		insights.Options{
			SummaryModel:    cfg.LLM.SummaryModel,
			SegmentLimit:    cfg.Insights.SegmentLimit,
			TeamRosterPath:  cfg.Insights.TeamRosterPath,
			Language:        cfg.Insights.Language,
			Temperature:     cfg.Insights.Temperature,
			MaxOutputTokens: cfg.Insights.MaxOutputTokens,
			HookTimeout:     cfg.Notify.HookTimeout,
		},
		zl,
	)

	closeHooks := registerHooks(ctx, cfg, service, zl)
	defer closeHooks()

	worker := insights.NewWorker(meetingRepo, service, insights.WorkerConfig{
		TargetStatuses:   cfg.Insights.TargetStatuses,
		BatchSize:        cfg.Insights.BatchSize,
		PollInterval:     cfg.Insights.PollInterval,
		BusyPollInterval: cfg.Insights.BusyPollInterval,
		ProcessTimeout:   cfg.Insights.ProcessTimeout,
		ProcessingLease:  cfg.Insights.ProcessingLease,
		ReapInterval:     cfg.Insights.ReapInterval,
	}, zl)

	if err := worker.Start(ctx, cfg.Insights.Workers); err != nil {
		zl.Fatal("Failed to start worker pool", zap.Error(err))
	}
	zl.Info("🚀 Insights worker started",
		zap.Int("workers", cfg.Insights.Workers),
		zap.Strings("target_statuses", cfg.Insights.TargetStatuses),
	)

	<-ctx.Done()
	zl.Info("🛑 Shutting down worker...")

	if err := worker.Stop(); err != nil {
		zl.Error("❌ Worker stop failed", zap.Error(err))
	}
	service.WaitHooks()
	zl.Info("✅ Worker stopped gracefully")
}

// registerHooks wires the configured post-commit notifications. The returned
// function releases their connections.
func registerHooks(ctx context.Context, cfg *config.Config, service *insights.Service, zl *zap.Logger) func() {
	closers := []func(){}

	if url := cfg.Notify.EmailTriggerURL; url != "" {
		service.AddHook(insights.NewTriggerHook(notify.NewHTTPTrigger("email", url, cfg.Notify.HookTimeout)))
	}
	if url := cfg.Notify.TicketSyncTriggerURL; url != "" {
		service.AddHook(insights.NewTriggerHook(notify.NewHTTPTrigger("ticket_sync", url, cfg.Notify.HookTimeout)))
	}

	if cfg.Notify.NATSURL != "" {
		publisher, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.NATSToken, zl)
		if err != nil {
			zl.Warn("⚠️ NATS unavailable, completion events disabled", zap.Error(err))
		} else {
			service.AddHook(insights.NewEventHook(publisher, cfg.Notify.NATSSubject))
			closers = append(closers, publisher.Close)
		}
	}

	if cfg.Storage.Enabled {
		archive, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			zl.Warn("⚠️ Object storage unavailable, insights archive disabled", zap.Error(err))
		} else {
			service.AddHook(insights.NewArchiveHook(archive))
		}
	}

	return func() {
		for _, c := range closers {
			c()
		}
	}
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
