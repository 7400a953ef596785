package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/luminacare/assistant/internal/chunkstore"
	"github.com/luminacare/assistant/internal/config"
	"github.com/luminacare/assistant/internal/database"
	"github.com/luminacare/assistant/internal/document"
	"github.com/luminacare/assistant/internal/drive"
	"github.com/luminacare/assistant/internal/embedding"
	"github.com/luminacare/assistant/internal/llm"
	"github.com/luminacare/assistant/internal/queue"
	"github.com/luminacare/assistant/internal/queue/workers"
	"github.com/luminacare/assistant/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey)
	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	docSvc := document.NewService(db, store, cfg.Storage.Bucket, queueClient)

	gw := llm.NewGateway(cfg.LLM)
	embedSvc := embedding.NewService(gw, cfg.LLM.EmbeddingModel)
	ingester := workers.NewIngester(chunkstore.NewPgStore(db), embedSvc)

	mux := asynq.NewServeMux()

	ingestWorker := workers.NewIngestWorker(docSvc, store, cfg.Storage.Bucket, ingester)
	mux.HandleFunc(queue.TypeIngest, ingestWorker.ProcessTask)

	if cfg.Drive.CredentialsJSON != "" {
		exporter, err := drive.NewExporter(ctx, cfg.Drive)
		if err != nil {
			slog.Error("drive client setup failed", "error", err)
			os.Exit(1)
		}
		fetcher := drive.NewFetcher(exporter, cfg.Drive.RequestsPerSec)
		syncWorker := workers.NewDriveSyncWorker(docSvc, fetcher, ingester)
		mux.HandleFunc(queue.TypeDriveSync, syncWorker.ProcessTask)
	} else {
		slog.Warn("drive credentials missing, drive sync disabled")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
