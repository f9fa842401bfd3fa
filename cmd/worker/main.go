// Standalone thumbnail pipeline. The queue store is single-process, so
// run this only with the server stopped (or with WORKER_ENABLED=false on
// a queue directory the server no longer owns) to drain pending jobs.
package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/filevault/filevault/internal/config"
	"github.com/filevault/filevault/internal/db"
	"github.com/filevault/filevault/internal/logger"
	"github.com/filevault/filevault/internal/queue"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/storage"
	"github.com/filevault/filevault/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		panic(err)
	}
	defer func() { _ = database.Close() }()

	jobQueue, err := queue.Open(cfg.QueuePath, cfg.JobMaxAttempts)
	if err != nil {
		slog.Error("failed to open job queue", "error", err)
		panic(err)
	}
	defer func() { _ = jobQueue.Close() }()

	blobStorage, err := storage.NewLocal(cfg.StoragePath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		panic(err)
	}

	files := repository.NewFileRepository(database)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.New(jobQueue, files, blobStorage, cfg.WorkerConcurrency).Run(ctx)
}
