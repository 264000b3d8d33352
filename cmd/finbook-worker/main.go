package main

import (
	"context"
	"errors"
	"os"

	"finbook/internal/amqp"
	"finbook/internal/backend"
	"finbook/internal/cli"
	"finbook/internal/log"
	"finbook/internal/worker"
)

func main() {
	logger, cfg := cli.Setup(log.ComponentWorker)

	logger.Info("Starting finbook-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		logger.Error("SUPABASE_URL and SUPABASE_KEY are required for the mirror worker")
		os.Exit(1)
	}
	if cfg.StoreBackend == string(backend.SupabaseBackend) {
		logger.Error("Mirror worker needs a local store backend (file or sqlite)")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	storeLogger := logger.WithComponent(log.ComponentStore).Logger

	// Local store: the source of truth the worker reads from.
	local, err := backend.New(ctx, backend.Config{
		Type:         backend.Type(cfg.StoreBackend),
		FilePath:     cfg.FileStorePath,
		SQLiteDBPath: cfg.SQLiteDBPath,
		UserID:       cfg.UserID,
	}, storeLogger)
	if err != nil {
		logger.Error("Failed to initialize local store", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	defer local.Close()

	// Remote store: the mirror target.
	remote, err := backend.New(ctx, backend.Config{
		Type:          backend.SupabaseBackend,
		SupabaseURL:   cfg.SupabaseURL,
		SupabaseKey:   cfg.SupabaseKey,
		SupabaseTable: cfg.SupabaseTable,
		PollInterval:  cfg.PollInterval,
		UserID:        cfg.UserID,
	}, storeLogger)
	if err != nil {
		logger.Error("Failed to initialize remote store", "error", err)
		os.Exit(1)
	}
	defer remote.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewMirrorWorker(local, remote, amqpClient, cfg.MirrorDebounce)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
