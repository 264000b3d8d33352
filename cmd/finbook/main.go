package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finbook/internal/amqp"
	"finbook/internal/backend"
	"finbook/internal/cli"
	apphttp "finbook/internal/http"
	"finbook/internal/log"
	"finbook/internal/service"
)

func main() {
	logger, cfg := cli.Setup(log.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	st, err := backend.New(ctx, backend.Config{
		Type:          backend.Type(cfg.StoreBackend),
		FilePath:      cfg.FileStorePath,
		SQLiteDBPath:  cfg.SQLiteDBPath,
		SupabaseURL:   cfg.SupabaseURL,
		SupabaseKey:   cfg.SupabaseKey,
		SupabaseTable: cfg.SupabaseTable,
		PollInterval:  cfg.PollInterval,
		UserID:        cfg.UserID,
	}, logger.WithComponent(log.ComponentStore).Logger)
	if err != nil {
		logger.Error("Failed to initialize store backend", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	defer st.Close()

	// AMQP is optional: without it writes still land in the store, the
	// mirror worker just never hears about them.
	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("AMQP change events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP change events disabled - no AMQP_URL provided")
	}

	svc := service.New(st, events)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		TopGroups:   cfg.TopGroups,
		TrendMonths: cfg.TrendMonths,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := svc.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting finbook server", "port", cfg.Port, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
