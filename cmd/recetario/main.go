package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matt-dz/recetario/internal/api"
	"github.com/matt-dz/recetario/internal/config"
	"github.com/matt-dz/recetario/internal/env"
	"github.com/matt-dz/recetario/internal/filestore"
	"github.com/matt-dz/recetario/internal/http"
	"github.com/matt-dz/recetario/internal/log"
	"github.com/matt-dz/recetario/internal/setup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, err := config.LoadConfig()
	if err != nil {
		log.New(nil).Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := log.New(&slog.HandlerOptions{Level: log.ParseLevel(conf.LogLevel)})
	client := http.New(http.DefaultConfig(), logger)

	const setupTime = 30 * time.Second
	setupCtx, cancel := context.WithTimeout(ctx, setupTime)
	defer cancel()

	store, closeStore, err := setup.DocumentStore(setupCtx, &conf, logger)
	if err != nil {
		logger.Error("failed to setup document store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	blobs, err := setup.BlobBackend(setupCtx, &conf, client, logger)
	if err != nil {
		logger.Error("failed to setup blob store", slog.Any("error", err))
		os.Exit(1)
	}

	env := env.New(logger, &conf, store, filestore.New(blobs), client)
	if err := api.Start(ctx, env); err != nil {
		env.Logger.Error("API Failed", slog.Any("error", err))
		os.Exit(1) //nolint:gocritic
	}
}
