package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/clients"
	"github.com/spacesedan/impactwatch/internal/db"
	"github.com/spacesedan/impactwatch/internal/logging"
	"github.com/spacesedan/impactwatch/internal/training"
)

func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	var store training.RunStore
	if cfg.Store.Table != "" {
		client, err := clients.NewDynamoDBClient(ctx, cfg.Store)
		if err != nil {
			slog.Error("[Main] Failed to create DynamoDB client", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = db.NewTrainingRunStore(client, cfg.Store.Table)
	}

	if _, err := training.NewTrainer(cfg.Paths, cfg.Training, store).Run(ctx); err != nil {
		slog.Error("[Main] Training failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
