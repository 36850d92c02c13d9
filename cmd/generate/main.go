package main

import (
	"log/slog"
	"os"

	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/dataset"
	"github.com/spacesedan/impactwatch/internal/logging"
)

func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rows := dataset.Synthesize(dataset.Catalog, cfg.Synth.Replication, cfg.Synth.Seed)
	if err := dataset.WriteFile(cfg.Paths.Dataset, rows); err != nil {
		slog.Error("[Main] Failed to write dataset",
			slog.String("path", cfg.Paths.Dataset),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	dataset.LogPreview(rows, 5, nil)
}
