package main

import (
	"log/slog"
	"os"

	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/dataset"
	"github.com/spacesedan/impactwatch/internal/logging"
	"github.com/spacesedan/impactwatch/internal/sentiment"
)

// preprocess shows what the models will see: the first rows of the dataset
// next to their cleaned text.
func main() {
	config.LoadEnv(config.AppEnv())
	logging.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rows, err := dataset.ReadFile(cfg.Paths.Dataset)
	if err != nil {
		slog.Error("[Main] Failed to read dataset",
			slog.String("path", cfg.Paths.Dataset),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	dataset.LogPreview(rows, 5, sentiment.NormalizeAll(rows.Texts()))
}
