package main

import (
	"context"
	"flag"
	"os"

	"ScoreTrainer/internal/app"
	"ScoreTrainer/internal/config"
	"ScoreTrainer/internal/logging"
)

func main() {
	test := flag.Bool("test", false, "write source_encoder_test.pkl and ml_model_test.pkl")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application := app.New(cfg, logger, *test)

	if err := application.Run(ctx); err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
}
