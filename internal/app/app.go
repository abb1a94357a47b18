package app

import (
	"context"
	"fmt"
	"log/slog"

	"ScoreTrainer/internal/config"
	"ScoreTrainer/internal/infrastructure/artifact"
	"ScoreTrainer/internal/infrastructure/storage"
	"ScoreTrainer/internal/logging"
	"ScoreTrainer/internal/ports"
	"ScoreTrainer/internal/usecase"
)

// Application wires configs to the training use case.
type Application struct {
	cfg    config.Config
	store  *artifact.FileStore
	logger *slog.Logger
}

// New builds an application for one training run. test selects the
// "_test" artifact names instead of the production ones.
func New(cfg config.Config, baseLogger *slog.Logger, test bool) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	return &Application{
		cfg:    cfg,
		store:  artifact.NewFileStore(cfg.Artifacts.Dir, artifact.Suffix(test)),
		logger: baseLogger,
	}
}

// Run opens the record store, trains once and closes the store on every path.
func (a *Application) Run(ctx context.Context) (err error) {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	db, err := storage.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close record store: %w", closeErr)
		}
	}()

	trainer := usecase.NewTrainer(usecase.TrainerDeps{
		Source: storage.NewRecordRepository(db),
		Store:  a.store,
		Logger: a.logger.With("component", "trainer"),
	})

	var paths ports.ArtifactPaths
	paths, err = trainer.Run(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("training finished", "encoder", paths.Encoder, "model", paths.Model)
	return nil
}
