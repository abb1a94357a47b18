package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ScoreTrainer/internal/dataset"
	"ScoreTrainer/internal/domain"
	"ScoreTrainer/internal/encoder"
	"ScoreTrainer/internal/model/tree"
	"ScoreTrainer/internal/ports"
)

// TrainerDeps wires the driven adapters into the training run.
type TrainerDeps struct {
	Source ports.RecordSource
	Store  ports.ArtifactStore
	Logger *slog.Logger
	Now    func() time.Time
}

// Trainer fits the relevance model from stored records.
type Trainer struct {
	source ports.RecordSource
	store  ports.ArtifactStore
	logger *slog.Logger
	now    func() time.Time
}

// NewTrainer constructs the training use case.
func NewTrainer(deps TrainerDeps) *Trainer {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Trainer{
		source: deps.Source,
		store:  deps.Store,
		logger: deps.Logger,
		now:    now,
	}
}

// Run loads records, fits the encoder and regressor and saves both artifacts.
// Nothing is written unless every earlier stage succeeds.
func (t *Trainer) Run(ctx context.Context) (ports.ArtifactPaths, error) {
	if t.source == nil || t.store == nil {
		return ports.ArtifactPaths{}, fmt.Errorf("trainer is not configured")
	}

	runID := uuid.NewString()
	log := t.log().With("run_id", runID)

	table, err := t.source.LoadRecords(ctx)
	if err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("load records: %w", err)
	}
	log.Info("records loaded", "rows", table.Len())

	enc := encoder.NewOrdinalEncoder(domain.CategoricalColumns...)
	if err := enc.Fit(table); err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("fit encoder: %w", err)
	}
	for _, column := range enc.Columns {
		log.Debug("encoder fitted", "column", column, "categories", len(enc.Categories[column]))
	}

	training := dataset.DropIncomplete(table)
	log.Info("incomplete rows dropped", "kept", training.Len(), "dropped", table.Len()-training.Len())

	X, err := enc.Transform(training)
	if err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("encode features: %w", err)
	}
	y, err := training.Targets()
	if err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("collect targets: %w", err)
	}

	model := tree.NewRegressor()
	if err := model.Fit(X, y); err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("fit regressor: %w", err)
	}
	log.Info("regressor fitted", "samples", len(y), "depth", model.Depth(), "leaves", model.Leaves())

	paths, err := t.store.Save(ctx, ports.ArtifactBundle{
		RunID:     runID,
		TrainedAt: t.now(),
		Samples:   len(y),
		Encoder:   enc,
		Model:     model,
	})
	if err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("save artifacts: %w", err)
	}
	log.Info("artifacts saved", "encoder", paths.Encoder, "model", paths.Model)

	return paths, nil
}

func (t *Trainer) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
