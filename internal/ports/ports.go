package ports

import (
	"context"
	"time"

	"ScoreTrainer/internal/dataset"
	"ScoreTrainer/internal/encoder"
	"ScoreTrainer/internal/model/tree"
)

// RecordSource loads every stored article record.
type RecordSource interface {
	LoadRecords(ctx context.Context) (*dataset.Table, error)
}

// ArtifactStore persists a fitted encoder and model as one pair.
type ArtifactStore interface {
	Save(ctx context.Context, bundle ArtifactBundle) (ArtifactPaths, error)
}

// ArtifactBundle is the output of one training run. The model only makes
// sense together with the encoder that produced its training features.
type ArtifactBundle struct {
	RunID     string
	TrainedAt time.Time
	Samples   int
	Encoder   *encoder.OrdinalEncoder
	Model     *tree.Regressor
}

// ArtifactPaths records where a bundle was written.
type ArtifactPaths struct {
	Encoder string
	Model   string
}
