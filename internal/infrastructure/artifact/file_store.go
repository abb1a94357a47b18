package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ScoreTrainer/internal/encoder"
	"ScoreTrainer/internal/model/tree"
	"ScoreTrainer/internal/ports"
)

const (
	encoderBase = "source_encoder"
	modelBase   = "ml_model"
	extension   = ".pkl"
	testSuffix  = "_test"

	kindEncoder = "ordinal_encoder"
	kindModel   = "decision_tree_regressor"
)

// Suffix selects the artifact file suffix for test or production runs.
func Suffix(test bool) string {
	if test {
		return testSuffix
	}
	return ""
}

// EncoderFileName returns the encoder artifact name for a suffix.
func EncoderFileName(suffix string) string { return encoderBase + suffix + extension }

// ModelFileName returns the model artifact name for a suffix.
func ModelFileName(suffix string) string { return modelBase + suffix + extension }

type header struct {
	Kind      string    `json:"kind"`
	RunID     string    `json:"run_id"`
	TrainedAt time.Time `json:"trained_at"`
	Samples   int       `json:"samples"`
}

type encoderFile struct {
	header
	Encoder *encoder.OrdinalEncoder `json:"encoder"`
}

type modelFile struct {
	header
	Features []string       `json:"features"`
	Model    *tree.Regressor `json:"model"`
}

// FileStore writes artifact pairs to a local directory, overwriting
// any previous pair with the same suffix.
type FileStore struct {
	dir    string
	suffix string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore builds a store rooted at dir.
func NewFileStore(dir, suffix string) *FileStore {
	return &FileStore{dir: dir, suffix: suffix}
}

// Paths reports the files this store writes.
func (s *FileStore) Paths() ports.ArtifactPaths {
	return ports.ArtifactPaths{
		Encoder: filepath.Join(s.dir, EncoderFileName(s.suffix)),
		Model:   filepath.Join(s.dir, ModelFileName(s.suffix)),
	}
}

// Save serializes both artifacts before touching the filesystem,
// so an encoding failure leaves previous files in place.
func (s *FileStore) Save(ctx context.Context, bundle ports.ArtifactBundle) (ports.ArtifactPaths, error) {
	if bundle.Encoder == nil || bundle.Model == nil {
		return ports.ArtifactPaths{}, fmt.Errorf("incomplete artifact bundle")
	}

	meta := header{
		RunID:     bundle.RunID,
		TrainedAt: bundle.TrainedAt.UTC(),
		Samples:   bundle.Samples,
	}

	encMeta := meta
	encMeta.Kind = kindEncoder
	encBytes, err := json.Marshal(encoderFile{header: encMeta, Encoder: bundle.Encoder})
	if err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("marshal encoder: %w", err)
	}

	modelMeta := meta
	modelMeta.Kind = kindModel
	modelBytes, err := json.Marshal(modelFile{header: modelMeta, Features: bundle.Encoder.Columns, Model: bundle.Model})
	if err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("marshal model: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return ports.ArtifactPaths{}, err
	}

	paths := s.Paths()
	if err := writeFile(paths.Encoder, encBytes); err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("write encoder: %w", err)
	}
	if err := writeFile(paths.Model, modelBytes); err != nil {
		return ports.ArtifactPaths{}, fmt.Errorf("write model: %w", err)
	}

	return paths, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// LoadEncoder reads an encoder artifact.
func LoadEncoder(path string) (*encoder.OrdinalEncoder, error) {
	var file encoderFile
	if err := readJSON(path, &file); err != nil {
		return nil, err
	}
	if file.Kind != kindEncoder || file.Encoder == nil {
		return nil, fmt.Errorf("%s: not an encoder artifact", path)
	}
	return file.Encoder, nil
}

// LoadModel reads a model artifact.
func LoadModel(path string) (*tree.Regressor, error) {
	var file modelFile
	if err := readJSON(path, &file); err != nil {
		return nil, err
	}
	if file.Kind != kindModel || file.Model == nil {
		return nil, fmt.Errorf("%s: not a model artifact", path)
	}
	return file.Model, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
