package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"ScoreTrainer/internal/config"
	"ScoreTrainer/internal/encoder"
	"ScoreTrainer/internal/infrastructure/artifact"
	"ScoreTrainer/internal/infrastructure/storage"
	"ScoreTrainer/internal/logging"
)

func seedStore(t *testing.T, path string, inserts ...string) {
	t.Helper()

	ctx := context.Background()
	db, err := storage.Open(ctx, storage.DriverSQLite, path)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	defer db.Close()

	stmts := append([]string{`CREATE TABLE record (
		id INTEGER PRIMARY KEY,
		author TEXT,
		title TEXT,
		url TEXT,
		published_at TEXT,
		content TEXT,
		source_name TEXT,
		predicted_score_when_presented REAL,
		assigned_score REAL
	)`}, inserts...)
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func testConfig(dir string) config.Config {
	return config.Config{
		Database:  config.DatabaseConfig{Driver: storage.DriverSQLite, DSN: filepath.Join(dir, "site.db")},
		Artifacts: config.ArtifactsConfig{Dir: dir},
		Logging:   config.LoggingConfig{Level: "debug"},
	}
}

func TestApplicationRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		test    bool
		encoder string
		model   string
	}{
		{name: "production", test: false, encoder: "source_encoder.pkl", model: "ml_model.pkl"},
		{name: "test", test: true, encoder: "source_encoder_test.pkl", model: "ml_model_test.pkl"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			cfg := testConfig(dir)
			seedStore(t, cfg.Database.DSN,
				`INSERT INTO record VALUES (1, 'A', 't', 'u', '2024-01-01', 'c', 'X', 3, 5)`,
				`INSERT INTO record VALUES (2, 'B', 't', 'u', '2024-01-01', 'c', 'Y', 3, 7)`,
				`INSERT INTO record VALUES (3, 'A', 't', 'u', '2024-01-01', 'c', NULL, 3, 9)`,
			)

			var logs bytes.Buffer
			application := New(cfg, logging.NewWithWriter(&logs, cfg.Logging.Level), tt.test)
			if err := application.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}

			for _, name := range []string{tt.encoder, tt.model} {
				info, err := os.Stat(filepath.Join(dir, name))
				if err != nil {
					t.Fatalf("artifact %s: %v", name, err)
				}
				if info.Size() == 0 {
					t.Fatalf("artifact %s is empty", name)
				}
			}

			enc, err := artifact.LoadEncoder(filepath.Join(dir, tt.encoder))
			if err != nil {
				t.Fatalf("LoadEncoder: %v", err)
			}
			model, err := artifact.LoadModel(filepath.Join(dir, tt.model))
			if err != nil {
				t.Fatalf("LoadModel: %v", err)
			}

			x := []float64{float64(enc.Encode("author", "A")), float64(enc.Encode("source_name", "X"))}
			if got := model.Predict(x); got != 5 {
				t.Fatalf("Predict(A, X) = %v, want 5", got)
			}
			if enc.Encode("author", "C") != encoder.UnknownValue {
				t.Fatalf("unseen author should map to %d", encoder.UnknownValue)
			}

			if !bytes.Contains(logs.Bytes(), []byte("run_id=")) {
				t.Fatalf("expected run id in logs: %s", logs.String())
			}
		})
	}
}

func TestApplicationRunWritesNothingWithoutCompleteRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig(dir)
	seedStore(t, cfg.Database.DSN,
		`INSERT INTO record VALUES (1, 'A', 't', NULL, '2024-01-01', 'c', 'X', 3, 5)`,
		`INSERT INTO record VALUES (2, 'B', 't', 'u', '2024-01-01', 'c', 'Y', 3, NULL)`,
	)

	var logs bytes.Buffer
	if err := New(cfg, logging.NewWithWriter(&logs, "error"), false).Run(context.Background()); err == nil {
		t.Fatalf("expected run to fail")
	}

	for _, name := range []string{"source_encoder.pkl", "ml_model.pkl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("artifact %s should not exist, stat err = %v", name, err)
		}
	}
}

func TestApplicationRunRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t.TempDir())
	cfg.Database.Driver = "oracle"

	var logs bytes.Buffer
	if err := New(cfg, logging.NewWithWriter(&logs, "error"), false).Run(context.Background()); err == nil {
		t.Fatalf("expected invalid config error")
	}
}
