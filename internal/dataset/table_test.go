package dataset

import (
	"database/sql"
	"errors"
	"testing"

	"ScoreTrainer/internal/domain"
)

func str(v string) sql.NullString   { return sql.NullString{String: v, Valid: true} }
func num(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

func completeRecord(id, author, source string, score float64) domain.Record {
	return domain.Record{
		ID:                          id,
		Author:                      str(author),
		Title:                       str("title " + id),
		URL:                         str("https://example.org/" + id),
		PublishedAt:                 str("2024-03-01T10:00:00Z"),
		Content:                     str("content " + id),
		SourceName:                  str(source),
		PredictedScoreWhenPresented: num(3),
		AssignedScore:               num(score),
	}
}

func TestNewTableRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	_, err := NewTable([]domain.Record{
		completeRecord("1", "A", "X", 5),
		completeRecord("1", "B", "Y", 7),
	})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestTableLookupAndColumn(t *testing.T) {
	t.Parallel()

	missing := completeRecord("3", "A", "", 9)
	missing.SourceName = sql.NullString{}

	table, err := NewTable([]domain.Record{
		completeRecord("1", "A", "X", 5),
		completeRecord("2", "B", "Y", 7),
		missing,
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}

	rec, ok := table.Lookup("2")
	if !ok || rec.Author.String != "B" {
		t.Fatalf("lookup 2: got %+v, %v", rec, ok)
	}
	if _, ok := table.Lookup("42"); ok {
		t.Fatalf("lookup of absent id should fail")
	}

	sources, err := table.Column(domain.ColumnSourceName)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if len(sources) != 3 || sources[0].String != "X" || sources[2].Valid {
		t.Fatalf("unexpected source column: %+v", sources)
	}

	if _, err := table.Column(domain.ColumnTitle); err == nil {
		t.Fatalf("expected error for non-categorical column")
	}
}

func TestTargetsFailOnMissingScore(t *testing.T) {
	t.Parallel()

	rec := completeRecord("1", "A", "X", 5)
	rec.AssignedScore = sql.NullFloat64{}
	table, err := NewTable([]domain.Record{rec})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	if _, err := table.Targets(); err == nil {
		t.Fatalf("expected error for missing target")
	}
}
