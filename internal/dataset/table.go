package dataset

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"ScoreTrainer/internal/domain"
)

// ErrDuplicateID is returned when two records share an identifier.
var ErrDuplicateID = errors.New("duplicate record id")

// Table is an in-memory view of the record table keyed by record ID.
// Row order is the order the records were loaded in.
type Table struct {
	records []domain.Record
	index   map[string]int
}

// NewTable builds a table over records, indexing them by ID.
func NewTable(records []domain.Record) (*Table, error) {
	t := &Table{
		records: make([]domain.Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, rec := range records {
		if _, exists := t.index[rec.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		t.index[rec.ID] = len(t.records)
		t.records = append(t.records, rec)
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the rows in table order.
func (t *Table) Records() []domain.Record {
	if t == nil {
		return nil
	}
	return slices.Clone(t.records)
}

// Lookup finds a row by its identifier.
func (t *Table) Lookup(id string) (domain.Record, bool) {
	if t == nil {
		return domain.Record{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return domain.Record{}, false
	}
	return t.records[i], true
}

// Column returns the values of a categorical column in row order.
func (t *Table) Column(name string) ([]sql.NullString, error) {
	if !slices.Contains(domain.CategoricalColumns, name) {
		return nil, fmt.Errorf("column %s is not categorical", name)
	}
	values := make([]sql.NullString, 0, t.Len())
	for _, rec := range t.Records() {
		v, ok := rec.Categorical(name)
		values = append(values, sql.NullString{String: v, Valid: ok})
	}
	return values, nil
}

// Targets returns the assigned scores in row order.
// Missing scores are reported as an error; filter the table first.
func (t *Table) Targets() ([]float64, error) {
	targets := make([]float64, 0, t.Len())
	for _, rec := range t.Records() {
		if !rec.AssignedScore.Valid {
			return nil, fmt.Errorf("record %s: missing %s", rec.ID, domain.TargetColumn)
		}
		targets = append(targets, rec.AssignedScore.Float64)
	}
	return targets, nil
}
