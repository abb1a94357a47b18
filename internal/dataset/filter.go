package dataset

import "ScoreTrainer/internal/domain"

// DropIncomplete keeps only the rows where every column is present.
// Missing values are never imputed; a row missing any field is dropped
// even if that field is not a model feature.
func DropIncomplete(t *Table) *Table {
	kept := make([]domain.Record, 0, t.Len())
	for _, rec := range t.Records() {
		if rec.Complete() {
			kept = append(kept, rec)
		}
	}
	// IDs are already unique in t.
	out, _ := NewTable(kept)
	return out
}
