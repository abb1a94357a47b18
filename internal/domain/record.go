package domain

import "database/sql"

// Column names of the record table, in the order a full scan returns them.
const (
	ColumnID                          = "id"
	ColumnAuthor                      = "author"
	ColumnTitle                       = "title"
	ColumnURL                         = "url"
	ColumnPublishedAt                 = "published_at"
	ColumnContent                     = "content"
	ColumnSourceName                  = "source_name"
	ColumnPredictedScoreWhenPresented = "predicted_score_when_presented"
	ColumnAssignedScore               = "assigned_score"
)

// RecordTable is the table holding scored article observations.
const RecordTable = "record"

// Columns is the positional schema of RecordTable.
var Columns = []string{
	ColumnID,
	ColumnAuthor,
	ColumnTitle,
	ColumnURL,
	ColumnPublishedAt,
	ColumnContent,
	ColumnSourceName,
	ColumnPredictedScoreWhenPresented,
	ColumnAssignedScore,
}

// CategoricalColumns are the nominal columns used as model features.
var CategoricalColumns = []string{ColumnAuthor, ColumnSourceName}

// TargetColumn holds the human-assigned relevance score.
const TargetColumn = ColumnAssignedScore

// Record is one article observation as stored by the reader application.
type Record struct {
	ID                          string          `db:"id"`
	Author                      sql.NullString  `db:"author"`
	Title                       sql.NullString  `db:"title"`
	URL                         sql.NullString  `db:"url"`
	PublishedAt                 sql.NullString  `db:"published_at"`
	Content                     sql.NullString  `db:"content"`
	SourceName                  sql.NullString  `db:"source_name"`
	PredictedScoreWhenPresented sql.NullFloat64 `db:"predicted_score_when_presented"`
	AssignedScore               sql.NullFloat64 `db:"assigned_score"`
}

// Complete reports whether every column carries a value.
// The ID is the row key and is never treated as missing.
func (r Record) Complete() bool {
	return r.Author.Valid &&
		r.Title.Valid &&
		r.URL.Valid &&
		r.PublishedAt.Valid &&
		r.Content.Valid &&
		r.SourceName.Valid &&
		r.PredictedScoreWhenPresented.Valid &&
		r.AssignedScore.Valid
}

// Categorical returns the value of a nominal column.
// ok is false when the column is unknown or the value is missing.
func (r Record) Categorical(column string) (value string, ok bool) {
	switch column {
	case ColumnAuthor:
		return r.Author.String, r.Author.Valid
	case ColumnSourceName:
		return r.SourceName.String, r.SourceName.Valid
	default:
		return "", false
	}
}
