package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ScoreTrainer/internal/dataset"
	"ScoreTrainer/internal/domain"
	"ScoreTrainer/internal/ports"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrSchemaMismatch is returned when the record table does not have the expected columns.
var ErrSchemaMismatch = errors.New("record table schema mismatch")

// Open connects to the record store and verifies the connection.
// The caller owns the returned handle and must close it.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// RecordRepository reads scored articles from the record table.
type RecordRepository struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

var _ ports.RecordSource = (*RecordRepository)(nil)

// NewRecordRepository wires a sqlx.DB implementation.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if sqlx.BindType(db.DriverName()) == sqlx.DOLLAR {
		placeholder = sq.Dollar
	}
	return &RecordRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// LoadRecords scans the whole record table into memory.
func (r *RecordRepository) LoadRecords(ctx context.Context) (*dataset.Table, error) {
	query, args, err := r.builder.Select("*").From(domain.RecordTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("read columns: %w", err)
	}
	if !slices.Equal(columns, domain.Columns) {
		_ = rows.Close()
		return nil, fmt.Errorf("%w: expected %v, got %v", ErrSchemaMismatch, domain.Columns, columns)
	}

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.StructScan(&rec); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	table, err := dataset.NewTable(records)
	if err != nil {
		return nil, fmt.Errorf("index records: %w", err)
	}
	return table, nil
}
