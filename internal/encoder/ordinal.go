package encoder

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
)

// UnknownValue is the code returned for categories not seen during Fit.
const UnknownValue = 999

var (
	// ErrNotFitted is returned when transforming with an encoder that has no categories.
	ErrNotFitted = errors.New("encoder is not fitted")
	// ErrMissingValue is returned when a transformed column contains a missing value.
	ErrMissingValue = errors.New("missing categorical value")
	// ErrSentinelInRange is returned by Fit when a column has so many categories
	// that a real code would equal UnknownValue.
	ErrSentinelInRange = errors.New("unknown value collides with a category code")
)

// ColumnSource exposes nominal columns by name, in row order.
type ColumnSource interface {
	Len() int
	Column(name string) ([]sql.NullString, error)
}

// OrdinalEncoder maps each distinct value of a nominal column to an integer code.
// Codes follow the sorted order of the observed values and carry no numeric meaning.
type OrdinalEncoder struct {
	Columns      []string            `json:"columns"`
	UnknownValue int                 `json:"unknown_value"`
	Categories   map[string][]string `json:"categories"`

	codes map[string]map[string]int
}

// NewOrdinalEncoder creates an unfitted encoder over the given columns.
func NewOrdinalEncoder(columns ...string) *OrdinalEncoder {
	return &OrdinalEncoder{
		Columns:      slices.Clone(columns),
		UnknownValue: UnknownValue,
	}
}

// Fit learns the categories of every configured column.
// Missing values are ignored, so rows that are later filtered out still
// contribute their categories.
func (e *OrdinalEncoder) Fit(src ColumnSource) error {
	categories := make(map[string][]string, len(e.Columns))
	for _, column := range e.Columns {
		values, err := src.Column(column)
		if err != nil {
			return fmt.Errorf("fit %s: %w", column, err)
		}

		seen := make(map[string]struct{})
		for _, v := range values {
			if v.Valid {
				seen[v.String] = struct{}{}
			}
		}

		distinct := make([]string, 0, len(seen))
		for v := range seen {
			distinct = append(distinct, v)
		}
		slices.Sort(distinct)
		if e.UnknownValue >= 0 && len(distinct) > e.UnknownValue {
			return fmt.Errorf("fit %s: %d categories: %w", column, len(distinct), ErrSentinelInRange)
		}
		categories[column] = distinct
	}

	e.Categories = categories
	e.buildIndex()
	return nil
}

// Encode returns the code of value in column, or UnknownValue if it was never seen.
func (e *OrdinalEncoder) Encode(column, value string) int {
	if e.codes == nil {
		e.buildIndex()
	}
	if code, ok := e.codes[column][value]; ok {
		return code
	}
	return e.UnknownValue
}

// Transform encodes the configured columns into a row-major feature matrix.
func (e *OrdinalEncoder) Transform(src ColumnSource) ([][]float64, error) {
	if e.Categories == nil {
		return nil, ErrNotFitted
	}

	matrix := make([][]float64, src.Len())
	for i := range matrix {
		matrix[i] = make([]float64, len(e.Columns))
	}

	for j, column := range e.Columns {
		values, err := src.Column(column)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", column, err)
		}
		if len(values) != len(matrix) {
			return nil, fmt.Errorf("transform %s: got %d values for %d rows", column, len(values), len(matrix))
		}
		for i, v := range values {
			if !v.Valid {
				return nil, fmt.Errorf("transform %s row %d: %w", column, i, ErrMissingValue)
			}
			matrix[i][j] = float64(e.Encode(column, v.String))
		}
	}

	return matrix, nil
}

func (e *OrdinalEncoder) buildIndex() {
	e.codes = make(map[string]map[string]int, len(e.Categories))
	for column, values := range e.Categories {
		index := make(map[string]int, len(values))
		for code, v := range values {
			index[v] = code
		}
		e.codes[column] = index
	}
}
