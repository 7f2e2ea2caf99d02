package corpus

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
)

// Canonical and fallback column names recognized by Normalize.
const (
	ColumnOfficialLabel = "official_label"
	ColumnLabel         = "label"
	ColumnCleanCode     = "clean_code"
	ColumnOboID         = "obo_id"
)

// codePattern extracts the ontology code from a prefixed identifier,
// e.g. "NCIT:C156482" -> "C156482".
var codePattern = regexp.MustCompile(`C\d+`)

// Table is a minimal column-addressable string table.
// All cell values are strings; absent cells read as "".
type Table struct {
	columns []string
	rows    []map[string]string
}

// NewTable creates an empty table with the given column set.
func NewTable(columns ...string) *Table {
	return &Table{columns: slices.Clone(columns)}
}

// AppendRow adds a row to the table. Values for unknown columns are ignored.
func (t *Table) AppendRow(values map[string]string) {
	row := make(map[string]string, len(t.columns))
	for _, col := range t.columns {
		row[col] = values[col]
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.columns, name)
}

// Column returns all values of the named column in row order.
// Returns ErrColumnNotFound for unknown columns.
func (t *Table) Column(name string) ([]string, error) {
	if !t.HasColumn(name) {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	values := make([]string, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[name]
	}
	return values, nil
}

// Cell returns the value at row i of the named column.
func (t *Table) Cell(i int, name string) string {
	return t.rows[i][name]
}

// Normalize cleans a reference table into the canonical shape required by
// the cascade and returns a new table; the input is never modified.
//
//   - official_label: substituted from label when absent, otherwise
//     ErrMissingLabelColumn
//   - clean_code (when needCode): extracted from obo_id when absent,
//     otherwise ErrMissingCodeColumn
//   - rows with empty key values are dropped, duplicate key tuples are
//     dropped, first occurrence wins
//
// Normalizing an already-normalized table is a no-op.
func Normalize(t *Table, needCode bool, logger *slog.Logger) (*Table, error) {
	if t == nil {
		return nil, ErrNilTable
	}
	if logger == nil {
		logger = slog.Default()
	}

	columns := slices.Clone(t.columns)

	labelFrom := ColumnOfficialLabel
	if !t.HasColumn(ColumnOfficialLabel) {
		if !t.HasColumn(ColumnLabel) {
			return nil, ErrMissingLabelColumn
		}
		labelFrom = ColumnLabel
		columns = append(columns, ColumnOfficialLabel)
		logger.Info("official_label not found, using label as fallback")
	}

	deriveCode := false
	if needCode && !t.HasColumn(ColumnCleanCode) {
		if !t.HasColumn(ColumnOboID) {
			return nil, ErrMissingCodeColumn
		}
		deriveCode = true
		columns = append(columns, ColumnCleanCode)
		logger.Info("clean_code not found, deriving from obo_id")
	}

	out := &Table{columns: columns}
	seen := make(map[string]bool, len(t.rows))
	for _, row := range t.rows {
		clean := make(map[string]string, len(columns))
		for k, v := range row {
			clean[k] = v
		}
		clean[ColumnOfficialLabel] = row[labelFrom]
		if deriveCode {
			clean[ColumnCleanCode] = codePattern.FindString(row[ColumnOboID])
		}

		if clean[ColumnOfficialLabel] == "" {
			continue
		}
		if needCode && clean[ColumnCleanCode] == "" {
			continue
		}

		key := clean[ColumnOfficialLabel]
		if needCode {
			key += "\x00" + clean[ColumnCleanCode]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out.rows = append(out.rows, clean)
	}

	return out, nil
}

// UniqueLabels returns the deduplicated official_label values of a
// normalized table, preserving row order.
func UniqueLabels(t *Table) ([]string, error) {
	labels, err := t.Column(ColumnOfficialLabel)
	if err != nil {
		return nil, err
	}
	return Dedupe(labels), nil
}

// Dedupe removes duplicate strings while preserving first-occurrence order.
func Dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// NormalizeTerm produces the comparison form used by exact matching:
// trimmed and case-folded.
func NormalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
