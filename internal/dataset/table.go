package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Missing is the sentinel for an absent cell value. CSV parsing maps empty
// fields, "NA" and "null" markers onto it.
const Missing = ""

// Table is the in-memory tabular value the pipeline operates on: ordered
// column names and string cells. All transformations return new tables or
// mutate via the narrow setters here, so stages stay deterministic.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// NewTable creates an empty table with the given column names.
func NewTable(cols []string) *Table {
	t := &Table{
		cols:  append([]string(nil), cols...),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range t.cols {
		t.index[c] = i
	}
	return t
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// AppendRow adds a row. Short rows are padded with Missing; long rows are an error.
func (t *Table) AppendRow(row []string) error {
	if len(row) > len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.cols))
	}
	padded := make([]string, len(t.cols))
	copy(padded, row)
	t.rows = append(t.rows, padded)
	return nil
}

// Cell returns the value at (row, column name). Missing columns read as Missing.
func (t *Table) Cell(row int, col string) string {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return Missing
	}
	return t.rows[row][i]
}

// SetCell sets the value at (row, column name).
func (t *Table) SetCell(row int, col, value string) {
	if i, ok := t.index[col]; ok && row >= 0 && row < len(t.rows) {
		t.rows[row][i] = value
	}
}

// Column returns a copy of one column's values.
func (t *Table) Column(name string) []string {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out
}

// AddColumn appends a column. If values is shorter than the row count the
// remainder is Missing; an existing column of the same name is overwritten.
func (t *Table) AddColumn(name string, values []string) {
	if i, ok := t.index[name]; ok {
		for r := range t.rows {
			v := Missing
			if r < len(values) {
				v = values[r]
			}
			t.rows[r][i] = v
		}
		return
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, name)
	for r := range t.rows {
		v := Missing
		if r < len(values) {
			v = values[r]
		}
		t.rows[r] = append(t.rows[r], v)
	}
}

// DropColumns removes the named columns, ignoring unknown names.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	var keep []int
	var newCols []string
	for i, c := range t.cols {
		if !drop[c] {
			keep = append(keep, i)
			newCols = append(newCols, c)
		}
	}
	if len(keep) == len(t.cols) {
		return
	}

	for r, row := range t.rows {
		newRow := make([]string, len(keep))
		for j, i := range keep {
			newRow[j] = row[i]
		}
		t.rows[r] = newRow
	}
	t.cols = newCols
	t.index = make(map[string]int, len(newCols))
	for i, c := range newCols {
		t.index[c] = i
	}
}

// RenameColumn renames a column in place.
func (t *Table) RenameColumn(from, to string) {
	i, ok := t.index[from]
	if !ok || from == to {
		return
	}
	delete(t.index, from)
	t.cols[i] = to
	t.index[to] = i
}

// Row returns a copy of one row as a column-name map.
func (t *Table) Row(r int) map[string]string {
	if r < 0 || r >= len(t.rows) {
		return nil
	}
	out := make(map[string]string, len(t.cols))
	for i, c := range t.cols {
		out[c] = t.rows[r][i]
	}
	return out
}

// Filter returns a new table with the rows where keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := NewTable(t.cols)
	for r := range t.rows {
		if keep(r) {
			row := make([]string, len(t.rows[r]))
			copy(row, t.rows[r])
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Dedupe returns a new table with exact duplicate rows removed, keeping the
// first occurrence. Row order is otherwise preserved.
func (t *Table) Dedupe() *Table {
	seen := make(map[string]bool, len(t.rows))
	out := NewTable(t.cols)
	for _, row := range t.rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		dup := make([]string, len(row))
		copy(dup, row)
		out.rows = append(out.rows, dup)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := NewTable(t.cols)
	out.rows = make([][]string, len(t.rows))
	for r, row := range t.rows {
		dup := make([]string, len(row))
		copy(dup, row)
		out.rows[r] = dup
	}
	return out
}

// AppendTable appends the rows of other, aligning columns by name. Columns
// present only in other are added; cells absent from either side are Missing.
func (t *Table) AppendTable(other *Table) {
	for _, c := range other.cols {
		if !t.HasColumn(c) {
			t.AddColumn(c, nil)
		}
	}
	for r := 0; r < other.NumRows(); r++ {
		row := make([]string, len(t.cols))
		for i, c := range t.cols {
			if other.HasColumn(c) {
				row[i] = other.Cell(r, c)
			}
		}
		t.rows = append(t.rows, row)
	}
}

// ParseNumber parses a numeric cell, accepting the Brazilian comma decimal
// separator. Missing cells and non-numeric text return ok=false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == Missing {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsMissing reports whether a cell value is a missing-value marker.
func IsMissing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "n/a", "null", "nan", "(null)":
		return true
	}
	return false
}

// ColumnFloats parses a column into floats, returning the values and a
// parallel validity mask.
func (t *Table) ColumnFloats(name string) ([]float64, []bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, nil
	}
	vals := make([]float64, len(t.rows))
	valid := make([]bool, len(t.rows))
	for r, row := range t.rows {
		if IsMissing(row[i]) {
			continue
		}
		if v, ok := ParseNumber(row[i]); ok {
			vals[r] = v
			valid[r] = true
		}
	}
	return vals, valid
}

// IsNumericColumn reports whether every non-missing cell of the column parses
// as a number and at least one value is present.
func (t *Table) IsNumericColumn(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	any := false
	for _, row := range t.rows {
		if IsMissing(row[i]) {
			continue
		}
		if _, ok := ParseNumber(row[i]); !ok {
			return false
		}
		any = true
	}
	return any
}

// Median computes the median of the valid values in a numeric column.
func (t *Table) Median(name string) (float64, bool) {
	vals, valid := t.ColumnFloats(name)
	var present []float64
	for r, v := range vals {
		if valid[r] {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0, false
	}
	sort.Float64s(present)
	n := len(present)
	if n%2 == 1 {
		return present[n/2], true
	}
	return (present[n/2-1] + present[n/2]) / 2, true
}

// Mode returns the most frequent non-missing value of a column; ties break
// lexicographically so cleaning stays deterministic.
func (t *Table) Mode(name string) (string, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	counts := make(map[string]int)
	for _, row := range t.rows {
		if !IsMissing(row[i]) {
			counts[row[i]]++
		}
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, bestN > 0
}

// FormatNumber renders a float the way cells are stored: integers without a
// fraction, everything else with the minimal decimal representation.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
