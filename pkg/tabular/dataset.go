// Package tabular holds the in-memory dataset shared by sources, the link
// engine and destinations.
//
// A Dataset is an ordered list of column names and an ordered list of rows.
// Cells are Values; a Value that is not Valid is null (an empty CSV field or
// an empty workbook cell). Column names are unique once a dataset has been
// loaded through NormalizeHeader.
package tabular

import (
	"fmt"
)

// Value is a single cell.
type Value struct {
	Text  string
	Valid bool
}

// String returns a valid cell's text. Null cells render as the empty string.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return v.Text
}

// Null is the absent value.
var Null = Value{}

// Text returns a valid cell holding s.
func Text(s string) Value {
	return Value{Text: s, Valid: true}
}

// Cell converts a raw field into a Value; empty strings are null.
func Cell(s string) Value {
	if s == "" {
		return Null
	}
	return Text(s)
}

// Row is one record, aligned with Dataset.Columns.
type Row []Value

// Dataset is an ordered set of named columns and rows.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// New creates an empty dataset with the given columns.
func New(name string, columns ...string) *Dataset {
	return &Dataset{
		Name:    name,
		Columns: append([]string(nil), columns...),
	}
}

// FromRecords builds a dataset from raw string rows. Rows are padded or
// truncated to the column count and empty strings become nulls.
func FromRecords(name string, columns []string, records [][]string) *Dataset {
	ds := New(name, columns...)
	ds.Rows = make([]Row, 0, len(records))
	for _, rec := range records {
		ds.Rows = append(ds.Rows, ds.rowFrom(rec))
	}
	return ds
}

func (d *Dataset) rowFrom(rec []string) Row {
	row := make(Row, len(d.Columns))
	for i := range row {
		if i < len(rec) {
			row[i] = Cell(rec[i])
		}
	}
	return row
}

// Append adds a raw record, padding or truncating it to the dataset width.
func (d *Dataset) Append(rec ...string) {
	d.Rows = append(d.Rows, d.rowFrom(rec))
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Width returns the number of columns.
func (d *Dataset) Width() int {
	return len(d.Columns)
}

// ColumnIndex returns the position of name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// ColumnSet returns the column names as a set.
func (d *Dataset) ColumnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		set[c] = struct{}{}
	}
	return set
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := New(d.Name, d.Columns...)
	out.Rows = make([]Row, len(d.Rows))
	for i, row := range d.Rows {
		out.Rows[i] = append(Row(nil), row...)
	}
	return out
}

// RenameColumn renames old to new in place.
func (d *Dataset) RenameColumn(old, new string) error {
	idx := d.ColumnIndex(old)
	if idx < 0 {
		return fmt.Errorf("column %q not found", old)
	}
	if old == new {
		return nil
	}
	if d.HasColumn(new) {
		return fmt.Errorf("column %q already exists", new)
	}
	d.Columns[idx] = new
	return nil
}

// DropColumn removes name in place. Dropping an absent column is a no-op.
func (d *Dataset) DropColumn(name string) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return
	}
	d.Columns = append(d.Columns[:idx:idx], d.Columns[idx+1:]...)
	for i, row := range d.Rows {
		d.Rows[i] = append(row[:idx:idx], row[idx+1:]...)
	}
}

// Select returns a new dataset holding only columns, in the given order.
func (d *Dataset) Select(columns []string) (*Dataset, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = d.ColumnIndex(c)
		if idx[i] < 0 {
			return nil, fmt.Errorf("column %q not found", c)
		}
	}
	out := New(d.Name, columns...)
	out.Rows = make([]Row, len(d.Rows))
	for r, row := range d.Rows {
		nr := make(Row, len(idx))
		for i, j := range idx {
			nr[i] = row[j]
		}
		out.Rows[r] = nr
	}
	return out, nil
}

// Head returns a dataset sharing d's columns with at most n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 || n >= len(d.Rows) {
		n = len(d.Rows)
	}
	out := New(d.Name, d.Columns...)
	out.Rows = d.Rows[:n]
	return out
}

// Strings returns the rows as raw strings, nulls rendered empty.
func (d *Dataset) Strings() [][]string {
	out := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.String()
		}
		out[i] = rec
	}
	return out
}

// Equal reports whether both datasets have the same columns and cells.
// Names are ignored.
func (d *Dataset) Equal(other *Dataset) bool {
	if other == nil || len(d.Columns) != len(other.Columns) || len(d.Rows) != len(other.Rows) {
		return false
	}
	for i := range d.Columns {
		if d.Columns[i] != other.Columns[i] {
			return false
		}
	}
	for i := range d.Rows {
		for j := range d.Rows[i] {
			if d.Rows[i][j] != other.Rows[i][j] {
				return false
			}
		}
	}
	return true
}
