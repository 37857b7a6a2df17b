package table

import (
	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Frame is the read side shared by Table and View.
type Frame interface {
	NumRows() int
	NumCols() int
	Names() []string
	Index() *Index
	Column(i int) (column.Column, error)
	ColumnByName(name string) (column.Column, error)

	// Rows selects rows by position and returns a View over them.
	Rows(rows []int) (*View, error)

	// Materialize returns a Table owning the frame's data.
	Materialize() *Table
}

// ColumnsByName resolves several names at once.
func ColumnsByName(f Frame, names ...string) ([]column.Column, error) {
	cols := make([]column.Column, len(names))
	for i, name := range names {
		c, err := f.ColumnByName(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return cols, nil
}

// Records returns the frame row by row, with nil for missing cells.
func Records(f Frame) [][]interface{} {
	n, m := f.NumRows(), f.NumCols()
	cols := make([]column.Column, m)
	for j := range cols {
		cols[j], _ = f.Column(j)
	}
	out := make([][]interface{}, n)
	for i := range out {
		row := make([]interface{}, m)
		for j, c := range cols {
			row[j] = c.Value(i)
		}
		out[i] = row
	}
	return out
}

// Cell returns the value at row i of the named column.
func Cell(f Frame, i int, name string) (interface{}, error) {
	c, err := f.ColumnByName(name)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= c.Len() {
		return nil, tberrors.IndexOutOfRange("row %d outside [0, %d)", i, c.Len())
	}
	return c.Value(i), nil
}

func checkRows(rows []int, n int) error {
	for _, r := range rows {
		if r < 0 || r >= n {
			return tberrors.IndexOutOfRange("row %d outside [0, %d)", r, n)
		}
	}
	return nil
}
