package table

import (
	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// View is a zero-copy row selection over a parent's columns.
//
// The column slice and Index are captured when the view is created, so a
// structural change to the parent (adding, deleting or replacing columns)
// does not affect the view. Cell writes through a shared Vector do.
type View struct {
	columns []column.Column
	index   *Index
	rows    []int
}

func newView(cols []column.Column, index *Index, rows []int) *View {
	owned := make([]int, len(rows))
	copy(owned, rows)
	return &View{columns: cols, index: index, rows: owned}
}

// NumRows returns the number of selected rows.
func (v *View) NumRows() int { return len(v.rows) }

// NumCols returns the column count of the captured layout.
func (v *View) NumCols() int { return len(v.columns) }

// Names returns the column names of the captured layout.
func (v *View) Names() []string { return v.index.Names() }

// Index returns the captured index.
func (v *View) Index() *Index { return v.index }

// RowPositions returns the parent row of every view row.
func (v *View) RowPositions() []int {
	out := make([]int, len(v.rows))
	copy(out, v.rows)
	return out
}

// Column returns a read-through column restricted to the view rows.
func (v *View) Column(i int) (column.Column, error) {
	if i < 0 || i >= len(v.columns) {
		return nil, tberrors.IndexOutOfRange("column %d outside [0, %d)", i, len(v.columns))
	}
	return column.NewSubset(v.columns[i], v.rows), nil
}

// ColumnByName returns the named column restricted to the view rows.
func (v *View) ColumnByName(name string) (column.Column, error) {
	i, ok := v.index.Position(name)
	if !ok {
		return nil, tberrors.UnknownColumn(name)
	}
	return column.NewSubset(v.columns[i], v.rows), nil
}

// Rows selects rows of the view. Positions are relative to the view and
// validated against it only; the result addresses the parent directly.
func (v *View) Rows(rows []int) (*View, error) {
	if err := checkRows(rows, len(v.rows)); err != nil {
		return nil, err
	}
	composed := make([]int, len(rows))
	for i, r := range rows {
		composed[i] = v.rows[r]
	}
	return &View{columns: v.columns, index: v.index, rows: composed}, nil
}

// Where returns the view rows for which pred holds. pred receives view
// positions.
func (v *View) Where(pred func(row int) bool) *View {
	local := matching(len(v.rows), pred)
	composed := make([]int, len(local))
	for i, r := range local {
		composed[i] = v.rows[r]
	}
	return &View{columns: v.columns, index: v.index, rows: composed}
}

// Mask returns the view rows whose mask entry is true.
func (v *View) Mask(mask []bool) (*View, error) {
	if len(mask) != len(v.rows) {
		return nil, tberrors.DimensionMismatch("mask has %d rows, view has %d", len(mask), len(v.rows))
	}
	return v.Where(func(i int) bool { return mask[i] }), nil
}

// Materialize gathers the view rows into a new Table with its own data.
func (v *View) Materialize() *Table {
	cols := make([]column.Column, len(v.columns))
	for i, c := range v.columns {
		cols[i] = c.Take(v.rows)
	}
	return &Table{columns: cols, index: v.index.shallow()}
}
