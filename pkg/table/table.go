// Package table implements the columnar Table, its name Index and
// zero-copy row Views, together with row/column binding and sorting.
package table

import (
	"fmt"

	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	columns []column.Column
	index   *Index
}

// New builds a table from columns and their names.
func New(cols []column.Column, names []string) (*Table, error) {
	if len(cols) != len(names) {
		return nil, tberrors.DimensionMismatch("%d columns but %d names", len(cols), len(names))
	}
	for i := 1; i < len(cols); i++ {
		if cols[i].Len() != cols[0].Len() {
			return nil, tberrors.DimensionMismatch("column %q has %d rows, column %q has %d",
				names[i], cols[i].Len(), names[0], cols[0].Len())
		}
	}
	index, err := NewIndex(names)
	if err != nil {
		return nil, err
	}
	owned := make([]column.Column, len(cols))
	copy(owned, cols)
	return &Table{columns: owned, index: index}, nil
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	t, _ := New(nil, nil)
	return t
}

// NumRows returns the row count; a table without columns has none.
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string { return t.index.Names() }

// Index returns the current name index.
func (t *Table) Index() *Index { return t.index }

// Column returns the column at position i.
func (t *Table) Column(i int) (column.Column, error) {
	if i < 0 || i >= len(t.columns) {
		return nil, tberrors.IndexOutOfRange("column %d outside [0, %d)", i, len(t.columns))
	}
	return t.columns[i], nil
}

// ColumnByName returns the named column.
func (t *Table) ColumnByName(name string) (column.Column, error) {
	i, ok := t.index.Position(name)
	if !ok {
		return nil, tberrors.UnknownColumn(name)
	}
	return t.columns[i], nil
}

// Materialize returns t itself; a Table already owns its columns.
func (t *Table) Materialize() *Table { return t }

// checkLength validates a column about to be stored. A table with zero
// rows adopts the new length; its existing empty columns are padded with
// missing rows so every column keeps the same length.
func (t *Table) checkLength(c column.Column, replacing int) error {
	n := t.NumRows()
	if len(t.columns) == 0 || c.Len() == n {
		return nil
	}
	if n != 0 {
		return tberrors.DimensionMismatch("column has %d rows, table has %d", c.Len(), n)
	}
	cols := t.cowColumns()
	for j, existing := range cols {
		if j == replacing {
			continue
		}
		padded, err := column.NewMissing(existing.Kind(), c.Len())
		if err != nil {
			return err
		}
		cols[j] = padded
	}
	t.columns = cols
	return nil
}

// Set replaces the column at position i.
func (t *Table) Set(i int, c column.Column) error {
	if i < 0 || i >= len(t.columns) {
		return tberrors.IndexOutOfRange("column %d outside [0, %d)", i, len(t.columns))
	}
	if err := t.checkLength(c, i); err != nil {
		return err
	}
	t.columns = t.cowColumns()
	t.columns[i] = c
	return nil
}

// SetByName replaces the named column, appending it when the name is new.
func (t *Table) SetByName(name string, c column.Column) error {
	if i, ok := t.index.Position(name); ok {
		return t.Set(i, c)
	}
	index, err := t.index.appendName(name)
	if err != nil {
		return err
	}
	if err := t.checkLength(c, -1); err != nil {
		return err
	}
	t.columns = append(t.cowColumns(), c)
	t.index = index
	return nil
}

// cowColumns copies the column slice so Views holding the old slice keep
// their layout.
func (t *Table) cowColumns() []column.Column {
	out := make([]column.Column, len(t.columns), len(t.columns)+1)
	copy(out, t.columns)
	return out
}

// Delete removes the columns at the given positions.
func (t *Table) Delete(positions ...int) error {
	drop := make(map[int]bool, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(t.columns) {
			return tberrors.New(tberrors.ErrCategorySchema, tberrors.CodeUnknownColumn,
				fmt.Sprintf("column position %d outside [0, %d)", p, len(t.columns)))
		}
		drop[p] = true
	}
	keep := make([]int, 0, len(t.columns)-len(drop))
	for i := range t.columns {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	index, err := t.index.selectPositions(keep)
	if err != nil {
		return err
	}
	cols := make([]column.Column, len(keep))
	for i, p := range keep {
		cols[i] = t.columns[p]
	}
	t.columns = cols
	t.index = index
	return nil
}

// DeleteNames removes the named columns.
func (t *Table) DeleteNames(names ...string) error {
	positions, err := t.positions(names)
	if err != nil {
		return err
	}
	return t.Delete(positions...)
}

// Rename changes a column name; groups follow the rename.
func (t *Table) Rename(from, to string) error {
	index, err := t.index.rename(from, to)
	if err != nil {
		return err
	}
	t.index = index
	return nil
}

// SetGroup tags a set of columns with a group name.
func (t *Table) SetGroup(name string, members ...string) error {
	index, err := t.index.withGroup(name, members)
	if err != nil {
		return err
	}
	t.index = index
	return nil
}

// Select returns a table holding the columns at positions. The columns are
// shared with t, not copied.
func (t *Table) Select(positions ...int) (*Table, error) {
	for _, p := range positions {
		if p < 0 || p >= len(t.columns) {
			return nil, tberrors.IndexOutOfRange("column %d outside [0, %d)", p, len(t.columns))
		}
	}
	index, err := t.index.selectPositions(positions)
	if err != nil {
		return nil, err
	}
	cols := make([]column.Column, len(positions))
	for i, p := range positions {
		cols[i] = t.columns[p]
	}
	return &Table{columns: cols, index: index}, nil
}

// SelectNames returns a table holding the named columns.
func (t *Table) SelectNames(names ...string) (*Table, error) {
	positions, err := t.positions(names)
	if err != nil {
		return nil, err
	}
	return t.Select(positions...)
}

func (t *Table) positions(names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		p, ok := t.index.Position(name)
		if !ok {
			return nil, tberrors.UnknownColumn(name)
		}
		out[i] = p
	}
	return out, nil
}

// Copy returns a table with its own index sharing t's columns.
func (t *Table) Copy() *Table {
	cols := make([]column.Column, len(t.columns))
	copy(cols, t.columns)
	return &Table{columns: cols, index: t.index.shallow()}
}

// DeepCopy returns a table with cloned column data.
func (t *Table) DeepCopy() *Table {
	cols := make([]column.Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Clone()
	}
	return &Table{columns: cols, index: t.index.shallow()}
}

// Rows returns a View over the given rows. Rows outside [0, NumRows)
// fail with IndexOutOfRange.
func (t *Table) Rows(rows []int) (*View, error) {
	if err := checkRows(rows, t.NumRows()); err != nil {
		return nil, err
	}
	return newView(t.columns, t.index, rows), nil
}

// Where returns a View of the rows for which pred holds.
func (t *Table) Where(pred func(row int) bool) *View {
	return newView(t.columns, t.index, matching(t.NumRows(), pred))
}

// Mask returns a View of the rows whose mask entry is true.
func (t *Table) Mask(mask []bool) (*View, error) {
	if len(mask) != t.NumRows() {
		return nil, tberrors.DimensionMismatch("mask has %d rows, table has %d", len(mask), t.NumRows())
	}
	return t.Where(func(i int) bool { return mask[i] }), nil
}

func matching(n int, pred func(int) bool) []int {
	rows := make([]int, 0)
	for i := 0; i < n; i++ {
		if pred(i) {
			rows = append(rows, i)
		}
	}
	return rows
}
