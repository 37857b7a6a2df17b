// Package reshape pivots frames between long and wide layouts.
package reshape

import (
	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
	"github.com/arkilian/tabular/pkg/table"
)

// Stack turns the value columns of f into rows. For each value column it
// builds a block of (key, value, rest...) where key repeats the column
// name, then row-binds the blocks, so the result has NumRows*len(values)
// rows. Value columns must share a kind.
func Stack(f table.Frame, values []string, opts ...table.Option) (*table.Table, error) {
	if len(values) == 0 {
		return nil, tberrors.InvalidArgument("stack needs at least one value column")
	}
	o := table.ApplyOptions(opts...)

	valueCols, err := table.ColumnsByName(f, values...)
	if err != nil {
		return nil, err
	}
	for i, c := range valueCols[1:] {
		if c.Kind() != valueCols[0].Kind() {
			return nil, tberrors.TypeMismatch("value column %q is %s, %q is %s",
				values[i+1], c.Kind(), values[0], valueCols[0].Kind())
		}
	}

	stacked := make(map[string]bool, len(values))
	for _, v := range values {
		if stacked[v] {
			return nil, tberrors.DuplicateColumnName(v)
		}
		stacked[v] = true
	}
	var (
		restCols  []column.Column
		restNames []string
	)
	for i, name := range f.Names() {
		if stacked[name] {
			continue
		}
		c, err := f.Column(i)
		if err != nil {
			return nil, err
		}
		restCols = append(restCols, c)
		restNames = append(restNames, name)
	}

	n := f.NumRows()
	names := append([]string{o.KeyName, o.ValueName}, restNames...)
	blocks := make([]table.Frame, len(values))
	for j, vc := range valueCols {
		cols := append([]column.Column{column.RepeatString(values[j], n), vc}, restCols...)
		block, err := table.New(cols, names)
		if err != nil {
			return nil, err
		}
		blocks[j] = block
	}
	return table.RBind(blocks...)
}
