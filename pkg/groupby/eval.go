package groupby

import (
	"github.com/arkilian/tabular/pkg/column"
	"github.com/arkilian/tabular/pkg/table"
)

// FromColumn lifts a column-valued function into an Evaluator producing a
// single column called name.
func FromColumn(name string, fn func(table.Frame) (column.Column, error)) Evaluator {
	return func(f table.Frame) (*table.Table, error) {
		c, err := fn(f)
		if err != nil {
			return nil, err
		}
		return table.New([]column.Column{c}, []string{name})
	}
}

// FromScalar lifts a scalar-valued function into an Evaluator producing one
// row with a single column called name. A nil result is a missing cell.
func FromScalar(name string, fn func(table.Frame) (interface{}, error)) Evaluator {
	return FromColumn(name, func(f table.Frame) (column.Column, error) {
		v, err := fn(f)
		if err != nil {
			return nil, err
		}
		return column.FromValues([]interface{}{v})
	})
}

// Combine evaluates every evaluator on the same frame and places their
// results side by side. The results must have equal row counts.
func Combine(evals ...Evaluator) Evaluator {
	return func(f table.Frame) (*table.Table, error) {
		parts := make([]table.Frame, len(evals))
		for i, e := range evals {
			t, err := e(f)
			if err != nil {
				return nil, err
			}
			parts[i] = t
		}
		return table.CBind(parts...)
	}
}
