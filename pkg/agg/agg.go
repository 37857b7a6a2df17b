// Package agg provides the built-in reductions used with grouped
// aggregation. Every reduction ignores missing values and yields one row.
package agg

import (
	"fmt"
	"strings"

	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
	"github.com/arkilian/tabular/pkg/table"
)

// Type is a reduction kind.
type Type int

const (
	TypeCount Type = iota
	TypeSum
	TypeMin
	TypeMax
	TypeMean
	TypeFirst
	TypeLast
)

// String returns the lower-case reduction name.
func (t Type) String() string {
	switch t {
	case TypeCount:
		return "count"
	case TypeSum:
		return "sum"
	case TypeMin:
		return "min"
	case TypeMax:
		return "max"
	case TypeMean:
		return "mean"
	case TypeFirst:
		return "first"
	case TypeLast:
		return "last"
	}
	return fmt.Sprintf("agg(%d)", int(t))
}

// ParseType converts a reduction name to a Type.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "count":
		return TypeCount, nil
	case "sum":
		return TypeSum, nil
	case "min":
		return TypeMin, nil
	case "max":
		return TypeMax, nil
	case "mean", "avg":
		return TypeMean, nil
	case "first":
		return TypeFirst, nil
	case "last":
		return TypeLast, nil
	}
	return 0, tberrors.InvalidArgument("unknown aggregate function %q", name)
}

// Accumulator folds values of one column into a single result.
type Accumulator struct {
	Type  Type
	Count int64
	Sum   float64
	Value interface{} // min, max, first or last so far
	IsSet bool
}

// Accumulate adds one value; nil is ignored.
func (a *Accumulator) Accumulate(v interface{}) error {
	if v == nil {
		return nil
	}
	switch a.Type {
	case TypeCount:
		a.Count++
	case TypeSum, TypeMean:
		f, ok := toFloat(v)
		if !ok {
			return tberrors.TypeMismatch("%s needs numeric values, got %T", a.Type, v)
		}
		a.Sum += f
		a.Count++
	case TypeMin:
		if !a.IsSet || column.Compare(v, a.Value) < 0 {
			a.Value = v
		}
	case TypeMax:
		if !a.IsSet || column.Compare(v, a.Value) > 0 {
			a.Value = v
		}
	case TypeFirst:
		if !a.IsSet {
			a.Value = v
		}
	case TypeLast:
		a.Value = v
	}
	a.IsSet = true
	return nil
}

// Result returns the reduced value, nil when nothing was accumulated
// (zero for count).
func (a *Accumulator) Result() interface{} {
	if !a.IsSet {
		if a.Type == TypeCount {
			return int64(0)
		}
		return nil
	}
	switch a.Type {
	case TypeCount:
		return a.Count
	case TypeSum:
		return a.Sum
	case TypeMean:
		return a.Sum / float64(a.Count)
	}
	return a.Value
}

func (t Type) resultKind(in column.Kind) column.Kind {
	switch t {
	case TypeCount:
		return column.KindInt64
	case TypeSum, TypeMean:
		return column.KindFloat64
	}
	return in
}

// Reduce folds column c with t into a one-row column.
func Reduce(t Type, c column.Column) (column.Column, error) {
	acc := &Accumulator{Type: t}
	for i := 0; i < c.Len(); i++ {
		if err := acc.Accumulate(c.Value(i)); err != nil {
			return nil, err
		}
	}
	return column.FromValuesAs(t.resultKind(c.Kind()), []interface{}{acc.Result()})
}

// Of returns an evaluator reducing the named column with t. The output
// column is called "<t>_<name>".
func Of(t Type, name string) func(table.Frame) (*table.Table, error) {
	return func(f table.Frame) (*table.Table, error) {
		c, err := f.ColumnByName(name)
		if err != nil {
			return nil, err
		}
		out, err := Reduce(t, c)
		if err != nil {
			return nil, err
		}
		return table.New([]column.Column{out}, []string{t.String() + "_" + name})
	}
}

// Count counts the rows of a frame.
func Count() func(table.Frame) (*table.Table, error) {
	return func(f table.Frame) (*table.Table, error) {
		return table.New([]column.Column{column.Int64s([]int64{int64(f.NumRows())})}, []string{"count"})
	}
}

func Sum(name string) func(table.Frame) (*table.Table, error)   { return Of(TypeSum, name) }
func Mean(name string) func(table.Frame) (*table.Table, error)  { return Of(TypeMean, name) }
func Min(name string) func(table.Frame) (*table.Table, error)   { return Of(TypeMin, name) }
func Max(name string) func(table.Frame) (*table.Table, error)   { return Of(TypeMax, name) }
func First(name string) func(table.Frame) (*table.Table, error) { return Of(TypeFirst, name) }
func Last(name string) func(table.Frame) (*table.Table, error)  { return Of(TypeLast, name) }

// Parse reads a reduction written as "count" or "<func>:<column>".
func Parse(expr string) (func(table.Frame) (*table.Table, error), error) {
	fn, col, hasCol := strings.Cut(strings.TrimSpace(expr), ":")
	t, err := ParseType(fn)
	if err != nil {
		return nil, err
	}
	if !hasCol {
		if t != TypeCount {
			return nil, tberrors.InvalidArgument("aggregate %q needs a column", fn)
		}
		return Count(), nil
	}
	return Of(t, col), nil
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	}
	return 0, false
}
