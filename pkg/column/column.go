// Package column provides the nullable typed vectors that make up a table.
//
// A column is either dense (Vector), dictionary encoded (Pooled) or a
// read-through row subset of another column (Subset). All three satisfy
// the Column interface; only Vector is mutable.
package column

import (
	"fmt"
	"math"

	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Kind is the element type of a column.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "bool":
		return KindBool, nil
	case "int64", "int":
		return KindInt64, nil
	case "float64", "float":
		return KindFloat64, nil
	case "string":
		return KindString, nil
	default:
		return KindInvalid, tberrors.InvalidArgument("unknown column kind %q", name)
	}
}

// Column is a nullable typed vector.
type Column interface {
	// Kind returns the element type.
	Kind() Kind

	// Len returns the number of rows.
	Len() int

	// IsMissing reports whether row i holds no value.
	IsMissing(i int) bool

	// Value returns row i boxed as bool, int64, float64 or string,
	// or nil when the row is missing.
	Value(i int) interface{}

	// Take gathers the given rows into a new dense column. A row of -1
	// produces a missing cell.
	Take(rows []int) Column

	// Clone returns a deep copy.
	Clone() Column
}

// Mutable is a column whose cells can be overwritten in place.
type Mutable interface {
	Column
	SetValue(i int, v interface{}) error
	SetMissing(i int)
}

type nanKey struct{}

// KeyOf returns a map key for row i of c. Missing rows report false.
// All NaN values share one key so that they encode to a single pool entry.
func KeyOf(c Column, i int) (interface{}, bool) {
	v := c.Value(i)
	if v == nil {
		return nil, false
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nanKey{}, true
	}
	return v, true
}

// Values returns every row of c boxed, with nil for missing rows.
func Values(c Column) []interface{} {
	out := make([]interface{}, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// ValueKind reports the column kind a Go value belongs to.
func ValueKind(v interface{}) (Kind, bool) {
	switch v.(type) {
	case bool:
		return KindBool, true
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return KindInt64, true
	case float32, float64:
		return KindFloat64, true
	case string:
		return KindString, true
	}
	return KindInvalid, false
}

// Supertype returns the narrowest kind able to hold values of a and b.
// Integers widen to floats; every other mix is incompatible.
func Supertype(a, b Kind) (Kind, bool) {
	switch {
	case a == KindInvalid:
		return b, true
	case b == KindInvalid:
		return a, true
	case a == b:
		return a, true
	case (a == KindInt64 && b == KindFloat64) || (a == KindFloat64 && b == KindInt64):
		return KindFloat64, true
	}
	return KindInvalid, false
}

// checkRow panics on an out-of-range row, mirroring slice indexing.
func checkRow(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("column: row %d out of range [0, %d)", i, n))
	}
}
