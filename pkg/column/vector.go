package column

import (
	"github.com/RoaringBitmap/roaring/v2"

	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Element is the set of Go types a Vector can hold.
type Element interface {
	bool | int64 | float64 | string
}

// Vector is a dense column backed by a Go slice. Missing rows are tracked
// in a Roaring bitmap; the slot under a missing row holds the zero value.
type Vector[T Element] struct {
	kind    Kind
	data    []T
	missing *roaring.Bitmap // nil when no row is missing
}

func kindOf[T Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return KindBool
	case int64:
		return KindInt64
	case float64:
		return KindFloat64
	case string:
		return KindString
	}
	return KindInvalid
}

// NewVector builds a vector from values and an optional validity mask.
// A nil mask means every row is present. The values slice is retained.
func NewVector[T Element](values []T, valid []bool) (*Vector[T], error) {
	if valid != nil && len(valid) != len(values) {
		return nil, tberrors.DimensionMismatch("validity mask has %d rows, values have %d", len(valid), len(values))
	}
	v := &Vector[T]{kind: kindOf[T](), data: values}
	for i, ok := range valid {
		if !ok {
			v.markMissing(i)
		}
	}
	return v, nil
}

// Bools wraps a bool slice without copying it.
func Bools(values []bool) *Vector[bool] {
	return &Vector[bool]{kind: KindBool, data: values}
}

// Int64s wraps an int64 slice without copying it.
func Int64s(values []int64) *Vector[int64] {
	return &Vector[int64]{kind: KindInt64, data: values}
}

// Float64s wraps a float64 slice without copying it.
func Float64s(values []float64) *Vector[float64] {
	return &Vector[float64]{kind: KindFloat64, data: values}
}

// Strings wraps a string slice without copying it.
func Strings(values []string) *Vector[string] {
	return &Vector[string]{kind: KindString, data: values}
}

// RepeatString returns a column holding s n times.
func RepeatString(s string, n int) *Vector[string] {
	data := make([]string, n)
	for i := range data {
		data[i] = s
	}
	return Strings(data)
}

func allMissing[T Element](n int) *Vector[T] {
	v := &Vector[T]{kind: kindOf[T](), data: make([]T, n)}
	if n > 0 {
		v.missing = roaring.New()
		v.missing.AddRange(0, uint64(n))
	}
	return v
}

// NewMissing returns a mutable column of n missing rows.
func NewMissing(kind Kind, n int) (Mutable, error) {
	switch kind {
	case KindBool:
		return allMissing[bool](n), nil
	case KindInt64:
		return allMissing[int64](n), nil
	case KindFloat64:
		return allMissing[float64](n), nil
	case KindString:
		return allMissing[string](n), nil
	}
	return nil, tberrors.InvalidArgument("cannot allocate column of kind %s", kind)
}

func (v *Vector[T]) markMissing(i int) {
	if v.missing == nil {
		v.missing = roaring.New()
	}
	v.missing.Add(uint32(i))
}

// Kind returns the element type.
func (v *Vector[T]) Kind() Kind { return v.kind }

// Len returns the number of rows.
func (v *Vector[T]) Len() int { return len(v.data) }

// IsMissing reports whether row i holds no value.
func (v *Vector[T]) IsMissing(i int) bool {
	checkRow(i, len(v.data))
	return v.missing != nil && v.missing.Contains(uint32(i))
}

// Value returns row i boxed, or nil when missing.
func (v *Vector[T]) Value(i int) interface{} {
	if v.IsMissing(i) {
		return nil
	}
	return v.data[i]
}

// At returns row i and whether it is present.
func (v *Vector[T]) At(i int) (T, bool) {
	if v.IsMissing(i) {
		var zero T
		return zero, false
	}
	return v.data[i], true
}

// Data exposes the backing slice. Slots under missing rows are undefined.
func (v *Vector[T]) Data() []T { return v.data }

// NullCount returns the number of missing rows.
func (v *Vector[T]) NullCount() int {
	if v.missing == nil {
		return 0
	}
	return int(v.missing.GetCardinality())
}

// Set overwrites row i with x and clears its missing flag.
func (v *Vector[T]) Set(i int, x T) {
	checkRow(i, len(v.data))
	v.data[i] = x
	if v.missing != nil {
		v.missing.Remove(uint32(i))
	}
}

// SetMissing marks row i as missing.
func (v *Vector[T]) SetMissing(i int) {
	checkRow(i, len(v.data))
	var zero T
	v.data[i] = zero
	v.markMissing(i)
}

// SetValue overwrites row i with a boxed value; nil marks it missing.
func (v *Vector[T]) SetValue(i int, x interface{}) error {
	if x == nil {
		v.SetMissing(i)
		return nil
	}
	t, ok := convert[T](x)
	if !ok {
		return tberrors.TypeMismatch("cannot store %T in %s column", x, v.kind)
	}
	v.Set(i, t)
	return nil
}

// Take gathers rows into a new vector; -1 yields a missing row.
func (v *Vector[T]) Take(rows []int) Column {
	out := &Vector[T]{kind: v.kind, data: make([]T, len(rows))}
	for i, r := range rows {
		if r < 0 || v.IsMissing(r) {
			out.markMissing(i)
			continue
		}
		out.data[i] = v.data[r]
	}
	return out
}

// Clone returns a deep copy.
func (v *Vector[T]) Clone() Column {
	data := make([]T, len(v.data))
	copy(data, v.data)
	out := &Vector[T]{kind: v.kind, data: data}
	if v.missing != nil {
		out.missing = v.missing.Clone()
	}
	return out
}

// convert coerces a boxed Go value into T, widening integers where the
// target kind allows it.
func convert[T Element](x interface{}) (T, bool) {
	var zero T
	if t, ok := x.(T); ok {
		return t, true
	}
	var out interface{}
	switch any(zero).(type) {
	case int64:
		i, ok := toInt64(x)
		if !ok {
			return zero, false
		}
		out = i
	case float64:
		f, ok := toFloat64(x)
		if !ok {
			return zero, false
		}
		out = f
	default:
		return zero, false
	}
	return out.(T), true
}

func toInt64(x interface{}) (int64, bool) {
	switch v := x.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}

func toFloat64(x interface{}) (float64, bool) {
	switch v := x.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	if i, ok := toInt64(x); ok {
		return float64(i), true
	}
	return 0, false
}
