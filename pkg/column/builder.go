package column

import (
	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Builder accumulates values into a new dense column of a fixed kind.
type Builder interface {
	// Append adds a boxed value; nil appends a missing row.
	Append(v interface{}) error
	AppendMissing()
	// AppendFrom copies row i of c.
	AppendFrom(c Column, i int) error
	Len() int
	Build() Column
}

type vectorBuilder[T Element] struct {
	v *Vector[T]
}

// NewBuilder returns a builder for kind with room for capacity rows.
func NewBuilder(kind Kind, capacity int) (Builder, error) {
	switch kind {
	case KindBool:
		return newVectorBuilder[bool](capacity), nil
	case KindInt64:
		return newVectorBuilder[int64](capacity), nil
	case KindFloat64:
		return newVectorBuilder[float64](capacity), nil
	case KindString:
		return newVectorBuilder[string](capacity), nil
	}
	return nil, tberrors.InvalidArgument("cannot build column of kind %s", kind)
}

func newVectorBuilder[T Element](capacity int) *vectorBuilder[T] {
	return &vectorBuilder[T]{v: &Vector[T]{kind: kindOf[T](), data: make([]T, 0, capacity)}}
}

func (b *vectorBuilder[T]) Append(x interface{}) error {
	if x == nil {
		b.AppendMissing()
		return nil
	}
	t, ok := convert[T](x)
	if !ok {
		return tberrors.TypeMismatch("cannot append %T to %s column", x, b.v.kind)
	}
	b.v.data = append(b.v.data, t)
	return nil
}

func (b *vectorBuilder[T]) AppendMissing() {
	var zero T
	b.v.data = append(b.v.data, zero)
	b.v.markMissing(len(b.v.data) - 1)
}

func (b *vectorBuilder[T]) AppendFrom(c Column, i int) error {
	if src, ok := c.(*Vector[T]); ok {
		if src.IsMissing(i) {
			b.AppendMissing()
			return nil
		}
		b.v.data = append(b.v.data, src.data[i])
		return nil
	}
	return b.Append(c.Value(i))
}

func (b *vectorBuilder[T]) Len() int { return len(b.v.data) }

func (b *vectorBuilder[T]) Build() Column {
	out := b.v
	b.v = &Vector[T]{kind: out.kind}
	return out
}

// InferKind returns the common supertype of the non-nil values.
// It reports KindInvalid when every value is nil.
func InferKind(values []interface{}) (Kind, error) {
	kind := KindInvalid
	for i, v := range values {
		if v == nil {
			continue
		}
		k, ok := ValueKind(v)
		if !ok {
			return KindInvalid, tberrors.TypeMismatch("unsupported value %T at row %d", v, i)
		}
		next, ok := Supertype(kind, k)
		if !ok {
			return KindInvalid, tberrors.TypeMismatch("cannot mix %s and %s values (row %d)", kind, k, i)
		}
		kind = next
	}
	return kind, nil
}

// FromValues builds a column from boxed values, nil meaning missing. The
// kind is the common supertype of the values; a slice holding only nils
// yields an all-missing string column.
func FromValues(values []interface{}) (Column, error) {
	kind, err := InferKind(values)
	if err != nil {
		return nil, err
	}
	if kind == KindInvalid {
		kind = KindString
	}
	return FromValuesAs(kind, values)
}

// FromValuesAs builds a column of the given kind from boxed values.
func FromValuesAs(kind Kind, values []interface{}) (Column, error) {
	b, err := NewBuilder(kind, len(values))
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := b.Append(v); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Concat appends columns of identical kind into one dense column.
func Concat(cols ...Column) (Column, error) {
	if len(cols) == 0 {
		return nil, tberrors.InvalidArgument("concat needs at least one column")
	}
	kind := cols[0].Kind()
	total := 0
	for i, c := range cols {
		if c.Kind() != kind {
			return nil, tberrors.TypeMismatch("column %d is %s, expected %s", i, c.Kind(), kind)
		}
		total += c.Len()
	}
	b, err := NewBuilder(kind, total)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		for i := 0; i < c.Len(); i++ {
			if err := b.AppendFrom(c, i); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}
