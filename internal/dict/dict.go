// Package dict converts columns into integer code spaces: a pool of
// distinct values in first-occurrence order plus one code per row, with
// code 0 reserved for missing rows.
package dict

import (
	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Encoding is the dictionary encoding of one column. Code c > 0 refers to
// pool row c-1.
type Encoding struct {
	Pool       column.Column
	Codes      []int
	HasMissing bool
}

// NumGroups returns the pool size.
func (e Encoding) NumGroups() int { return e.Pool.Len() }

// Encode builds the encoding of c. Pooled columns are remapped without
// hashing their values.
func Encode(c column.Column) (Encoding, error) {
	if p, rows, ok := pooledSource(c); ok {
		return encodePooled(p, rows), nil
	}
	e := newEncoder(c.Len())
	codes := e.add(c)
	pool, err := e.pool(c.Kind())
	if err != nil {
		return Encoding{}, err
	}
	return Encoding{Pool: pool, Codes: codes, HasMissing: e.missing}, nil
}

// JointEncoding encodes two columns against one shared pool, so equal
// values on either side receive equal codes.
type JointEncoding struct {
	Pool  column.Column
	Left  []int
	Right []int
}

// NumGroups returns the shared pool size.
func (j JointEncoding) NumGroups() int { return j.Pool.Len() }

// EncodeJoint builds the joint encoding of a and b, which must share a
// kind.
func EncodeJoint(a, b column.Column) (JointEncoding, error) {
	if a.Kind() != b.Kind() {
		return JointEncoding{}, tberrors.TypeMismatch("cannot encode %s and %s columns jointly", a.Kind(), b.Kind())
	}
	e := newEncoder(a.Len() + b.Len())
	left := e.add(a)
	right := e.add(b)
	pool, err := e.pool(a.Kind())
	if err != nil {
		return JointEncoding{}, err
	}
	return JointEncoding{Pool: pool, Left: left, Right: right}, nil
}

// Compress converts c into a pooled column.
func Compress(c column.Column) (*column.Pooled, error) {
	if p, ok := c.(*column.Pooled); ok {
		return p, nil
	}
	enc, err := Encode(c)
	if err != nil {
		return nil, err
	}
	codes := make([]uint32, len(enc.Codes))
	for i, code := range enc.Codes {
		codes[i] = uint32(code)
	}
	return column.NewPooled(enc.Pool, codes)
}

// encoder assigns codes in first-occurrence order across any number of
// columns. Pool values are collected as boxed values so that columns of
// different representations (dense, pooled, subset) can share a pool.
type encoder struct {
	lookup  map[interface{}]int
	values  []interface{}
	missing bool
}

func newEncoder(hint int) *encoder {
	return &encoder{lookup: make(map[interface{}]int, min(hint, 1<<16))}
}

func (e *encoder) add(c column.Column) []int {
	codes := make([]int, c.Len())
	for i := range codes {
		k, ok := column.KeyOf(c, i)
		if !ok {
			e.missing = true
			continue
		}
		code, seen := e.lookup[k]
		if !seen {
			e.values = append(e.values, c.Value(i))
			code = len(e.values)
			e.lookup[k] = code
		}
		codes[i] = code
	}
	return codes
}

func (e *encoder) pool(kind column.Kind) (column.Column, error) {
	return column.FromValuesAs(kind, e.values)
}

// pooledSource unwraps a pooled column, possibly behind a row subset.
func pooledSource(c column.Column) (*column.Pooled, []int, bool) {
	switch v := c.(type) {
	case *column.Pooled:
		return v, nil, true
	case *column.Subset:
		if p, ok := v.Base().(*column.Pooled); ok {
			return p, v.Rows(), true
		}
	}
	return nil, nil, false
}

func encodePooled(p *column.Pooled, rows []int) Encoding {
	src := p.Codes()
	n := len(src)
	if rows != nil {
		n = len(rows)
	}
	remap := make([]int, p.Pool().Len()+1)
	var order []int
	codes := make([]int, n)
	missing := false
	for i := range codes {
		r := i
		if rows != nil {
			r = rows[i]
		}
		old := src[r]
		if old == 0 {
			missing = true
			continue
		}
		if remap[old] == 0 {
			order = append(order, int(old)-1)
			remap[old] = len(order)
		}
		codes[i] = remap[old]
	}
	if order == nil {
		order = []int{}
	}
	return Encoding{Pool: p.Pool().Take(order), Codes: codes, HasMissing: missing}
}
