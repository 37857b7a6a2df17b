package column

import (
	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Pooled is a dictionary-encoded column: a pool of distinct values plus one
// code per row. Code 0 is missing; code c refers to pool row c-1.
type Pooled struct {
	pool  Column
	codes []uint32
}

// NewPooled builds a pooled column. The pool must hold distinct, non-missing
// values and every code must be in [0, pool.Len()].
func NewPooled(pool Column, codes []uint32) (*Pooled, error) {
	seen := make(map[interface{}]struct{}, pool.Len())
	for i := 0; i < pool.Len(); i++ {
		k, ok := KeyOf(pool, i)
		if !ok {
			return nil, tberrors.InvalidArgument("pool row %d is missing", i)
		}
		if _, dup := seen[k]; dup {
			return nil, tberrors.InvalidArgument("pool value %v appears twice", pool.Value(i))
		}
		seen[k] = struct{}{}
	}
	limit := uint32(pool.Len())
	for i, c := range codes {
		if c > limit {
			return nil, tberrors.IndexOutOfRange("code %d at row %d exceeds pool size %d", c, i, limit)
		}
	}
	return &Pooled{pool: pool, codes: codes}, nil
}

// Pool returns the distinct values.
func (p *Pooled) Pool() Column { return p.pool }

// Codes returns the per-row codes. The slice is shared.
func (p *Pooled) Codes() []uint32 { return p.codes }

// Kind returns the element type of the pool.
func (p *Pooled) Kind() Kind { return p.pool.Kind() }

// Len returns the number of rows.
func (p *Pooled) Len() int { return len(p.codes) }

// IsMissing reports whether row i holds no value.
func (p *Pooled) IsMissing(i int) bool { return p.codes[i] == 0 }

// Value returns row i boxed, or nil when missing.
func (p *Pooled) Value(i int) interface{} {
	c := p.codes[i]
	if c == 0 {
		return nil
	}
	return p.pool.Value(int(c) - 1)
}

// Take gathers rows into a new pooled column sharing the same pool.
func (p *Pooled) Take(rows []int) Column {
	codes := make([]uint32, len(rows))
	for i, r := range rows {
		if r >= 0 {
			codes[i] = p.codes[r]
		}
	}
	return &Pooled{pool: p.pool, codes: codes}
}

// Clone returns a deep copy, pool included.
func (p *Pooled) Clone() Column {
	codes := make([]uint32, len(p.codes))
	copy(codes, p.codes)
	return &Pooled{pool: p.pool.Clone(), codes: codes}
}
