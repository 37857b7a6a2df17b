package table

import (
	"fmt"

	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// RBind stacks frames vertically. Every frame must have the same number
// of columns with the same kinds in position order; names come from the
// first frame.
func RBind(frames ...Frame) (*Table, error) {
	if len(frames) == 0 {
		return Empty(), nil
	}
	first := frames[0]
	m := first.NumCols()
	for fi, f := range frames[1:] {
		if f.NumCols() != m {
			return nil, tberrors.DimensionMismatch("frame %d has %d columns, expected %d", fi+1, f.NumCols(), m)
		}
	}

	cols := make([]column.Column, m)
	parts := make([]column.Column, len(frames))
	for j := 0; j < m; j++ {
		for fi, f := range frames {
			c, err := f.Column(j)
			if err != nil {
				return nil, err
			}
			parts[fi] = c
		}
		joined, err := column.Concat(parts...)
		if err != nil {
			return nil, tberrors.Wrap(tberrors.ErrCategorySchema, tberrors.CodeTypeMismatch,
				fmt.Sprintf("rbind column %q", first.Index().Name(j)), err)
		}
		cols[j] = joined
	}
	return New(cols, first.Names())
}

// CBind places frames side by side. Repeated names get a numeric suffix
// (_1, _2, ...) so the result stays uniquely named.
func CBind(frames ...Frame) (*Table, error) {
	var (
		cols  []column.Column
		names []string
	)
	seen := make(map[string]bool)
	for _, f := range frames {
		for j := 0; j < f.NumCols(); j++ {
			c, err := f.Column(j)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
			names = append(names, uniqueName(f.Index().Name(j), seen))
		}
	}
	return New(cols, names)
}

func uniqueName(name string, seen map[string]bool) string {
	out := name
	for k := 1; seen[out]; k++ {
		out = fmt.Sprintf("%s_%d", name, k)
	}
	seen[out] = true
	return out
}
