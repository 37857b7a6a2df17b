package join

import (
	"time"

	"github.com/arkilian/tabular/internal/dict"
	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
	"github.com/arkilian/tabular/pkg/table"
)

// Merge joins left and right on the column named on, which both must hold
// with the same kind.
//
// The output holds the left columns followed by the right columns without
// the key; repeated names get a numeric suffix. Matched rows come first in
// key order, then unmatched left rows, then unmatched right rows. The key
// column comes from the left side, so it is missing on unmatched right rows
// unless table.WithCoalescedKey is given. Semi and Anti return left columns
// only, in left row order.
func Merge(left, right table.Frame, on string, kind Kind, opts ...table.Option) (*table.Table, error) {
	o := table.ApplyOptions(opts...)
	start := time.Now()

	lkey, err := left.ColumnByName(on)
	if err != nil {
		return nil, tberrors.Wrap(tberrors.ErrCategoryJoin, tberrors.CodeInvalidJoinKey,
			"join key missing from left frame", err)
	}
	rkey, err := right.ColumnByName(on)
	if err != nil {
		return nil, tberrors.Wrap(tberrors.ErrCategoryJoin, tberrors.CodeInvalidJoinKey,
			"join key missing from right frame", err)
	}
	if lkey.Kind() != rkey.Kind() {
		return nil, tberrors.InvalidJoinKey("join key %q is %s on the left and %s on the right",
			on, lkey.Kind(), rkey.Kind())
	}

	enc, err := dict.EncodeJoint(lkey, rkey)
	if err != nil {
		return nil, err
	}
	idx, err := BuildIndices(enc.Left, enc.Right, enc.NumGroups())
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("join indices built",
		"key", on,
		"kind", kind.String(),
		"groups", enc.NumGroups(),
		"matched", len(idx.LeftMatched),
		"left_only", len(idx.LeftOnly),
		"right_only", len(idx.RightOnly),
		"duration", time.Since(start))

	switch kind {
	case Semi, Anti:
		return filterLeft(left, enc.Left, idx, kind == Semi)
	}

	var lrows, rrows []int
	switch kind {
	case Inner:
		lrows, rrows = idx.LeftMatched, idx.RightMatched
	case Left:
		lrows = concat(idx.LeftMatched, idx.LeftOnly)
		rrows = concat(idx.RightMatched, absent(len(idx.LeftOnly)))
	case Right:
		lrows = concat(idx.LeftMatched, absent(len(idx.RightOnly)))
		rrows = concat(idx.RightMatched, idx.RightOnly)
	case Outer:
		lrows = concat(idx.LeftMatched, idx.LeftOnly, absent(len(idx.RightOnly)))
		rrows = concat(idx.RightMatched, absent(len(idx.LeftOnly)), idx.RightOnly)
	default:
		return nil, tberrors.InvalidArgument("unknown join kind %d", int(kind))
	}
	return assemble(left, right, on, lkey, rkey, lrows, rrows, o.CoalesceKey)
}

// MergeOn is Merge for a key list. Only single-column keys are supported.
func MergeOn(left, right table.Frame, keys []string, kind Kind, opts ...table.Option) (*table.Table, error) {
	if len(keys) != 1 {
		return nil, tberrors.InvalidJoinKey("expected exactly one join key, got %d", len(keys))
	}
	return Merge(left, right, keys[0], kind, opts...)
}

// Cross returns the cartesian product of left and right, left-major.
func Cross(left, right table.Frame) (*table.Table, error) {
	n, m := left.NumRows(), right.NumRows()
	lrows := make([]int, 0, n*m)
	rrows := make([]int, 0, n*m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			lrows = append(lrows, i)
			rrows = append(rrows, j)
		}
	}
	l, err := gather(left, lrows, "")
	if err != nil {
		return nil, err
	}
	r, err := gather(right, rrows, "")
	if err != nil {
		return nil, err
	}
	return table.CBind(l, r)
}

func assemble(left, right table.Frame, on string, lkey, rkey column.Column, lrows, rrows []int, coalesceKey bool) (*table.Table, error) {
	l, err := gather(left, lrows, "")
	if err != nil {
		return nil, err
	}
	if coalesceKey {
		key, err := coalesce(lkey, rkey, lrows, rrows)
		if err != nil {
			return nil, err
		}
		if err := l.SetByName(on, key); err != nil {
			return nil, err
		}
	}
	r, err := gather(right, rrows, on)
	if err != nil {
		return nil, err
	}
	return table.CBind(l, r)
}

// gather takes rows of every column of f except skip; -1 rows are missing.
func gather(f table.Frame, rows []int, skip string) (*table.Table, error) {
	names := f.Names()
	cols := make([]column.Column, 0, len(names))
	kept := make([]string, 0, len(names))
	for i, name := range names {
		if name == skip {
			continue
		}
		c, err := f.Column(i)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c.Take(rows))
		kept = append(kept, name)
	}
	return table.New(cols, kept)
}

func coalesce(lkey, rkey column.Column, lrows, rrows []int) (column.Column, error) {
	b, err := column.NewBuilder(lkey.Kind(), len(lrows))
	if err != nil {
		return nil, err
	}
	for i, l := range lrows {
		if l >= 0 {
			err = b.AppendFrom(lkey, l)
		} else {
			err = b.AppendFrom(rkey, rrows[i])
		}
		if err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func filterLeft(left table.Frame, codes []int, idx Indices, matched bool) (*table.Table, error) {
	hit := make([]bool, len(codes))
	for _, l := range idx.LeftMatched {
		hit[l] = true
	}
	rows := make([]int, 0, len(codes))
	for i, h := range hit {
		if h == matched {
			rows = append(rows, i)
		}
	}
	view, err := left.Rows(rows)
	if err != nil {
		return nil, err
	}
	return view.Materialize(), nil
}

func absent(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	return out
}

func concat(parts ...[]int) []int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]int, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
