// Package groupby splits a frame into row groups by key columns and drives
// split-apply-combine over them.
package groupby

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/arkilian/tabular/internal/dict"
	"github.com/arkilian/tabular/internal/groupsort"
	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
	"github.com/arkilian/tabular/pkg/table"
)

// Evaluator computes a table from one group.
type Evaluator func(table.Frame) (*table.Table, error)

// Grouped is a frame split into groups of equal key values. Group i holds
// the parent rows perm[starts[i]:ends[i]]; groups are ordered by ascending
// composite key code and rows whose first key is missing belong to none.
type Grouped struct {
	parent table.Frame
	keys   []string
	perm   []int
	starts []int
	ends   []int
}

// By groups f by the named key columns.
func By(f table.Frame, keys []string, opts ...table.Option) (*Grouped, error) {
	if len(keys) == 0 {
		return nil, tberrors.InvalidArgument("groupby needs at least one key column")
	}
	o := table.ApplyOptions(opts...)
	start := time.Now()

	cols, err := table.ColumnsByName(f, keys...)
	if err != nil {
		return nil, err
	}
	encs := make([]dict.Encoding, len(cols))
	for i, c := range cols {
		if encs[i], err = dict.Encode(c); err != nil {
			return nil, err
		}
	}
	comp, err := dict.Combine(encs, dict.CompositeOptions{
		MaxGroups:    o.CompositeCap(f.NumRows()),
		HashFallback: o.HashFallback,
	})
	if err != nil {
		return nil, err
	}

	var sorted groupsort.Result
	parallel := o.ParallelThreshold > 0 && len(comp.Codes) >= o.ParallelThreshold && o.Partitions > 1
	if parallel {
		sorted, err = groupsort.SortParallel(context.Background(), comp.Codes, comp.NumGroups, o.Partitions)
	} else {
		sorted, err = groupsort.Sort(comp.Codes, comp.NumGroups)
	}
	if err != nil {
		return nil, err
	}

	g := &Grouped{
		parent: f,
		keys:   append([]string(nil), keys...),
		perm:   sorted.Perm,
	}
	for c := 1; c <= comp.NumGroups; c++ {
		if sorted.Counts[c] == 0 {
			continue
		}
		g.starts = append(g.starts, sorted.Starts[c])
		g.ends = append(g.ends, sorted.Starts[c]+sorted.Counts[c])
	}

	o.Logger.Debug("groupby built",
		"keys", keys,
		"rows", f.NumRows(),
		"groups", len(g.starts),
		"missing_rows", sorted.Counts[0],
		"hashed", comp.Hashed,
		"parallel", parallel,
		"duration", time.Since(start))
	return g, nil
}

// Parent returns the grouped frame.
func (g *Grouped) Parent() table.Frame { return g.parent }

// KeyNames returns the key column names.
func (g *Grouped) KeyNames() []string { return append([]string(nil), g.keys...) }

// Len returns the number of groups.
func (g *Grouped) Len() int { return len(g.starts) }

// Size returns the row count of group i.
func (g *Grouped) Size(i int) int { return g.ends[i] - g.starts[i] }

// Permutation returns the parent rows ordered group by group, rows with a
// missing first key leading.
func (g *Grouped) Permutation() []int { return append([]int(nil), g.perm...) }

// Group returns a view of the rows of group i.
func (g *Grouped) Group(i int) (*table.View, error) {
	if i < 0 || i >= len(g.starts) {
		return nil, tberrors.IndexOutOfRange("group %d outside [0, %d)", i, len(g.starts))
	}
	return g.parent.Rows(g.perm[g.starts[i]:g.ends[i]])
}

// All yields every group view in order. Views are built lazily.
func (g *Grouped) All() iter.Seq2[int, *table.View] {
	return func(yield func(int, *table.View) bool) {
		for i := range g.starts {
			v, err := g.Group(i)
			if err != nil {
				return
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Keys returns one row per group holding its key values.
func (g *Grouped) Keys() (*table.Table, error) {
	first := make([]int, len(g.starts))
	for i, s := range g.starts {
		first[i] = g.perm[s]
	}
	return g.keyBlock(first)
}

func (g *Grouped) keyBlock(rows []int) (*table.Table, error) {
	cols, err := table.ColumnsByName(g.parent, g.keys...)
	if err != nil {
		return nil, err
	}
	out := make([]column.Column, len(cols))
	for j, c := range cols {
		out[j] = c.Take(rows)
	}
	return table.New(out, g.keys)
}

// Map applies fn to every group and returns the results in group order.
func Map[T any](g *Grouped, fn func(*table.View) (T, error)) ([]T, error) {
	out := make([]T, 0, g.Len())
	for i, v := range g.All() {
		r, err := fn(v)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Aggregate evaluates fn once per group and row-binds the results in group
// order, with the group's key values as leading columns. When fn yields
// several rows the key values repeat.
func (g *Grouped) Aggregate(fn Evaluator) (*table.Table, error) {
	parts := make([]table.Frame, 0, g.Len())
	for i, v := range g.All() {
		res, err := fn(v)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if res == nil {
			return nil, tberrors.InvalidArgument("evaluator returned no table for group %d", i)
		}
		rows := make([]int, res.NumRows())
		for r := range rows {
			rows[r] = g.perm[g.starts[i]]
		}
		keys, err := g.keyBlock(rows)
		if err != nil {
			return nil, err
		}
		part, err := table.CBind(keys, res)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return g.keyBlock(nil)
	}
	return table.RBind(parts...)
}

// Transform applies fn to every group and row-binds the results in group
// order. fn must return as many rows as the group holds. The result is in
// group order, not in the parent's row order.
func (g *Grouped) Transform(fn Evaluator) (*table.Table, error) {
	parts := make([]table.Frame, 0, g.Len())
	for i, v := range g.All() {
		res, err := fn(v)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if res == nil {
			return nil, tberrors.InvalidArgument("evaluator returned no table for group %d", i)
		}
		if res.NumRows() != v.NumRows() {
			return nil, tberrors.DimensionMismatch("transform of group %d returned %d rows, group has %d",
				i, res.NumRows(), v.NumRows())
		}
		parts = append(parts, res)
	}
	return table.RBind(parts...)
}
