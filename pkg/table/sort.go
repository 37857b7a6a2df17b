package table

import (
	"sort"

	"github.com/arkilian/tabular/pkg/column"
)

// SortKey is one ORDER BY term.
type SortKey struct {
	Column string
	Desc   bool
}

// Asc and Desc build sort keys.
func Asc(name string) SortKey  { return SortKey{Column: name} }
func Desc(name string) SortKey { return SortKey{Column: name, Desc: true} }

// Sort returns a View of f ordered by keys. The sort is stable and missing
// values sort last in either direction.
func Sort(f Frame, keys ...SortKey) (*View, error) {
	cols := make([]column.Column, len(keys))
	for i, k := range keys {
		c, err := f.ColumnByName(k.Column)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	order := make([]int, f.NumRows())
	for i := range order {
		order[i] = i
	}
	if len(keys) > 0 && len(order) > 1 {
		sort.SliceStable(order, func(i, j int) bool {
			ri, rj := order[i], order[j]
			for k, key := range keys {
				a, b := cols[k].Value(ri), cols[k].Value(rj)
				if a == nil || b == nil {
					if a == nil && b == nil {
						continue
					}
					return b == nil
				}
				c := column.Compare(a, b)
				if c == 0 {
					continue
				}
				if key.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	return f.Rows(order)
}
