package table

import (
	"sort"

	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// FromMap builds a table from named value sequences. The row count is the
// longest sequence; shorter ones cycle to fill it. Columns follow order,
// or sorted key order when order is empty.
func FromMap(data map[string][]interface{}, order ...string) (*Table, error) {
	if len(order) == 0 {
		order = make([]string, 0, len(data))
		for name := range data {
			order = append(order, name)
		}
		sort.Strings(order)
	} else if len(order) != len(data) {
		return nil, tberrors.DimensionMismatch("%d names for %d sequences", len(order), len(data))
	}

	n := 0
	for _, name := range order {
		values, ok := data[name]
		if !ok {
			return nil, tberrors.UnknownColumn(name)
		}
		n = max(n, len(values))
	}

	cols := make([]column.Column, len(order))
	for j, name := range order {
		values := data[name]
		if len(values) == 0 && n > 0 {
			return nil, tberrors.DimensionMismatch("column %q is empty and cannot cycle to %d rows", name, n)
		}
		cycled := values
		if len(values) < n {
			cycled = make([]interface{}, n)
			for i := range cycled {
				cycled[i] = values[i%len(values)]
			}
		}
		c, err := column.FromValues(cycled)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	return New(cols, order)
}

// FromRecords builds a table from row mappings. Each column takes the
// common supertype of its values; keys absent from a record become
// missing cells. Columns follow names, or the sorted union of keys when
// names is empty.
func FromRecords(records []map[string]interface{}, names ...string) (*Table, error) {
	if len(names) == 0 {
		seen := make(map[string]bool)
		for _, r := range records {
			for k := range r {
				if !seen[k] {
					seen[k] = true
					names = append(names, k)
				}
			}
		}
		sort.Strings(names)
	}

	cols := make([]column.Column, len(names))
	values := make([]interface{}, len(records))
	for j, name := range names {
		for i, r := range records {
			values[i] = r[name]
		}
		c, err := column.FromValues(values)
		if err != nil {
			return nil, tberrors.Wrap(tberrors.ErrCategorySchema, tberrors.CodeTypeMismatch,
				"column "+name, err)
		}
		cols[j] = c
	}
	return New(cols, names)
}

// FromMatrix builds a table from a row-major grid of boxed values.
func FromMatrix(rows [][]interface{}, names []string) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, tberrors.DimensionMismatch("row %d has %d cells, expected %d", i, len(row), len(names))
		}
	}
	cols := make([]column.Column, len(names))
	values := make([]interface{}, len(rows))
	for j := range names {
		for i, row := range rows {
			values[i] = row[j]
		}
		c, err := column.FromValues(values)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	return New(cols, names)
}
