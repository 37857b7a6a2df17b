package reshape

import (
	"fmt"
	"strconv"

	"github.com/arkilian/tabular/internal/dict"
	"github.com/arkilian/tabular/internal/groupsort"
	"github.com/arkilian/tabular/pkg/column"
	"github.com/arkilian/tabular/pkg/table"
)

// Result is the outcome of Unstack.
type Result struct {
	Table *table.Table
	// Duplicates counts input rows that overwrote an already written cell.
	Duplicates int
}

// Unstack spreads the value column of f into one column per distinct key,
// with one output row per distinct combination of row keys. When rowKeys
// is empty every column other than key and value is a row key.
//
// Output columns are the row keys followed by the key values in
// first-occurrence order; output rows follow the row-key grouping order.
// Rows with a missing row key are skipped. A row with a missing key still
// yields its output row but writes no cell. Cells with no input row stay
// missing. When several rows target the same cell the last one
// wins and a single warning is logged for the whole call.
func Unstack(f table.Frame, key, value string, rowKeys []string, opts ...table.Option) (Result, error) {
	o := table.ApplyOptions(opts...)

	keyCol, err := f.ColumnByName(key)
	if err != nil {
		return Result{}, err
	}
	valueCol, err := f.ColumnByName(value)
	if err != nil {
		return Result{}, err
	}
	if len(rowKeys) == 0 {
		for _, name := range f.Names() {
			if name != key && name != value {
				rowKeys = append(rowKeys, name)
			}
		}
	}
	rowCols, err := table.ColumnsByName(f, rowKeys...)
	if err != nil {
		return Result{}, err
	}

	keyEnc, err := dict.Encode(keyCol)
	if err != nil {
		return Result{}, err
	}
	n := f.NumRows()
	rowCodes, ngroups, err := encodeRows(rowCols, n, o)
	if err != nil {
		return Result{}, err
	}
	for i := range rowCodes {
		if anyMissing(rowCols, i) {
			rowCodes[i] = 0
		}
	}

	sorted, err := groupsort.Sort(rowCodes, ngroups)
	if err != nil {
		return Result{}, err
	}
	outRow := make([]int, ngroups+1)
	var firstRows []int
	for c := 1; c <= ngroups; c++ {
		if sorted.Counts[c] == 0 {
			continue
		}
		outRow[c] = len(firstRows)
		firstRows = append(firstRows, sorted.Perm[sorted.Starts[c]])
	}
	nrows, ncols := len(firstRows), keyEnc.NumGroups()

	grid := make([]column.Mutable, ncols)
	for j := range grid {
		if grid[j], err = column.NewMissing(valueCol.Kind(), nrows); err != nil {
			return Result{}, err
		}
	}
	written := make([]bool, nrows*ncols)
	duplicates := 0
	for i := 0; i < n; i++ {
		if rowCodes[i] == 0 || keyEnc.Codes[i] == 0 {
			continue
		}
		r, k := outRow[rowCodes[i]], keyEnc.Codes[i]-1
		cell := r*ncols + k
		if written[cell] {
			duplicates++
		}
		written[cell] = true
		if valueCol.IsMissing(i) {
			grid[k].SetMissing(r)
			continue
		}
		if err := grid[k].SetValue(r, valueCol.Value(i)); err != nil {
			return Result{}, err
		}
	}
	if duplicates > 0 {
		o.Logger.Warn("unstack found repeated row/key pairs, keeping the last value",
			"key", key,
			"value", value,
			"duplicates", duplicates)
	}

	leadCols := make([]column.Column, len(rowCols))
	for j, c := range rowCols {
		leadCols[j] = c.Take(firstRows)
	}
	lead, err := table.New(leadCols, rowKeys)
	if err != nil {
		return Result{}, err
	}
	names := make([]string, ncols)
	wide := make([]column.Column, ncols)
	for j := range names {
		names[j] = columnName(keyEnc.Pool.Value(j))
		wide[j] = grid[j]
	}
	body, err := table.New(wide, names)
	if err != nil {
		return Result{}, err
	}
	out, err := table.CBind(lead, body)
	if err != nil {
		return Result{}, err
	}
	return Result{Table: out, Duplicates: duplicates}, nil
}

// encodeRows assigns one code per input row from the row-key columns. With no
// row keys every row falls into a single output row.
func encodeRows(cols []column.Column, n int, o table.Options) ([]int, int, error) {
	if len(cols) == 0 {
		codes := make([]int, n)
		for i := range codes {
			codes[i] = 1
		}
		return codes, 1, nil
	}
	encs := make([]dict.Encoding, len(cols))
	for j, c := range cols {
		enc, err := dict.Encode(c)
		if err != nil {
			return nil, 0, err
		}
		encs[j] = enc
	}
	comp, err := dict.Combine(encs, dict.CompositeOptions{
		MaxGroups:    o.CompositeCap(n),
		HashFallback: o.HashFallback,
	})
	if err != nil {
		return nil, 0, err
	}
	codes := make([]int, n)
	copy(codes, comp.Codes)
	return codes, comp.NumGroups, nil
}

func anyMissing(cols []column.Column, i int) bool {
	for _, c := range cols {
		if c.IsMissing(i) {
			return true
		}
	}
	return false
}

func columnName(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}
