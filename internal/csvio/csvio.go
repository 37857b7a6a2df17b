// Package csvio reads and writes tables as CSV with a header row.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/arkilian/tabular/pkg/column"
	"github.com/arkilian/tabular/pkg/table"
)

// Options controls the CSV dialect.
type Options struct {
	Delimiter rune
	// NullToken marks a missing cell. Empty cells are always missing.
	NullToken string
}

// DefaultOptions returns comma separated values with empty missing cells.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// Read parses CSV with a header row. Each column takes the first kind of
// int64, float64, bool, string that parses all of its non-missing cells.
func Read(r io.Reader, opts Options) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return table.Empty(), nil
	}

	names, rows := records[0], records[1:]
	cols := make([]column.Column, len(names))
	cells := make([]string, len(rows))
	for j := range names {
		for i, row := range rows {
			cells[i] = row[j]
		}
		c, err := parseColumn(cells, opts.NullToken)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", names[j], err)
		}
		cols[j] = c
	}
	return table.New(cols, names)
}

func parseColumn(cells []string, null string) (column.Column, error) {
	kind := inferKind(cells, null)
	b, err := column.NewBuilder(kind, len(cells))
	if err != nil {
		return nil, err
	}
	for _, s := range cells {
		if isNull(s, null) {
			b.AppendMissing()
			continue
		}
		var v interface{}
		switch kind {
		case column.KindInt64:
			v, _ = strconv.ParseInt(s, 10, 64)
		case column.KindFloat64:
			v, _ = strconv.ParseFloat(s, 64)
		case column.KindBool:
			v, _ = strconv.ParseBool(s)
		default:
			v = s
		}
		if err := b.Append(v); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func inferKind(cells []string, null string) column.Kind {
	parsers := []struct {
		kind column.Kind
		ok   func(string) bool
	}{
		{column.KindInt64, func(s string) bool { _, err := strconv.ParseInt(s, 10, 64); return err == nil }},
		{column.KindFloat64, func(s string) bool { _, err := strconv.ParseFloat(s, 64); return err == nil }},
		{column.KindBool, func(s string) bool { _, err := strconv.ParseBool(s); return err == nil }},
	}
	for _, p := range parsers {
		all := true
		for _, s := range cells {
			if !isNull(s, null) && !p.ok(s) {
				all = false
				break
			}
		}
		if all {
			return p.kind
		}
	}
	return column.KindString
}

func isNull(s, null string) bool {
	return s == "" || (null != "" && s == null)
}

// Write writes f as CSV with a header row. Missing cells are written as
// the null token.
func Write(w io.Writer, f table.Frame, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = opts.Delimiter
	if err := cw.Write(f.Names()); err != nil {
		return err
	}
	cols := make([]column.Column, f.NumCols())
	for j := range cols {
		c, err := f.Column(j)
		if err != nil {
			return err
		}
		cols[j] = c
	}
	record := make([]string, len(cols))
	for i := 0; i < f.NumRows(); i++ {
		for j, c := range cols {
			record[j] = format(c.Value(i), opts.NullToken)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v interface{}, null string) string {
	switch x := v.(type) {
	case nil:
		return null
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}
