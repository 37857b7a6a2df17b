package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arkilian/tabular/internal/csvio"
	"github.com/arkilian/tabular/pkg/agg"
	"github.com/arkilian/tabular/pkg/groupby"
	"github.com/arkilian/tabular/pkg/join"
	"github.com/arkilian/tabular/pkg/reshape"
	"github.com/arkilian/tabular/pkg/table"
)

type command struct {
	name    string
	summary string
	run     func(env *runEnv, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"groupby", "aggregate rows per key", runGroupBy},
		{"merge", "equi-join two files on one key column", runMerge},
		{"stack", "turn value columns into key/value rows", runStack},
		{"unstack", "spread a value column into one column per key", runUnstack},
		{"sort", "order rows by one or more columns", runSort},
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func newFlagSet(env *runEnv, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	return fs
}

func readTable(env *runEnv, path string) (*table.Table, error) {
	if path == "" {
		return nil, fmt.Errorf("input file is required")
	}
	var f *os.File
	if path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
	}
	t, err := csvio.Read(f, env.csv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	env.logger.Debug("input loaded", "path", path, "rows", t.NumRows(), "columns", t.NumCols())
	return t, nil
}

func writeTable(env *runEnv, f table.Frame) error {
	return csvio.Write(env.stdout, f, env.csv)
}

func runGroupBy(env *runEnv, args []string) error {
	fs := newFlagSet(env, "groupby")
	in := fs.String("in", "", "Input CSV file (- for stdin)")
	by := fs.String("by", "", "Comma separated key columns")
	aggs := fs.String("agg", "count", "Comma separated reductions: count, sum:col, mean:col, min:col, max:col, first:col, last:col")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := readTable(env, *in)
	if err != nil {
		return err
	}
	var evals []groupby.Evaluator
	for _, expr := range splitList(*aggs) {
		e, err := agg.Parse(expr)
		if err != nil {
			return err
		}
		evals = append(evals, e)
	}
	start := time.Now()
	keys := splitList(*by)
	g, err := groupby.By(t, keys, env.cfg.TableOptions(env.logger)...)
	if err != nil {
		return err
	}
	out, err := g.Aggregate(groupby.Combine(evals...))
	if err != nil {
		return err
	}
	env.stats.Record("groupby", t.NumRows(), out.NumRows(), time.Since(start), keys...)
	env.logger.Info("groupby done", "groups", g.Len(), "rows", t.NumRows())
	return writeTable(env, out)
}

func runMerge(env *runEnv, args []string) error {
	fs := newFlagSet(env, "merge")
	left := fs.String("left", "", "Left CSV file")
	right := fs.String("right", "", "Right CSV file")
	on := fs.String("on", "", "Join key column")
	kindName := fs.String("kind", "inner", "Join kind: inner, left, right, outer, semi, anti, cross")
	coalesceKey := fs.Bool("coalesce", false, "Take the key of unmatched right rows from the right file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, err := readTable(env, *left)
	if err != nil {
		return err
	}
	r, err := readTable(env, *right)
	if err != nil {
		return err
	}

	start := time.Now()
	keys := splitList(*on)
	var out *table.Table
	if strings.EqualFold(*kindName, "cross") {
		out, err = join.Cross(l, r)
	} else {
		kind, perr := join.ParseKind(*kindName)
		if perr != nil {
			return perr
		}
		opts := env.cfg.TableOptions(env.logger)
		if *coalesceKey {
			opts = append(opts, table.WithCoalescedKey())
		}
		out, err = join.MergeOn(l, r, keys, kind, opts...)
	}
	if err != nil {
		return err
	}
	env.stats.Record("merge", l.NumRows()+r.NumRows(), out.NumRows(), time.Since(start), keys...)
	env.logger.Info("merge done", "kind", *kindName, "rows", out.NumRows())
	return writeTable(env, out)
}

func runStack(env *runEnv, args []string) error {
	fs := newFlagSet(env, "stack")
	in := fs.String("in", "", "Input CSV file (- for stdin)")
	values := fs.String("values", "", "Comma separated value columns")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := readTable(env, *in)
	if err != nil {
		return err
	}
	start := time.Now()
	out, err := reshape.Stack(t, splitList(*values), env.cfg.TableOptions(env.logger)...)
	if err != nil {
		return err
	}
	env.stats.Record("stack", t.NumRows(), out.NumRows(), time.Since(start))
	return writeTable(env, out)
}

func runUnstack(env *runEnv, args []string) error {
	fs := newFlagSet(env, "unstack")
	in := fs.String("in", "", "Input CSV file (- for stdin)")
	key := fs.String("key", env.cfg.Reshape.KeyName, "Column whose values become output columns")
	value := fs.String("value", env.cfg.Reshape.ValueName, "Column holding the cell values")
	rows := fs.String("rows", "", "Comma separated row key columns (default: all others)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := readTable(env, *in)
	if err != nil {
		return err
	}
	start := time.Now()
	rowKeys := splitList(*rows)
	res, err := reshape.Unstack(t, *key, *value, rowKeys, env.cfg.TableOptions(env.logger)...)
	if err != nil {
		return err
	}
	env.stats.Record("unstack", t.NumRows(), res.Table.NumRows(), time.Since(start), append([]string{*key}, rowKeys...)...)
	return writeTable(env, res.Table)
}

func runSort(env *runEnv, args []string) error {
	fs := newFlagSet(env, "sort")
	in := fs.String("in", "", "Input CSV file (- for stdin)")
	by := fs.String("by", "", "Comma separated columns; prefix with - for descending")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := readTable(env, *in)
	if err != nil {
		return err
	}
	start := time.Now()
	var keys []table.SortKey
	var names []string
	for _, k := range splitList(*by) {
		if name, ok := strings.CutPrefix(k, "-"); ok {
			keys = append(keys, table.Desc(name))
			names = append(names, name)
		} else {
			keys = append(keys, table.Asc(k))
			names = append(names, k)
		}
	}
	view, err := table.Sort(t, keys...)
	if err != nil {
		return err
	}
	env.stats.Record("sort", t.NumRows(), view.NumRows(), time.Since(start), names...)
	return writeTable(env, view)
}
