package groupby

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/tabular/pkg/agg"
	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
	"github.com/arkilian/tabular/pkg/table"
)

func scenario(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]column.Column{
		column.Int64s([]int64{1, 2, 2, 3}),
		column.Int64s([]int64{10, 20, 30, 40}),
	}, []string{"id", "v"})
	require.NoError(t, err)
	return tbl
}

func groupRows(t *testing.T, g *Grouped) [][]int {
	t.Helper()
	var out [][]int
	for _, v := range g.All() {
		out = append(out, v.RowPositions())
	}
	return out
}

func TestBy_SingleKey(t *testing.T) {
	g, err := By(scenario(t), []string{"id"})
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, [][]int{{0}, {1, 2}, {3}}, groupRows(t, g))
	assert.Equal(t, 2, g.Size(1))

	keys, err := g.Keys()
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{int64(1)}, {int64(2)}, {int64(3)}}, table.Records(keys))

	_, err = g.Group(3)
	assert.True(t, errors.Is(err, tberrors.ErrIndexOutOfRange))
}

func TestBy_FirstOccurrenceOrderAndMissing(t *testing.T) {
	tbl, err := table.FromMap(map[string][]interface{}{
		"k": {"b", nil, "a", "b", nil, "a"},
		"v": {1, 2, 3, 4, 5, 6},
	}, "k", "v")
	require.NoError(t, err)

	g, err := By(tbl, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 3}, {2, 5}}, groupRows(t, g))
	assert.Equal(t, []int{1, 4, 0, 3, 2, 5}, g.Permutation())
}

func TestBy_MultiKey(t *testing.T) {
	tbl, err := table.FromMap(map[string][]interface{}{
		"a": {"x", "y", "x", "y", "x"},
		"b": {1, 1, 2, 1, 1},
	}, "a", "b")
	require.NoError(t, err)

	g, err := By(tbl, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 4}, {1, 3}, {2}}, groupRows(t, g))

	hashed, err := By(tbl, []string{"a", "b"}, table.WithMaxCompositeGroups(1))
	require.NoError(t, err)
	assert.Equal(t, groupRows(t, g), groupRows(t, hashed))

	_, err = By(tbl, []string{"a", "b"}, table.WithMaxCompositeGroups(1), table.WithHashFallback(false))
	assert.True(t, errors.Is(err, tberrors.ErrGroupOverflow))
}

func TestBy_ParallelMatchesSequential(t *testing.T) {
	n := 5000
	values := make([]int64, n)
	for i := range values {
		values[i] = int64((i * 31) % 17)
	}
	tbl, err := table.New([]column.Column{column.Int64s(values)}, []string{"k"})
	require.NoError(t, err)

	seq, err := By(tbl, []string{"k"})
	require.NoError(t, err)
	par, err := By(tbl, []string{"k"}, table.WithParallelism(100, 4))
	require.NoError(t, err)
	assert.Equal(t, seq.Permutation(), par.Permutation())
	assert.Equal(t, groupRows(t, seq), groupRows(t, par))
}

func TestBy_Errors(t *testing.T) {
	_, err := By(scenario(t), nil)
	assert.True(t, errors.Is(err, tberrors.ErrInvalidArgument))

	_, err = By(scenario(t), []string{"nope"})
	assert.True(t, errors.Is(err, tberrors.ErrUnknownColumn))
}

func TestBy_OverView(t *testing.T) {
	view, err := scenario(t).Rows([]int{3, 2, 1})
	require.NoError(t, err)
	g, err := By(view, []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{3}, {2, 1}}, groupRows(t, g))
}

func TestMap(t *testing.T) {
	g, err := By(scenario(t), []string{"id"})
	require.NoError(t, err)

	sizes, err := Map(g, func(v *table.View) (int, error) { return v.NumRows(), nil })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1}, sizes)
}

func TestAggregate(t *testing.T) {
	g, err := By(scenario(t), []string{"id"})
	require.NoError(t, err)

	out, err := g.Aggregate(Combine(agg.Sum("v"), agg.Count()))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "sum_v", "count"}, out.Names())
	assert.Equal(t, [][]interface{}{
		{int64(1), 10.0, int64(1)},
		{int64(2), 50.0, int64(2)},
		{int64(3), 40.0, int64(1)},
	}, table.Records(out))
}

func TestAggregate_MultiRowRepeatsKeys(t *testing.T) {
	g, err := By(scenario(t), []string{"id"})
	require.NoError(t, err)

	out, err := g.Aggregate(FromColumn("v", func(f table.Frame) (column.Column, error) {
		return f.ColumnByName("v")
	}))
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{
		{int64(1), int64(10)},
		{int64(2), int64(20)},
		{int64(2), int64(30)},
		{int64(3), int64(40)},
	}, table.Records(out))
}

func TestAggregate_Scalar(t *testing.T) {
	g, err := By(scenario(t), []string{"id"})
	require.NoError(t, err)

	out, err := g.Aggregate(FromScalar("rows", func(f table.Frame) (interface{}, error) {
		return f.NumRows(), nil
	}))
	require.NoError(t, err)
	rows, _ := out.ColumnByName("rows")
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(1)}, column.Values(rows))
}

func TestAggregate_ErrorPropagates(t *testing.T) {
	g, err := By(scenario(t), []string{"id"})
	require.NoError(t, err)
	_, err = g.Aggregate(agg.Sum("nope"))
	assert.True(t, errors.Is(err, tberrors.ErrUnknownColumn))
}

func TestAggregate_NilResult(t *testing.T) {
	g, err := By(scenario(t), []string{"id"})
	require.NoError(t, err)

	none := func(table.Frame) (*table.Table, error) { return nil, nil }
	_, err = g.Aggregate(none)
	assert.True(t, errors.Is(err, tberrors.ErrInvalidArgument))
	_, err = g.Transform(none)
	assert.True(t, errors.Is(err, tberrors.ErrInvalidArgument))
}

func TestTransform(t *testing.T) {
	tbl, err := table.FromMap(map[string][]interface{}{
		"id": {2, 1, 2},
		"v":  {1, 2, 3},
	}, "id", "v")
	require.NoError(t, err)
	g, err := By(tbl, []string{"id"})
	require.NoError(t, err)

	out, err := g.Transform(func(f table.Frame) (*table.Table, error) {
		return f.Materialize(), nil
	})
	require.NoError(t, err)
	// Group order, not parent row order.
	assert.Equal(t, [][]interface{}{
		{int64(2), int64(1)},
		{int64(2), int64(3)},
		{int64(1), int64(2)},
	}, table.Records(out))

	_, err = g.Transform(func(f table.Frame) (*table.Table, error) {
		return table.Empty(), nil
	})
	assert.True(t, errors.Is(err, tberrors.ErrDimensionMismatch))
}

func TestBy_LogsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := By(scenario(t), []string{"id"}, table.WithLogger(logger))
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "groupby built"))
	assert.True(t, strings.Contains(buf.String(), "groups=3"))
}

func TestBy_WideKeySpaceHashesSmallInput(t *testing.T) {
	const n = 250
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = int64(i)
	}
	tbl, err := table.New([]column.Column{
		column.Int64s(vals), column.Int64s(vals), column.Int64s(vals),
	}, []string{"a", "b", "c"})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g, err := By(tbl, []string{"a", "b", "c"}, table.WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, n, g.Len())
	assert.Contains(t, buf.String(), "hashed=true")
	v, err := g.Group(7)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, v.RowPositions())
}
