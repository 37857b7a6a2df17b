package agg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
	"github.com/arkilian/tabular/pkg/table"
)

func frame(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromMap(map[string][]interface{}{
		"n": {3, nil, 1, 2},
		"s": {"b", "a", nil, "c"},
	}, "n", "s")
	require.NoError(t, err)
	return tbl
}

func single(t *testing.T, eval func(table.Frame) (*table.Table, error), f table.Frame) (string, interface{}) {
	t.Helper()
	out, err := eval(f)
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	require.Equal(t, 1, out.NumCols())
	c, _ := out.Column(0)
	return out.Names()[0], c.Value(0)
}

func TestReductions(t *testing.T) {
	f := frame(t)

	tests := []struct {
		eval     func(table.Frame) (*table.Table, error)
		wantName string
		want     interface{}
	}{
		{Count(), "count", int64(4)},
		{Of(TypeCount, "n"), "count_n", int64(3)},
		{Sum("n"), "sum_n", 6.0},
		{Mean("n"), "mean_n", 2.0},
		{Min("n"), "min_n", int64(1)},
		{Max("n"), "max_n", int64(3)},
		{Min("s"), "min_s", "a"},
		{Max("s"), "max_s", "c"},
		{First("n"), "first_n", int64(3)},
		{Last("s"), "last_s", "c"},
	}
	for _, tt := range tests {
		name, got := single(t, tt.eval, f)
		assert.Equal(t, tt.wantName, name)
		assert.Equal(t, tt.want, got, tt.wantName)
	}
}

func TestReduce_EmptyAndKinds(t *testing.T) {
	empty := column.Int64s(nil)
	c, err := Reduce(TypeSum, empty)
	require.NoError(t, err)
	assert.Equal(t, column.KindFloat64, c.Kind())
	assert.True(t, c.IsMissing(0))

	c, err = Reduce(TypeCount, empty)
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.Value(0))

	c, err = Reduce(TypeMax, column.Strings([]string{"x"}))
	require.NoError(t, err)
	assert.Equal(t, column.KindString, c.Kind())

	_, err = Reduce(TypeSum, column.Strings([]string{"x"}))
	assert.True(t, errors.Is(err, tberrors.ErrTypeMismatch))
}

func TestParse(t *testing.T) {
	f := frame(t)

	eval, err := Parse("sum:n")
	require.NoError(t, err)
	name, v := single(t, eval, f)
	assert.Equal(t, "sum_n", name)
	assert.Equal(t, 6.0, v)

	eval, err = Parse("count")
	require.NoError(t, err)
	_, v = single(t, eval, f)
	assert.Equal(t, int64(4), v)

	_, err = Parse("sum")
	assert.True(t, errors.Is(err, tberrors.ErrInvalidArgument))
	_, err = Parse("median:n")
	assert.True(t, errors.Is(err, tberrors.ErrInvalidArgument))

	_, err = Parse("sum:zzz")
	require.NoError(t, err)
}

func TestParseType_RoundTrip(t *testing.T) {
	for _, ty := range []Type{TypeCount, TypeSum, TypeMin, TypeMax, TypeMean, TypeFirst, TypeLast} {
		got, err := ParseType(ty.String())
		require.NoError(t, err)
		assert.Equal(t, ty, got)
	}
	got, err := ParseType("AVG")
	require.NoError(t, err)
	assert.Equal(t, TypeMean, got)
}
