package join

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/tabular/pkg/column"
	tberrors "github.com/arkilian/tabular/pkg/errors"
	"github.com/arkilian/tabular/pkg/table"
)

func frames(t *testing.T) (*table.Table, *table.Table) {
	t.Helper()
	a, err := table.New([]column.Column{
		column.Int64s([]int64{1, 2}),
		column.Strings([]string{"a", "b"}),
	}, []string{"id", "x"})
	require.NoError(t, err)
	b, err := table.New([]column.Column{
		column.Int64s([]int64{2, 2, 3}),
		column.Strings([]string{"p", "q", "r"}),
	}, []string{"id", "y"})
	require.NoError(t, err)
	return a, b
}

func TestMerge_Kinds(t *testing.T) {
	a, b := frames(t)

	tests := []struct {
		kind Kind
		want [][]interface{}
	}{
		{Inner, [][]interface{}{
			{int64(2), "b", "p"},
			{int64(2), "b", "q"},
		}},
		{Left, [][]interface{}{
			{int64(2), "b", "p"},
			{int64(2), "b", "q"},
			{int64(1), "a", nil},
		}},
		{Right, [][]interface{}{
			{int64(2), "b", "p"},
			{int64(2), "b", "q"},
			{nil, nil, "r"},
		}},
		{Outer, [][]interface{}{
			{int64(2), "b", "p"},
			{int64(2), "b", "q"},
			{int64(1), "a", nil},
			{nil, nil, "r"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			out, err := Merge(a, b, "id", tt.kind)
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "x", "y"}, out.Names())
			assert.Equal(t, tt.want, table.Records(out))
		})
	}
}

func TestMerge_SemiAnti(t *testing.T) {
	a, b := frames(t)

	semi, err := Merge(a, b, "id", Semi)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "x"}, semi.Names())
	assert.Equal(t, [][]interface{}{{int64(2), "b"}}, table.Records(semi))

	anti, err := Merge(a, b, "id", Anti)
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{int64(1), "a"}}, table.Records(anti))
}

func TestMerge_MissingKeysNeverMatch(t *testing.T) {
	a, err := table.FromMap(map[string][]interface{}{
		"k": {nil, "x"},
		"v": {1, 2},
	}, "k", "v")
	require.NoError(t, err)
	b, err := table.FromMap(map[string][]interface{}{
		"k": {nil, "x", "z"},
		"w": {3, 4, 5},
	}, "k", "w")
	require.NoError(t, err)

	inner, err := Merge(a, b, "k", Inner)
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"x", int64(2), int64(4)}}, table.Records(inner))

	outer, err := Merge(a, b, "k", Outer)
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{
		{"x", int64(2), int64(4)},
		{nil, nil, int64(5)},
	}, table.Records(outer))
}

func TestMerge_CoalescedKey(t *testing.T) {
	a, b := frames(t)

	right, err := Merge(a, b, "id", Right, table.WithCoalescedKey())
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{
		{int64(2), "b", "p"},
		{int64(2), "b", "q"},
		{int64(3), nil, "r"},
	}, table.Records(right))

	outer, err := Merge(a, b, "id", Outer, table.WithCoalescedKey())
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{
		{int64(2), "b", "p"},
		{int64(2), "b", "q"},
		{int64(1), "a", nil},
		{int64(3), nil, "r"},
	}, table.Records(outer))

	left, err := Merge(a, b, "id", Left, table.WithCoalescedKey())
	require.NoError(t, err)
	plain, err := Merge(a, b, "id", Left)
	require.NoError(t, err)
	assert.Equal(t, table.Records(plain), table.Records(left))
}

func TestMerge_DuplicateNamesSuffixed(t *testing.T) {
	a, err := table.FromMap(map[string][]interface{}{"id": {1}, "v": {"l"}}, "id", "v")
	require.NoError(t, err)
	b, err := table.FromMap(map[string][]interface{}{"id": {1}, "v": {"r"}}, "id", "v")
	require.NoError(t, err)

	out, err := Merge(a, b, "id", Inner)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "v", "v_1"}, out.Names())
}

func TestMerge_OverViews(t *testing.T) {
	a, b := frames(t)
	bv, err := b.Rows([]int{2, 1})
	require.NoError(t, err)

	out, err := Merge(a, bv, "id", Inner)
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{int64(2), "b", "q"}}, table.Records(out))
}

func TestMerge_InvalidKeys(t *testing.T) {
	a, b := frames(t)

	_, err := Merge(a, b, "x", Inner)
	assert.True(t, errors.Is(err, tberrors.ErrInvalidJoinKey))
	assert.True(t, errors.Is(err, tberrors.ErrUnknownColumn))

	_, err = MergeOn(a, b, []string{"id", "x"}, Inner)
	assert.True(t, errors.Is(err, tberrors.ErrInvalidJoinKey))

	_, err = MergeOn(a, b, nil, Inner)
	assert.True(t, errors.Is(err, tberrors.ErrInvalidJoinKey))

	c, err := table.New([]column.Column{column.Strings([]string{"2"})}, []string{"id"})
	require.NoError(t, err)
	_, err = Merge(a, c, "id", Inner)
	assert.True(t, errors.Is(err, tberrors.ErrInvalidJoinKey))
}

func TestCross(t *testing.T) {
	a, b := frames(t)
	out, err := Cross(a, b)
	require.NoError(t, err)
	assert.Equal(t, 6, out.NumRows())
	assert.Equal(t, []string{"id", "x", "id_1", "y"}, out.Names())
	assert.Equal(t, []interface{}{int64(1), "a", int64(3), "r"}, table.Records(out)[2])
}

func TestBuildIndices(t *testing.T) {
	idx, err := BuildIndices([]int{1, 2, 0, 2}, []int{2, 3, 2, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 3, 3}, idx.LeftMatched)
	assert.Equal(t, []int{0, 2, 0, 2}, idx.RightMatched)
	assert.Equal(t, []int{0}, idx.LeftOnly)
	assert.Equal(t, []int{1}, idx.RightOnly)
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Inner, Left, Right, Outer, Semi, Anti} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("FULL")
	require.NoError(t, err)
	assert.Equal(t, Outer, got)

	_, err = ParseKind("sideways")
	assert.True(t, errors.Is(err, tberrors.ErrInvalidArgument))
}
