package reshape

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/tabular/pkg/column"
	"github.com/arkilian/tabular/pkg/table"
)

// TestProperty_PivotRoundTrip stacks a wide frame with a unique row key and
// unstacks it again; every present value must come back in place.
func TestProperty_PivotRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("unstack(stack(T)) restores T", prop.ForAll(
		func(a, b []int64, holes []bool) bool {
			n := min(len(a), len(b))
			if n == 0 {
				return true
			}
			ids := make([]string, n)
			valid := make([]bool, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("r%d", i)
				valid[i] = i >= len(holes) || !holes[i]
			}
			bcol, err := column.NewVector(b[:n], valid)
			if err != nil {
				return false
			}
			wide, err := table.New(
				[]column.Column{column.Strings(ids), column.Int64s(a[:n]), bcol},
				[]string{"id", "a", "b"},
			)
			if err != nil {
				return false
			}

			long, err := Stack(wide, []string{"a", "b"})
			if err != nil || long.NumRows() != 2*n {
				return false
			}
			res, err := Unstack(long, "key", "value", []string{"id"})
			if err != nil || res.Duplicates != 0 || res.Table.NumRows() != n {
				return false
			}

			for _, name := range []string{"a", "b"} {
				src, _ := wide.ColumnByName(name)
				got, err := res.Table.ColumnByName(name)
				if err != nil {
					return false
				}
				ids, _ := res.Table.ColumnByName("id")
				for i := 0; i < n; i++ {
					if ids.Value(i) != fmt.Sprintf("r%d", i) {
						return false
					}
					if src.IsMissing(i) {
						continue
					}
					if got.Value(i) != src.Value(i) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64()),
		gen.SliceOf(gen.Int64()),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
