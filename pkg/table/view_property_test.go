package table

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/arkilian/tabular/pkg/column"
)

// TestProperty_ViewComposition checks that selecting rows r2 from a view
// over rows r1 reads the same cells as indexing the parent at r1[r2[i]].
func TestProperty_ViewComposition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("nested views compose positionally", prop.ForAll(
		func(values []int64, picks1 []int, picks2 []int) bool {
			if len(values) == 0 {
				return true
			}
			parent, err := New([]column.Column{column.Int64s(values)}, []string{"x"})
			if err != nil {
				return false
			}

			r1 := make([]int, len(picks1))
			for i, p := range picks1 {
				r1[i] = p % len(values)
			}
			v1, err := parent.Rows(r1)
			if err != nil {
				return false
			}
			if len(r1) == 0 {
				_, err := v1.Rows([]int{0})
				return err != nil
			}

			r2 := make([]int, len(picks2))
			for i, p := range picks2 {
				r2[i] = p % len(r1)
			}
			v2, err := v1.Rows(r2)
			if err != nil {
				return false
			}

			got := v2.Materialize()
			col, _ := got.Column(0)
			for i, r := range r2 {
				if col.Value(i) != values[r1[r]] {
					return false
				}
			}
			return col.Len() == len(r2)
		},
		gen.SliceOf(gen.Int64()),
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
