package column

// Subset is a read-through view of selected rows of another column.
// Nothing is copied; writes to the base column are visible through it.
type Subset struct {
	base Column
	rows []int
}

// NewSubset wraps base restricted to rows. Rows are not validated here;
// callers (table.View) check them once at construction.
func NewSubset(base Column, rows []int) *Subset {
	return &Subset{base: base, rows: rows}
}

// Base returns the wrapped column.
func (s *Subset) Base() Column { return s.base }

// Rows returns the selected base rows.
func (s *Subset) Rows() []int { return s.rows }

func (s *Subset) Kind() Kind              { return s.base.Kind() }
func (s *Subset) Len() int                { return len(s.rows) }
func (s *Subset) IsMissing(i int) bool    { return s.base.IsMissing(s.rows[i]) }
func (s *Subset) Value(i int) interface{} { return s.base.Value(s.rows[i]) }

// Take composes the selection with rows and gathers from the base directly.
func (s *Subset) Take(rows []int) Column {
	composed := make([]int, len(rows))
	for i, r := range rows {
		if r < 0 {
			composed[i] = -1
			continue
		}
		composed[i] = s.rows[r]
	}
	return s.base.Take(composed)
}

// Clone materializes the selected rows.
func (s *Subset) Clone() Column {
	return s.base.Take(s.rows)
}
