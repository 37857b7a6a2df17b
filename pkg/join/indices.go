package join

import (
	"github.com/arkilian/tabular/internal/groupsort"
)

// Indices are the row positions produced by matching two code arrays.
// LeftMatched[i] pairs with RightMatched[i]; each matched code contributes
// the cross product of its rows in left-major order. Rows with a missing
// key (code 0) appear nowhere.
type Indices struct {
	LeftMatched  []int
	RightMatched []int
	LeftOnly     []int
	RightOnly    []int
}

// BuildIndices matches left and right codes drawn from one shared
// dictionary of ngroups values.
func BuildIndices(left, right []int, ngroups int) (Indices, error) {
	ls, err := groupsort.Sort(left, ngroups)
	if err != nil {
		return Indices{}, err
	}
	rs, err := groupsort.Sort(right, ngroups)
	if err != nil {
		return Indices{}, err
	}

	var matched, leftOnly, rightOnly int
	for c := 1; c <= ngroups; c++ {
		lc, rc := ls.Counts[c], rs.Counts[c]
		switch {
		case lc > 0 && rc > 0:
			matched += lc * rc
		case lc > 0:
			leftOnly += lc
		case rc > 0:
			rightOnly += rc
		}
	}

	idx := Indices{
		LeftMatched:  make([]int, 0, matched),
		RightMatched: make([]int, 0, matched),
		LeftOnly:     make([]int, 0, leftOnly),
		RightOnly:    make([]int, 0, rightOnly),
	}
	for c := 1; c <= ngroups; c++ {
		lrows, rrows := ls.Block(c), rs.Block(c)
		switch {
		case len(lrows) > 0 && len(rrows) > 0:
			for _, l := range lrows {
				for _, r := range rrows {
					idx.LeftMatched = append(idx.LeftMatched, l)
					idx.RightMatched = append(idx.RightMatched, r)
				}
			}
		case len(lrows) > 0:
			idx.LeftOnly = append(idx.LeftOnly, lrows...)
		case len(rrows) > 0:
			idx.RightOnly = append(idx.RightOnly, rrows...)
		}
	}
	return idx, nil
}
