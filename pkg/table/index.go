package table

import (
	"sort"

	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Index maps column names to positions and carries named column groups.
//
// An Index is never modified once built: table mutations install a new
// Index, so a View holding an older one keeps a consistent layout.
type Index struct {
	names  []string
	lookup map[string]int
	groups map[string][]string
}

// NewIndex builds an index over unique names.
func NewIndex(names []string) (*Index, error) {
	x := &Index{
		names:  make([]string, len(names)),
		lookup: make(map[string]int, len(names)),
	}
	copy(x.names, names)
	for i, name := range names {
		if _, dup := x.lookup[name]; dup {
			return nil, tberrors.DuplicateColumnName(name)
		}
		x.lookup[name] = i
	}
	return x, nil
}

// Len returns the number of columns.
func (x *Index) Len() int { return len(x.names) }

// Names returns a copy of the column names in position order.
func (x *Index) Names() []string {
	out := make([]string, len(x.names))
	copy(out, x.names)
	return out
}

// Name returns the name at position i.
func (x *Index) Name(i int) string { return x.names[i] }

// Position returns the position of name.
func (x *Index) Position(name string) (int, bool) {
	i, ok := x.lookup[name]
	return i, ok
}

// Has reports whether name is present.
func (x *Index) Has(name string) bool {
	_, ok := x.lookup[name]
	return ok
}

// Group returns the members of a named group.
func (x *Index) Group(name string) ([]string, bool) {
	members, ok := x.groups[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(members))
	copy(out, members)
	return out, true
}

// GroupNames returns the group names in sorted order.
func (x *Index) GroupNames() []string {
	out := make([]string, 0, len(x.groups))
	for name := range x.groups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (x *Index) withGroup(name string, members []string) (*Index, error) {
	for _, m := range members {
		if !x.Has(m) {
			return nil, tberrors.UnknownColumn(m)
		}
	}
	nx := x.shallow()
	nx.groups = make(map[string][]string, len(x.groups)+1)
	for g, ms := range x.groups {
		nx.groups[g] = ms
	}
	ms := make([]string, len(members))
	copy(ms, members)
	nx.groups[name] = ms
	return nx, nil
}

// shallow copies names and lookup; groups are shared until replaced.
func (x *Index) shallow() *Index {
	nx := &Index{
		names:  make([]string, len(x.names)),
		lookup: make(map[string]int, len(x.names)),
		groups: x.groups,
	}
	copy(nx.names, x.names)
	for k, v := range x.lookup {
		nx.lookup[k] = v
	}
	return nx
}

// reconcile keeps the groups whose members all survive in nx.
func (x *Index) reconcile(nx *Index) {
	if len(x.groups) == 0 {
		nx.groups = nil
		return
	}
	nx.groups = make(map[string][]string)
	for g, members := range x.groups {
		keep := true
		for _, m := range members {
			if !nx.Has(m) {
				keep = false
				break
			}
		}
		if keep {
			nx.groups[g] = members
		}
	}
}

// selectPositions builds the index of a column selection. Positions must
// already be validated.
func (x *Index) selectPositions(positions []int) (*Index, error) {
	names := make([]string, len(positions))
	for i, p := range positions {
		names[i] = x.names[p]
	}
	nx, err := NewIndex(names)
	if err != nil {
		return nil, err
	}
	x.reconcile(nx)
	return nx, nil
}

func (x *Index) appendName(name string) (*Index, error) {
	if x.Has(name) {
		return nil, tberrors.DuplicateColumnName(name)
	}
	nx := x.shallow()
	nx.names = append(nx.names, name)
	nx.lookup[name] = len(nx.names) - 1
	return nx, nil
}

func (x *Index) rename(from, to string) (*Index, error) {
	i, ok := x.lookup[from]
	if !ok {
		return nil, tberrors.UnknownColumn(from)
	}
	if from == to {
		return x, nil
	}
	if x.Has(to) {
		return nil, tberrors.DuplicateColumnName(to)
	}
	nx := x.shallow()
	nx.names[i] = to
	delete(nx.lookup, from)
	nx.lookup[to] = i
	if len(x.groups) > 0 {
		nx.groups = make(map[string][]string, len(x.groups))
		for g, members := range x.groups {
			ms := make([]string, len(members))
			for j, m := range members {
				if m == from {
					m = to
				}
				ms[j] = m
			}
			nx.groups[g] = ms
		}
	}
	return nx, nil
}
