// Package join implements single-key equi-joins between frames on top of
// the shared dictionary encoding and group sort.
package join

import (
	"strings"

	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Kind selects which rows a merge keeps.
type Kind int

const (
	Inner Kind = iota // matched rows only
	Left              // every left row, missing right cells when unmatched
	Right             // every right row, missing left cells when unmatched
	Outer             // every row of both sides
	Semi              // left rows with at least one match, left columns only
	Anti              // left rows without a match, left columns only
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Inner:
		return "inner"
	case Left:
		return "left"
	case Right:
		return "right"
	case Outer:
		return "outer"
	case Semi:
		return "semi"
	case Anti:
		return "anti"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name back to a Kind. "full" is accepted for
// Outer.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "inner":
		return Inner, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "outer", "full":
		return Outer, nil
	case "semi":
		return Semi, nil
	case "anti":
		return Anti, nil
	}
	return Inner, tberrors.InvalidArgument("unknown join kind %q", name)
}
