package dict

import (
	"encoding/binary"
	"math/bits"
	"slices"

	"github.com/spaolacci/murmur3"

	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Composite is the combined code of several encodings. Code 0 marks rows
// whose first column is missing.
type Composite struct {
	Codes     []int
	NumGroups int
	// Hashed reports that the code space exceeded the configured cap and
	// codes were assigned by the hashing grouper.
	Hashed bool
}

// CompositeOptions bounds the composite code space.
type CompositeOptions struct {
	MaxGroups    int
	HashFallback bool
}

// Combine folds several encodings of equal length into one code per row.
//
// Column j contributes size_j = pool_j + has_missing_j levels; a row's
// level in column j is its code when the column has missing rows and
// code-1 otherwise. The composite code is
//
//	1 + sum_j level_j * prod_{k<j} size_k
//
// so later columns are more significant. Only the first column routes a
// row to the missing group; missing cells in later columns form groups of
// their own. When prod_j size_j exceeds opts.MaxGroups (or overflows int)
// dense codes are assigned by hashing level tuples, keeping the same
// group order, or GroupOverflow is returned if the fallback is disabled.
func Combine(encs []Encoding, opts CompositeOptions) (Composite, error) {
	if len(encs) == 0 {
		return Composite{}, tberrors.InvalidArgument("composite coding needs at least one column")
	}
	n := len(encs[0].Codes)
	for j, e := range encs[1:] {
		if len(e.Codes) != n {
			return Composite{}, tberrors.DimensionMismatch("encoding %d has %d rows, expected %d", j+1, len(e.Codes), n)
		}
	}
	if len(encs) == 1 {
		return Composite{Codes: encs[0].Codes, NumGroups: encs[0].NumGroups()}, nil
	}

	total, ok := levelProduct(encs)
	if ok && (opts.MaxGroups <= 0 || total <= uint64(opts.MaxGroups)) {
		return combineDirect(encs, int(total)), nil
	}
	if !opts.HashFallback {
		if !ok {
			return Composite{}, tberrors.GroupOverflow("composite group count overflows across %d columns", len(encs))
		}
		return Composite{}, tberrors.GroupOverflow("composite group count %d exceeds limit %d", total, opts.MaxGroups)
	}
	return combineHashed(encs), nil
}

func size(e Encoding) uint64 {
	s := uint64(e.NumGroups())
	if e.HasMissing {
		s++
	}
	return s
}

func level(e Encoding, i int) uint64 {
	c := uint64(e.Codes[i])
	if e.HasMissing {
		return c
	}
	return c - 1
}

// levelProduct multiplies the per-column level counts and reports false
// when the product does not fit in an int.
func levelProduct(encs []Encoding) (uint64, bool) {
	total := uint64(1)
	for _, e := range encs {
		hi, lo := bits.Mul64(total, size(e))
		if hi != 0 || lo > uint64(maxInt) {
			return 0, false
		}
		total = lo
	}
	return total, true
}

const maxInt = int(^uint(0) >> 1)

func combineDirect(encs []Encoding, total int) Composite {
	n := len(encs[0].Codes)
	codes := make([]int, n)
	for i := range codes {
		if encs[0].Codes[i] == 0 {
			continue
		}
		var code, stride uint64 = 0, 1
		for _, e := range encs {
			code += level(e, i) * stride
			stride *= size(e)
		}
		codes[i] = int(code) + 1
	}
	return Composite{Codes: codes, NumGroups: total}
}

// combineHashed assigns dense codes to the distinct level tuples present
// in the data, ordered as combineDirect would order them.
func combineHashed(encs []Encoding) Composite {
	n := len(encs[0].Codes)
	k := len(encs)
	buf := make([]byte, 8*k)
	buckets := make(map[uint64][]int)
	var tuples [][]uint64
	rowTuple := make([]int, n)

	for i := 0; i < n; i++ {
		if encs[0].Codes[i] == 0 {
			rowTuple[i] = -1
			continue
		}
		for j, e := range encs {
			binary.LittleEndian.PutUint64(buf[8*j:], level(e, i))
		}
		h := murmur3.Sum64(buf)
		id := -1
		for _, cand := range buckets[h] {
			if sameTuple(tuples[cand], encs, i) {
				id = cand
				break
			}
		}
		if id < 0 {
			t := make([]uint64, k)
			for j, e := range encs {
				t[j] = level(e, i)
			}
			tuples = append(tuples, t)
			id = len(tuples) - 1
			buckets[h] = append(buckets[h], id)
		}
		rowTuple[i] = id
	}

	order := make([]int, len(tuples))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		ta, tb := tuples[a], tuples[b]
		for j := k - 1; j >= 0; j-- {
			if ta[j] != tb[j] {
				if ta[j] < tb[j] {
					return -1
				}
				return 1
			}
		}
		return 0
	})
	dense := make([]int, len(tuples))
	for rank, id := range order {
		dense[id] = rank + 1
	}

	codes := make([]int, n)
	for i, id := range rowTuple {
		if id >= 0 {
			codes[i] = dense[id]
		}
	}
	return Composite{Codes: codes, NumGroups: len(tuples), Hashed: true}
}

func sameTuple(t []uint64, encs []Encoding, i int) bool {
	for j, e := range encs {
		if t[j] != level(e, i) {
			return false
		}
	}
	return true
}
