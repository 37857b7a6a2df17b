// Package groupsort implements the stable counting sort that groups row
// positions by integer code. It is the primitive shared by grouping, joins
// and pivots.
package groupsort

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	tberrors "github.com/arkilian/tabular/pkg/errors"
)

// Result is a grouping permutation. Rows with code c occupy
// Perm[Starts[c] : Starts[c]+Counts[c]] in their original relative order.
// Code 0 (missing) comes first.
type Result struct {
	Perm   []int
	Starts []int
	Counts []int
}

// NumGroups returns the number of non-missing codes.
func (r Result) NumGroups() int { return len(r.Counts) - 1 }

// Block returns the rows holding code c. The slice aliases Perm.
func (r Result) Block(c int) []int {
	return r.Perm[r.Starts[c] : r.Starts[c]+r.Counts[c]]
}

// Sort groups codes in [0, ngroups] with count, offset and scatter passes.
func Sort(codes []int, ngroups int) (Result, error) {
	if ngroups < 0 {
		return Result{}, tberrors.InvalidArgument("negative group count %d", ngroups)
	}
	counts := make([]int, ngroups+1)
	if err := count(codes, 0, counts); err != nil {
		return Result{}, err
	}

	starts := make([]int, ngroups+1)
	for c := 1; c <= ngroups; c++ {
		starts[c] = starts[c-1] + counts[c-1]
	}

	where := make([]int, ngroups+1)
	copy(where, starts)
	perm := make([]int, len(codes))
	scatter(codes, 0, where, perm)
	return Result{Perm: perm, Starts: starts, Counts: counts}, nil
}

// SortParallel produces the same Result as Sort, splitting the rows into
// contiguous partitions. Counting and scattering run concurrently per
// partition; the per-partition counts are merged sequentially in between
// so that every partition writes to its own slots of each block.
func SortParallel(ctx context.Context, codes []int, ngroups, partitions int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	n := len(codes)
	if partitions > n {
		partitions = n
	}
	if partitions <= 1 {
		return Sort(codes, ngroups)
	}
	if ngroups < 0 {
		return Result{}, tberrors.InvalidArgument("negative group count %d", ngroups)
	}

	bounds := make([]int, partitions+1)
	for p := 0; p <= partitions; p++ {
		bounds[p] = p * n / partitions
	}

	partCounts := make([][]int, partitions)
	err := fanOut(ctx, partitions, func(p int) error {
		partCounts[p] = make([]int, ngroups+1)
		return count(codes[bounds[p]:bounds[p+1]], bounds[p], partCounts[p])
	})
	if err != nil {
		return Result{}, err
	}

	counts := make([]int, ngroups+1)
	starts := make([]int, ngroups+1)
	where := make([][]int, partitions)
	for p := range where {
		where[p] = make([]int, ngroups+1)
	}
	next := 0
	for c := 0; c <= ngroups; c++ {
		starts[c] = next
		for p := 0; p < partitions; p++ {
			where[p][c] = next
			next += partCounts[p][c]
			counts[c] += partCounts[p][c]
		}
	}

	perm := make([]int, n)
	err = fanOut(ctx, partitions, func(p int) error {
		scatter(codes[bounds[p]:bounds[p+1]], bounds[p], where[p], perm)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Perm: perm, Starts: starts, Counts: counts}, nil
}

func count(codes []int, base int, counts []int) error {
	limit := len(counts) - 1
	for i, c := range codes {
		if c < 0 || c > limit {
			return tberrors.IndexOutOfRange("code %d at row %d outside [0, %d]", c, base+i, limit)
		}
		counts[c]++
	}
	return nil
}

func scatter(codes []int, base int, where []int, perm []int) {
	for i, c := range codes {
		perm[where[c]] = base + i
		where[c]++
	}
}

// fanOut runs fn for every partition with at most GOMAXPROCS in flight and
// returns the first error.
func fanOut(ctx context.Context, partitions int, fn func(p int) error) error {
	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for p := 0; p < partitions; p++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			defer sem.Release(1)
			if err := fn(p); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()
	return firstErr
}
