// Package observability tracks per-operation statistics for table commands.
package observability

import (
	"sort"
	"sync"
	"time"
)

// OpStats tracks how often each operation ran and which columns it keyed on.
type OpStats struct {
	mu      sync.RWMutex
	ops     map[string]*OpSummary
	columns map[string]*ColumnStats
	window  time.Duration
}

// OpSummary aggregates runs of one operation.
type OpSummary struct {
	Op       string
	Runs     int64
	RowsIn   int64
	RowsOut  int64
	Elapsed  time.Duration
	LastSeen time.Time
}

// ColumnStats holds key usage for a column.
type ColumnStats struct {
	Column    string
	Frequency int64
	LastSeen  time.Time
	Ops       map[string]int // operation -> count
}

// NewOpStats creates a tracker. Entries older than window are dropped by Prune.
func NewOpStats(window time.Duration) *OpStats {
	return &OpStats{
		ops:     make(map[string]*OpSummary),
		columns: make(map[string]*ColumnStats),
		window:  window,
	}
}

// Record adds one run of op. keys are the columns the operation grouped,
// joined or sorted on.
func (s *OpStats) Record(op string, rowsIn, rowsOut int, elapsed time.Duration, keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sum, ok := s.ops[op]
	if !ok {
		sum = &OpSummary{Op: op}
		s.ops[op] = sum
	}
	sum.Runs++
	sum.RowsIn += int64(rowsIn)
	sum.RowsOut += int64(rowsOut)
	sum.Elapsed += elapsed
	sum.LastSeen = now

	for _, k := range keys {
		cs, ok := s.columns[k]
		if !ok {
			cs = &ColumnStats{Column: k, Ops: make(map[string]int)}
			s.columns[k] = cs
		}
		cs.Frequency++
		cs.LastSeen = now
		cs.Ops[op]++
	}
}

// Ops returns a copy of every operation summary, most runs first.
func (s *OpStats) Ops() []OpSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OpSummary, 0, len(s.ops))
	for _, o := range s.ops {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Runs != out[j].Runs {
			return out[i].Runs > out[j].Runs
		}
		return out[i].Op < out[j].Op
	})
	return out
}

// TopKeys returns the n most used key columns by frequency (descending).
func (s *OpStats) TopKeys(n int) []ColumnStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || len(s.columns) == 0 {
		return []ColumnStats{}
	}

	stats := make([]ColumnStats, 0, len(s.columns))
	for _, c := range s.columns {
		cp := ColumnStats{
			Column:    c.Column,
			Frequency: c.Frequency,
			LastSeen:  c.LastSeen,
			Ops:       make(map[string]int, len(c.Ops)),
		}
		for op, count := range c.Ops {
			cp.Ops[op] = count
		}
		stats = append(stats, cp)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		return stats[i].Column < stats[j].Column
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Prune removes entries where time.Since(LastSeen) > window.
func (s *OpStats) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := time.Now().Add(-s.window)
	for op, o := range s.ops {
		if o.LastSeen.Before(threshold) {
			delete(s.ops, op)
		}
	}
	for col, c := range s.columns {
		if c.LastSeen.Before(threshold) {
			delete(s.columns, col)
		}
	}
}
