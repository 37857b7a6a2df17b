package table

import (
	"log/slog"
	"runtime"
)

// Options tunes the grouping, join and reshape engines built on tables.
type Options struct {
	// MaxCompositeGroups caps the composite code space of multi-column
	// grouping before the hashing grouper takes over.
	MaxCompositeGroups int

	// HashFallback enables the hashing grouper above MaxCompositeGroups.
	// When false, exceeding the cap fails with GroupOverflow.
	HashFallback bool

	// ParallelThreshold is the row count from which the group sort runs
	// partitioned. Zero disables the partitioned path.
	ParallelThreshold int

	// Partitions is the number of partitions of the parallel group sort.
	Partitions int

	// CoalesceKey fills the join key of right-only rows from the right
	// frame. By default those rows have a missing key.
	CoalesceKey bool

	// KeyName and ValueName name the columns produced by stack.
	KeyName   string
	ValueName string

	// Logger receives engine diagnostics.
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MaxCompositeGroups: 1 << 24,
		HashFallback:       true,
		ParallelThreshold:  1 << 20,
		Partitions:         runtime.NumCPU(),
		KeyName:            "key",
		ValueName:          "value",
	}
}

// ApplyOptions resolves opts on top of the defaults.
func ApplyOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Partitions < 1 {
		o.Partitions = 1
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// CompositeCap returns the composite code cap for a frame of n rows. With
// the hashing grouper enabled the cap is also bounded by max(4n, 1<<16),
// so the counting arrays stay proportional to the input.
func (o Options) CompositeCap(n int) int {
	if o.MaxCompositeGroups <= 0 || !o.HashFallback {
		return o.MaxCompositeGroups
	}
	return min(o.MaxCompositeGroups, max(4*n, 1<<16))
}

// WithMaxCompositeGroups sets the composite code cap.
func WithMaxCompositeGroups(n int) Option {
	return func(o *Options) { o.MaxCompositeGroups = n }
}

// WithHashFallback toggles the hashing grouper.
func WithHashFallback(enabled bool) Option {
	return func(o *Options) { o.HashFallback = enabled }
}

// WithParallelism configures the partitioned group sort.
func WithParallelism(threshold, partitions int) Option {
	return func(o *Options) {
		o.ParallelThreshold = threshold
		o.Partitions = partitions
	}
}

// WithCoalescedKey makes right and outer joins take the key of unmatched
// right rows from the right frame.
func WithCoalescedKey() Option {
	return func(o *Options) { o.CoalesceKey = true }
}

// WithStackNames sets the key and value column names produced by stack.
func WithStackNames(key, value string) Option {
	return func(o *Options) {
		o.KeyName = key
		o.ValueName = value
	}
}

// WithLogger routes engine diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOptions replaces every setting with o.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}
