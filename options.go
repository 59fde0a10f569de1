package lotuscalc

import "math/rand"

// Options holds configuration for a Sheet.
type Options struct {
	rows     int
	cols     int
	clock    Clock
	rand     *rand.Rand
	mode     RecalcMode
	order    RecalcOrder
	maxDepth int
	registry *FunctionRegistry
}

func defaultOptions() *Options {
	return &Options{
		rows:     MaxRows,
		cols:     MaxCols,
		clock:    SystemClock(),
		mode:     RecalcAutomatic,
		order:    OrderNatural,
		maxDepth: DefaultMaxDepth,
	}
}

// Option configures the Sheet.
type Option func(*Options)

// WithMaxRows limits the number of rows (default: 65536).
func WithMaxRows(rows int) Option {
	return func(o *Options) { o.rows = rows }
}

// WithMaxCols limits the number of columns (default: 256).
func WithMaxCols(cols int) Option {
	return func(o *Options) { o.cols = cols }
}

// WithClock sets the time source used by NOW and TODAY.
func WithClock(clock Clock) Option {
	return func(o *Options) { o.clock = clock }
}

// WithRand sets the random source used by RAND and RANDBETWEEN.
func WithRand(r *rand.Rand) Option {
	return func(o *Options) { o.rand = r }
}

// WithRecalcMode sets the initial recalculation mode (default: automatic).
func WithRecalcMode(mode RecalcMode) Option {
	return func(o *Options) { o.mode = mode }
}

// WithRecalcOrder sets the initial recalculation order (default: natural).
func WithRecalcOrder(order RecalcOrder) Option {
	return func(o *Options) { o.order = order }
}

// WithMaxDepth bounds expression nesting during evaluation.
func WithMaxDepth(depth int) Option {
	return func(o *Options) { o.maxDepth = depth }
}

// WithRegistry replaces the builtin function registry.
func WithRegistry(registry *FunctionRegistry) Option {
	return func(o *Options) { o.registry = registry }
}
