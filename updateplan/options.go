// SPDX-License-Identifier: MIT

package updateplan

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultSemiring is the message algebra when none is given.
	DefaultSemiring = SumProduct

	// DefaultSparseThreshold is the density at or above which an intermediate
	// table is stored densely. 1.0 keeps every intermediate with a
	// structural zero sparse.
	DefaultSparseThreshold = 1.0

	// DefaultNormalizeOutputs normalizes every output message.
	DefaultNormalizeOutputs = true

	// defaultRNGSeed seeds OrderRandom(nil).
	defaultRNGSeed int64 = 1
)

const (
	panicThresholdInvalid = "updateplan: WithSparseThreshold: threshold must be in [0,1]"
	panicSemiringInvalid  = "updateplan: WithSemiring: unknown semiring"
	panicOrderNil         = "updateplan: WithOrder: nil order"
)

// Order ranks the dimensions of a table given its sizes. The result must be
// a permutation of 0..len(sizes)-1. Dimensions are eliminated in rank order
// and ports are split into halves in rank order.
//
// The default is OrderLargestFirst. OrderSmallestFirst gives the other
// common heuristic, eliminating smaller domains first. The order changes
// the plan's steps, memory and estimated time, never the messages a plan
// computes.
type Order func(sizes []int) []int

// OrderLargestFirst ranks larger dimensions first (ties by index). Removing
// the largest dimension first shrinks intermediates fastest.
func OrderLargestFirst(sizes []int) []int {
	return rankBySize(sizes, func(a, b int) bool { return a > b })
}

// OrderSmallestFirst ranks smaller dimensions first (ties by index).
func OrderSmallestFirst(sizes []int) []int {
	return rankBySize(sizes, func(a, b int) bool { return a < b })
}

func rankBySize(sizes []int, before func(a, b int) bool) []int {
	dims := make([]int, len(sizes))
	for i := range dims {
		dims[i] = i
	}
	sort.SliceStable(dims, func(i, j int) bool { return before(sizes[dims[i]], sizes[dims[j]]) })

	return dims
}

// OrderGiven uses perm verbatim; Build fails with ErrBadOrder when it is not
// a permutation of the table's dimensions.
func OrderGiven(perm ...int) Order {
	p := append([]int(nil), perm...)

	return func([]int) []int { return append([]int(nil), p...) }
}

// OrderRandom draws a uniformly random ranking from rng on every Build.
// A nil rng uses a fixed default seed. The returned Order serializes its
// draws, so concurrent builds may share it; their rankings then depend on
// scheduling.
func OrderRandom(rng *rand.Rand) Order {
	if rng == nil {
		rng = rand.New(rand.NewSource(defaultRNGSeed))
	}
	var mu sync.Mutex

	return func(sizes []int) []int {
		mu.Lock()
		defer mu.Unlock()

		return rng.Perm(len(sizes))
	}
}

// ---------- Public option type (functional) ----------

// Option mutates Options.
type Option func(*Options)

// Options is the effective planner configuration.
type Options struct {
	semiring  Semiring
	threshold float64
	order     Order
	ports     []int // nil ⇒ every dimension
	normalize bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		semiring:  DefaultSemiring,
		threshold: DefaultSparseThreshold,
		order:     OrderLargestFirst,
		normalize: DefaultNormalizeOutputs,
	}
}

func gatherOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// Semiring returns the configured semiring.
func (o Options) Semiring() Semiring { return o.semiring }

// SparseThreshold returns the configured density threshold.
func (o Options) SparseThreshold() float64 { return o.threshold }

// Ports returns the configured ports, or nil for every dimension.
func (o Options) Ports() []int { return append([]int(nil), o.ports...) }

// WithSemiring selects the message algebra.
// Panics on an unknown semiring.
func WithSemiring(s Semiring) Option {
	if s != SumProduct && s != MinSum {
		panic(panicSemiringInvalid)
	}

	return func(o *Options) { o.semiring = s }
}

// WithSparseThreshold sets the density at or above which intermediates are
// dense. 0 makes every intermediate dense.
// Implementation:
//   - Stage 1: validate threshold is finite and in [0,1].
//   - Stage 2: return a setter.
//
// Complexity: O(1).
func WithSparseThreshold(threshold float64) Option {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		panic(panicThresholdInvalid)
	}

	return func(o *Options) { o.threshold = threshold }
}

// WithOrder sets the elimination ranking.
func WithOrder(order Order) Option {
	if order == nil {
		panic(panicOrderNil)
	}

	return func(o *Options) { o.order = order }
}

// WithPorts restricts the output ports. Dimensions that are not ports
// still contribute their input messages. Validated by Build.
func WithPorts(ports ...int) Option {
	p := append(make([]int, 0, len(ports)), ports...)

	return func(o *Options) { o.ports = p }
}

// WithNormalizeOutputs toggles output normalization.
func WithNormalizeOutputs(normalize bool) Option {
	return func(o *Options) { o.normalize = normalize }
}
