// SPDX-License-Identifier: MIT
//
// options.go: functional options for factorgen constructors.
// Option constructors validate and panic on meaningless input; generators
// themselves return sentinel errors.

package factorgen

import (
	"math/rand"

	"github.com/katalvlaran/factorplan/factortable"
)

// config aggregates every generator knob; passed by value.
type config struct {
	rng      *rand.Rand                // nil ⇒ no randomness available
	weightFn func(*rand.Rand) float64 // positive weight per stored entry
	inputs   []int                     // directed input set; nil ⇒ undirected
	rep      factortable.Representation
}

// defaultWeight draws from (0,1], never zero, so every stored entry is non-zero.
func defaultWeight(r *rand.Rand) float64 { return 1 - r.Float64() }

func newConfig(opts ...Option) config {
	cfg := config{weightFn: defaultWeight}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// Option customizes a generator.
type Option func(*config)

// WithSeed attaches a fresh RNG seeded with seed (0 ⇒ default seed).
func WithSeed(seed int64) Option {
	return func(c *config) { c.rng = rngFromSeed(seed) }
}

// WithRand attaches r. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("factorgen: WithRand(nil)")
	}

	return func(c *config) { c.rng = r }
}

// WithWeightFn overrides the weight drawn for each stored entry. The function
// must return a finite weight > 0. Panics on nil.
func WithWeightFn(fn func(*rand.Rand) float64) Option {
	if fn == nil {
		panic("factorgen: WithWeightFn(nil)")
	}

	return func(c *config) { c.weightFn = fn }
}

// WithInputs makes generated tables directed with the given input dimensions.
func WithInputs(inputs ...int) Option {
	in := append([]int(nil), inputs...)

	return func(c *config) { c.inputs = in }
}

// WithRepresentation converts generated tables to rep before returning them.
// Panics on an invalid representation.
func WithRepresentation(rep factortable.Representation) Option {
	if !rep.Valid() {
		panic("factorgen: WithRepresentation: invalid representation")
	}

	return func(c *config) { c.rep = rep }
}
