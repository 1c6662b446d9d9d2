// SPDX-License-Identifier: MIT
//
// tables.go: table and message generators.
//
// Determinism:
//   - Bernoulli trials and weight draws happen in ascending joint order.
//   - Messages are drawn dimension by dimension, index by index.

package factorgen

import (
	"fmt"
	"math"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/factortable"
)

const (
	methodRandomTable        = "RandomTable"
	methodUniformTable       = "UniformTable"
	methodDeterministicTable = "DeterministicTable"
	methodRandomMessages     = "RandomMessages"
	probMin                  = 0.0
	probMax                  = 1.0
)

// domains builds integer domains for sizes, directed when cfg asks for it.
func (cfg config) domains(method string, sizes []int) (*domain.List, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%s: no dimensions: %w", method, ErrBadShape)
	}
	ds := make([]*domain.Discrete, len(sizes))
	for i, s := range sizes {
		d, err := domain.NewRange(0, s-1)
		if err != nil {
			return nil, fmt.Errorf("%s: dimension %d size %d: %w", method, i, s, ErrBadShape)
		}
		ds[i] = d
	}
	if cfg.inputs != nil {
		return domain.NewDirectedList(cfg.inputs, ds...)
	}

	return domain.NewList(ds...)
}

func (cfg config) finish(t *factortable.Table) (*factortable.Table, error) {
	if cfg.rep != 0 {
		if err := t.SetRepresentation(cfg.rep); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// RandomTable draws a table over integer domains of the given sizes. Each
// joint index is stored with probability density; stored entries get a
// weight from the weight function. density == 1 yields a dense table,
// anything below a sparse one (possibly empty).
// Errors: ErrBadShape, ErrInvalidProbability, ErrNeedRandSource.
// Complexity: O(N).
func RandomTable(sizes []int, density float64, opts ...Option) (*factortable.Table, error) {
	cfg := newConfig(opts...)
	if math.IsNaN(density) || density < probMin || density > probMax {
		return nil, fmt.Errorf("%s: density=%v not in [%.1f,%.1f]: %w", methodRandomTable, density, probMin, probMax, ErrInvalidProbability)
	}
	if cfg.rng == nil {
		return nil, fmt.Errorf("%s: %w", methodRandomTable, ErrNeedRandSource)
	}
	l, err := cfg.domains(methodRandomTable, sizes)
	if err != nil {
		return nil, err
	}

	n := l.Cardinality()
	if density == probMax {
		w := make([]float64, n)
		for j := range w {
			w[j] = cfg.weightFn(cfg.rng)
		}
		t, err := factortable.NewDense(l, w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", methodRandomTable, err)
		}

		return cfg.finish(t)
	}

	t, err := factortable.New(l)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodRandomTable, err)
	}
	for j := 0; j < n; j++ {
		if cfg.rng.Float64() >= density {
			continue
		}
		if err := t.SetWeightForJointIndex(j, cfg.weightFn(cfg.rng)); err != nil {
			return nil, fmt.Errorf("%s: joint %d: %w", methodRandomTable, j, err)
		}
	}

	return cfg.finish(t)
}

// UniformTable returns a dense normalized table: every entry 1/N, or 1/|block|
// per input block when directed. No RNG is needed.
func UniformTable(sizes []int, opts ...Option) (*factortable.Table, error) {
	cfg := newConfig(opts...)
	l, err := cfg.domains(methodUniformTable, sizes)
	if err != nil {
		return nil, err
	}
	w := make([]float64, l.Cardinality())
	for j := range w {
		w[j] = 1
	}
	t, err := factortable.NewDense(l, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodUniformTable, err)
	}
	if err := t.Normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", methodUniformTable, err)
	}

	return cfg.finish(t)
}

// Mapping computes the output indices of a deterministic factor from its
// input indices. in holds one index per input dimension (ascending input
// order); out must be filled with one index per output dimension.
type Mapping func(in, out []int)

// DeterministicTable builds a directed table over domains with the given
// input dimensions whose single non-zero entry per input block is fn's
// output. The table is sparse, normalized and deterministic.
// Errors: domain.ErrInvalidInputSet, ErrBadMapping.
// Complexity: O(B·n) for B input blocks.
func DeterministicTable(inputs []int, fn Mapping, domains ...*domain.Discrete) (*factortable.Table, error) {
	l, err := domain.NewDirectedList(inputs, domains...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodDeterministicTable, err)
	}
	t, err := factortable.New(l)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", methodDeterministicTable, err)
	}
	inDims, outDims := l.InputSet(), l.OutputSet()
	inSizes := make([]int, len(inDims))
	for k, d := range inDims {
		inSizes[k] = l.Size(d)
	}

	in := make([]int, len(inDims))
	out := make([]int, len(outDims))
	full := make([]int, l.Dimensions())
	for {
		fn(in, out)
		for k, d := range outDims {
			if out[k] < 0 || out[k] >= l.Size(d) {
				return nil, fmt.Errorf("%s: input %v → output %v: %w", methodDeterministicTable, in, out, ErrBadMapping)
			}
			full[d] = out[k]
		}
		for k, d := range inDims {
			full[d] = in[k]
		}
		if err := t.SetWeightForIndices(1, full...); err != nil {
			return nil, fmt.Errorf("%s: %w", methodDeterministicTable, err)
		}
		if !increment(in, inSizes) {
			break
		}
	}
	if err := t.Normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", methodDeterministicTable, err)
	}

	return t, nil
}

// increment advances a row-major odometer; false once it wraps.
func increment(idx, sizes []int) bool {
	for k := len(idx) - 1; k >= 0; k-- {
		idx[k]++
		if idx[k] < sizes[k] {
			return true
		}
		idx[k] = 0
	}

	return false
}

// RandomMessages draws one positive weight message per dimension.
// Errors: ErrBadShape, ErrNeedRandSource.
func RandomMessages(sizes []int, opts ...Option) ([][]float64, error) {
	cfg := newConfig(opts...)
	if cfg.rng == nil {
		return nil, fmt.Errorf("%s: %w", methodRandomMessages, ErrNeedRandSource)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%s: no dimensions: %w", methodRandomMessages, ErrBadShape)
	}
	msgs := make([][]float64, len(sizes))
	for d, s := range sizes {
		if s < 1 {
			return nil, fmt.Errorf("%s: dimension %d size %d: %w", methodRandomMessages, d, s, ErrBadShape)
		}
		msgs[d] = make([]float64, s)
		for i := range msgs[d] {
			msgs[d][i] = cfg.weightFn(cfg.rng)
		}
	}

	return msgs, nil
}

// ToEnergies returns −ln of every message value, for min-sum updates.
func ToEnergies(msgs [][]float64) [][]float64 {
	out := make([][]float64, len(msgs))
	for d, m := range msgs {
		out[d] = make([]float64, len(m))
		for i, w := range m {
			out[d][i] = factortable.WeightToEnergy(w)
		}
	}

	return out
}

// Messages allocates zeroed messages, one per dimension.
func Messages(sizes []int) [][]float64 {
	out := make([][]float64, len(sizes))
	for d, s := range sizes {
		out[d] = make([]float64, s)
	}

	return out
}
