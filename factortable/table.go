// SPDX-License-Identifier: MIT

package factortable

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/jointindex"
)

// Table is a factor table. The zero value is not usable; build tables with
// New, NewDense, NewDenseEnergies, NewSparse or NewSparseEnergies.
type Table struct {
	domains *domain.List
	codec   *jointindex.Codec
	inputs  *jointindex.Projection // directed tables only

	denseWeights   []float64 // nil unless DenseWeight
	denseEnergies  []float64 // nil unless DenseEnergy
	sparseToJoint  []int     // nil unless a sparse store exists
	sparseWeights  []float64 // nil unless SparseWeight
	sparseEnergies []float64 // nil unless SparseEnergy

	normalized bool
	frozen     atomic.Bool
	version    atomic.Uint64
	det        atomic.Pointer[determinism]
}

func newTable(domains *domain.List) (*Table, error) {
	if domains == nil {
		return nil, fmt.Errorf("factortable: nil domain list: %w", ErrDimensionMismatch)
	}
	codec, err := jointindex.NewCodec(domains.Sizes()...)
	if err != nil {
		return nil, err
	}
	t := &Table{domains: domains, codec: codec}
	if domains.IsDirected() {
		if t.inputs, err = jointindex.NewProjection(codec, domains.InputSet()); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// New returns an all-zero table holding an empty SparseWeight store.
// Entries are added with the setters.
func New(domains *domain.List) (*Table, error) {
	t, err := newTable(domains)
	if err != nil {
		return nil, err
	}
	t.sparseToJoint = make([]int, 0)
	t.sparseWeights = make([]float64, 0)

	return t, nil
}

// NewDense builds a DenseWeight table from weights indexed by joint index.
// The slice is copied.
// Errors: ErrDimensionMismatch on a wrong length, ErrInvalidValue on a
// negative, infinite or NaN weight.
// Complexity: O(N).
func NewDense(domains *domain.List, weights []float64) (*Table, error) {
	t, err := newTable(domains)
	if err != nil {
		return nil, err
	}
	if len(weights) != t.codec.JointSize() {
		return nil, fmt.Errorf("NewDense: %d weights for joint size %d: %w", len(weights), t.codec.JointSize(), ErrDimensionMismatch)
	}
	for j, w := range weights {
		if !validWeight(w) {
			return nil, fmt.Errorf("NewDense: joint %d weight %v: %w", j, w, ErrInvalidValue)
		}
	}
	t.denseWeights = append([]float64(nil), weights...)

	return t, nil
}

// NewDenseEnergies builds a DenseEnergy table from energies indexed by joint
// index. +∞ marks a zero-weight entry.
// Errors: ErrDimensionMismatch, ErrInvalidValue on NaN or −∞.
func NewDenseEnergies(domains *domain.List, energies []float64) (*Table, error) {
	t, err := newTable(domains)
	if err != nil {
		return nil, err
	}
	if len(energies) != t.codec.JointSize() {
		return nil, fmt.Errorf("NewDenseEnergies: %d energies for joint size %d: %w", len(energies), t.codec.JointSize(), ErrDimensionMismatch)
	}
	for j, e := range energies {
		if !validEnergy(e) {
			return nil, fmt.Errorf("NewDenseEnergies: joint %d energy %v: %w", j, e, ErrInvalidValue)
		}
	}
	t.denseEnergies = append([]float64(nil), energies...)

	return t, nil
}

// NewSparse builds a SparseWeight table from (indices, weight) pairs in any
// order. Listed entries with zero weight keep a sparse slot.
// Stage 1 (Validate): one weight per tuple, tuples in range and unique.
// Stage 2 (Prepare): sort by joint index.
// Errors: ErrDimensionMismatch, ErrOutOfRange, ErrDuplicateEntry, ErrInvalidValue.
// Complexity: O(k log k) for k entries.
func NewSparse(domains *domain.List, indices [][]int, weights []float64) (*Table, error) {
	t, err := newTable(domains)
	if err != nil {
		return nil, err
	}
	joints, values, err := t.sortedEntries("NewSparse", indices, weights, validWeight)
	if err != nil {
		return nil, err
	}
	t.sparseToJoint, t.sparseWeights = joints, values

	return t, nil
}

// NewSparseEnergies is NewSparse for energies.
func NewSparseEnergies(domains *domain.List, indices [][]int, energies []float64) (*Table, error) {
	t, err := newTable(domains)
	if err != nil {
		return nil, err
	}
	joints, values, err := t.sortedEntries("NewSparseEnergies", indices, energies, validEnergy)
	if err != nil {
		return nil, err
	}
	t.sparseToJoint, t.sparseEnergies = joints, values

	return t, nil
}

func (t *Table) sortedEntries(method string, indices [][]int, values []float64, valid func(float64) bool) ([]int, []float64, error) {
	if len(indices) != len(values) {
		return nil, nil, fmt.Errorf("%s: %d index tuples for %d values: %w", method, len(indices), len(values), ErrDimensionMismatch)
	}
	order := make([]int, len(indices))
	joints := make([]int, len(indices))
	for k, idx := range indices {
		j, err := t.codec.EncodeChecked(idx)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: entry %d: %w", method, k, err)
		}
		if !valid(values[k]) {
			return nil, nil, fmt.Errorf("%s: entry %d value %v: %w", method, k, values[k], ErrInvalidValue)
		}
		order[k], joints[k] = k, j
	}
	sort.Slice(order, func(a, b int) bool { return joints[order[a]] < joints[order[b]] })

	s2j := make([]int, len(order))
	out := make([]float64, len(order))
	for s, k := range order {
		if s > 0 && joints[k] == s2j[s-1] {
			return nil, nil, fmt.Errorf("%s: indices %v: %w", method, indices[k], ErrDuplicateEntry)
		}
		s2j[s], out[s] = joints[k], values[k]
	}

	return s2j, out, nil
}

// Clone returns a deep copy. The copy is thawed and shares only the
// immutable domain list and codec.
// Complexity: O(N + S).
func (t *Table) Clone() *Table {
	c := &Table{
		domains:        t.domains,
		codec:          t.codec,
		inputs:         t.inputs,
		denseWeights:   cloneFloats(t.denseWeights),
		denseEnergies:  cloneFloats(t.denseEnergies),
		sparseWeights:  cloneFloats(t.sparseWeights),
		sparseEnergies: cloneFloats(t.sparseEnergies),
		normalized:     t.normalized,
	}
	if t.sparseToJoint != nil {
		c.sparseToJoint = append(make([]int, 0, len(t.sparseToJoint)), t.sparseToJoint...)
	}
	c.version.Store(t.version.Load())
	c.det.Store(t.det.Load())

	return c
}

func cloneFloats(src []float64) []float64 {
	if src == nil {
		return nil
	}

	return append(make([]float64, 0, len(src)), src...)
}

// Domains returns the domain list.
func (t *Table) Domains() *domain.List { return t.domains }

// Codec returns the joint-index codec of the table's shape.
func (t *Table) Codec() *jointindex.Codec { return t.codec }

// Dimensions returns the number of dimensions.
func (t *Table) Dimensions() int { return t.codec.Dimensions() }

// JointSize returns the number of joint indices.
func (t *Table) JointSize() int { return t.codec.JointSize() }

// SparseSize returns the number of sparse slots, or JointSize when the
// table has no sparse store.
func (t *Table) SparseSize() int {
	if t.sparseToJoint == nil {
		return t.codec.JointSize()
	}

	return len(t.sparseToJoint)
}

// IsDirected reports whether the domain list carries an input set.
func (t *Table) IsDirected() bool { return t.inputs != nil }

// IsNormalized reports whether Normalize succeeded since the last mutation.
func (t *Table) IsNormalized() bool { return t.normalized }

// Representation returns the bit set of existing stores.
func (t *Table) Representation() Representation {
	var r Representation
	if t.denseWeights != nil {
		r |= DenseWeight
	}
	if t.denseEnergies != nil {
		r |= DenseEnergy
	}
	if t.sparseWeights != nil {
		r |= SparseWeight
	}
	if t.sparseEnergies != nil {
		r |= SparseEnergy
	}

	return r
}

// HasDenseWeights reports whether the dense weight store is present.
func (t *Table) HasDenseWeights() bool { return t.denseWeights != nil }

// HasDenseEnergies reports whether the dense energy store is present.
func (t *Table) HasDenseEnergies() bool { return t.denseEnergies != nil }

// HasSparseWeights reports whether the sparse weight store is present.
func (t *Table) HasSparseWeights() bool { return t.sparseWeights != nil }

// HasSparseEnergies reports whether the sparse energy store is present.
func (t *Table) HasSparseEnergies() bool { return t.sparseEnergies != nil }

// HasDenseRepresentation reports whether either dense store is present.
func (t *Table) HasDenseRepresentation() bool { return t.denseWeights != nil || t.denseEnergies != nil }

// HasSparseRepresentation reports whether the table has a sparse structure,
// that is a sparse weight or energy store and its slot-to-joint mapping.
func (t *Table) HasSparseRepresentation() bool { return t.sparseToJoint != nil }

// CountNonZeroWeights counts joint indices with weight > 0.
// Complexity: O(S) with a sparse store, O(N) otherwise.
func (t *Table) CountNonZeroWeights() int {
	n := 0
	if t.sparseToJoint != nil {
		for s := range t.sparseToJoint {
			if t.nonZeroSlot(s) {
				n++
			}
		}

		return n
	}
	for j := 0; j < t.codec.JointSize(); j++ {
		if t.nonZeroAt(j) {
			n++
		}
	}

	return n
}

// Density returns CountNonZeroWeights / JointSize; 1.0 when no entry is zero.
func (t *Table) Density() float64 {
	return float64(t.CountNonZeroWeights()) / float64(t.codec.JointSize())
}

// StructureVersion changes whenever the sparse structure changes: a slot is
// inserted or compacted away, or a sparse store appears or disappears.
// Value writes into existing slots do not change it.
func (t *Table) StructureVersion() uint64 { return t.version.Load() }

// Freeze makes every mutator fail with ErrFrozen until Thaw.
func (t *Table) Freeze() { t.frozen.Store(true) }

// Thaw re-enables mutation.
func (t *Table) Thaw() { t.frozen.Store(false) }

// IsFrozen reports whether the table is frozen.
func (t *Table) IsFrozen() bool { return t.frozen.Load() }

// String returns a short description, e.g. "Table[3x2 DenseWeight sparse=6]".
func (t *Table) String() string {
	dims := ""
	for i, s := range t.domains.Sizes() {
		if i > 0 {
			dims += "x"
		}
		dims += fmt.Sprint(s)
	}

	return fmt.Sprintf("Table[%s %s sparse=%d]", dims, t.Representation(), t.SparseSize())
}
