// SPDX-License-Identifier: MIT

package factortable

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/jointindex"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the serializable state of a table. Domain elements are not
// part of it: a snapshot is restored onto a domain list of the same shape.
type Snapshot struct {
	Sizes          []int          `msgpack:"sizes"`
	Inputs         []int          `msgpack:"inputs,omitempty"`
	Representation Representation `msgpack:"representation"`
	DenseWeights   []float64      `msgpack:"dense_weights,omitempty"`
	DenseEnergies  []float64      `msgpack:"dense_energies,omitempty"`
	SparseToJoint  []int          `msgpack:"sparse_to_joint,omitempty"`
	SparseWeights  []float64      `msgpack:"sparse_weights,omitempty"`
	SparseEnergies []float64      `msgpack:"sparse_energies,omitempty"`
	Normalized     bool           `msgpack:"normalized"`
}

// Snapshot copies the table's state.
func (t *Table) Snapshot() Snapshot {
	return Snapshot{
		Sizes:          t.domains.Sizes(),
		Inputs:         t.domains.InputSet(),
		DenseWeights:   cloneFloats(t.denseWeights),
		DenseEnergies:  cloneFloats(t.denseEnergies),
		SparseToJoint:  append([]int(nil), t.sparseToJoint...),
		SparseWeights:  cloneFloats(t.sparseWeights),
		SparseEnergies: cloneFloats(t.sparseEnergies),
		Normalized:     t.normalized,
		Representation: t.Representation(),
	}
}

// MarshalBinary encodes the snapshot with msgpack.
func (t *Table) MarshalBinary() ([]byte, error) {
	data, err := msgpack.Marshal(t.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("MarshalBinary: %w", err)
	}

	return data, nil
}

// UnmarshalTable decodes a MarshalBinary payload. With a nil domain list the
// table gets integer domains {0..d-1} and the recorded input set.
// Errors: ErrDimensionMismatch when domains has another shape or input set,
// ErrBadRepresentation or ErrInvalidValue for a corrupt payload.
func UnmarshalTable(data []byte, domains *domain.List) (*Table, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("UnmarshalTable: %w", err)
	}

	return FromSnapshot(snap, domains)
}

// FromSnapshot rebuilds a table from snap; see UnmarshalTable.
// Stage 1 (Validate): domain shape, store presence and lengths, sparse order, values.
// Stage 2 (Prepare): copy the stores.
func FromSnapshot(snap Snapshot, domains *domain.List) (*Table, error) {
	if domains == nil {
		l, err := snapshotDomains(snap)
		if err != nil {
			return nil, err
		}
		domains = l
	}
	if !slices.Equal(domains.Sizes(), snap.Sizes) || !slices.Equal(domains.InputSet(), snap.Inputs) {
		return nil, fmt.Errorf("FromSnapshot: shape %v inputs %v: %w", snap.Sizes, snap.Inputs, ErrDimensionMismatch)
	}
	rep := snap.Representation
	if !rep.Valid() {
		return nil, fmt.Errorf("FromSnapshot: representation %d: %w", rep, ErrBadRepresentation)
	}
	t, err := newTable(domains)
	if err != nil {
		return nil, err
	}
	n := t.codec.JointSize()

	if rep.Any(Sparse) {
		if err := jointindex.ValidateSparse(snap.SparseToJoint, n); err != nil {
			return nil, fmt.Errorf("FromSnapshot: %w", err)
		}
		t.sparseToJoint = append(make([]int, 0, len(snap.SparseToJoint)), snap.SparseToJoint...)
	}
	stores := []struct {
		bit   Representation
		src   []float64
		dst   *[]float64
		size  int
		valid func(float64) bool
	}{
		{DenseWeight, snap.DenseWeights, &t.denseWeights, n, validWeight},
		{DenseEnergy, snap.DenseEnergies, &t.denseEnergies, n, validEnergy},
		{SparseWeight, snap.SparseWeights, &t.sparseWeights, len(t.sparseToJoint), validWeight},
		{SparseEnergy, snap.SparseEnergies, &t.sparseEnergies, len(t.sparseToJoint), validEnergy},
	}
	for _, s := range stores {
		if !rep.Has(s.bit) {
			continue
		}
		if len(s.src) != s.size {
			return nil, fmt.Errorf("FromSnapshot: %s holds %d values, want %d: %w", s.bit, len(s.src), s.size, ErrDimensionMismatch)
		}
		for i, v := range s.src {
			if !s.valid(v) {
				return nil, fmt.Errorf("FromSnapshot: %s[%d] = %v: %w", s.bit, i, v, ErrInvalidValue)
			}
		}
		*s.dst = append(make([]float64, 0, s.size), s.src...)
	}
	t.normalized = snap.Normalized

	return t, nil
}

func snapshotDomains(snap Snapshot) (*domain.List, error) {
	plain, err := domain.NewListFromSizes(snap.Sizes...)
	if err != nil {
		return nil, fmt.Errorf("FromSnapshot: %w", err)
	}
	if len(snap.Inputs) == 0 {
		return plain, nil
	}
	ds := make([]*domain.Discrete, plain.Dimensions())
	for i := range ds {
		ds[i] = plain.Domain(i)
	}
	l, err := domain.NewDirectedList(snap.Inputs, ds...)
	if err != nil {
		return nil, fmt.Errorf("FromSnapshot: %w", err)
	}

	return l, nil
}
