// SPDX-License-Identifier: MIT

package factortable

import (
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/factorplan/jointindex"
)

type valueKind uint8

const (
	weightKind valueKind = iota
	energyKind
)

func (t *Table) checkMutable(method string) error {
	if t.frozen.Load() {
		return fmt.Errorf("%s: %w", method, ErrFrozen)
	}

	return nil
}

// touch clears derived state after a value write.
func (t *Table) touch(structural bool) {
	t.normalized = false
	t.det.Store(nil)
	if structural {
		t.version.Add(1)
	}
}

// isZeroValue reports whether v of kind k denotes a zero weight.
func isZeroValue(v float64, k valueKind) bool {
	if k == weightKind {
		return v == 0
	}

	return math.IsInf(v, 1)
}

// nonZeroAt reports whether a valid joint index holds a non-zero weight,
// without the underflow of converting large energies to weights.
func (t *Table) nonZeroAt(joint int) bool {
	switch {
	case t.denseWeights != nil:
		return t.denseWeights[joint] != 0
	case t.denseEnergies != nil:
		return !math.IsInf(t.denseEnergies[joint], 1)
	}
	s := jointindex.SparseIndexFromJoint(t.sparseToJoint, joint)

	return s >= 0 && t.nonZeroSlot(s)
}

func (t *Table) nonZeroSlot(s int) bool {
	if t.sparseWeights != nil {
		return t.sparseWeights[s] != 0
	}

	return !math.IsInf(t.sparseEnergies[s], 1)
}

// setJoint writes v of kind k at a valid joint index into every existing
// store, inserting a sparse slot when a missing entry becomes non-zero.
func (t *Table) setJoint(method string, joint int, v float64, k valueKind) error {
	if err := t.checkMutable(method); err != nil {
		return err
	}
	w, e := v, v
	if k == weightKind {
		if !validWeight(v) {
			return fmt.Errorf("%s: weight %v: %w", method, v, ErrInvalidValue)
		}
		e = WeightToEnergy(v)
	} else {
		if !validEnergy(v) {
			return fmt.Errorf("%s: energy %v: %w", method, v, ErrInvalidValue)
		}
		w = EnergyToWeight(v)
	}

	if t.denseWeights != nil {
		t.denseWeights[joint] = w
	}
	if t.denseEnergies != nil {
		t.denseEnergies[joint] = e
	}
	structural := false
	if t.sparseToJoint != nil {
		s := jointindex.SparseIndexFromJoint(t.sparseToJoint, joint)
		switch {
		case s >= 0:
			t.writeSlot(s, w, e)
		case !isZeroValue(v, k):
			at := jointindex.InsertionPoint(s)
			t.sparseToJoint = slices.Insert(t.sparseToJoint, at, joint)
			if t.sparseWeights != nil {
				t.sparseWeights = slices.Insert(t.sparseWeights, at, w)
			}
			if t.sparseEnergies != nil {
				t.sparseEnergies = slices.Insert(t.sparseEnergies, at, e)
			}
			structural = true
		}
	}
	t.touch(structural)

	return nil
}

func (t *Table) writeSlot(s int, w, e float64) {
	if t.sparseWeights != nil {
		t.sparseWeights[s] = w
	}
	if t.sparseEnergies != nil {
		t.sparseEnergies[s] = e
	}
}

// SetWeightForJointIndex sets the weight at joint.
// Errors: ErrOutOfRange, ErrInvalidValue, ErrFrozen.
func (t *Table) SetWeightForJointIndex(joint int, w float64) error {
	if err := t.checkJoint(joint); err != nil {
		return fmt.Errorf("SetWeightForJointIndex: %w", err)
	}

	return t.setJoint("SetWeightForJointIndex", joint, w, weightKind)
}

// SetEnergyForJointIndex sets the energy at joint.
// Errors: ErrOutOfRange, ErrInvalidValue, ErrFrozen.
func (t *Table) SetEnergyForJointIndex(joint int, e float64) error {
	if err := t.checkJoint(joint); err != nil {
		return fmt.Errorf("SetEnergyForJointIndex: %w", err)
	}

	return t.setJoint("SetEnergyForJointIndex", joint, e, energyKind)
}

// SetWeightForSparseIndex sets the weight of an existing sparse slot.
func (t *Table) SetWeightForSparseIndex(sparse int, w float64) error {
	joint, err := t.jointOfSparse(sparse)
	if err != nil {
		return fmt.Errorf("SetWeightForSparseIndex: %w", err)
	}

	return t.setJoint("SetWeightForSparseIndex", joint, w, weightKind)
}

// SetEnergyForSparseIndex sets the energy of an existing sparse slot.
func (t *Table) SetEnergyForSparseIndex(sparse int, e float64) error {
	joint, err := t.jointOfSparse(sparse)
	if err != nil {
		return fmt.Errorf("SetEnergyForSparseIndex: %w", err)
	}

	return t.setJoint("SetEnergyForSparseIndex", joint, e, energyKind)
}

// SetWeightForIndices sets the weight of an index tuple.
func (t *Table) SetWeightForIndices(w float64, indices ...int) error {
	joint, err := t.codec.EncodeChecked(indices)
	if err != nil {
		return fmt.Errorf("SetWeightForIndices: %w", err)
	}

	return t.setJoint("SetWeightForIndices", joint, w, weightKind)
}

// SetEnergyForIndices sets the energy of an index tuple.
func (t *Table) SetEnergyForIndices(e float64, indices ...int) error {
	joint, err := t.codec.EncodeChecked(indices)
	if err != nil {
		return fmt.Errorf("SetEnergyForIndices: %w", err)
	}

	return t.setJoint("SetEnergyForIndices", joint, e, energyKind)
}

// SetWeightForArguments sets the weight of a tuple of domain elements.
// Errors: ErrDomainMismatch, ErrDimensionMismatch, ErrInvalidValue, ErrFrozen.
func (t *Table) SetWeightForArguments(w float64, args ...any) error {
	joint, err := t.jointOfArguments(args)
	if err != nil {
		return fmt.Errorf("SetWeightForArguments: %w", err)
	}

	return t.setJoint("SetWeightForArguments", joint, w, weightKind)
}

// SetEnergyForArguments sets the energy of a tuple of domain elements.
func (t *Table) SetEnergyForArguments(e float64, args ...any) error {
	joint, err := t.jointOfArguments(args)
	if err != nil {
		return fmt.Errorf("SetEnergyForArguments: %w", err)
	}

	return t.setJoint("SetEnergyForArguments", joint, e, energyKind)
}

// SetDenseWeights replaces every store with a DenseWeight store holding a
// copy of weights.
// Errors: ErrDimensionMismatch, ErrInvalidValue, ErrFrozen.
func (t *Table) SetDenseWeights(weights []float64) error {
	if err := t.checkMutable("SetDenseWeights"); err != nil {
		return err
	}
	if len(weights) != t.codec.JointSize() {
		return fmt.Errorf("SetDenseWeights: %d weights for joint size %d: %w", len(weights), t.codec.JointSize(), ErrDimensionMismatch)
	}
	for j, w := range weights {
		if !validWeight(w) {
			return fmt.Errorf("SetDenseWeights: joint %d weight %v: %w", j, w, ErrInvalidValue)
		}
	}
	structural := t.sparseToJoint != nil
	t.denseWeights = append(t.denseWeights[:0:0], weights...)
	t.denseEnergies, t.sparseToJoint, t.sparseWeights, t.sparseEnergies = nil, nil, nil, nil
	t.touch(structural)

	return nil
}

// SetSparseWeights replaces every store with a SparseWeight store built
// like NewSparse.
// Errors: as NewSparse, plus ErrFrozen.
func (t *Table) SetSparseWeights(indices [][]int, weights []float64) error {
	if err := t.checkMutable("SetSparseWeights"); err != nil {
		return err
	}
	joints, values, err := t.sortedEntries("SetSparseWeights", indices, weights, validWeight)
	if err != nil {
		return err
	}
	structural := !slices.Equal(joints, t.sparseToJoint) || t.sparseToJoint == nil
	t.sparseToJoint, t.sparseWeights = joints, values
	t.denseWeights, t.denseEnergies, t.sparseEnergies = nil, nil, nil
	t.touch(structural)

	return nil
}

// SetRepresentation materializes the requested stores from the existing
// ones and drops the rest. A sparse store created from dense data holds the
// non-zero entries only. Values, the normalization flag and the determinism
// cache are unchanged.
// Errors: ErrBadRepresentation, ErrFrozen.
// Complexity: O(N) when a dense store is created, O(S) otherwise.
func (t *Table) SetRepresentation(rep Representation) error {
	if !rep.Valid() {
		return fmt.Errorf("SetRepresentation(%d): %w", rep, ErrBadRepresentation)
	}
	if err := t.checkMutable("SetRepresentation"); err != nil {
		return err
	}
	if rep == t.Representation() {
		return nil
	}
	n := t.codec.JointSize()

	var dw, de []float64
	if rep.Has(DenseWeight) {
		if dw = t.denseWeights; dw == nil {
			dw = make([]float64, n)
			for j := range dw {
				dw[j] = t.weightAt(j)
			}
		}
	}
	if rep.Has(DenseEnergy) {
		if de = t.denseEnergies; de == nil {
			de = make([]float64, n)
			for j := range de {
				de[j] = t.energyAt(j)
			}
		}
	}

	var s2j []int
	var sw, se []float64
	if rep.Any(Sparse) {
		fromSparse := t.sparseToJoint != nil
		if s2j = t.sparseToJoint; s2j == nil {
			s2j = make([]int, 0)
			for j := 0; j < n; j++ {
				if t.nonZeroAt(j) {
					s2j = append(s2j, j)
				}
			}
		}
		if rep.Has(SparseWeight) {
			if sw = t.sparseWeights; sw == nil {
				sw = make([]float64, len(s2j))
				for s, j := range s2j {
					if fromSparse {
						sw[s] = t.weightAtSlot(s)
					} else {
						sw[s] = t.weightAt(j)
					}
				}
			}
		}
		if rep.Has(SparseEnergy) {
			if se = t.sparseEnergies; se == nil {
				se = make([]float64, len(s2j))
				for s, j := range s2j {
					if fromSparse {
						se[s] = t.energyAtSlot(s)
					} else {
						se[s] = t.energyAt(j)
					}
				}
			}
		}
	}

	structural := (t.sparseToJoint == nil) != (s2j == nil)
	t.denseWeights, t.denseEnergies = dw, de
	t.sparseToJoint, t.sparseWeights, t.sparseEnergies = s2j, sw, se
	if structural {
		t.version.Add(1)
	}

	return nil
}

// Compact removes zero-weight sparse slots and returns how many slots were
// removed. A table without a sparse store gains one, holding the non-zero
// entries in the kinds of its dense stores; the result is measured against
// JointSize.
// Errors: ErrFrozen.
// Complexity: O(S), or O(N) when the sparse store is created.
func (t *Table) Compact() (int, error) {
	if err := t.checkMutable("Compact"); err != nil {
		return 0, err
	}
	if t.sparseToJoint == nil {
		var add Representation
		if t.denseWeights != nil {
			add |= SparseWeight
		}
		if t.denseEnergies != nil {
			add |= SparseEnergy
		}
		if err := t.SetRepresentation(t.Representation() | add); err != nil {
			return 0, err
		}

		return t.codec.JointSize() - len(t.sparseToJoint), nil
	}

	kept := 0
	for s, j := range t.sparseToJoint {
		if !t.nonZeroSlot(s) {
			continue
		}
		t.sparseToJoint[kept] = j
		if t.sparseWeights != nil {
			t.sparseWeights[kept] = t.sparseWeights[s]
		}
		if t.sparseEnergies != nil {
			t.sparseEnergies[kept] = t.sparseEnergies[s]
		}
		kept++
	}
	removed := len(t.sparseToJoint) - kept
	if removed == 0 {
		return 0, nil
	}
	t.sparseToJoint = t.sparseToJoint[:kept]
	if t.sparseWeights != nil {
		t.sparseWeights = t.sparseWeights[:kept]
	}
	if t.sparseEnergies != nil {
		t.sparseEnergies = t.sparseEnergies[:kept]
	}
	t.version.Add(1)

	return removed, nil
}
