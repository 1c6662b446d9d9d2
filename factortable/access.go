// SPDX-License-Identifier: MIT

package factortable

import (
	"fmt"

	"github.com/katalvlaran/factorplan/jointindex"
)

// weightAt reads the weight of a valid joint index from the cheapest store.
func (t *Table) weightAt(joint int) float64 {
	switch {
	case t.denseWeights != nil:
		return t.denseWeights[joint]
	case t.denseEnergies != nil:
		return EnergyToWeight(t.denseEnergies[joint])
	}
	s := jointindex.SparseIndexFromJoint(t.sparseToJoint, joint)
	if s < 0 {
		return 0
	}

	return t.weightAtSlot(s)
}

// energyAt mirrors weightAt.
func (t *Table) energyAt(joint int) float64 {
	switch {
	case t.denseEnergies != nil:
		return t.denseEnergies[joint]
	case t.denseWeights != nil:
		return WeightToEnergy(t.denseWeights[joint])
	}
	s := jointindex.SparseIndexFromJoint(t.sparseToJoint, joint)
	if s < 0 {
		return WeightToEnergy(0)
	}

	return t.energyAtSlot(s)
}

// weightAtSlot reads sparse slot s of an existing sparse store.
func (t *Table) weightAtSlot(s int) float64 {
	if t.sparseWeights != nil {
		return t.sparseWeights[s]
	}

	return EnergyToWeight(t.sparseEnergies[s])
}

func (t *Table) energyAtSlot(s int) float64 {
	if t.sparseEnergies != nil {
		return t.sparseEnergies[s]
	}

	return WeightToEnergy(t.sparseWeights[s])
}

// jointOfSparse resolves a sparse index to a joint index with bounds checks.
func (t *Table) jointOfSparse(sparse int) (int, error) {
	if t.sparseToJoint == nil {
		if sparse < 0 || sparse >= t.codec.JointSize() {
			return 0, fmt.Errorf("sparse %d: joint size %d: %w", sparse, t.codec.JointSize(), ErrOutOfRange)
		}

		return sparse, nil
	}

	return jointindex.JointFromSparse(t.sparseToJoint, sparse)
}

func (t *Table) checkJoint(joint int) error {
	if joint < 0 || joint >= t.codec.JointSize() {
		return fmt.Errorf("joint %d: joint size %d: %w", joint, t.codec.JointSize(), ErrOutOfRange)
	}

	return nil
}

func (t *Table) jointOfArguments(args []any) (int, error) {
	indices, err := t.domains.IndicesFromArguments(args, nil)
	if err != nil {
		return 0, err
	}

	return t.codec.Encode(indices), nil
}

// WeightForJointIndex returns the weight at joint.
// Errors: ErrOutOfRange.
func (t *Table) WeightForJointIndex(joint int) (float64, error) {
	if err := t.checkJoint(joint); err != nil {
		return 0, fmt.Errorf("WeightForJointIndex: %w", err)
	}

	return t.weightAt(joint), nil
}

// EnergyForJointIndex returns the energy at joint.
// Errors: ErrOutOfRange.
func (t *Table) EnergyForJointIndex(joint int) (float64, error) {
	if err := t.checkJoint(joint); err != nil {
		return 0, fmt.Errorf("EnergyForJointIndex: %w", err)
	}

	return t.energyAt(joint), nil
}

// WeightForSparseIndex returns the weight at a sparse index.
// Errors: ErrOutOfRange.
func (t *Table) WeightForSparseIndex(sparse int) (float64, error) {
	if t.sparseToJoint != nil {
		if sparse < 0 || sparse >= len(t.sparseToJoint) {
			return 0, fmt.Errorf("WeightForSparseIndex(%d): sparse size %d: %w", sparse, len(t.sparseToJoint), ErrOutOfRange)
		}

		return t.weightAtSlot(sparse), nil
	}
	joint, err := t.jointOfSparse(sparse)
	if err != nil {
		return 0, fmt.Errorf("WeightForSparseIndex: %w", err)
	}

	return t.weightAt(joint), nil
}

// EnergyForSparseIndex returns the energy at a sparse index.
// Errors: ErrOutOfRange.
func (t *Table) EnergyForSparseIndex(sparse int) (float64, error) {
	if t.sparseToJoint != nil {
		if sparse < 0 || sparse >= len(t.sparseToJoint) {
			return 0, fmt.Errorf("EnergyForSparseIndex(%d): sparse size %d: %w", sparse, len(t.sparseToJoint), ErrOutOfRange)
		}

		return t.energyAtSlot(sparse), nil
	}
	joint, err := t.jointOfSparse(sparse)
	if err != nil {
		return 0, fmt.Errorf("EnergyForSparseIndex: %w", err)
	}

	return t.energyAt(joint), nil
}

// WeightForIndices returns the weight of an index tuple.
// Errors: ErrOutOfRange.
func (t *Table) WeightForIndices(indices ...int) (float64, error) {
	joint, err := t.codec.EncodeChecked(indices)
	if err != nil {
		return 0, fmt.Errorf("WeightForIndices: %w", err)
	}

	return t.weightAt(joint), nil
}

// EnergyForIndices returns the energy of an index tuple.
// Errors: ErrOutOfRange.
func (t *Table) EnergyForIndices(indices ...int) (float64, error) {
	joint, err := t.codec.EncodeChecked(indices)
	if err != nil {
		return 0, fmt.Errorf("EnergyForIndices: %w", err)
	}

	return t.energyAt(joint), nil
}

// WeightForArguments maps each argument through its domain and returns the
// weight of the resulting tuple.
// Errors: ErrDomainMismatch, ErrDimensionMismatch.
func (t *Table) WeightForArguments(args ...any) (float64, error) {
	joint, err := t.jointOfArguments(args)
	if err != nil {
		return 0, fmt.Errorf("WeightForArguments: %w", err)
	}

	return t.weightAt(joint), nil
}

// EnergyForArguments is WeightForArguments in the energy domain.
func (t *Table) EnergyForArguments(args ...any) (float64, error) {
	joint, err := t.jointOfArguments(args)
	if err != nil {
		return 0, fmt.Errorf("EnergyForArguments: %w", err)
	}

	return t.energyAt(joint), nil
}

// DenseWeightForIndices reads the DenseWeight store without any check.
// The caller must ensure HasDenseWeights and valid indices; otherwise it panics.
func (t *Table) DenseWeightForIndices(indices ...int) float64 {
	return t.denseWeights[t.codec.Encode(indices)]
}

// DenseEnergyForIndices reads the DenseEnergy store without any check.
// The caller must ensure HasDenseEnergies and valid indices.
func (t *Table) DenseEnergyForIndices(indices ...int) float64 {
	return t.denseEnergies[t.codec.Encode(indices)]
}

// SparseIndexFromJointIndex returns the sparse index of joint, or a negative
// encoded insertion point when joint has no sparse slot. Without a sparse
// store the sparse index is the joint index.
// Errors: ErrOutOfRange.
func (t *Table) SparseIndexFromJointIndex(joint int) (int, error) {
	if err := t.checkJoint(joint); err != nil {
		return 0, fmt.Errorf("SparseIndexFromJointIndex: %w", err)
	}
	if t.sparseToJoint == nil {
		return joint, nil
	}

	return jointindex.SparseIndexFromJoint(t.sparseToJoint, joint), nil
}

// SparseIndexToJointIndex returns the joint index of a sparse slot.
// Errors: ErrOutOfRange.
func (t *Table) SparseIndexToJointIndex(sparse int) (int, error) {
	joint, err := t.jointOfSparse(sparse)
	if err != nil {
		return 0, fmt.Errorf("SparseIndexToJointIndex: %w", err)
	}

	return joint, nil
}

// SparseIndexFromIndices is SparseIndexFromJointIndex for an index tuple.
func (t *Table) SparseIndexFromIndices(indices ...int) (int, error) {
	joint, err := t.codec.EncodeChecked(indices)
	if err != nil {
		return 0, fmt.Errorf("SparseIndexFromIndices: %w", err)
	}

	return t.SparseIndexFromJointIndex(joint)
}

// SparseIndexToIndices decodes the tuple of a sparse slot into dst.
func (t *Table) SparseIndexToIndices(sparse int, dst []int) ([]int, error) {
	joint, err := t.jointOfSparse(sparse)
	if err != nil {
		return nil, fmt.Errorf("SparseIndexToIndices: %w", err)
	}

	return t.codec.Decode(joint, dst), nil
}

// SparseIndexFromArguments is SparseIndexFromJointIndex for domain elements.
func (t *Table) SparseIndexFromArguments(args ...any) (int, error) {
	joint, err := t.jointOfArguments(args)
	if err != nil {
		return 0, fmt.Errorf("SparseIndexFromArguments: %w", err)
	}

	return t.SparseIndexFromJointIndex(joint)
}

// SparseIndexToArguments returns the domain elements of a sparse slot.
func (t *Table) SparseIndexToArguments(sparse int) ([]any, error) {
	indices, err := t.SparseIndexToIndices(sparse, nil)
	if err != nil {
		return nil, err
	}

	return t.domains.ArgumentsFromIndices(indices, nil)
}

// UnsafeDenseWeights returns the DenseWeight store, or nil. Read-only.
func (t *Table) UnsafeDenseWeights() []float64 { return t.denseWeights }

// UnsafeDenseEnergies returns the DenseEnergy store, or nil. Read-only.
func (t *Table) UnsafeDenseEnergies() []float64 { return t.denseEnergies }

// UnsafeSparseWeights returns the SparseWeight store, or nil. Read-only.
func (t *Table) UnsafeSparseWeights() []float64 { return t.sparseWeights }

// UnsafeSparseEnergies returns the SparseEnergy store, or nil. Read-only.
func (t *Table) UnsafeSparseEnergies() []float64 { return t.sparseEnergies }

// UnsafeSparseToJoint returns the sparse slot → joint index slice, or nil
// without a sparse store. Read-only.
func (t *Table) UnsafeSparseToJoint() []int { return t.sparseToJoint }
