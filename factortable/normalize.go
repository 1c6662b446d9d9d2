// SPDX-License-Identifier: MIT

package factortable

import (
	"fmt"
	"math"
)

// Normalize rescales the weights so that they sum to one: over the whole
// table when undirected, within every input block when directed. It sets
// the normalization flag. On error the table is unchanged.
//
// Energy-only tables are normalized in the log domain (energies shift by
// the block's log partition), so large energies do not underflow.
//
// Errors: ErrDegenerateDistribution when the table or an input block has
// zero total weight, ErrFrozen.
// Complexity: O(N + S).
func (t *Table) Normalize() error {
	if err := t.checkMutable("Normalize"); err != nil {
		return err
	}
	zs := t.partitions()
	for b, z := range zs {
		if !z.degenerate() {
			continue
		}
		if t.inputs == nil {
			return fmt.Errorf("Normalize: total weight is zero: %w", ErrDegenerateDistribution)
		}

		return fmt.Errorf("Normalize: input block %d has zero total weight: %w", b, ErrDegenerateDistribution)
	}
	block := t.blockOf()
	t.eachStoreValue(func(joint int, v *float64, k valueKind) {
		zs[block(joint)].apply(v, k)
	})
	t.normalized = true

	return nil
}

// partition is Z = exp(logMax)·sum for one block, kept factored so that
// neither the sum of finite weights nor its inverse overflows.
type partition struct {
	max    float64 // largest weight; 0 when summed from energies
	logMax float64 // ln of the largest weight
	sum    float64 // Σ w/max, in [1, n] for a non-empty block
}

func (z partition) degenerate() bool { return !(z.sum > 0) || math.IsInf(z.logMax, 0) }

func (z partition) apply(v *float64, k valueKind) {
	if k == weightKind {
		*v = *v / z.max / z.sum
		return
	}
	*v += z.logMax + math.Log(z.sum)
}

// blockOf maps a joint index to its normalization block.
func (t *Table) blockOf() func(int) int {
	if t.inputs == nil {
		return func(int) int { return 0 }
	}

	return t.inputs.Project
}

// partitions returns the partition of every normalization block: one for
// an undirected table, one per input block otherwise. Weight stores are
// preferred; energy-only tables are summed in the log domain.
// Complexity: O(S), or O(N) without a sparse store.
func (t *Table) partitions() []partition {
	nb := 1
	if t.inputs != nil {
		nb = t.inputs.Target().JointSize()
	}
	block := t.blockOf()
	zs := make([]partition, nb)

	if t.denseWeights != nil || t.sparseWeights != nil {
		for e := range t.Entries() {
			b := block(e.Joint)
			zs[b].max = math.Max(zs[b].max, e.Weight)
		}
		for e := range t.Entries() {
			b := block(e.Joint)
			zs[b].sum += e.Weight / zs[b].max
		}
		for b := range zs {
			zs[b].logMax = math.Log(zs[b].max)
		}

		return zs
	}

	for b := range zs {
		zs[b].logMax = math.Inf(-1)
	}
	for e := range t.Entries() {
		b := block(e.Joint)
		zs[b].logMax = math.Max(zs[b].logMax, -e.Energy)
	}
	for e := range t.Entries() {
		b := block(e.Joint)
		zs[b].sum += math.Exp(-e.Energy - zs[b].logMax)
	}

	return zs
}

// eachStoreValue visits every element of every existing store together
// with the joint index it belongs to.
func (t *Table) eachStoreValue(fn func(joint int, v *float64, k valueKind)) {
	for j := range t.denseWeights {
		fn(j, &t.denseWeights[j], weightKind)
	}
	for j := range t.denseEnergies {
		fn(j, &t.denseEnergies[j], energyKind)
	}
	for s := range t.sparseWeights {
		fn(t.sparseToJoint[s], &t.sparseWeights[s], weightKind)
	}
	for s := range t.sparseEnergies {
		fn(t.sparseToJoint[s], &t.sparseEnergies[s], energyKind)
	}
}
