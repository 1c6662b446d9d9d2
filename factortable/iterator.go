// SPDX-License-Identifier: MIT

package factortable

import "iter"

// Entry is one table entry as yielded by Entries and All.
type Entry struct {
	// Sparse is the sparse index. Without a sparse store it equals Joint.
	// All yields the negative encoded insertion point for joint indices
	// that have no sparse slot.
	Sparse int
	Joint  int
	Weight float64
	Energy float64
}

// Entries yields the non-zero entries in ascending sparse-index order.
// Each call returns a fresh sequence. The table must not be mutated while
// the sequence is consumed.
// Complexity: O(S) with a sparse store, O(N) otherwise.
func (t *Table) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if t.sparseToJoint != nil {
			for s, j := range t.sparseToJoint {
				if !t.nonZeroSlot(s) {
					continue
				}
				if !yield(Entry{Sparse: s, Joint: j, Weight: t.weightAtSlot(s), Energy: t.energyAtSlot(s)}) {
					return
				}
			}

			return
		}
		for j := 0; j < t.codec.JointSize(); j++ {
			if !t.nonZeroAt(j) {
				continue
			}
			if !yield(Entry{Sparse: j, Joint: j, Weight: t.weightAt(j), Energy: t.energyAt(j)}) {
				return
			}
		}
	}
}

// All yields every joint index in ascending order, zero weights included.
// Complexity: O(N).
func (t *Table) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		s := 0
		for j := 0; j < t.codec.JointSize(); j++ {
			e := Entry{Sparse: j, Joint: j}
			if t.sparseToJoint != nil {
				for s < len(t.sparseToJoint) && t.sparseToJoint[s] < j {
					s++
				}
				if s < len(t.sparseToJoint) && t.sparseToJoint[s] == j {
					e.Sparse = s
				} else {
					e.Sparse = -s - 1
				}
			}
			switch {
			case t.HasDenseRepresentation():
				e.Weight, e.Energy = t.weightAt(j), t.energyAt(j)
			case e.Sparse >= 0:
				e.Weight, e.Energy = t.weightAtSlot(e.Sparse), t.energyAtSlot(e.Sparse)
			default:
				e.Weight, e.Energy = 0, WeightToEnergy(0)
			}
			if !yield(e) {
				return
			}
		}
	}
}
