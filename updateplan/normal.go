// SPDX-License-Identifier: MIT

package updateplan

import (
	"fmt"

	"github.com/katalvlaran/factorplan/costmodel"
	"github.com/katalvlaran/factorplan/factortable"
)

// NormalUpdate computes every port message by brute force: for each port it
// visits every non-zero entry, combines the entry with the input messages of
// all other dimensions and marginalizes onto the port. Options select the
// semiring, the ports and output normalization; ordering options are ignored.
// Errors: ErrNilTable, ErrBadPort, ErrMessageShape.
// Complexity: O(P·S·n) for P ports, S entries and n dimensions.
func NormalUpdate(table *factortable.Table, inputs, outputs [][]float64, opts ...Option) error {
	if table == nil {
		return fmt.Errorf("NormalUpdate: %w", ErrNilTable)
	}
	o := gatherOptions(opts)
	sizes := table.Domains().Sizes()
	_, ports, err := resolvePorts(o.ports, len(sizes))
	if err != nil {
		return fmt.Errorf("NormalUpdate: %w", err)
	}
	if err := checkMessages(inputs, sizes, nil, "input"); err != nil {
		return fmt.Errorf("NormalUpdate: %w", err)
	}
	if err := checkMessages(outputs, sizes, ports, "output"); err != nil {
		return fmt.Errorf("NormalUpdate: %w", err)
	}

	sr := o.semiring
	for _, p := range ports {
		fill(outputs[p], sr.Zero())
	}
	codec := table.Codec()
	idx := make([]int, len(sizes))
	for _, p := range ports {
		out := outputs[p]
		for e := range table.Entries() {
			idx = codec.Decode(e.Joint, idx)
			acc := e.Weight
			if sr == MinSum {
				acc = e.Energy
			}
			for d, x := range idx {
				if d != p {
					acc = sr.Times(acc, inputs[d][x])
				}
			}
			out[idx[p]] = sr.Plus(out[idx[p]], acc)
		}
		if o.normalize {
			sr.NormalizeMessage(out)
		}
	}

	return nil
}

// NormalStatistics describes the NORMAL strategy for table: its entries,
// dimensions, one step per eliminated dimension and output per port, and
// the output messages as its only memory.
// Errors: ErrNilTable, ErrBadPort.
func NormalStatistics(table *factortable.Table, opts ...Option) (costmodel.Statistics, error) {
	if table == nil {
		return costmodel.Statistics{}, fmt.Errorf("NormalStatistics: %w", ErrNilTable)
	}
	o := gatherOptions(opts)
	n := table.Dimensions()
	_, ports, err := resolvePorts(o.ports, n)
	if err != nil {
		return costmodel.Statistics{}, fmt.Errorf("NormalStatistics: %w", err)
	}
	s := costmodel.Statistics{
		NonZero:    int64(table.SparseSize()),
		Dimensions: int64(n),
		Steps:      len(ports) * n,
	}
	for _, p := range ports {
		s.Memory += int64(bytesPerValue * table.Codec().Size(p))
	}

	return s, nil
}

// PrepareTable adds the store a plan built for table under semiring reads:
// the sparse store of the semiring's kind when the table has a sparse
// representation, the dense one otherwise. Existing stores are kept.
// Errors: those of factortable.SetRepresentation.
func PrepareTable(table *factortable.Table, semiring Semiring) error {
	if table == nil {
		return fmt.Errorf("PrepareTable: %w", ErrNilTable)
	}
	need := semiring.valueStore(table.HasSparseRepresentation())
	rep := table.Representation()
	if rep.Has(need) {
		return nil
	}
	if err := table.SetRepresentation(rep | need); err != nil {
		return fmt.Errorf("PrepareTable: %w", err)
	}

	return nil
}
