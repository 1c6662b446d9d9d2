// SPDX-License-Identifier: MIT

package updateplan

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/factorplan/factortable"
)

// Execute runs every step of the plan. inputs holds one message per table
// dimension; outputs must hold a message of the port's size at every port
// index (other entries are ignored). A nil scratch is allocated.
// The table must have the shape and, for a sparse plan, exactly the sparse
// structure the plan was built from; values may change freely.
// Errors: ErrNilTable, ErrPlanMismatch, ErrTableNotPrepared, ErrMessageShape.
// Complexity: O(Σ step source entries).
func (p *Plan) Execute(table *factortable.Table, inputs, outputs [][]float64, scratch *Scratch) error {
	root, err := p.rootValues(table)
	if err != nil {
		return fmt.Errorf("Execute: %w", err)
	}
	if err := p.checkInputs(inputs); err != nil {
		return fmt.Errorf("Execute: %w", err)
	}
	if err := p.checkOutputs(outputs); err != nil {
		return fmt.Errorf("Execute: %w", err)
	}
	if !p.scratchFits(scratch) {
		scratch = p.NewScratch()
	}
	for i := range p.steps {
		step := &p.steps[i]
		if step.Kind == Marginalization {
			p.runMarginalization(step, root, inputs, scratch)
		} else {
			p.runOutput(step, root, outputs, scratch)
		}
	}

	return nil
}

// RunMarginalizationStep replays step i alone. The caller runs steps in
// order; the scratch must come from NewScratch.
// Errors: ErrBadStep, plus those of Execute.
func (p *Plan) RunMarginalizationStep(i int, table *factortable.Table, inputs [][]float64, scratch *Scratch) error {
	if i < 0 || i >= len(p.steps) || p.steps[i].Kind != Marginalization {
		return fmt.Errorf("RunMarginalizationStep(%d): %w", i, ErrBadStep)
	}
	if !p.scratchFits(scratch) {
		return fmt.Errorf("RunMarginalizationStep(%d): scratch from another plan: %w", i, ErrBadStep)
	}
	root, err := p.rootValues(table)
	if err != nil {
		return fmt.Errorf("RunMarginalizationStep(%d): %w", i, err)
	}
	if err := p.checkInputs(inputs); err != nil {
		return fmt.Errorf("RunMarginalizationStep(%d): %w", i, err)
	}
	p.runMarginalization(&p.steps[i], root, inputs, scratch)

	return nil
}

// RunOutputStep replays output step i alone.
// Errors: ErrBadStep, plus those of Execute.
func (p *Plan) RunOutputStep(i int, table *factortable.Table, outputs [][]float64, scratch *Scratch) error {
	if i < 0 || i >= len(p.steps) || p.steps[i].Kind != OutputStep {
		return fmt.Errorf("RunOutputStep(%d): %w", i, ErrBadStep)
	}
	if !p.scratchFits(scratch) {
		return fmt.Errorf("RunOutputStep(%d): scratch from another plan: %w", i, ErrBadStep)
	}
	root, err := p.rootValues(table)
	if err != nil {
		return fmt.Errorf("RunOutputStep(%d): %w", i, err)
	}
	if err := p.checkOutputs(outputs); err != nil {
		return fmt.Errorf("RunOutputStep(%d): %w", i, err)
	}
	p.runOutput(&p.steps[i], root, outputs, scratch)

	return nil
}

func (p *Plan) runMarginalization(step *Step, root []float64, inputs [][]float64, scratch *Scratch) {
	src := root
	if step.Source != 0 {
		src = scratch.values[step.Source]
	}
	dst := scratch.values[step.Target]
	msg := inputs[step.Dim]
	fill(dst, p.semiring.Zero())

	if p.semiring == MinSum {
		for e, v := range src {
			x := v + msg[step.elimIdx[e]]
			if t := step.toTarget[e]; x < dst[t] {
				dst[t] = x
			}
		}

		return
	}
	for e, v := range src {
		if v == 0 {
			continue
		}
		dst[step.toTarget[e]] += v * msg[step.elimIdx[e]]
	}
}

func (p *Plan) runOutput(step *Step, root []float64, outputs [][]float64, scratch *Scratch) {
	src := root
	if step.Source != 0 {
		src = scratch.values[step.Source]
	}
	out := outputs[step.Dim]
	if step.DenseSource {
		copy(out, src)
	} else {
		fill(out, p.semiring.Zero())
		for e, v := range src {
			out[step.portIdx[e]] = v
		}
	}
	if p.normalize {
		p.semiring.NormalizeMessage(out)
	}
}

// rootValues returns the table store the plan reads.
func (p *Plan) rootValues(table *factortable.Table) ([]float64, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	if table.Dimensions() != len(p.sizes) {
		return nil, fmt.Errorf("table dimensions %d, plan %d: %w", table.Dimensions(), len(p.sizes), ErrPlanMismatch)
	}
	for d, s := range p.sizes {
		if table.Codec().Size(d) != s {
			return nil, fmt.Errorf("dimension %d size %d, plan %d: %w", d, table.Codec().Size(d), s, ErrPlanMismatch)
		}
	}
	if p.rootSparse {
		if !table.HasSparseRepresentation() {
			return nil, fmt.Errorf("plan reads a sparse store: %w", ErrPlanMismatch)
		}
		if !slices.Equal(table.UnsafeSparseToJoint(), p.rootJoints) {
			return nil, fmt.Errorf("sparse structure changed since the plan was built: %w", ErrPlanMismatch)
		}
	}

	var values []float64
	switch p.RootStore() {
	case factortable.SparseWeight:
		values = table.UnsafeSparseWeights()
	case factortable.SparseEnergy:
		values = table.UnsafeSparseEnergies()
	case factortable.DenseWeight:
		values = table.UnsafeDenseWeights()
	case factortable.DenseEnergy:
		values = table.UnsafeDenseEnergies()
	}
	if values == nil {
		return nil, fmt.Errorf("missing %s: %w", p.RootStore(), ErrTableNotPrepared)
	}
	if len(values) != p.rootEntries {
		return nil, fmt.Errorf("store holds %d entries, plan %d: %w", len(values), p.rootEntries, ErrPlanMismatch)
	}

	return values, nil
}

func (p *Plan) checkInputs(inputs [][]float64) error {
	return checkMessages(inputs, p.sizes, nil, "input")
}

func (p *Plan) checkOutputs(outputs [][]float64) error {
	return checkMessages(outputs, p.sizes, p.ports, "output")
}

// checkMessages validates one message per dimension, or per listed dimension.
func checkMessages(msgs [][]float64, sizes, only []int, what string) error {
	if len(msgs) != len(sizes) {
		return fmt.Errorf("%d %s messages for %d dimensions: %w", len(msgs), what, len(sizes), ErrMessageShape)
	}
	check := func(d int) error {
		if len(msgs[d]) != sizes[d] {
			return fmt.Errorf("%s message %d has length %d, want %d: %w", what, d, len(msgs[d]), sizes[d], ErrMessageShape)
		}

		return nil
	}
	if only == nil {
		for d := range sizes {
			if err := check(d); err != nil {
				return err
			}
		}

		return nil
	}
	for _, d := range only {
		if err := check(d); err != nil {
			return err
		}
	}

	return nil
}
