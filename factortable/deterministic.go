// SPDX-License-Identifier: MIT

package factortable

import "fmt"

// determinism is the cached result of the directed-deterministic check.
type determinism struct {
	ok      bool
	outputs []int // input block → joint index of its single non-zero entry
}

func (t *Table) determinism() *determinism {
	if d := t.det.Load(); d != nil {
		return d
	}
	d := t.computeDeterminism()
	t.det.Store(d)

	return d
}

func (t *Table) computeDeterminism() *determinism {
	if t.inputs == nil {
		return &determinism{}
	}
	outputs := make([]int, t.inputs.Target().JointSize())
	for b := range outputs {
		outputs[b] = -1
	}
	for e := range t.Entries() {
		b := t.inputs.Project(e.Joint)
		if outputs[b] >= 0 {
			return &determinism{}
		}
		outputs[b] = e.Joint
	}
	for _, j := range outputs {
		if j < 0 {
			return &determinism{}
		}
	}

	return &determinism{ok: true, outputs: outputs}
}

// IsDeterministicDirected reports whether the table is directed and every
// input combination has exactly one non-zero output combination. The answer
// is computed on first use and cached until the next mutation.
// Complexity: O(N + S) on a cache miss, O(1) otherwise.
func (t *Table) IsDeterministicDirected() bool { return t.determinism().ok }

// EvalDeterministic reads the input dimensions of args, finds the unique
// output combination and writes its domain elements into the output
// dimensions of args. Values in output positions are ignored.
// Errors: ErrNotDeterministic, ErrDimensionMismatch, ErrDomainMismatch.
func (t *Table) EvalDeterministic(args []any) error {
	d := t.determinism()
	if !d.ok {
		return fmt.Errorf("EvalDeterministic: %w", ErrNotDeterministic)
	}
	if len(args) != t.codec.Dimensions() {
		return fmt.Errorf("EvalDeterministic: %d arguments for %d dimensions: %w", len(args), t.codec.Dimensions(), ErrDimensionMismatch)
	}
	block := 0
	for _, dim := range t.inputs.Kept() {
		i, ok := t.domains.Domain(dim).IndexOf(args[dim])
		if !ok {
			return fmt.Errorf("EvalDeterministic: dimension %d value %v: %w", dim, args[dim], ErrDomainMismatch)
		}
		block += i * t.codec.Stride(dim)
	}
	joint := d.outputs[t.inputs.Project(block)]
	for _, dim := range t.domains.OutputSet() {
		e, err := t.domains.Domain(dim).ElementAt(t.codec.IndexAt(joint, dim))
		if err != nil {
			return fmt.Errorf("EvalDeterministic: %w", err)
		}
		args[dim] = e
	}

	return nil
}

// EvalDeterministicIndices is EvalDeterministic over domain indices.
// Errors: ErrNotDeterministic, ErrDimensionMismatch, ErrOutOfRange.
func (t *Table) EvalDeterministicIndices(indices []int) error {
	d := t.determinism()
	if !d.ok {
		return fmt.Errorf("EvalDeterministicIndices: %w", ErrNotDeterministic)
	}
	if len(indices) != t.codec.Dimensions() {
		return fmt.Errorf("EvalDeterministicIndices: %d indices for %d dimensions: %w", len(indices), t.codec.Dimensions(), ErrDimensionMismatch)
	}
	block := 0
	for _, dim := range t.inputs.Kept() {
		i := indices[dim]
		if i < 0 || i >= t.codec.Size(dim) {
			return fmt.Errorf("EvalDeterministicIndices: dimension %d index %d: %w", dim, i, ErrOutOfRange)
		}
		block += i * t.codec.Stride(dim)
	}
	joint := d.outputs[t.inputs.Project(block)]
	for _, dim := range t.domains.OutputSet() {
		indices[dim] = t.codec.IndexAt(joint, dim)
	}

	return nil
}
