// SPDX-License-Identifier: MIT

package domain

import (
	"fmt"
	"sort"
)

// List is an ordered sequence of domains, one per factor-table dimension.
// A directed List additionally partitions its dimensions into inputs and
// outputs; both parts are non-empty.
type List struct {
	domains []*Discrete
	sizes   []int
	inputs  []int  // ascending; nil when undirected
	outputs []int  // ascending complement of inputs; nil when undirected
	isInput []bool // per-dimension membership; nil when undirected
	card    int
}

// NewList builds an undirected list.
// Complexity: O(n).
func NewList(domains ...*Discrete) (*List, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}
	l := &List{
		domains: make([]*Discrete, len(domains)),
		sizes:   make([]int, len(domains)),
		card:    1,
	}
	for i, d := range domains {
		if d == nil || d.Size() == 0 {
			return nil, fmt.Errorf("NewList: dimension %d: %w", i, ErrEmptyDomain)
		}
		l.domains[i] = d
		l.sizes[i] = d.Size()
		l.card *= d.Size()
	}

	return l, nil
}

// NewDirectedList builds a list whose dimensions listed in inputs are the
// factor's inputs; the remaining dimensions are outputs.
// Stage 1 (Validate): every input in range, no repeats, 0 < len(inputs) < n.
// Stage 2 (Prepare): sorted input/output sets and the membership mask.
// Complexity: O(n log n).
func NewDirectedList(inputs []int, domains ...*Discrete) (*List, error) {
	l, err := NewList(domains...)
	if err != nil {
		return nil, err
	}
	n := len(domains)
	if len(inputs) == 0 || len(inputs) >= n {
		return nil, fmt.Errorf("NewDirectedList: %d inputs for %d dimensions: %w", len(inputs), n, ErrInvalidInputSet)
	}

	l.isInput = make([]bool, n)
	for _, dim := range inputs {
		if dim < 0 || dim >= n {
			return nil, fmt.Errorf("NewDirectedList: input %d: %w", dim, ErrInvalidInputSet)
		}
		if l.isInput[dim] {
			return nil, fmt.Errorf("NewDirectedList: input %d repeated: %w", dim, ErrInvalidInputSet)
		}
		l.isInput[dim] = true
	}
	l.inputs = append([]int(nil), inputs...)
	sort.Ints(l.inputs)
	l.outputs = make([]int, 0, n-len(inputs))
	for dim := 0; dim < n; dim++ {
		if !l.isInput[dim] {
			l.outputs = append(l.outputs, dim)
		}
	}

	return l, nil
}

// NewListFromSizes builds an undirected list of integer domains {0..d-1}.
// Handy for tables whose values are plain indices.
func NewListFromSizes(sizes ...int) (*List, error) {
	domains := make([]*Discrete, len(sizes))
	for i, s := range sizes {
		d, err := NewRange(0, s-1)
		if err != nil {
			return nil, fmt.Errorf("NewListFromSizes: dimension %d size %d: %w", i, s, err)
		}
		domains[i] = d
	}

	return NewList(domains...)
}

// Dimensions returns the number of domains.
func (l *List) Dimensions() int { return len(l.domains) }

// Sizes returns a copy of the per-dimension domain sizes.
func (l *List) Sizes() []int { return append([]int(nil), l.sizes...) }

// Size returns the size of dimension dim.
func (l *List) Size(dim int) int { return l.sizes[dim] }

// Cardinality is the product of all domain sizes (the joint size).
func (l *List) Cardinality() int { return l.card }

// Domain returns the domain of dimension dim.
func (l *List) Domain(dim int) *Discrete { return l.domains[dim] }

// IsDirected reports whether the list carries an input/output partition.
func (l *List) IsDirected() bool { return l.isInput != nil }

// InputSet returns the ascending input dimensions, or nil when undirected.
func (l *List) InputSet() []int { return append([]int(nil), l.inputs...) }

// OutputSet returns the ascending output dimensions, or nil when undirected.
func (l *List) OutputSet() []int { return append([]int(nil), l.outputs...) }

// IsInput reports whether dim is an input dimension of a directed list.
func (l *List) IsInput(dim int) bool { return l.isInput != nil && l.isInput[dim] }

// IndicesFromArguments maps each argument through its domain's value→index
// map. dst is reused when it has the right length.
// Errors: ErrDimensionMismatch on a wrong argument count, ErrDomainMismatch
// when an argument is not an element of its domain.
func (l *List) IndicesFromArguments(args []any, dst []int) ([]int, error) {
	if len(args) != len(l.domains) {
		return nil, fmt.Errorf("IndicesFromArguments: %d arguments for %d dimensions: %w",
			len(args), len(l.domains), ErrDimensionMismatch)
	}
	if len(dst) != len(l.domains) {
		dst = make([]int, len(l.domains))
	}
	for dim, a := range args {
		i, ok := l.domains[dim].IndexOf(a)
		if !ok {
			return nil, fmt.Errorf("IndicesFromArguments: dimension %d value %v: %w", dim, a, ErrDomainMismatch)
		}
		dst[dim] = i
	}

	return dst, nil
}

// ArgumentsFromIndices maps indices to domain elements. dst is reused when
// it has the right length.
func (l *List) ArgumentsFromIndices(indices []int, dst []any) ([]any, error) {
	if len(indices) != len(l.domains) {
		return nil, fmt.Errorf("ArgumentsFromIndices: %d indices for %d dimensions: %w",
			len(indices), len(l.domains), ErrDimensionMismatch)
	}
	if len(dst) != len(l.domains) {
		dst = make([]any, len(l.domains))
	}
	for dim, i := range indices {
		e, err := l.domains[dim].ElementAt(i)
		if err != nil {
			return nil, fmt.Errorf("ArgumentsFromIndices: dimension %d: %w", dim, err)
		}
		dst[dim] = e
	}

	return dst, nil
}

// Equal reports whether both lists have equal domains and the same input set.
func (l *List) Equal(other *List) bool {
	if l == other {
		return true
	}
	if l == nil || other == nil || len(l.domains) != len(other.domains) {
		return false
	}
	for i := range l.domains {
		if !l.domains[i].Equal(other.domains[i]) {
			return false
		}
	}
	if l.IsDirected() != other.IsDirected() {
		return false
	}
	for i := range l.inputs {
		if l.inputs[i] != other.inputs[i] {
			return false
		}
	}

	return true
}

// SameShape reports whether both lists have identical sizes, ignoring elements.
func (l *List) SameShape(other *List) bool {
	if len(l.sizes) != len(other.sizes) {
		return false
	}
	for i := range l.sizes {
		if l.sizes[i] != other.sizes[i] {
			return false
		}
	}

	return true
}
