// SPDX-License-Identifier: MIT

package factortable

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/jointindex"
)

// Converter re-expresses a table over another domain list. Route receives
// the index tuple of one non-zero source entry and emits every target tuple
// that receives a share of its weight. Shares of one source entry should sum
// to one for mass to be preserved. Route must not retain either slice.
type Converter interface {
	SourceDomains() *domain.List
	TargetDomains() *domain.List
	Route(source []int, emit func(target []int, share float64))
}

// Convert builds a new table over c.TargetDomains(). The result holds a
// DenseWeight store when t has a dense store and a SparseWeight store
// otherwise. It is marked normalized when t is normalized and both lists
// are undirected.
// Errors: ErrNilConverter, ErrDimensionMismatch when the converter's source
// shape differs from the table's, ErrOutOfRange for an emitted tuple outside
// the target shape.
// Complexity: O(S·r + T log T) for r targets per entry and T distinct targets.
func (t *Table) Convert(c Converter) (*Table, error) {
	if c == nil {
		return nil, ErrNilConverter
	}
	if !c.SourceDomains().SameShape(t.domains) {
		return nil, fmt.Errorf("Convert: source shape %v, table shape %v: %w",
			c.SourceDomains().Sizes(), t.domains.Sizes(), ErrDimensionMismatch)
	}
	out, err := newTable(c.TargetDomains())
	if err != nil {
		return nil, fmt.Errorf("Convert: %w", err)
	}

	acc := make(map[int]float64)
	var routeErr error
	src := make([]int, t.codec.Dimensions())
	for e := range t.Entries() {
		src = t.codec.Decode(e.Joint, src)
		w := e.Weight
		c.Route(src, func(target []int, share float64) {
			j, err := out.codec.EncodeChecked(target)
			if err != nil {
				if routeErr == nil {
					routeErr = err
				}
				return
			}
			acc[j] += w * share
		})
		if routeErr != nil {
			return nil, fmt.Errorf("Convert: %w", routeErr)
		}
	}

	if t.HasDenseRepresentation() {
		out.denseWeights = make([]float64, out.codec.JointSize())
		for j, w := range acc {
			out.denseWeights[j] = w
		}
	} else {
		out.sparseToJoint = make([]int, 0, len(acc))
		for j := range acc {
			out.sparseToJoint = append(out.sparseToJoint, j)
		}
		sort.Ints(out.sparseToJoint)
		out.sparseWeights = make([]float64, len(out.sparseToJoint))
		for s, j := range out.sparseToJoint {
			out.sparseWeights[s] = acc[j]
		}
	}
	out.normalized = t.normalized && !t.domains.IsDirected() && !c.TargetDomains().IsDirected()

	return out, nil
}

// PermuteConverter reorders dimensions: target dimension k is source
// dimension Order[k]. A directed source keeps its inputs.
type PermuteConverter struct {
	from, to *domain.List
	order    []int
}

// NewPermuteConverter validates that order is a permutation of from's dimensions.
// Errors: ErrOutOfRange.
func NewPermuteConverter(from *domain.List, order []int) (*PermuteConverter, error) {
	n := from.Dimensions()
	if len(order) != n {
		return nil, fmt.Errorf("NewPermuteConverter: %d positions for %d dimensions: %w", len(order), n, ErrOutOfRange)
	}
	seen := make([]bool, n)
	domains := make([]*domain.Discrete, n)
	var inputs []int
	for k, dim := range order {
		if dim < 0 || dim >= n || seen[dim] {
			return nil, fmt.Errorf("NewPermuteConverter: order %v: %w", order, ErrOutOfRange)
		}
		seen[dim] = true
		domains[k] = from.Domain(dim)
		if from.IsInput(dim) {
			inputs = append(inputs, k)
		}
	}
	var to *domain.List
	var err error
	if from.IsDirected() {
		to, err = domain.NewDirectedList(inputs, domains...)
	} else {
		to, err = domain.NewList(domains...)
	}
	if err != nil {
		return nil, fmt.Errorf("NewPermuteConverter: %w", err)
	}

	return &PermuteConverter{from: from, to: to, order: append([]int(nil), order...)}, nil
}

// SourceDomains returns the domain list converted from.
func (p *PermuteConverter) SourceDomains() *domain.List { return p.from }

// TargetDomains returns the domain list converted to.
func (p *PermuteConverter) TargetDomains() *domain.List { return p.to }

// Route emits the source tuple reordered by the permutation, with share one.
func (p *PermuteConverter) Route(source []int, emit func([]int, float64)) {
	target := make([]int, len(p.order))
	for k, dim := range p.order {
		target[k] = source[dim]
	}
	emit(target, 1)
}

// JoinConverter merges a set of dimensions into one dimension appended
// after the remaining ones. Element k of the joined domain is the integer
// k, the row-major joint index of the merged tuple in the listed order.
// The target list is undirected.
type JoinConverter struct {
	from, to *domain.List
	rest     []int // remaining source dimensions in order
	joined   *jointindex.Codec
	dims     []int
}

// NewJoinConverter merges dims (at least two) of from.
// Errors: ErrOutOfRange for a bad, repeated or too short dimension list.
func NewJoinConverter(from *domain.List, dims []int) (*JoinConverter, error) {
	n := from.Dimensions()
	if len(dims) < 2 {
		return nil, fmt.Errorf("NewJoinConverter: need two dimensions, got %v: %w", dims, ErrOutOfRange)
	}
	inJoin := make([]bool, n)
	sizes := make([]int, len(dims))
	for k, dim := range dims {
		if dim < 0 || dim >= n || inJoin[dim] {
			return nil, fmt.Errorf("NewJoinConverter: dimensions %v: %w", dims, ErrOutOfRange)
		}
		inJoin[dim] = true
		sizes[k] = from.Size(dim)
	}
	joined, err := jointindex.NewCodec(sizes...)
	if err != nil {
		return nil, fmt.Errorf("NewJoinConverter: %w", err)
	}
	var rest []int
	var domains []*domain.Discrete
	for dim := 0; dim < n; dim++ {
		if !inJoin[dim] {
			rest = append(rest, dim)
			domains = append(domains, from.Domain(dim))
		}
	}
	merged, err := domain.NewRange(0, joined.JointSize()-1)
	if err != nil {
		return nil, fmt.Errorf("NewJoinConverter: %w", err)
	}
	to, err := domain.NewList(append(domains, merged)...)
	if err != nil {
		return nil, fmt.Errorf("NewJoinConverter: %w", err)
	}

	return &JoinConverter{from: from, to: to, rest: rest, joined: joined, dims: append([]int(nil), dims...)}, nil
}

// SourceDomains returns the domain list converted from.
func (c *JoinConverter) SourceDomains() *domain.List { return c.from }

// TargetDomains returns the domain list converted to.
func (c *JoinConverter) TargetDomains() *domain.List { return c.to }

// Route emits the remaining coordinates followed by the row-major index of
// the joined ones, with share one.
func (c *JoinConverter) Route(source []int, emit func([]int, float64)) {
	target := make([]int, len(c.rest)+1)
	for k, dim := range c.rest {
		target[k] = source[dim]
	}
	merged := 0
	for k, dim := range c.dims {
		merged += source[dim] * c.joined.Stride(k)
	}
	target[len(c.rest)] = merged
	emit(target, 1)
}

// SplitConverter replaces one dimension by several whose sizes multiply to
// its size. Index i of the split dimension maps to the row-major tuple of i
// over the new sizes; the new dimensions take its position and have
// integer domains. The target list is undirected.
type SplitConverter struct {
	from, to *domain.List
	dim      int
	parts    *jointindex.Codec
}

// NewSplitConverter splits dimension dim of from into sizes.
// Errors: ErrOutOfRange for a bad dimension, ErrDimensionMismatch when the
// sizes do not multiply to the dimension's size.
func NewSplitConverter(from *domain.List, dim int, sizes ...int) (*SplitConverter, error) {
	if dim < 0 || dim >= from.Dimensions() {
		return nil, fmt.Errorf("NewSplitConverter: dimension %d: %w", dim, ErrOutOfRange)
	}
	parts, err := jointindex.NewCodec(sizes...)
	if err != nil {
		return nil, fmt.Errorf("NewSplitConverter: %w", err)
	}
	if parts.JointSize() != from.Size(dim) {
		return nil, fmt.Errorf("NewSplitConverter: sizes %v for dimension of size %d: %w", sizes, from.Size(dim), ErrDimensionMismatch)
	}
	var domains []*domain.Discrete
	for d := 0; d < from.Dimensions(); d++ {
		if d != dim {
			domains = append(domains, from.Domain(d))
			continue
		}
		for _, s := range sizes {
			domains = append(domains, domain.MustRange(0, s-1))
		}
	}
	to, err := domain.NewList(domains...)
	if err != nil {
		return nil, fmt.Errorf("NewSplitConverter: %w", err)
	}

	return &SplitConverter{from: from, to: to, dim: dim, parts: parts}, nil
}

// SourceDomains returns the domain list converted from.
func (c *SplitConverter) SourceDomains() *domain.List { return c.from }

// TargetDomains returns the domain list converted to.
func (c *SplitConverter) TargetDomains() *domain.List { return c.to }

// Route emits the source tuple with the split coordinate replaced by its
// row-major tuple over the new sizes, with share one.
func (c *SplitConverter) Route(source []int, emit func([]int, float64)) {
	target := make([]int, 0, c.to.Dimensions())
	target = append(target, source[:c.dim]...)
	target = append(target, c.parts.Decode(source[c.dim], nil)...)
	target = append(target, source[c.dim+1:]...)
	emit(target, 1)
}

// MarginalizeConverter sums dimensions out. The remaining dimensions keep
// their order; the target list is undirected.
type MarginalizeConverter struct {
	from, to *domain.List
	keep     []int
}

// NewMarginalizeConverter removes dims from from; at least one dimension
// must remain.
// Errors: ErrOutOfRange.
func NewMarginalizeConverter(from *domain.List, dims ...int) (*MarginalizeConverter, error) {
	n := from.Dimensions()
	drop := make([]bool, n)
	for _, dim := range dims {
		if dim < 0 || dim >= n || drop[dim] {
			return nil, fmt.Errorf("NewMarginalizeConverter: dimensions %v: %w", dims, ErrOutOfRange)
		}
		drop[dim] = true
	}
	var keep []int
	var domains []*domain.Discrete
	for dim := 0; dim < n; dim++ {
		if !drop[dim] {
			keep = append(keep, dim)
			domains = append(domains, from.Domain(dim))
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("NewMarginalizeConverter: no dimension left: %w", ErrOutOfRange)
	}
	to, err := domain.NewList(domains...)
	if err != nil {
		return nil, fmt.Errorf("NewMarginalizeConverter: %w", err)
	}

	return &MarginalizeConverter{from: from, to: to, keep: keep}, nil
}

// SourceDomains returns the domain list converted from.
func (c *MarginalizeConverter) SourceDomains() *domain.List { return c.from }

// TargetDomains returns the domain list converted to.
func (c *MarginalizeConverter) TargetDomains() *domain.List { return c.to }

// Route emits the kept coordinates with share one; entries that differ only
// in removed dimensions accumulate in the same target.
func (c *MarginalizeConverter) Route(source []int, emit func([]int, float64)) {
	target := make([]int, len(c.keep))
	for k, dim := range c.keep {
		target[k] = source[dim]
	}
	emit(target, 1)
}
