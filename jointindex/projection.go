// SPDX-License-Identifier: MIT

package jointindex

import "fmt"

// Projection maps a joint index of a full space onto the joint index of the
// sub-space spanned by a subset of its dimensions, kept in the given order.
//
// Directed tables project onto their input dimensions to find the
// normalization block of an entry; the planner projects intermediate tables
// onto the dimensions that survive a marginalization.
type Projection struct {
	from    *Codec
	to      *Codec
	keep    []int // dimensions of from, in target order
	strides []int // target stride of keep[k]
}

// NewProjection builds the projection of c onto keep.
// Errors: ErrOutOfRange for a dimension outside c or listed twice, ErrBadShape
// when keep is empty.
// Complexity: O(n).
func NewProjection(c *Codec, keep []int) (*Projection, error) {
	if len(keep) == 0 {
		return nil, fmt.Errorf("NewProjection: empty dimension set: %w", ErrBadShape)
	}
	seen := make([]bool, c.Dimensions())
	sizes := make([]int, len(keep))
	for k, dim := range keep {
		if dim < 0 || dim >= c.Dimensions() || seen[dim] {
			return nil, fmt.Errorf("NewProjection: dimension %d: %w", dim, ErrOutOfRange)
		}
		seen[dim] = true
		sizes[k] = c.sizes[dim]
	}
	to, err := NewCodec(sizes...)
	if err != nil {
		return nil, err
	}

	return &Projection{from: c, to: to, keep: append([]int(nil), keep...), strides: to.strides}, nil
}

// Project returns the target joint index of a source joint index. Unchecked.
// Complexity: O(len(keep)).
func (p *Projection) Project(joint int) int {
	out := 0
	for k, dim := range p.keep {
		out += p.from.IndexAt(joint, dim) * p.strides[k]
	}

	return out
}

// Source returns the codec of the full space.
func (p *Projection) Source() *Codec { return p.from }

// Target returns the codec of the projected space.
func (p *Projection) Target() *Codec { return p.to }

// Kept returns the source dimensions in target order.
func (p *Projection) Kept() []int { return append([]int(nil), p.keep...) }
