// SPDX-License-Identifier: MIT

// Package jointindex converts between per-dimension index tuples, joint
// indices and sparse indices.
//
// A joint index is the row-major mixed-radix encoding of an index tuple:
// the last dimension varies fastest. For sizes [3,2] the tuples
// (0,0) (0,1) (1,0) (1,1) (2,0) (2,1) map to joint indices 0..5.
//
// A sparse index is a position in a strictly increasing sparseToJoint
// slice. Its inverse is a binary search that returns -(insertionPoint)-1
// when the joint index is absent.
//
// Hot-path methods (Encode, Decode, IndexAt) never validate; the *Checked
// variants are for externally supplied indices and return ErrOutOfRange.
package jointindex

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
)

var (
	// ErrBadShape indicates an empty size list or a size below one.
	ErrBadShape = errors.New("jointindex: invalid shape")

	// ErrOverflow indicates a joint size that does not fit in an int.
	ErrOverflow = errors.New("jointindex: joint size overflows int")

	// ErrOutOfRange indicates an index, joint index or sparse index outside
	// its valid range.
	ErrOutOfRange = errors.New("jointindex: index out of range")

	// ErrUnsorted indicates a sparseToJoint slice that is not strictly increasing.
	ErrUnsorted = errors.New("jointindex: sparse joint indices not strictly increasing")
)

// Codec encodes index tuples over fixed dimension sizes.
// A Codec is immutable and safe for concurrent use.
type Codec struct {
	sizes   []int
	strides []int // strides[n-1] == 1
	joint   int
}

// NewCodec validates sizes and precomputes row-major strides.
// Complexity: O(n).
func NewCodec(sizes ...int) (*Codec, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("NewCodec: no dimensions: %w", ErrBadShape)
	}
	n := len(sizes)
	c := &Codec{
		sizes:   append([]int(nil), sizes...),
		strides: make([]int, n),
	}
	product := 1
	for dim := n - 1; dim >= 0; dim-- {
		if sizes[dim] < 1 {
			return nil, fmt.Errorf("NewCodec: dimension %d size %d: %w", dim, sizes[dim], ErrBadShape)
		}
		c.strides[dim] = product
		if product > math.MaxInt/sizes[dim] {
			return nil, fmt.Errorf("NewCodec: sizes %v: %w", sizes, ErrOverflow)
		}
		product *= sizes[dim]
	}
	c.joint = combin.Card(c.sizes)

	return c, nil
}

// Dimensions returns the number of dimensions.
func (c *Codec) Dimensions() int { return len(c.sizes) }

// JointSize returns the product of all sizes.
func (c *Codec) JointSize() int { return c.joint }

// Sizes returns a copy of the dimension sizes.
func (c *Codec) Sizes() []int { return append([]int(nil), c.sizes...) }

// Size returns the size of dimension dim.
func (c *Codec) Size(dim int) int { return c.sizes[dim] }

// Strides returns a copy of the row-major strides.
func (c *Codec) Strides() []int { return append([]int(nil), c.strides...) }

// Stride returns the stride of dimension dim.
func (c *Codec) Stride(dim int) int { return c.strides[dim] }

// Encode returns the joint index of indices. Unchecked: the caller
// guarantees len(indices) == Dimensions() and 0 ≤ indices[k] < Size(k).
// Complexity: O(n).
func (c *Codec) Encode(indices []int) int {
	joint := 0
	for dim, i := range indices {
		joint += i * c.strides[dim]
	}

	return joint
}

// Decode writes the index tuple of joint into dst and returns it. dst is
// allocated when its length is wrong. Unchecked: 0 ≤ joint < JointSize().
// Complexity: O(n).
func (c *Codec) Decode(joint int, dst []int) []int {
	if len(dst) != len(c.sizes) {
		dst = make([]int, len(c.sizes))
	}
	for dim, stride := range c.strides {
		dst[dim] = joint / stride
		joint -= dst[dim] * stride
	}

	return dst
}

// IndexAt returns the index of dimension dim within joint. Unchecked.
// Complexity: O(1).
func (c *Codec) IndexAt(joint, dim int) int {
	return (joint / c.strides[dim]) % c.sizes[dim]
}

// EncodeChecked is Encode for externally supplied indices.
// Errors: ErrOutOfRange on a wrong length or any index outside its size.
func (c *Codec) EncodeChecked(indices []int) (int, error) {
	if err := c.validate(indices); err != nil {
		return 0, fmt.Errorf("EncodeChecked(%v): %w", indices, err)
	}

	return combin.IdxFor(indices, c.sizes), nil
}

// DecodeChecked is Decode for externally supplied joint indices.
// Errors: ErrOutOfRange when joint is outside [0, JointSize()).
func (c *Codec) DecodeChecked(joint int, dst []int) ([]int, error) {
	if joint < 0 || joint >= c.joint {
		return nil, fmt.Errorf("DecodeChecked(%d): joint size %d: %w", joint, c.joint, ErrOutOfRange)
	}
	if len(dst) != len(c.sizes) {
		dst = make([]int, len(c.sizes))
	}

	return combin.SubFor(dst, joint, c.sizes), nil
}

// ValidIndices reports whether indices can be passed to Encode.
func (c *Codec) ValidIndices(indices []int) bool { return c.validate(indices) == nil }

func (c *Codec) validate(indices []int) error {
	if len(indices) != len(c.sizes) {
		return ErrOutOfRange
	}
	for dim, i := range indices {
		if i < 0 || i >= c.sizes[dim] {
			return ErrOutOfRange
		}
	}

	return nil
}

// SparseIndexFromJoint binary-searches sparseToJoint for joint. It returns
// the sparse index when present and -(insertionPoint)-1 otherwise.
// Complexity: O(log n).
func SparseIndexFromJoint(sparseToJoint []int, joint int) int {
	pos := sort.SearchInts(sparseToJoint, joint)
	if pos < len(sparseToJoint) && sparseToJoint[pos] == joint {
		return pos
	}

	return -pos - 1
}

// InsertionPoint decodes a negative SparseIndexFromJoint result.
func InsertionPoint(encoded int) int { return -encoded - 1 }

// JointFromSparse returns sparseToJoint[sparse] with a bounds check.
func JointFromSparse(sparseToJoint []int, sparse int) (int, error) {
	if sparse < 0 || sparse >= len(sparseToJoint) {
		return 0, fmt.Errorf("JointFromSparse(%d): sparse size %d: %w", sparse, len(sparseToJoint), ErrOutOfRange)
	}

	return sparseToJoint[sparse], nil
}

// ValidateSparse checks that sparseToJoint is strictly increasing and
// within [0, jointSize).
// Complexity: O(n).
func ValidateSparse(sparseToJoint []int, jointSize int) error {
	prev := -1
	for s, j := range sparseToJoint {
		if j < 0 || j >= jointSize {
			return fmt.Errorf("ValidateSparse: sparse %d joint %d: %w", s, j, ErrOutOfRange)
		}
		if j <= prev {
			return fmt.Errorf("ValidateSparse: sparse %d joint %d after %d: %w", s, j, prev, ErrUnsorted)
		}
		prev = j
	}

	return nil
}
