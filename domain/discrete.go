// SPDX-License-Identifier: MIT

package domain

import (
	"fmt"
	"reflect"
)

// Discrete is a finite, ordered set of comparable elements.
// The zero value is not usable; construct with NewDiscrete, NewRange or NewBoolean.
type Discrete struct {
	elements []any       // index -> element
	index    map[any]int // element -> index
}

// NewDiscrete builds a domain from elements in the given order.
// Stage 1 (Validate): non-empty, non-nil, comparable, duplicate-free.
// Stage 2 (Prepare): build the value→index map.
// Complexity: O(n) time and memory.
func NewDiscrete(elements ...any) (*Discrete, error) {
	if len(elements) == 0 {
		return nil, ErrEmptyDomain
	}

	d := &Discrete{
		elements: make([]any, len(elements)),
		index:    make(map[any]int, len(elements)),
	}
	for i, e := range elements {
		if e == nil {
			return nil, fmt.Errorf("NewDiscrete: element %d: %w", i, ErrNilElement)
		}
		// map keys must be comparable, checked up-front to avoid a runtime panic
		if !reflect.ValueOf(e).Comparable() {
			return nil, fmt.Errorf("NewDiscrete: element %d (%T): %w", i, e, ErrNotComparable)
		}
		if _, dup := d.index[e]; dup {
			return nil, fmt.Errorf("NewDiscrete: element %v: %w", e, ErrDuplicateElement)
		}
		d.elements[i] = e
		d.index[e] = i
	}

	return d, nil
}

// NewRange returns the integer domain {lo, lo+1, ..., hi}.
// Complexity: O(hi-lo).
func NewRange(lo, hi int) (*Discrete, error) {
	if hi < lo {
		return nil, fmt.Errorf("NewRange(%d,%d): %w", lo, hi, ErrEmptyDomain)
	}
	elems := make([]any, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		elems = append(elems, v)
	}

	return NewDiscrete(elems...)
}

// MustRange is NewRange for package-level fixtures; it panics on an empty range.
func MustRange(lo, hi int) *Discrete {
	d, err := NewRange(lo, hi)
	if err != nil {
		panic(err)
	}

	return d
}

// NewBoolean returns the domain {false, true}.
func NewBoolean() *Discrete {
	d, _ := NewDiscrete(false, true) // constant input, cannot fail

	return d
}

// Size returns the number of elements.
func (d *Discrete) Size() int { return len(d.elements) }

// IndexOf returns the index of value and whether it is an element.
// Non-comparable values are reported as absent instead of panicking.
func (d *Discrete) IndexOf(value any) (int, bool) {
	if value == nil || !reflect.ValueOf(value).Comparable() {
		return -1, false
	}
	i, ok := d.index[value]

	return i, ok
}

// ElementAt returns the element at index i.
func (d *Discrete) ElementAt(i int) (any, error) {
	if i < 0 || i >= len(d.elements) {
		return nil, fmt.Errorf("ElementAt(%d): %w", i, ErrOutOfRange)
	}

	return d.elements[i], nil
}

// Elements returns a copy of the elements in index order.
func (d *Discrete) Elements() []any {
	out := make([]any, len(d.elements))
	copy(out, d.elements)

	return out
}

// Equal reports whether both domains hold the same elements in the same order.
func (d *Discrete) Equal(other *Discrete) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil || len(d.elements) != len(other.elements) {
		return false
	}
	for i := range d.elements {
		if d.elements[i] != other.elements[i] {
			return false
		}
	}

	return true
}

// String implements fmt.Stringer.
func (d *Discrete) String() string {
	return fmt.Sprintf("Discrete%v", d.elements)
}
