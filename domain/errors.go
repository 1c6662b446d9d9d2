// SPDX-License-Identifier: MIT

package domain

import "errors"

// Sentinel errors. Callers branch with errors.Is; context is attached with %w.
var (
	// ErrEmptyDomain indicates a domain with no elements.
	ErrEmptyDomain = errors.New("domain: domain has no elements")

	// ErrNilElement indicates a nil domain element.
	ErrNilElement = errors.New("domain: nil element")

	// ErrNotComparable indicates an element that cannot be used as a map key.
	ErrNotComparable = errors.New("domain: element is not comparable")

	// ErrDuplicateElement indicates the same element listed twice in one domain.
	ErrDuplicateElement = errors.New("domain: duplicate element")

	// ErrNoDomains indicates a list constructed without any domain.
	ErrNoDomains = errors.New("domain: list has no domains")

	// ErrInvalidInputSet indicates an input set that is empty, covers every
	// dimension, repeats a dimension or names a dimension out of range.
	ErrInvalidInputSet = errors.New("domain: invalid input set")

	// ErrDomainMismatch indicates a value that is not an element of its domain.
	ErrDomainMismatch = errors.New("domain: value is not a domain element")

	// ErrDimensionMismatch indicates an argument or index slice whose length
	// differs from the number of dimensions.
	ErrDimensionMismatch = errors.New("domain: dimension mismatch")

	// ErrOutOfRange indicates an element index outside [0, Size()).
	ErrOutOfRange = errors.New("domain: index out of range")
)
