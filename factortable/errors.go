// SPDX-License-Identifier: MIT

package factortable

import (
	"errors"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/jointindex"
)

// Sentinel errors. All public operations return these (possibly wrapped with
// method context via %w); callers match them with errors.Is.
var (
	// ErrOutOfRange indicates an index, joint index, sparse index or
	// argument count outside valid bounds. It is the jointindex sentinel so
	// codec errors match as well.
	ErrOutOfRange = jointindex.ErrOutOfRange

	// ErrDomainMismatch indicates an argument that is not an element of its domain.
	ErrDomainMismatch = domain.ErrDomainMismatch

	// ErrDimensionMismatch indicates a value slice or domain list whose shape
	// does not match the table.
	ErrDimensionMismatch = domain.ErrDimensionMismatch

	// ErrNotDeterministic indicates EvalDeterministic on a table that is not
	// directed-deterministic.
	ErrNotDeterministic = errors.New("factortable: table is not deterministic directed")

	// ErrDegenerateDistribution indicates normalization of an all-zero
	// table or input block.
	ErrDegenerateDistribution = errors.New("factortable: cannot normalize all-zero weights")

	// ErrBadRepresentation indicates an empty or unknown representation.
	ErrBadRepresentation = errors.New("factortable: invalid representation")

	// ErrInvalidValue indicates a NaN or negative weight, an infinite weight,
	// or a NaN or −∞ energy.
	ErrInvalidValue = errors.New("factortable: invalid weight or energy")

	// ErrDuplicateEntry indicates the same index tuple listed twice in a
	// sparse constructor.
	ErrDuplicateEntry = errors.New("factortable: duplicate sparse entry")

	// ErrFrozen indicates a mutation attempted on a frozen table.
	ErrFrozen = errors.New("factortable: table is frozen")

	// ErrNilConverter indicates Convert called without a converter.
	ErrNilConverter = errors.New("factortable: nil converter")
)
