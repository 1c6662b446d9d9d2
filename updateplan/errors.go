// SPDX-License-Identifier: MIT

package updateplan

import "errors"

var (
	// ErrNilTable indicates a nil factor table.
	ErrNilTable = errors.New("updateplan: nil table")

	// ErrBadPort indicates an empty port list, a port outside the table or a
	// repeated port.
	ErrBadPort = errors.New("updateplan: invalid output port")

	// ErrBadOrder indicates an elimination order that is not a permutation
	// of the table's dimensions.
	ErrBadOrder = errors.New("updateplan: elimination order is not a permutation")

	// ErrTableNotPrepared indicates a table without the value store the plan
	// reads; call PrepareTable.
	ErrTableNotPrepared = errors.New("updateplan: table lacks the store the plan reads")

	// ErrPlanMismatch indicates a table whose shape or sparse size differs
	// from the table the plan was built for.
	ErrPlanMismatch = errors.New("updateplan: plan does not match table")

	// ErrMessageShape indicates a missing message or one of the wrong length.
	ErrMessageShape = errors.New("updateplan: message has wrong shape")

	// ErrUnknownSemiring indicates a semiring name ParseSemiring does not know.
	ErrUnknownSemiring = errors.New("updateplan: unknown semiring")

	// ErrBadStep indicates a step index outside the plan or of the wrong kind.
	ErrBadStep = errors.New("updateplan: invalid step")
)
