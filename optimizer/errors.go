// SPDX-License-Identifier: MIT

package optimizer

import "errors"

var (
	// ErrPlanInfeasible indicates that the optimized plan (or every
	// candidate) exceeds the memory budget. It is reported as a warning;
	// the table falls back to Normal.
	ErrPlanInfeasible = errors.New("optimizer: no update strategy fits the memory budget")

	// ErrNilSource indicates a nil TableSource.
	ErrNilSource = errors.New("optimizer: nil table source")

	// ErrUnknownApproach indicates a Settings or Decision with an approach
	// that cannot drive an update.
	ErrUnknownApproach = errors.New("optimizer: approach cannot update messages")
)
