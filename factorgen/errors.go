// SPDX-License-Identifier: MIT

package factorgen

import "errors"

// ErrInvalidProbability indicates a density outside [0,1].
var ErrInvalidProbability = errors.New("factorgen: probability out of range")

// ErrNeedRandSource indicates a stochastic constructor called without an RNG.
var ErrNeedRandSource = errors.New("factorgen: rng is required")

// ErrBadShape indicates an empty size list or a size below one.
var ErrBadShape = errors.New("factorgen: invalid shape")

// ErrBadMapping indicates a deterministic mapping that returned an output
// index outside its domain.
var ErrBadMapping = errors.New("factorgen: mapping output out of range")
