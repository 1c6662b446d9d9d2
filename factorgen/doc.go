// SPDX-License-Identifier: MIT
// Package: factorplan/factorgen
//
// Package factorgen builds reproducible factor tables and message sets for
// tests, benchmarks, examples and the ftplan tool.
//
// Contract:
//   - Constructors are pure functions of their arguments and options.
//   - Stochastic constructors need an RNG (WithSeed or WithRand); without one
//     they return ErrNeedRandSource instead of drawing from a global source.
//   - Trials run in ascending joint-index order, so a fixed seed yields the
//     same table on every platform.
//
// AI-Hints:
//   - Use WithSeed in tests; use Streams to hand independent RNGs to workers.
//   - RandomTable with density 1 returns a dense table, below 1 a sparse one.
package factorgen
