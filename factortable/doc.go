// Package factortable stores the joint weights of a discrete factor.
//
// A Table is defined over a domain.List. Each combination of domain indices
// has a joint index (row-major, see package jointindex) and a value that can
// be read as a weight w ≥ 0 or as an energy e = −ln(w); w == 0 ⟺ e == +∞.
//
// Storage is a closed set of four stores tracked by a Representation bit set:
//
//	DenseWeight   []float64 indexed by joint index
//	DenseEnergy   []float64 indexed by joint index
//	SparseWeight  []float64 indexed by sparse index
//	SparseEnergy  []float64 indexed by sparse index
//
// Sparse stores share one strictly increasing sparseToJoint slice. When no
// sparse store exists the sparse index of an entry equals its joint index.
// At least one store is always present. Every accessor answers from whichever
// store exists, so all read paths agree under e = −ln(w).
//
// Mutation policy:
//   - Setters write every existing store, converting between weight and
//     energy; SetRepresentation adds or drops whole stores.
//   - Writing a non-zero weight to a joint index missing from the sparse store
//     inserts it in order. Writing zero keeps the slot; Compact removes it.
//   - Every setter clears the normalization flag and the determinism cache.
//
// Concurrency: reads never mutate shared state except for the atomically
// published determinism cache, so a table can be read by many goroutines.
// Mutations must not run concurrently with reads; Freeze makes every setter
// fail with ErrFrozen for the duration of a solver iteration.
package factortable
