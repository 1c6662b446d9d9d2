// Package factorplan computes the outgoing messages of discrete factor
// tables for belief propagation, and decides per table whether a
// precomputed update plan is worth its memory.
//
// What is in the module?
//
//	domain/       finite discrete domains and (optionally directed) domain lists
//	jointindex/   row-major joint-index codec, projections, sparse-index search
//	factortable/  factor tables: dense/sparse weight and energy stores,
//	              normalization, determinism, converters, msgpack snapshots
//	updateplan/   elimination-tree update plans, their replay, the normal
//	              brute-force update, sum-product and min-sum semirings
//	costmodel/    linear execution-time models over plan statistics (YAML)
//	optimizer/    per-table choice of normal or optimized updates under a
//	              memory budget, with logrus logging and Prometheus metrics
//	fgraph/       a thread-safe variable/factor registry feeding the optimizer
//	factorgen/    seeded generators of random, uniform and deterministic tables
//	cmd/ftplan/   command line front end for planning and optimization
//
// Quick ASCII sketch of a plan for a table over (a,b,c) with every
// dimension a port:
//
//	        T(a,b,c)
//	        /       \
//	    Σc: T(a,b)   Σa,b: T(c) ──▶ out c
//	     /     \
//	  Σb: T(a)  Σa: T(b)
//	    │         │
//	  out a     out b
//
// Each marginalization multiplies in the incoming message of the dimension
// it removes, so shared prefixes of the tree are computed once instead of
// once per port.
//
//	go get github.com/katalvlaran/factorplan
package factorplan
