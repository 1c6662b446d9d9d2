// Package updateplan computes all outgoing messages of one factor table.
//
// A factor with dimensions x_0..x_{n-1} receives one input message per
// dimension and sends, for every output port p,
//
//	out_p(x_p) = ⊕_{x \ x_p} f(x) ⊗ ⊗_{d≠p} in_d(x_d)
//
// in one of two semirings: SumProduct over weights (⊗ = ×, ⊕ = +) or
// MinSum over energies (⊗ = +, ⊕ = min).
//
// NormalUpdate evaluates that formula port by port (the NORMAL strategy).
// A Plan shares work between ports (the OPTIMIZED strategy): it eliminates
// the dimensions that are not ports once, then splits the ports into two
// halves; each half eliminates the other half's dimensions from the shared
// intermediate and recurses until a single port remains, which is written
// by an output step. Every marginalization step multiplies in the message
// of the dimension it eliminates, so a port never sees its own message.
//
// Plans are immutable and may be replayed concurrently. Intermediate tables
// live in a Scratch arena owned by one invocation. A plan reads the factor
// values live from the table's store (weights or energies, dense or
// sparse); PrepareTable materializes that store once up front.
//
// Estimate runs the same walk without materializing index arrays and
// returns the statistics the cost model prices.
package updateplan
