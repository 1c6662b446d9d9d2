// Package fgraph is a minimal, thread-safe factor-graph registry: variables
// with discrete domains, and factors that attach a factor table to an
// ordered list of variables.
//
// The registry is the factor-graph model the planner consumes. It does not
// pass messages, schedule updates or track versions; it only guarantees that
// every factor's table matches the domains of its variables, and it lists
// the tables for the update-cost optimizer (Graph implements
// optimizer.TableSource).
//
// Concurrency:
//   - muVar guards the variable catalog; muFac guards factors and the
//     variable→factor incidence.
//   - Lock order is muVar → muFac.
//
// Determinism:
//   - Variables(), Factors() and Tables() enumerate in ID order.
//   - Generated factor IDs are "f1", "f2", ... in creation order.
package fgraph
