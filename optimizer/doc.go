// SPDX-License-Identifier: MIT

// Package optimizer decides, per factor table, whether messages are updated
// by brute force (Normal) or by replaying an elimination-tree plan
// (Optimized).
//
// Every table starts Undecided. A configured override moves it straight to
// Normal or Optimized without estimation. Otherwise (Automatic) both
// strategies are priced with the cost model and the cheaper one that fits the
// memory budget wins. When the optimized plan does not fit, the table falls
// back to Normal and the pass reports a non-fatal ErrPlanInfeasible warning.
//
// Contract:
//   - Optimize plans tables concurrently with a bounded errgroup; each table
//     is planned independently.
//   - Settings are written once per table and planning pass and handed out
//     by reference. Plans are immutable and shared between tables with the
//     same structure fingerprint.
//   - Settings go stale when the table's structure version or dimensionality
//     changes; Lookup recomputes stale settings.
//   - Replay needs a frozen table: the optimizer never mutates a table it
//     has already decided, but planning may add the value store a plan
//     reads (updateplan.PrepareTable).
//
// Observability: warnings and decisions are logged through a
// logrus.FieldLogger and counted by Prometheus collectors when a registerer
// is supplied.
package optimizer
