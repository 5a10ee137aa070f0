// Package folioplan provides the analytics engine for tracking personal
// investment holdings against a declared target allocation over time.
//
// The core functionalities include:
//   - Policy Resolution: Finding the target-allocation policy version in
//     force on a given month, and flattening its layers and targets into an
//     asset lookup.
//   - Ledger Replay: Turning a holding's previous state plus a period's
//     signed flow into its current quantity, cost and market value.
//   - Metrics: Aggregate value, invested capital, profit and return over a
//     window, at total or policy scope.
//   - Allocation: Actual-vs-target allocation with two drill levels (layer,
//     then target-within-layer), including deviations and auto-distributed
//     target weights.
//   - Trend Series: Historical (month, value, invested) series for charting.
//   - Attribution: Decomposing a period's value change into net capital flow
//     and flow-neutral profit per bucket, layer or target.
//
// The engine is a pure, synchronous computation layer: every operation is a
// deterministic function of plain data inputs, with no internal mutable state
// and no I/O. Persistence (store), presentation (server, renderer) and the
// CLI (cmd, fp) are collaborators built on top of it.
package folioplan
