// Package grow drives a complete run: it alternates expansion and
// simulation until the tree cannot or should not grow any further.
//
// # Phases
//
// An [Orchestrator] holds a single busy flag. Run creates the root from the
// host's tag, then repeats two phases on one goroutine:
//
//  1. Simulating: the physics simulation runs until the layout settles and
//     draws the new edges.
//  2. Expanding: a random free tag of the first node that can still grow is
//     searched, and the chosen photo becomes that node's new child.
//
// Run stops when every node is saturated ([StopSaturated]), when the node
// limit is reached ([StopLimit]), when no growable node has a usable tag
// left ([StopExhausted]), or when its context is cancelled
// ([StopCancelled]). A search that keeps failing stops the run with an
// error.
//
// A node that reaches a dead end is retired for the rest of the run and the
// next growable node is tried instead.
package grow
