// Package expand grows a tag tree by one photo at a time.
//
// A [Controller] searches for a tag, picks the unused photo with the most
// tags, and attaches it to the parent node through that tag. The root is
// created the same way from the first tag the host supplies.
//
// # Selection
//
// Candidates are scanned in the order the search returned them. A candidate
// whose thumbnail is already in the used set is skipped; among the rest the
// first one with the highest tag count wins.
//
// # Dead ends
//
// When no candidate is eligible the controller draws a new tag at random
// from the parent's own photo tags and searches again for the same parent.
// Tags the parent already links through, and the query that just failed,
// are never drawn. After Config.MaxDeadEnds such retries, or when the parent
// has no tag left to draw, Expand returns [ErrDeadEnd].
//
// # Placement
//
// The root is placed at Config.RootPos. The first child of a run is placed
// a short random offset away from the root; every later child is dropped at
// a uniformly random position and left to the physics simulation.
package expand
