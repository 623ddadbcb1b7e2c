// Package pkg provides the libraries behind tagtree, a photo tree that grows
// through shared tags.
//
// # Overview
//
// tagtree searches a photo service for a tag and makes the best photo the
// root of a tree. Every later node is found through one of the tags of a
// photo already in the tree, and a force simulation settles the layout
// after each addition. The pkg directory is organized into four areas:
//
//  1. Domain logic: [graph], [physics], [expand] and [grow]
//  2. Infrastructure: [cache], [seen], [archive] and [observability]
//  3. External integrations: [integrations] and [integrations/flickr]
//  4. Output: [render], [render/nodelink] and [server]
//
// # Architecture
//
// One growth step flows through the packages like this:
//
//	[grow] picks the oldest node with room
//	         ↓
//	[expand] picks a tag and searches for an unused photo
//	         ↓
//	[graph] links the new node to its parent
//	         ↓
//	[physics] ticks until the layout settles
//	         ↓
//	[render] boards, DOT/SVG/PDF/PNG and the HTTP [server]
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/tagtree/pkg/grow"
//	    "github.com/matzehuels/tagtree/pkg/render"
//	    "github.com/matzehuels/tagtree/pkg/seen"
//	)
//
//	board := render.NewBoard()
//	orch := grow.NewOrchestrator(searcher, seen.NewMemory(), board, nil)
//	orch.Config.MaxNodes = 20
//	sum, err := orch.Run(ctx, "ocean")
//	snap, _ := orch.Snapshot()
//
// The searcher is anything that implements expand.Searcher; the command
// line tool adapts the Flickr client from [integrations/flickr].
//
// # Main Packages
//
// [graph] - The tree model. Nodes carry a photo and at most four tag-labelled
// links; Snapshot is the JSON and BSON form shared by every output.
//
// [physics] - Coulomb repulsion, Hooke springs and wall bounces, ticked until
// the total energy and the fastest node fall below their thresholds.
//
// [expand] - Tag choice, photo search with retries, used-photo filtering and
// child placement.
//
// [grow] - The orchestrator that alternates expansion and settling until a
// node limit, exhaustion, an error or cancellation ends the run.
//
// [cache] - File, Redis and null caches for search responses.
//
// [seen] - In-memory and Redis sets of photos already placed.
//
// [archive] - Finished runs stored as JSON files or MongoDB documents.
//
// [server] - Live board, settled graph and archived runs over HTTP.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/graph
// [physics]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/physics
// [expand]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/expand
// [grow]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/grow
// [cache]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/cache
// [seen]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/seen
// [archive]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/archive
// [observability]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/observability
// [integrations]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/integrations
// [integrations/flickr]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/integrations/flickr
// [render]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/render/nodelink
// [server]: https://pkg.go.dev/github.com/matzehuels/tagtree/pkg/server
package pkg
