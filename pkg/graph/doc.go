// Package graph holds the growing tree of tag-linked photos.
//
// A [Model] owns every node of a run. Nodes are created exactly once, in
// increasing [NodeID] order, and are never removed: the root through
// [Model.CreateRoot], every other node through [Model.AddNode], which also
// inserts the reciprocal adjacency entries that make up an edge.
//
// # Edges
//
// Edges are not stored on their own. Node A holding tag→B and node B holding
// tag→A together form one edge labelled tag. [Pair] is the canonical,
// order-independent identity of an edge and [Model.Links] lists every edge
// once in a deterministic order.
//
// # Degree
//
// A node holds at most [MaxDegree] adjacency entries. [Model.NextExpandable]
// returns the first node in creation order that can still take a child;
// when it reports false the tree is saturated and cannot grow any further.
//
// # Serialization
//
// [Snapshot] is the JSON/BSON form of a model, used by run archives, the
// live endpoint and the CLI:
//
//	{
//	  "nodes": [{"id": 0, "x": 300, "y": 300, "thumb": "..."}],
//	  "edges": [{"from": 0, "to": 1, "label": "ocean"}]
//	}
//
// # Concurrency
//
// A Model is not safe for concurrent use. The grower mutates it from a
// single goroutine; concurrent readers work on snapshots.
package graph
