// Package archive stores finished runs.
//
// A [Record] couples the [grow.Summary] of a run with the settled
// [graph.Snapshot] of its tree. Two stores are provided:
//
//   - [Dir] writes one JSON file per run into a directory
//   - [Mongo] upserts one document per run into a MongoDB collection
//
// Both implement [Store]. Records are keyed by the run ID, so saving the
// same run twice replaces the earlier copy.
package archive
