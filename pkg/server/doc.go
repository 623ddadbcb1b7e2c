// Package server exposes a growing tree over HTTP.
//
// Routes:
//
//	GET /healthz          liveness
//	GET /api/board        live board state (positions, edges, status)
//	GET /api/graph        last settled snapshot of the current run
//	GET /api/graph.svg    the same snapshot rendered with Graphviz
//	GET /api/graph.pdf    PDF and PNG variants (need rsvg-convert)
//	GET /api/graph.png
//	GET /api/runs         archived runs, newest first (?limit=n)
//	GET /api/runs/{id}    one archived run with its graph
//
// Every source is optional; routes whose source is nil answer 404.
package server
