// Package render defines how a growing tree is shown.
//
// # Overview
//
// The physics simulation never draws anything itself. It reports to a
// [Renderer]:
//
//   - [Renderer.SetNodePosition] after every tick, best effort
//   - [Renderer.ClearEdges] once at the start of every simulation phase
//   - [Renderer.DrawEdge] once per edge for the whole run, after the phase
//     that created it has settled
//
// Implementations in this module:
//
//   - [Board]: thread-safe in-memory picture read by the live endpoint and
//     the terminal view
//   - [Multi]: fans every call out to several renderers
//   - [Nop]: discards everything
//
// The settled tree is turned into an SVG by [nodelink.ToDOT] and
// [nodelink.RenderSVG].
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert an SVG to other formats using the external
// rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(nodelink.ToDOT(m.Snapshot(), nodelink.Options{}))
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink.ToDOT]: github.com/matzehuels/tagtree/pkg/render/nodelink
// [nodelink.RenderSVG]: github.com/matzehuels/tagtree/pkg/render/nodelink
package render
