package render

import "github.com/matzehuels/tagtree/pkg/graph"

// Renderer receives positions and edges from the physics simulation.
//
// Calls arrive from a single goroutine. Implementations that are read from
// other goroutines must synchronize internally.
type Renderer interface {
	// SetNodePosition reports the current position of a node.
	SetNodePosition(id graph.NodeID, x, y float64)

	// DrawEdge draws the edge between a and b, labelled with its tag.
	// It is called at most once per edge over the lifetime of a run.
	DrawEdge(a, b graph.NodeID, label string)

	// ClearEdges is called at the start of each simulation phase, before
	// any edge of that phase is drawn.
	ClearEdges()
}

// =============================================================================
// Nop
// =============================================================================

// Nop is a Renderer that discards everything.
type Nop struct{}

func (Nop) SetNodePosition(graph.NodeID, float64, float64) {}
func (Nop) DrawEdge(graph.NodeID, graph.NodeID, string)    {}
func (Nop) ClearEdges()                                    {}

// =============================================================================
// Multi
// =============================================================================

// Multi forwards every call to each of its renderers in order.
type Multi []Renderer

// NewMulti returns a Multi over the non-nil renderers in rs.
func NewMulti(rs ...Renderer) Multi {
	out := make(Multi, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// SetNodePosition forwards to every renderer.
func (m Multi) SetNodePosition(id graph.NodeID, x, y float64) {
	for _, r := range m {
		r.SetNodePosition(id, x, y)
	}
}

// DrawEdge forwards to every renderer.
func (m Multi) DrawEdge(a, b graph.NodeID, label string) {
	for _, r := range m {
		r.DrawEdge(a, b, label)
	}
}

// ClearEdges forwards to every renderer.
func (m Multi) ClearEdges() {
	for _, r := range m {
		r.ClearEdges()
	}
}

// SetStatus forwards to every renderer that shows a status line.
func (m Multi) SetStatus(status string) {
	for _, r := range m {
		if s, ok := r.(interface{ SetStatus(string) }); ok {
			s.SetStatus(status)
		}
	}
}

var (
	_ Renderer = Nop{}
	_ Renderer = Multi(nil)
)
