package render

import (
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/tagtree/pkg/graph"
)

// Board is an in-memory picture of the tree that other goroutines can read
// while the simulation is writing to it.
//
// Edges survive ClearEdges: an edge drawn in an earlier phase stays on the
// board but is no longer marked Fresh.
type Board struct {
	mu      sync.RWMutex
	pos     map[graph.NodeID]graph.Vec
	edges   map[graph.Pair]boardEdge
	status  string
	phase   int
	version uint64
}

type boardEdge struct {
	label string
	phase int
}

// BoardState is a point-in-time copy of a Board.
type BoardState struct {
	Version uint64      `json:"version"`
	Phase   int         `json:"phase"`
	Status  string      `json:"status,omitempty"`
	Nodes   []BoardNode `json:"nodes"`
	Edges   []BoardEdge `json:"edges"`
}

// BoardNode is a node position on the board.
type BoardNode struct {
	ID graph.NodeID `json:"id"`
	X  float64      `json:"x"`
	Y  float64      `json:"y"`
}

// BoardEdge is an edge on the board. Fresh edges were drawn in the current phase.
type BoardEdge struct {
	From  graph.NodeID `json:"from"`
	To    graph.NodeID `json:"to"`
	Label string       `json:"label"`
	Fresh bool         `json:"fresh"`
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{
		pos:   make(map[graph.NodeID]graph.Vec),
		edges: make(map[graph.Pair]boardEdge),
	}
}

// SetNodePosition records the position of a node.
func (b *Board) SetNodePosition(id graph.NodeID, x, y float64) {
	b.mu.Lock()
	b.pos[id] = graph.Vec{X: x, Y: y}
	b.version++
	b.mu.Unlock()
}

// DrawEdge adds an edge to the current phase.
func (b *Board) DrawEdge(from, to graph.NodeID, label string) {
	b.mu.Lock()
	b.edges[graph.MakePair(from, to)] = boardEdge{label: label, phase: b.phase}
	b.version++
	b.mu.Unlock()
}

// ClearEdges starts a new phase.
func (b *Board) ClearEdges() {
	b.mu.Lock()
	b.phase++
	b.version++
	b.mu.Unlock()
}

// SetStatus sets the human-readable status line.
func (b *Board) SetStatus(s string) {
	b.mu.Lock()
	b.status = s
	b.version++
	b.mu.Unlock()
}

// Snapshot returns a copy of the board, nodes ordered by ID and edges by pair.
func (b *Board) Snapshot() BoardState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := BoardState{
		Version: b.version,
		Phase:   b.phase,
		Status:  b.status,
		Nodes:   make([]BoardNode, 0, len(b.pos)),
		Edges:   make([]BoardEdge, 0, len(b.edges)),
	}
	for _, id := range slices.Sorted(maps.Keys(b.pos)) {
		p := b.pos[id]
		st.Nodes = append(st.Nodes, BoardNode{ID: id, X: p.X, Y: p.Y})
	}
	pairs := slices.SortedFunc(maps.Keys(b.edges), func(x, y graph.Pair) int {
		if x.Lo != y.Lo {
			return int(x.Lo - y.Lo)
		}
		return int(x.Hi - y.Hi)
	})
	for _, p := range pairs {
		e := b.edges[p]
		st.Edges = append(st.Edges, BoardEdge{From: p.Lo, To: p.Hi, Label: e.label, Fresh: e.phase == b.phase})
	}
	return st
}

var _ Renderer = (*Board)(nil)
