package graph

import (
	"errors"
	"fmt"
	"iter"
)

// Sentinel errors returned by Model mutations.
var (
	// ErrRootExists is returned by CreateRoot when the model already has a root.
	ErrRootExists = errors.New("root already exists")

	// ErrNoRoot is returned by AddNode before CreateRoot has been called.
	ErrNoRoot = errors.New("model has no root")

	// ErrUnknownNode is returned when a node ID does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSaturated is returned when a parent already holds MaxDegree entries.
	ErrSaturated = errors.New("node saturated")

	// ErrDuplicateTag is returned when a parent already has an entry for the tag.
	ErrDuplicateTag = errors.New("duplicate tag on node")

	// ErrEmptyTag is returned when a child is added without a tag.
	ErrEmptyTag = errors.New("empty tag")
)

// =============================================================================
// Node
// =============================================================================

// Node is one photo in the tree. Pos and Vel are owned by the physics
// simulation; everything else is fixed at creation.
type Node struct {
	ID    NodeID
	Pos   Vec
	Vel   Vec
	Photo Photo
	Query string // tag that selected this node; empty for the root

	adj  map[string]NodeID
	tags []string // adjacency keys in insertion order
}

// Degree returns the number of adjacency entries.
func (n *Node) Degree() int { return len(n.tags) }

// Neighbor returns the node reached through tag.
func (n *Node) Neighbor(tag string) (NodeID, bool) {
	id, ok := n.adj[tag]
	return id, ok
}

// Neighbors iterates adjacency entries (tag, neighbour) in insertion order.
func (n *Node) Neighbors() iter.Seq2[string, NodeID] {
	return func(yield func(string, NodeID) bool) {
		for _, tag := range n.tags {
			if !yield(tag, n.adj[tag]) {
				return
			}
		}
	}
}

func (n *Node) link(tag string, to NodeID) {
	n.adj[tag] = to
	n.tags = append(n.tags, tag)
}

// =============================================================================
// Model
// =============================================================================

// Model owns the nodes of a run.
type Model struct {
	nodes []*Node
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// Len returns the number of nodes.
func (m *Model) Len() int { return len(m.nodes) }

// Node returns the node with the given ID.
func (m *Model) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(m.nodes) {
		return nil, false
	}
	return m.nodes[id], true
}

// Nodes returns all nodes in creation order. The slice is shared with the
// model and must not be modified.
func (m *Model) Nodes() []*Node { return m.nodes }

// Root returns the root node, or nil if none has been created yet.
func (m *Model) Root() *Node {
	if len(m.nodes) == 0 {
		return nil
	}
	return m.nodes[0]
}

// CreateRoot inserts the first node at pos with zero velocity and no
// adjacency entries.
func (m *Model) CreateRoot(pos Vec, photo Photo) (NodeID, error) {
	if len(m.nodes) > 0 {
		return NoParent, ErrRootExists
	}
	return m.insert(pos, photo, ""), nil
}

// AddNode creates a child of parent at pos and links the two through tag.
// Both adjacency entries are inserted together, so the model never holds a
// one-sided edge.
func (m *Model) AddNode(parent NodeID, tag string, photo Photo, pos Vec) (NodeID, error) {
	if len(m.nodes) == 0 {
		return NoParent, ErrNoRoot
	}
	if tag == "" {
		return NoParent, ErrEmptyTag
	}
	p, ok := m.Node(parent)
	if !ok {
		return NoParent, fmt.Errorf("%w: %d", ErrUnknownNode, parent)
	}
	if p.Degree() >= MaxDegree {
		return NoParent, fmt.Errorf("%w: %d", ErrSaturated, parent)
	}
	if _, dup := p.adj[tag]; dup {
		return NoParent, fmt.Errorf("%w: %d already has %q", ErrDuplicateTag, parent, tag)
	}

	id := m.insert(pos, photo, tag)
	m.nodes[id].link(tag, parent)
	p.link(tag, id)
	return id, nil
}

func (m *Model) insert(pos Vec, photo Photo, query string) NodeID {
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, &Node{
		ID:    id,
		Pos:   pos,
		Photo: photo,
		Query: query,
		adj:   make(map[string]NodeID, MaxDegree),
	})
	return id
}

// Degree returns the number of adjacency entries of id, or 0 if id is unknown.
func (m *Model) Degree(id NodeID) int {
	n, ok := m.Node(id)
	if !ok {
		return 0
	}
	return n.Degree()
}

// NextExpandable returns the first node in creation order whose degree is
// below MaxDegree. It reports false when every node is saturated or the
// model is empty.
func (m *Model) NextExpandable() (NodeID, bool) {
	for _, n := range m.nodes {
		if n.Degree() < MaxDegree {
			return n.ID, true
		}
	}
	return NoParent, false
}

// Links returns every edge exactly once, ordered by the child's creation.
func (m *Model) Links() []Link {
	var out []Link
	for _, n := range m.nodes {
		for tag, to := range n.Neighbors() {
			if to < n.ID {
				out = append(out, Link{Pair: MakePair(n.ID, to), Label: tag})
			}
		}
	}
	return out
}
