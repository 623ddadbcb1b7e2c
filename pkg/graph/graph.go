package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Snapshot - serialization format
// =============================================================================

// Snapshot is the canonical serialization format of a model.
type Snapshot struct {
	Nodes []NodeRecord `json:"nodes" bson:"nodes"`
	Edges []EdgeRecord `json:"edges" bson:"edges"`
}

// NodeRecord is the serialized form of a node.
type NodeRecord struct {
	ID    NodeID  `json:"id" bson:"id"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Query string  `json:"query,omitempty" bson:"query,omitempty"`
	Full  string  `json:"full,omitempty" bson:"full,omitempty"`
	Thumb string  `json:"thumb,omitempty" bson:"thumb,omitempty"`
	Tags  string  `json:"tags,omitempty" bson:"tags,omitempty"`
}

// EdgeRecord is the serialized form of an edge. From is always the older node.
type EdgeRecord struct {
	From  NodeID `json:"from" bson:"from"`
	To    NodeID `json:"to" bson:"to"`
	Label string `json:"label" bson:"label"`
}

// Snapshot returns the serialized form of the model.
func (m *Model) Snapshot() Snapshot {
	out := Snapshot{
		Nodes: make([]NodeRecord, len(m.nodes)),
		Edges: []EdgeRecord{},
	}
	for i, n := range m.nodes {
		out.Nodes[i] = NodeRecord{
			ID:    n.ID,
			X:     n.Pos.X,
			Y:     n.Pos.Y,
			Query: n.Query,
			Full:  n.Photo.FullURL,
			Thumb: n.Photo.ThumbURL,
			Tags:  n.Photo.Tags,
		}
	}
	for _, l := range m.Links() {
		out.Edges = append(out.Edges, EdgeRecord{From: l.Lo, To: l.Hi, Label: l.Label})
	}
	return out
}

// FromSnapshot rebuilds a model from its serialized form. Nodes must be
// listed in ID order starting at 0, every node but the root needs exactly
// one edge naming it as To, and every edge must reference an older node as
// From.
func FromSnapshot(s Snapshot) (*Model, error) {
	if want := max(len(s.Nodes)-1, 0); len(s.Edges) != want {
		return nil, fmt.Errorf("%d nodes need %d edges, got %d", len(s.Nodes), want, len(s.Edges))
	}
	m := New()
	parents := make(map[NodeID]EdgeRecord, len(s.Edges))
	for _, e := range s.Edges {
		if prev, dup := parents[e.To]; dup {
			return nil, fmt.Errorf("node %d has two parent edges (from %d and %d)", e.To, prev.From, e.From)
		}
		parents[e.To] = e
	}

	for i, nr := range s.Nodes {
		if nr.ID != NodeID(i) {
			return nil, fmt.Errorf("node %d out of order at position %d", nr.ID, i)
		}
		pos := Vec{X: nr.X, Y: nr.Y}
		photo := Photo{FullURL: nr.Full, ThumbURL: nr.Thumb, Tags: nr.Tags}
		if i == 0 {
			if _, err := m.CreateRoot(pos, photo); err != nil {
				return nil, err
			}
			continue
		}
		e, ok := parents[nr.ID]
		if !ok {
			return nil, fmt.Errorf("node %d has no parent edge", nr.ID)
		}
		if _, err := m.AddNode(e.From, e.Label, photo, pos); err != nil {
			return nil, fmt.Errorf("add node %d: %w", nr.ID, err)
		}
	}
	return m, nil
}

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot converts a snapshot to indented JSON bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSnapshot(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSnapshot writes a snapshot as indented JSON to an io.Writer.
func WriteSnapshot(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteSnapshotFile writes a model to a JSON file.
func WriteSnapshotFile(m *Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(m.Snapshot(), f)
}

// ReadSnapshot decodes a JSON snapshot from an io.Reader.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// ReadSnapshotFile reads a JSON snapshot file.
func ReadSnapshotFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}
