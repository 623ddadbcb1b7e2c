package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/tagtree/pkg/graph"
)

func testSnapshot() graph.Snapshot {
	m := graph.New()
	root, _ := m.CreateRoot(graph.Vec{X: 300, Y: 300}, graph.Photo{ThumbURL: "r.jpg", Tags: "sea sky"})
	_, _ = m.AddNode(root, "sea", graph.Photo{ThumbURL: "c.jpg", Tags: "sea boat sail"}, graph.Vec{X: 400, Y: 200})
	return m.Snapshot()
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{})

	if !strings.Contains(dot, "graph G {") {
		t.Error("ToDOT() output missing graph declaration")
	}
	if !strings.Contains(dot, `n0 [label="0"`) {
		t.Error("ToDOT() output missing node 0")
	}
	if !strings.Contains(dot, `n0 -- n1 [label="sea"]`) {
		t.Error("ToDOT() output missing labelled edge")
	}
}

func TestToDOT_PinnedPositions(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{})

	if !strings.Contains(dot, `pos="225.00,-225.00!"`) {
		t.Errorf("ToDOT() root position not pinned and flipped:\n%s", dot)
	}
	if !strings.Contains(dot, `pos="300.00,-150.00!"`) {
		t.Errorf("ToDOT() child position not pinned and flipped:\n%s", dot)
	}
}

func TestToDOT_Thumbnails(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{Thumbnails: true})
	if !strings.Contains(dot, `URL="c.jpg"`) {
		t.Error("ToDOT() missing thumbnail URL")
	}
	if !strings.Contains(dot, `tooltip="sea boat sail"`) {
		t.Error("ToDOT() missing tags tooltip")
	}
}

func TestFmtLabel(t *testing.T) {
	tests := []struct {
		name     string
		node     graph.NodeRecord
		detailed bool
		want     string
	}{
		{"Simple", graph.NodeRecord{ID: 3, Query: "sea"}, false, "3"},
		{"DetailedRoot", graph.NodeRecord{ID: 0, Tags: "a b"}, true, "0\n(root)\ntags: 2"},
		{"DetailedChild", graph.NodeRecord{ID: 4, Query: "boat", Tags: "x y z"}, true, "4\nboat\ntags: 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(tt.node, tt.detailed); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 10.00 20.00" width="10" height="20"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox() should leave SVG without viewBox unchanged")
	}
}
