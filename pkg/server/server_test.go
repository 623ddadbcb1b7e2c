package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/tagtree/pkg/archive"
	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/render"
)

type memStore struct {
	runs map[string]archive.Record
	err  error
}

func (m *memStore) Save(_ context.Context, r archive.Record) error {
	m.runs[r.ID] = r
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (archive.Record, error) {
	r, ok := m.runs[id]
	if !ok {
		return archive.Record{}, archive.ErrNotFound
	}
	return r, nil
}

func (m *memStore) List(_ context.Context, limit int) ([]archive.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []archive.Record
	for _, r := range m.runs {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, New(nil, nil, nil, nil).Handler(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBoard(t *testing.T) {
	b := render.NewBoard()
	b.SetNodePosition(0, 300, 300)
	b.SetNodePosition(1, 420, 310)
	b.DrawEdge(0, 1, "ocean")
	b.SetStatus("Arranging...")

	rec := get(t, New(b, nil, nil, nil).Handler(), "/api/board")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st render.BoardState
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if len(st.Nodes) != 2 || len(st.Edges) != 1 || st.Edges[0].Label != "ocean" || st.Status != "Arranging..." {
		t.Errorf("board = %+v", st)
	}
}

func TestGraph(t *testing.T) {
	m := graph.New()
	root, _ := m.CreateRoot(graph.Vec{X: 300, Y: 300}, graph.Photo{Tags: "sky ocean"})
	m.AddNode(root, "ocean", graph.Photo{Tags: "ocean"}, graph.Vec{X: 350, Y: 320})

	tests := []struct {
		name   string
		snap   SnapshotFunc
		status int
	}{
		{"no run", nil, http.StatusNotFound},
		{"not settled", func() (graph.Snapshot, bool) { return graph.Snapshot{}, false }, http.StatusServiceUnavailable},
		{"settled", func() (graph.Snapshot, bool) { return m.Snapshot(), true }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, New(nil, tt.snap, nil, nil).Handler(), "/api/graph")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			snap, err := graph.ReadSnapshot(rec.Body)
			if err != nil {
				t.Fatal(err)
			}
			if len(snap.Nodes) != 2 || snap.Edges[0].Label != "ocean" {
				t.Errorf("snapshot = %+v", snap)
			}
		})
	}
}

func TestRuns(t *testing.T) {
	store := &memStore{runs: map[string]archive.Record{
		"a": {ID: "a", RootTag: "sky"},
		"b": {ID: "b", RootTag: "ocean"},
	}}
	h := New(nil, nil, store, nil).Handler()

	tests := []struct {
		path   string
		status int
	}{
		{"/api/runs", http.StatusOK},
		{"/api/runs?limit=1", http.StatusOK},
		{"/api/runs?limit=0", http.StatusBadRequest},
		{"/api/runs?limit=x", http.StatusBadRequest},
		{"/api/runs/a", http.StatusOK},
		{"/api/runs/zzz", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if rec := get(t, h, tt.path); rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}

	var one []archive.Record
	json.NewDecoder(get(t, h, "/api/runs?limit=1").Body).Decode(&one)
	if len(one) != 1 {
		t.Errorf("limit=1 returned %d runs", len(one))
	}

	store.err = errors.New("boom")
	if rec := get(t, h, "/api/runs"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRunsWithoutArchive(t *testing.T) {
	h := New(nil, nil, nil, nil).Handler()
	for _, p := range []string{"/api/runs", "/api/runs/a", "/api/board"} {
		if rec := get(t, h, p); rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", p, rec.Code)
		}
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(nil, nil, nil, nil).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestGraphSVG(t *testing.T) {
	m := graph.New()
	root, _ := m.CreateRoot(graph.Vec{X: 300, Y: 300}, graph.Photo{Tags: "sky ocean"})
	m.AddNode(root, "ocean", graph.Photo{Tags: "ocean"}, graph.Vec{X: 450, Y: 320})
	h := New(nil, func() (graph.Snapshot, bool) { return m.Snapshot(), true }, nil, nil).Handler()

	rec := get(t, h, "/api/graph.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body is not an SVG document")
	}
}
