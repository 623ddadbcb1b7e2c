package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tagtree/pkg/grow"
	"github.com/matzehuels/tagtree/pkg/render"
)

func countGlyph(grid [][]rune, g rune) int {
	n := 0
	for _, row := range grid {
		n += strings.Count(string(row), string(g))
	}
	return n
}

func TestPlotEmpty(t *testing.T) {
	grid := plot(render.BoardState{}, 10, 4)
	if len(grid) != 4 || len(grid[0]) != 10 {
		t.Fatalf("grid is %dx%d", len(grid[0]), len(grid))
	}
	if countGlyph(grid, glyphEmpty) != 40 {
		t.Error("empty board should plot blank")
	}
}

func TestPlotSingleNodeCentered(t *testing.T) {
	st := render.BoardState{Nodes: []render.BoardNode{{ID: 0, X: 300, Y: 300}}}
	grid := plot(st, 11, 5)
	if grid[2][5] != glyphRoot {
		t.Errorf("root not centered:\n%s", joinGrid(grid))
	}
}

func TestPlotEdge(t *testing.T) {
	st := render.BoardState{
		Nodes: []render.BoardNode{{ID: 0, X: 0, Y: 0}, {ID: 1, X: 100, Y: 100}, {ID: 2, X: 100, Y: 0}},
		Edges: []render.BoardEdge{
			{From: 0, To: 1, Label: "ocean", Fresh: true},
			{From: 0, To: 2, Label: "sky"},
		},
	}
	grid := plot(st, 20, 10)

	if grid[0][0] != glyphRoot || grid[9][19] != glyphNode || grid[0][19] != glyphNode {
		t.Errorf("corners wrong:\n%s", joinGrid(grid))
	}
	if countGlyph(grid, glyphFresh) == 0 || countGlyph(grid, glyphEdge) == 0 {
		t.Errorf("edges not drawn:\n%s", joinGrid(grid))
	}
}

func TestLineStaysInBounds(t *testing.T) {
	grid := plot(render.BoardState{}, 7, 3)
	line(grid, 0, 2, 6, 0, glyphEdge)
	line(grid, 6, 2, 0, 0, glyphEdge)
	line(grid, 3, 0, 3, 2, glyphEdge)
	if grid[2][0] != glyphEdge || grid[0][6] != glyphEdge {
		t.Errorf("endpoints missing:\n%s", joinGrid(grid))
	}
}

func joinGrid(grid [][]rune) string {
	rows := make([]string, len(grid))
	for i, r := range grid {
		rows[i] = string(r)
	}
	return strings.Join(rows, "\n")
}

func TestWatchModelUpdate(t *testing.T) {
	b := render.NewBoard()
	b.SetNodePosition(0, 300, 300)
	b.SetStatus("Arranging...")
	m := newWatchModel(b, "ocean")

	next, cmd := m.Update(watchTickMsg{})
	m = next.(WatchModel)
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if len(m.state.Nodes) != 1 || !strings.Contains(m.View(), "Arranging...") {
		t.Errorf("view = %q", m.View())
	}

	next, _ = m.Update(runDoneMsg{sum: grow.Summary{Reason: grow.StopLimit}})
	if v := next.(WatchModel).View(); !strings.Contains(v, "Finished: limit") {
		t.Errorf("view after run = %q", v)
	}
	next, _ = m.Update(runDoneMsg{err: errors.New("search failed")})
	if v := next.(WatchModel).View(); !strings.Contains(v, "Failed: search failed") {
		t.Errorf("view after failure = %q", v)
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}
