package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tagtree/pkg/grow"
	"github.com/matzehuels/tagtree/pkg/render"
)

// Watch styles
var (
	watchFrameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	watchRootStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	watchNodeStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	watchFreshStyle = lipgloss.NewStyle().Foreground(colorYellow)
	watchEdgeStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// Cell glyphs of the plotted board.
const (
	glyphEmpty = ' '
	glyphEdge  = '·'
	glyphFresh = '•'
	glyphNode  = 'o'
	glyphRoot  = '@'
)

const watchRefresh = 100 * time.Millisecond

// =============================================================================
// WatchModel - live view of a growing tree
// =============================================================================

type watchTickMsg time.Time

// runDoneMsg is sent when the orchestrator returns.
type runDoneMsg struct {
	sum grow.Summary
	err error
}

// WatchModel is the bubbletea model that plots a render.Board.
type WatchModel struct {
	board  *render.Board
	root   string
	state  render.BoardState
	width  int
	height int
	done   *runDoneMsg
}

func newWatchModel(board *render.Board, root string) WatchModel {
	return WatchModel{board: board, root: root, width: 80, height: 24}
}

func (m WatchModel) Init() tea.Cmd {
	return watchTick()
}

func watchTick() tea.Cmd {
	return tea.Tick(watchRefresh, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case watchTickMsg:
		m.state = m.board.Snapshot()
		return m, watchTick()
	case runDoneMsg:
		m.done = &msg
		m.state = m.board.Snapshot()
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("tagtree") + " " + StyleHighlight.Render(m.root))
	b.WriteString("\n")
	status := m.state.Status
	if m.done != nil {
		status = fmt.Sprintf("Finished: %s", m.done.sum.Reason)
		if m.done.err != nil {
			status = fmt.Sprintf("Failed: %v", m.done.err)
		}
	}
	b.WriteString(StyleDim.Render(status))
	b.WriteString("\n")

	w, h := max(m.width-2, 10), max(m.height-6, 5)
	b.WriteString(watchFrameStyle.Render(styleGrid(plot(m.state, w, h))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d nodes · %d edges · phase %d   q quit",
		len(m.state.Nodes), len(m.state.Edges), m.state.Phase)))

	return b.String()
}

// =============================================================================
// Plotting
// =============================================================================

// plot rasterizes a board onto a w×h character grid. The bounding box of the
// nodes is scaled to fill the grid; edges are drawn first so nodes stay
// visible where they overlap.
func plot(st render.BoardState, w, h int) [][]rune {
	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(glyphEmpty), w))
	}
	if len(st.Nodes) == 0 {
		return grid
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range st.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	cell := func(x, y float64) (int, int) {
		cx, cy := (w-1)/2, (h-1)/2
		if maxX > minX {
			cx = int(math.Round((x - minX) / (maxX - minX) * float64(w-1)))
		}
		if maxY > minY {
			cy = int(math.Round((y - minY) / (maxY - minY) * float64(h-1)))
		}
		return cx, cy
	}

	at := make(map[int][2]int, len(st.Nodes))
	for _, n := range st.Nodes {
		x, y := cell(n.X, n.Y)
		at[int(n.ID)] = [2]int{x, y}
	}
	for _, e := range st.Edges {
		a, okA := at[int(e.From)]
		b, okB := at[int(e.To)]
		if !okA || !okB {
			continue
		}
		g := glyphEdge
		if e.Fresh {
			g = glyphFresh
		}
		line(grid, a[0], a[1], b[0], b[1], g)
	}
	for _, n := range st.Nodes {
		p := at[int(n.ID)]
		g := glyphNode
		if n.ID == 0 {
			g = glyphRoot
		}
		grid[p[1]][p[0]] = g
	}
	return grid
}

// line draws a Bresenham line between two cells.
func line(grid [][]rune, x0, y0, x1, y1 int, g rune) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		grid[y0][x0] = g
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func styleGrid(grid [][]rune) string {
	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, r := range row {
			switch r {
			case glyphRoot:
				b.WriteString(watchRootStyle.Render(string(r)))
			case glyphNode:
				b.WriteString(watchNodeStyle.Render(string(r)))
			case glyphFresh:
				b.WriteString(watchFreshStyle.Render(string(r)))
			case glyphEdge:
				b.WriteString(watchEdgeStyle.Render(string(r)))
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
