package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tagtree/pkg/archive"
	"github.com/matzehuels/tagtree/pkg/grow"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleFailed = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Run Display
// =============================================================================

// printSummary prints the outcome of a grow run.
func printSummary(sum grow.Summary) {
	reason := string(sum.Reason)
	switch sum.Reason {
	case grow.StopFailed:
		reason = styleFailed.Render(reason)
	case grow.StopExhausted:
		reason = StyleWarning.Render(reason)
	default:
		reason = StyleSuccess.Render(reason)
	}
	printKeyValue("Run", StyleHighlight.Render(sum.RunID.String()))
	printKeyValue("Root", sum.RootTag)
	printKeyValue("Stopped", reason)
	printKeyValue("Tree", fmt.Sprintf("%s nodes %s %s edges",
		StyleNumber.Render(fmt.Sprint(sum.Nodes)), StyleDim.Render("·"), StyleNumber.Render(fmt.Sprint(sum.Edges))))
	printKeyValue("Searches", fmt.Sprintf("%d (%d dead ends)", sum.Expansions, sum.DeadEnds))
	printKeyValue("Duration", sum.Duration().Round(time.Millisecond).String())
}

// printRecord prints an archived run with its edge list.
func printRecord(rec archive.Record) {
	printKeyValue("Run", StyleHighlight.Render(rec.ID))
	printKeyValue("Root", rec.RootTag)
	printKeyValue("Stopped", rec.Reason)
	printKeyValue("Started", rec.Started.Local().Format(time.DateTime))
	printKeyValue("Duration", rec.Duration().Round(time.Millisecond).String())
	printKeyValue("Tree", fmt.Sprintf("%d nodes, %d edges", rec.Nodes, rec.Edges))
	printKeyValue("Searches", fmt.Sprintf("%d (%d dead ends)", rec.Expansions, rec.DeadEnds))
	printKeyValue("Ticks", fmt.Sprint(rec.Ticks))
	if len(rec.Graph.Edges) == 0 {
		return
	}
	fmt.Println()
	for _, e := range rec.Graph.Edges {
		fmt.Printf("  %s %s %s  %s\n",
			StyleNumber.Render(fmt.Sprintf("%3d", e.From)), StyleDim.Render(iconArrow),
			StyleNumber.Render(fmt.Sprintf("%3d", e.To)), StyleValue.Render(e.Label))
	}
}
