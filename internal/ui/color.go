package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	newStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	existsStyle  = lipgloss.NewStyle().Faint(true)
	coveredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// NewLine reports a file or directory that was created.
func NewLine(w io.Writer, path string) {
	fmt.Fprintln(w, newStyle.Render("new")+"  "+path)
}

// ExistsLine reports a file or directory that was already there.
func ExistsLine(w io.Writer, path string) {
	fmt.Fprintln(w, existsStyle.Render("ok")+"   "+path)
}

// Mark renders the per-step coverage marker.
func Mark(covered bool) string {
	if covered {
		return coveredStyle.Render("✓")
	}
	return missingStyle.Render("✗")
}

// CoverageLine prints the one-line coverage summary.
func CoverageLine(w io.Writer, matched, unique, percent int) {
	style := coveredStyle
	if matched < unique {
		style = missingStyle
	}
	fmt.Fprintf(w, "%s %d/%d unique steps matched\n", style.Render(fmt.Sprintf("%d%%", percent)), matched, unique)
}
