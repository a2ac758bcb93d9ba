package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/chriserin/stepcov/internal/history"
	"github.com/chriserin/stepcov/internal/parser"
	"github.com/chriserin/stepcov/internal/simulate"
)

// StepRow prints one unique step with its coverage mark and the definition or
// feature location that explains it.
func StepRow(w io.Writer, covered bool, text, detail string, textWidth int) {
	fmt.Fprintf(w, "%s %-*s  %s\n", Mark(covered), textWidth, text, faintStyle.Render(detail))
}

// DefRow prints one step definition.
func DefRow(w io.Writer, keyword parser.Keyword, pattern, location string, usage, patternWidth int) {
	usageText := fmt.Sprintf("%d uses", usage)
	if usage == 1 {
		usageText = "1 use"
	}
	style := faintStyle
	if usage == 0 {
		style = missingStyle
	}
	fmt.Fprintf(w, "%-5s %-*s  %s  %s\n", keyword, patternWidth, pattern, faintStyle.Render(location), style.Render(usageText))
}

// ShowHeader prints the feature title block of `stepcov show`.
func ShowHeader(w io.Writer, f *parser.Feature) {
	fmt.Fprintln(w, headerStyle.Render("Feature: "+f.Name)+"  "+faintStyle.Render(f.Path))
	if len(f.Tags) > 0 {
		fmt.Fprintln(w, faintStyle.Render(strings.Join(f.Tags, " ")))
	}
}

// ShowScenario prints a scenario with a coverage mark per step.
func ShowScenario(w io.Writer, sc parser.Scenario, covered func(parser.Step) bool) {
	fmt.Fprintln(w)
	if len(sc.Tags) > 0 {
		fmt.Fprintln(w, "  "+faintStyle.Render(strings.Join(sc.Tags, " ")))
	}
	title := string(sc.Kind) + ":"
	if sc.Kind == parser.KindScenarioOutline {
		title = "Scenario Outline:"
	}
	if sc.Name != "" {
		title += " " + sc.Name
	}
	fmt.Fprintln(w, "  "+headerStyle.Render(title))
	for _, st := range sc.Steps {
		fmt.Fprintf(w, "    %s %s\n", Mark(covered(st)), st)
	}
}

// ShowGherkin prints raw feature text.
func ShowGherkin(w io.Writer, content string) {
	fmt.Fprintln(w, content)
}

// SimulatedScenario prints the trace of one simulated scenario.
func SimulatedScenario(w io.Writer, r simulate.ScenarioResult) {
	fmt.Fprintf(w, "%s %s  %s\n", headerStyle.Render(r.Feature+":"), r.Scenario, faintStyle.Render(string(r.Status)))
	for _, s := range r.Steps {
		status := pendingStyle.Render(string(s.Status))
		detail := ""
		if s.Status == simulate.StatusPassed {
			status = coveredStyle.Render(string(s.Status))
			detail = s.MatchedBy
			if len(s.Args) > 0 {
				detail += " " + fmt.Sprintf("%q", s.Args)
			}
		}
		fmt.Fprintf(w, "  %-7s %s %s  %s\n", status, s.Keyword, s.Step, faintStyle.Render(detail))
	}
}

// SimulationSummary prints the passed/pending totals of a simulation.
func SimulationSummary(w io.Writer, scenarios, passed, pending int) {
	fmt.Fprintf(w, "simulated %d scenarios: %s, %s\n", scenarios,
		coveredStyle.Render(fmt.Sprintf("%d passed", passed)),
		pendingStyle.Render(fmt.Sprintf("%d pending", pending)))
}

// RunRow prints one recorded run.
func RunRow(w io.Writer, r history.Run) {
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	fmt.Fprintf(w, "%s  %s  %3d%%  %d/%d matched  %d missing\n",
		faintStyle.Render(id), r.Timestamp, r.Coverage, r.MatchedSteps, r.UniqueSteps, r.MissingCount)
}

// DeltaLines prints the change in missing steps between two runs.
func DeltaLines(w io.Writer, d history.Delta) {
	if d.Empty() {
		fmt.Fprintln(w, faintStyle.Render("no changes since previous run"))
		return
	}
	for _, s := range d.NewlyCovered {
		fmt.Fprintf(w, "%s %s\n", coveredStyle.Render("+ covered"), s)
	}
	for _, s := range d.NewlyMissing {
		fmt.Fprintf(w, "%s %s\n", missingStyle.Render("- missing"), s)
	}
}
