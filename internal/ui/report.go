package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/chriserin/stepcov/internal/report"
)

// Report prints rep as styled terminal text.
func Report(w io.Writer, rep *report.Report) {
	s := rep.Summary

	fmt.Fprintln(w, headerStyle.Render("Step coverage"))
	CoverageLine(w, s.MatchedSteps, s.UniqueSteps, s.StepCoverage)
	fmt.Fprintf(w, "Features: %d  Scenarios: %d  Steps: %d  Definitions: %d\n",
		s.TotalFeatures, s.TotalScenarios, s.TotalSteps, s.TotalStepDefinitions)

	if len(rep.Features) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Features"))
		width := 0
		for _, f := range rep.Features {
			width = max(width, len(f.Path))
		}
		for _, f := range rep.Features {
			fmt.Fprintf(w, "  %-*s  %s %s\n", width, f.Path, f.Name, faintStyle.Render(fmt.Sprintf("(%d scenarios)", f.ScenarioCount)))
		}
	}

	if len(rep.MissingSteps) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Missing steps (%d)", len(rep.MissingSteps))))
		closest := make(map[string]string, len(rep.Suggestions))
		for _, sg := range rep.Suggestions {
			closest[sg.Step] = sg.ClosestPattern
		}
		for _, m := range rep.MissingSteps {
			fmt.Fprintf(w, "  %s %s", Mark(false), m)
			if p, ok := closest[m]; ok {
				fmt.Fprint(w, faintStyle.Render(fmt.Sprintf("  closest: %q", p)))
			}
			fmt.Fprintln(w)
		}
	}

	if len(rep.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Recommendations"))
		for _, r := range rep.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}

	Diagnostics(w, rep)
}

// Diagnostics prints the skipped-file warnings of rep, if any.
func Diagnostics(w io.Writer, rep *report.Report) {
	if len(rep.Diagnostics) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Diagnostics"))
	for _, d := range rep.Diagnostics {
		fmt.Fprintf(w, "  %s %s: %s\n", warnStyle.Render(d.Code), d.Path, d.Message)
	}
}

// RenderMarkdown renders md for a terminal.
func RenderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
