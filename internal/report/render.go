package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a report rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (use text, json, yaml or markdown)", s)
	}
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteYAML writes rep as YAML.
func WriteYAML(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

// Markdown renders rep as a Markdown document.
func Markdown(rep *Report) string {
	var b strings.Builder
	s := rep.Summary

	b.WriteString("# Step coverage report\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", rep.Timestamp)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Features | %d |\n", s.TotalFeatures)
	fmt.Fprintf(&b, "| Scenarios | %d |\n", s.TotalScenarios)
	fmt.Fprintf(&b, "| Steps | %d |\n", s.TotalSteps)
	fmt.Fprintf(&b, "| Unique steps | %d |\n", s.UniqueSteps)
	fmt.Fprintf(&b, "| Step definitions | %d |\n", s.TotalStepDefinitions)
	fmt.Fprintf(&b, "| Step coverage | %d%% |\n", s.StepCoverage)
	fmt.Fprintf(&b, "| Missing steps | %d |\n\n", s.MissingStepsCount)

	if len(rep.Features) > 0 {
		b.WriteString("## Features\n\n")
		for _, f := range rep.Features {
			fmt.Fprintf(&b, "### %s\n\n`%s`, %d scenarios\n\n", f.Name, f.Path, f.ScenarioCount)
			for _, sc := range f.Scenarios {
				fmt.Fprintf(&b, "- **%s** %s (%d steps)\n", sc.Kind, sc.Name, sc.StepCount)
			}
			b.WriteString("\n")
		}
	}

	if len(rep.MissingSteps) > 0 {
		b.WriteString("## Missing steps\n\n")
		for _, m := range rep.MissingSteps {
			fmt.Fprintf(&b, "- `%s`\n", m)
		}
		b.WriteString("\n")
	}

	if len(rep.Suggestions) > 0 {
		b.WriteString("## Closest definitions\n\n")
		b.WriteString("| Missing step | Closest pattern | Location |\n|---|---|---|\n")
		for _, sg := range rep.Suggestions {
			fmt.Fprintf(&b, "| %s | %s | %s:%d |\n", escapeCell(sg.Step), escapeCell(sg.ClosestPattern), sg.File, sg.Line)
		}
		b.WriteString("\n")
	}

	if len(rep.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, r := range rep.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	if len(rep.Diagnostics) > 0 {
		b.WriteString("## Diagnostics\n\n")
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(&b, "- %s\n", d)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
