package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrMalformedSpecification is returned when the content has no Feature: line.
var ErrMalformedSpecification = errors.New("malformed specification: no Feature: line")

var tagPattern = regexp.MustCompile(`@[^@\s]+`)

// Parse parses a feature file in a single forward scan and returns its Feature.
func Parse(path string, content []byte) (*Feature, error) {
	raw := string(content)
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	feature := &Feature{Path: path, RawContent: raw}
	sawFeature := false

	var (
		pendingTags []string
		current     *Scenario
		collecting  bool
	)

	flush := func() {
		if current != nil {
			feature.Scenarios = append(feature.Scenarios, *current)
			current = nil
		}
	}

	begin := func(kind Kind, name string, line int) {
		flush()
		current = &Scenario{Name: name, Kind: kind, Line: line}
		if kind != KindBackground {
			current.Tags = pendingTags
		}
		pendingTags = nil
		collecting = true
	}

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue

		case isDocStringDelimiter(trimmed):
			i = skipDocString(lines, i) - 1

		case isTagLine(trimmed):
			tags := parseTags(trimmed)
			switch {
			case !sawFeature:
				feature.Tags = append(feature.Tags, tags...)
			case current != nil && !tagPrecedesHeader(lines, i):
				current.Tags = append(current.Tags, tags...)
			default:
				pendingTags = append(pendingTags, tags...)
			}

		case strings.HasPrefix(trimmed, "Feature:"):
			if sawFeature {
				continue
			}
			sawFeature = true
			feature.Name = headerName(trimmed, "Feature:")

		case strings.HasPrefix(trimmed, "Background:"):
			begin(KindBackground, headerName(trimmed, "Background:"), i+1)

		case strings.HasPrefix(trimmed, "Scenario Outline:"):
			begin(KindScenarioOutline, headerName(trimmed, "Scenario Outline:"), i+1)

		case strings.HasPrefix(trimmed, "Scenario:"):
			begin(KindScenario, headerName(trimmed, "Scenario:"), i+1)

		case strings.HasPrefix(trimmed, "Examples:"):
			// Example rows are not expanded; the outline keeps its step skeletons.
			collecting = false

		default:
			if current == nil || !collecting {
				continue
			}
			if kw, text, ok := splitStep(trimmed); ok {
				current.Steps = append(current.Steps, Step{Keyword: kw, Text: text, Line: i + 1})
			}
		}
	}
	flush()

	if !sawFeature {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformedSpecification)
	}
	return feature, nil
}

// splitStep splits a step line into its keyword and text. The keyword must be
// followed by whitespace.
func splitStep(trimmed string) (Keyword, string, bool) {
	for _, kw := range StepKeywords {
		rest, found := strings.CutPrefix(trimmed, string(kw))
		if !found || rest == "" {
			continue
		}
		r := []rune(rest)[0]
		if !unicode.IsSpace(r) {
			continue
		}
		return kw, strings.TrimSpace(rest), true
	}
	return "", "", false
}

func headerName(trimmed, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
}

func parseTags(line string) []string {
	return tagPattern.FindAllString(line, -1)
}

func isTagLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "@")
}

func isDocStringDelimiter(trimmed string) bool {
	return strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "```")
}

// skipDocString advances past a doc string block. i points at the opening delimiter.
// Returns the index of the line after the closing delimiter.
func skipDocString(lines []string, i int) int {
	opener := strings.TrimSpace(lines[i])
	delimiter := `"""`
	if strings.HasPrefix(opener, "```") {
		delimiter = "```"
	}
	i++ // move past opening delimiter
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == delimiter {
			return i + 1 // past the closing delimiter
		}
		i++
	}
	return i // EOF without closing delimiter
}

// tagPrecedesHeader reports whether the tag line at index i belongs to a following
// Background:, Scenario: or Scenario Outline: header.
func tagPrecedesHeader(lines []string, i int) bool {
	for j := i + 1; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if t == "" || strings.HasPrefix(t, "#") || strings.HasPrefix(t, "@") {
			continue
		}
		return strings.HasPrefix(t, "Scenario:") ||
			strings.HasPrefix(t, "Scenario Outline:") ||
			strings.HasPrefix(t, "Background:")
	}
	return false
}
