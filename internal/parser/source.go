package parser

import (
	"strings"
)

// ScenarioSource returns the raw text of f.Scenarios[idx], from its header line up to
// the line before the next block's tags or header, with trailing blank lines trimmed.
func ScenarioSource(f *Feature, idx int) string {
	if idx < 0 || idx >= len(f.Scenarios) {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(f.RawContent, "\r\n", "\n"), "\n")
	sc := f.Scenarios[idx]

	startLine := sc.Line - 1 // 0-based
	endLine := len(lines)

	if idx+1 < len(f.Scenarios) {
		candidateEnd := f.Scenarios[idx+1].Line - 1 // 0-based index of next header
		// Walk back to exclude tag lines, comments and blanks before the next header
		for candidateEnd > startLine {
			t := strings.TrimSpace(lines[candidateEnd-1])
			if t == "" || strings.HasPrefix(t, "@") || strings.HasPrefix(t, "#") {
				candidateEnd--
			} else {
				break
			}
		}
		if candidateEnd < endLine {
			endLine = candidateEnd
		}
	}

	// Trim trailing blank lines
	for endLine > startLine && strings.TrimSpace(lines[endLine-1]) == "" {
		endLine--
	}

	if startLine >= len(lines) || startLine >= endLine {
		return ""
	}
	return strings.Join(lines[startLine:endLine], "\n")
}
