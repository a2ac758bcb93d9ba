// Package registry extracts step definitions from step-implementation source files.
//
// Only the declared pattern, its keyword and its location are read; the bound
// implementation body is opaque.
package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chriserin/stepcov/internal/parser"
)

// StepDefinition is one declared step pattern.
type StepDefinition struct {
	Keyword    parser.Keyword `json:"keyword" yaml:"keyword"`
	Pattern    string         `json:"pattern" yaml:"pattern"`
	SourcePath string         `json:"file" yaml:"file"`
	SourceLine int            `json:"line" yaml:"line"`
}

// Location returns "path:line".
func (d StepDefinition) Location() string {
	return fmt.Sprintf("%s:%d", d.SourcePath, d.SourceLine)
}

// A keyword token, optionally an opening paren, then a single-, double- or
// backtick-quoted pattern. Groups 2-4 hold the pattern for each quote style.
var definitionPattern = regexp.MustCompile(
	`(?:^|[^\w$])(Given|When|Then)\s*\(?\s*(?:'((?:\\.|[^'\\])*)'|"((?:\\.|[^"\\])*)"|` + "`([^`]*)`" + `)`,
)

// Parse returns the step definitions declared in content, in line order.
// At most one definition is taken per line.
func Parse(path string, content []byte) []StepDefinition {
	var defs []StepDefinition
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	for i, line := range lines {
		loc := definitionPattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		keyword := line[loc[2]:loc[3]]
		var pattern string
		for g := 2; g <= 4; g++ {
			if start := loc[2*g]; start >= 0 {
				pattern = line[start:loc[2*g+1]]
				break
			}
		}
		defs = append(defs, StepDefinition{
			Keyword:    parser.Keyword(keyword),
			Pattern:    pattern,
			SourcePath: path,
			SourceLine: i + 1,
		})
	}
	return defs
}

// Concat flattens per-file registries into one collection. No namespacing is
// applied: identical patterns from different files stay distinct entries.
func Concat(registries ...[]StepDefinition) []StepDefinition {
	n := 0
	for _, r := range registries {
		n += len(r)
	}
	out := make([]StepDefinition, 0, n)
	for _, r := range registries {
		out = append(out, r...)
	}
	return out
}
