// Package coverage computes which unique step texts have a matching step definition.
package coverage

import (
	"math"
	"strings"
	"unicode"

	"github.com/chriserin/stepcov/internal/matcher"
	"github.com/chriserin/stepcov/internal/parser"
)

// Result is computed fresh on every run.
type Result struct {
	TotalUniqueSteps int            `json:"totalUniqueSteps" yaml:"totalUniqueSteps"`
	MatchedCount     int            `json:"matchedCount" yaml:"matchedCount"`
	MissingSteps     []string       `json:"missingSteps" yaml:"missingSteps"`
	CoveragePercent  int            `json:"coveragePercent" yaml:"coveragePercent"`
	Steps            []StepCoverage `json:"steps" yaml:"steps"`
	// Usage[i] is the number of unique step texts definition i matches.
	Usage []int `json:"usage" yaml:"usage"`
}

// StepCoverage is the outcome for one unique step text.
type StepCoverage struct {
	Text        string         `json:"text" yaml:"text"`
	Covered     bool           `json:"covered" yaml:"covered"`
	Definition  int            `json:"definition" yaml:"definition"` // first matching definition, -1 if none
	Keyword     parser.Keyword `json:"keyword" yaml:"keyword"`       // keyword of the first occurrence
	Feature     string         `json:"feature" yaml:"feature"`       // path of the first occurrence
	Line        int            `json:"line" yaml:"line"`
	Occurrences int            `json:"occurrences" yaml:"occurrences"`
}

// Normalize strips exactly one leading step keyword from a raw step line. Text
// after the keyword is kept verbatim, even when it starts with another keyword.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if stripped, ok := stripKeyword(s); ok {
		return stripped
	}
	return s
}

// StepText returns the comparison text of a parsed step. The parser has already
// removed the keyword, so the text is not normalized again.
func StepText(st parser.Step) string {
	return strings.TrimSpace(st.Text)
}

func stripKeyword(s string) (string, bool) {
	for _, kw := range parser.StepKeywords {
		rest, found := strings.CutPrefix(s, string(kw))
		if !found || rest == "" {
			continue
		}
		if r := []rune(rest)[0]; unicode.IsSpace(r) {
			return strings.TrimSpace(rest), true
		}
	}
	return s, false
}

// Percent returns round(matched/total*100), or 100 when total is zero.
func Percent(matched, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(matched) * 100 / float64(total)))
}

// Aggregate walks every step of every scenario, deduplicates by normalized text and
// matches each unique text against the whole definition set. Missing steps keep
// discovery order.
func Aggregate(features []*parser.Feature, set *matcher.Set) Result {
	res := Result{
		MissingSteps: []string{},
		Steps:        []StepCoverage{},
		Usage:        make([]int, set.Len()),
	}

	index := make(map[string]int)
	for _, f := range features {
		for _, sc := range f.Scenarios {
			for _, st := range sc.Steps {
				text := StepText(st)
				if i, seen := index[text]; seen {
					res.Steps[i].Occurrences++
					continue
				}
				index[text] = len(res.Steps)
				res.Steps = append(res.Steps, StepCoverage{
					Text:        text,
					Definition:  -1,
					Keyword:     st.Keyword,
					Feature:     f.Path,
					Line:        st.Line,
					Occurrences: 1,
				})
			}
		}
	}

	for i := range res.Steps {
		sc := &res.Steps[i]
		matches := set.FindAll(sc.Text)
		for _, d := range matches {
			res.Usage[d]++
		}
		if len(matches) == 0 {
			res.MissingSteps = append(res.MissingSteps, sc.Text)
			continue
		}
		sc.Covered = true
		sc.Definition = matches[0]
		res.MatchedCount++
	}

	res.TotalUniqueSteps = len(res.Steps)
	res.CoveragePercent = Percent(res.MatchedCount, res.TotalUniqueSteps)
	return res
}
