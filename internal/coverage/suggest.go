package coverage

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/chriserin/stepcov/internal/registry"
)

// Suggestion pairs a missing step with the closest existing definition pattern.
type Suggestion struct {
	Step           string `json:"step" yaml:"step"`
	ClosestPattern string `json:"closestPattern" yaml:"closestPattern"`
	File           string `json:"file" yaml:"file"`
	Line           int    `json:"line" yaml:"line"`
	Distance       int    `json:"distance" yaml:"distance"`
}

// Suggest finds, for every missing step, the definition whose pattern is closest.
// Patterns containing the step as a fuzzy subsequence win; otherwise the pattern
// with the smallest Levenshtein distance is used. Steps with nothing in common
// with any pattern get no suggestion.
func Suggest(missing []string, defs []registry.StepDefinition) []Suggestion {
	out := []Suggestion{}
	if len(defs) == 0 {
		return out
	}

	patterns := make([]string, len(defs))
	for i, d := range defs {
		patterns[i] = d.Pattern
	}

	for _, step := range missing {
		best, dist := closest(step, patterns)
		if best < 0 {
			continue
		}
		out = append(out, Suggestion{
			Step:           step,
			ClosestPattern: defs[best].Pattern,
			File:           defs[best].SourcePath,
			Line:           defs[best].SourceLine,
			Distance:       dist,
		})
	}
	return out
}

func closest(step string, patterns []string) (int, int) {
	ranks := fuzzy.RankFindFold(step, patterns)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].OriginalIndex, ranks[0].Distance
	}

	lower := strings.ToLower(step)
	best, bestDist := -1, 0
	for i, p := range patterns {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(p))
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	longest := max(len(step), len(patterns[best]))
	if bestDist >= longest {
		return -1, 0
	}
	return best, bestDist
}
