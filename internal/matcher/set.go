package matcher

import (
	"github.com/chriserin/stepcov/internal/logging"
	"github.com/chriserin/stepcov/internal/registry"
)

// Set is an immutable registry of step definitions with one cached Matcher per
// definition. It is built once per run and shared by the aggregator and simulator.
type Set struct {
	defs     []registry.StepDefinition
	matchers []*Matcher
}

// NewSet compiles every definition. Uncompilable patterns get fallback matchers.
func NewSet(defs []registry.StepDefinition) *Set {
	s := &Set{
		defs:     defs,
		matchers: make([]*Matcher, len(defs)),
	}
	for i, d := range defs {
		m := New(d.Pattern)
		if m.Fallback() {
			logging.Debug("matcher", "%s: using substring fallback: %v", d.Location(), m.Err())
		}
		s.matchers[i] = m
	}
	return s
}

// Len returns the number of definitions.
func (s *Set) Len() int { return len(s.defs) }

// Definitions returns the definitions in registry order.
func (s *Set) Definitions() []registry.StepDefinition { return s.defs }

// Matcher returns the cached matcher for definition i.
func (s *Set) Matcher(i int) *Matcher { return s.matchers[i] }

// FallbackCount returns how many definitions use substring fallback.
func (s *Set) FallbackCount() int {
	n := 0
	for _, m := range s.matchers {
		if m.Fallback() {
			n++
		}
	}
	return n
}

// Find returns the index of the first definition matching text, or -1.
// Definition keywords never restrict matching.
func (s *Set) Find(text string) int {
	for i, m := range s.matchers {
		if m.Match(text) {
			return i
		}
	}
	return -1
}

// FindAll returns the indexes of every definition matching text.
func (s *Set) FindAll(text string) []int {
	var out []int
	for i, m := range s.matchers {
		if m.Match(text) {
			out = append(out, i)
		}
	}
	return out
}
