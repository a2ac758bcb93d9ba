// Package simulate produces a synthetic execution trace for a sample of scenarios.
// Nothing is executed: a step "passes" when some definition matches it.
package simulate

import (
	"time"

	"github.com/chriserin/stepcov/internal/coverage"
	"github.com/chriserin/stepcov/internal/matcher"
	"github.com/chriserin/stepcov/internal/parser"
)

// DefaultSampleSize is the number of scenarios simulated per feature.
const DefaultSampleSize = 2

type Status string

const (
	StatusPassed    Status = "passed"
	StatusPending   Status = "pending"
	StatusSimulated Status = "simulated"
)

type StepResult struct {
	Step             string         `json:"step" yaml:"step"`
	Keyword          parser.Keyword `json:"keyword" yaml:"keyword"`
	Status           Status         `json:"status" yaml:"status"`
	MatchedBy        string         `json:"matchedBy,omitempty" yaml:"matchedBy,omitempty"`
	Args             []string       `json:"args,omitempty" yaml:"args,omitempty"`
	DurationEstimate time.Duration  `json:"durationEstimate" yaml:"durationEstimate"`
}

// ScenarioResult is the trace of one sampled scenario. Status is not derived
// from the step statuses.
type ScenarioResult struct {
	Feature          string        `json:"feature" yaml:"feature"`
	Scenario         string        `json:"scenario" yaml:"scenario"`
	Kind             parser.Kind   `json:"kind" yaml:"kind"`
	Status           Status        `json:"status" yaml:"status"`
	DurationEstimate time.Duration `json:"durationEstimate" yaml:"durationEstimate"`
	Steps            []StepResult  `json:"steps" yaml:"steps"`
}

type settings struct {
	timed bool
}

// Option adjusts a simulation run.
type Option func(*settings)

// WithoutTiming leaves every DurationEstimate at zero so repeated runs over the
// same files produce identical traces.
func WithoutTiming() Option {
	return func(s *settings) { s.timed = false }
}

// Run simulates the first sampleSize scenarios of every feature. A sampleSize
// of zero or less uses DefaultSampleSize. Durations are measured matching time
// unless WithoutTiming is given.
func Run(features []*parser.Feature, set *matcher.Set, sampleSize int, opts ...Option) []ScenarioResult {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	st := settings{timed: true}
	for _, o := range opts {
		o(&st)
	}

	results := []ScenarioResult{}
	for _, f := range features {
		n := min(sampleSize, len(f.Scenarios))
		for _, sc := range f.Scenarios[:n] {
			results = append(results, runScenario(f, sc, set, st.timed))
		}
	}
	return results
}

func runScenario(f *parser.Feature, sc parser.Scenario, set *matcher.Set, timed bool) ScenarioResult {
	res := ScenarioResult{
		Feature:  f.Name,
		Scenario: sc.Name,
		Kind:     sc.Kind,
		Status:   StatusSimulated,
		Steps:    make([]StepResult, 0, len(sc.Steps)),
	}

	for _, st := range sc.Steps {
		start := time.Now()
		text := coverage.StepText(st)
		sr := StepResult{
			Step:    text,
			Keyword: st.Keyword,
			Status:  StatusPending,
		}
		if i := set.Find(text); i >= 0 {
			sr.Status = StatusPassed
			sr.MatchedBy = set.Definitions()[i].Location()
			sr.Args = set.Matcher(i).Args(text)
		}
		if timed {
			sr.DurationEstimate = time.Since(start)
			res.DurationEstimate += sr.DurationEstimate
		}
		res.Steps = append(res.Steps, sr)
	}
	return res
}

// Counts returns the number of passed and pending steps across results.
func Counts(results []ScenarioResult) (passed, pending int) {
	for _, r := range results {
		for _, s := range r.Steps {
			if s.Status == StatusPassed {
				passed++
			} else {
				pending++
			}
		}
	}
	return passed, pending
}
