// Package report synthesizes the coverage report handed to renderers.
package report

import (
	"fmt"
	"time"

	"github.com/chriserin/stepcov/internal/coverage"
	"github.com/chriserin/stepcov/internal/diag"
	"github.com/chriserin/stepcov/internal/parser"
	"github.com/chriserin/stepcov/internal/registry"
	"github.com/chriserin/stepcov/internal/simulate"
)

// Recommendation messages, one per rule.
const (
	RecImplementMissing = "Implement the missing step definitions to raise step coverage from %d%% to at least %d%%."
	RecAddFeatures      = "Add more feature files: only %d found, at least %d recommended to describe the system's behavior."
	RecDeduplicate      = "Consider deduplicating step definitions: %d found, more than the recommended %d."
)

// Thresholds drive the recommendation rules.
type Thresholds struct {
	CoverageThreshold int `json:"coverageThreshold" yaml:"coverageThreshold" mapstructure:"coverage_threshold"`
	MinFeatures       int `json:"minFeatures" yaml:"minFeatures" mapstructure:"min_features"`
	MaxDefinitions    int `json:"maxDefinitions" yaml:"maxDefinitions" mapstructure:"max_definitions"`
}

// DefaultThresholds returns the rule table defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{CoverageThreshold: 80, MinFeatures: 3, MaxDefinitions: 50}
}

type Report struct {
	Timestamp       string                    `json:"timestamp" yaml:"timestamp"`
	Summary         Summary                   `json:"summary" yaml:"summary"`
	Features        []FeatureDetail           `json:"features" yaml:"features"`
	StepDefinitions []DefinitionDetail        `json:"stepDefinitions" yaml:"stepDefinitions"`
	MissingSteps    []string                  `json:"missingSteps" yaml:"missingSteps"`
	Suggestions     []coverage.Suggestion     `json:"suggestions" yaml:"suggestions"`
	Recommendations []string                  `json:"recommendations" yaml:"recommendations"`
	Diagnostics     []diag.Diagnostic         `json:"diagnostics" yaml:"diagnostics"`
	Simulations     []simulate.ScenarioResult `json:"simulations,omitempty" yaml:"simulations,omitempty"`
}

type Summary struct {
	TotalFeatures        int `json:"totalFeatures" yaml:"totalFeatures"`
	TotalScenarios       int `json:"totalScenarios" yaml:"totalScenarios"`
	TotalSteps           int `json:"totalSteps" yaml:"totalSteps"`
	TotalStepDefinitions int `json:"totalStepDefinitions" yaml:"totalStepDefinitions"`
	StepCoverage         int `json:"stepCoverage" yaml:"stepCoverage"`
	MissingStepsCount    int `json:"missingStepsCount" yaml:"missingStepsCount"`
	UniqueSteps          int `json:"uniqueSteps" yaml:"uniqueSteps"`
	MatchedSteps         int `json:"matchedSteps" yaml:"matchedSteps"`
}

type FeatureDetail struct {
	Name          string           `json:"name" yaml:"name"`
	Path          string           `json:"path" yaml:"path"`
	Tags          []string         `json:"tags" yaml:"tags"`
	ScenarioCount int              `json:"scenarioCount" yaml:"scenarioCount"`
	Scenarios     []ScenarioDetail `json:"scenarios" yaml:"scenarios"`
}

type ScenarioDetail struct {
	Name      string        `json:"name" yaml:"name"`
	Kind      parser.Kind   `json:"kind" yaml:"kind"`
	Tags      []string      `json:"tags" yaml:"tags"`
	Line      int           `json:"line" yaml:"line"`
	StepCount int           `json:"stepCount" yaml:"stepCount"`
	Steps     []parser.Step `json:"steps" yaml:"steps"`
}

type DefinitionDetail struct {
	Pattern    string         `json:"pattern" yaml:"pattern"`
	Keyword    parser.Keyword `json:"keyword" yaml:"keyword"`
	File       string         `json:"file" yaml:"file"`
	Line       int            `json:"line" yaml:"line"`
	UsageCount int            `json:"usageCount" yaml:"usageCount"`
}

// Input is everything the synthesizer aggregates.
type Input struct {
	Features    []*parser.Feature
	Definitions []registry.StepDefinition
	Coverage    coverage.Result
	Diagnostics []diag.Diagnostic
	Simulations []simulate.ScenarioResult
	Thresholds  Thresholds
	Now         func() time.Time
}

// Build aggregates in into a Report. Apart from the timestamp the output depends
// only on in.
func Build(in Input) *Report {
	now := in.Now
	if now == nil {
		now = time.Now
	}

	rep := &Report{
		Timestamp:       now().UTC().Format(time.RFC3339),
		Features:        make([]FeatureDetail, 0, len(in.Features)),
		StepDefinitions: make([]DefinitionDetail, 0, len(in.Definitions)),
		MissingSteps:    append([]string{}, in.Coverage.MissingSteps...),
		Suggestions:     coverage.Suggest(in.Coverage.MissingSteps, in.Definitions),
		Diagnostics:     append([]diag.Diagnostic{}, in.Diagnostics...),
		Simulations:     in.Simulations,
	}

	for _, f := range in.Features {
		fd := FeatureDetail{
			Name:          f.Name,
			Path:          f.Path,
			Tags:          nonNil(f.Tags),
			ScenarioCount: len(f.Scenarios),
			Scenarios:     make([]ScenarioDetail, 0, len(f.Scenarios)),
		}
		for _, sc := range f.Scenarios {
			fd.Scenarios = append(fd.Scenarios, ScenarioDetail{
				Name:      sc.Name,
				Kind:      sc.Kind,
				Tags:      nonNil(sc.Tags),
				Line:      sc.Line,
				StepCount: len(sc.Steps),
				Steps:     append([]parser.Step{}, sc.Steps...),
			})
			rep.Summary.TotalSteps += len(sc.Steps)
		}
		rep.Summary.TotalScenarios += len(f.Scenarios)
		rep.Features = append(rep.Features, fd)
	}

	for i, d := range in.Definitions {
		usage := 0
		if i < len(in.Coverage.Usage) {
			usage = in.Coverage.Usage[i]
		}
		rep.StepDefinitions = append(rep.StepDefinitions, DefinitionDetail{
			Pattern:    d.Pattern,
			Keyword:    d.Keyword,
			File:       d.SourcePath,
			Line:       d.SourceLine,
			UsageCount: usage,
		})
	}

	rep.Summary.TotalFeatures = len(in.Features)
	rep.Summary.TotalStepDefinitions = len(in.Definitions)
	rep.Summary.StepCoverage = in.Coverage.CoveragePercent
	rep.Summary.MissingStepsCount = len(in.Coverage.MissingSteps)
	rep.Summary.UniqueSteps = in.Coverage.TotalUniqueSteps
	rep.Summary.MatchedSteps = in.Coverage.MatchedCount
	if in.Coverage.TotalUniqueSteps == 0 {
		// A zero-value Result (no aggregation) is vacuously covered too.
		rep.Summary.StepCoverage = coverage.Percent(0, 0)
	}

	th := in.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	rep.Recommendations = Recommend(rep.Summary, th)
	return rep
}

// Recommend applies the fixed rule table to summary. Rules are independent and
// always reported in the same order.
func Recommend(summary Summary, th Thresholds) []string {
	recs := []string{}
	if summary.StepCoverage < th.CoverageThreshold {
		recs = append(recs, fmt.Sprintf(RecImplementMissing, summary.StepCoverage, th.CoverageThreshold))
	}
	if summary.TotalFeatures < th.MinFeatures {
		recs = append(recs, fmt.Sprintf(RecAddFeatures, summary.TotalFeatures, th.MinFeatures))
	}
	if summary.TotalStepDefinitions > th.MaxDefinitions {
		recs = append(recs, fmt.Sprintf(RecDeduplicate, summary.TotalStepDefinitions, th.MaxDefinitions))
	}
	return recs
}

// UnusedDefinitions returns the definitions that matched no step.
func (r *Report) UnusedDefinitions() []DefinitionDetail {
	var out []DefinitionDetail
	for _, d := range r.StepDefinitions {
		if d.UsageCount == 0 {
			out = append(out, d)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
