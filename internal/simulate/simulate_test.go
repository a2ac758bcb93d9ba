package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/stepcov/internal/matcher"
	"github.com/chriserin/stepcov/internal/parser"
	"github.com/chriserin/stepcov/internal/registry"
)

const threeScenarios = `Feature: Checkout
  Scenario: First
    Given the cart has 2 items
    When I pay
  Scenario: Second
    Given the cart has 0 items
  Scenario: Third
    Given never simulated
`

func setup(t *testing.T) ([]*parser.Feature, *matcher.Set) {
	t.Helper()
	f, err := parser.Parse("checkout.feature", []byte(threeScenarios))
	require.NoError(t, err)
	set := matcher.NewSet([]registry.StepDefinition{
		{Keyword: parser.Given, Pattern: "the cart has {int} items", SourcePath: "cart.steps.js", SourceLine: 4},
	})
	return []*parser.Feature{f}, set
}

func TestRun_SamplesFirstTwoScenarios(t *testing.T) {
	features, set := setup(t)

	results := Run(features, set, 0)

	require.Len(t, results, 2)
	assert.Equal(t, "First", results[0].Scenario)
	assert.Equal(t, "Second", results[1].Scenario)
	assert.Equal(t, "Checkout", results[0].Feature)
}

func TestRun_StepStatuses(t *testing.T) {
	features, set := setup(t)

	results := Run(features, set, 2)

	steps := results[0].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, StatusPassed, steps[0].Status)
	assert.Equal(t, "cart.steps.js:4", steps[0].MatchedBy)
	assert.Equal(t, []string{"2"}, steps[0].Args)
	assert.Equal(t, StatusPending, steps[1].Status)
	assert.Empty(t, steps[1].MatchedBy)
}

func TestRun_ScenarioStatusIndependentOfSteps(t *testing.T) {
	features, set := setup(t)

	results := Run(features, set, 2)

	assert.Equal(t, StatusSimulated, results[0].Status)
	assert.Equal(t, StatusSimulated, results[1].Status)
}

func TestRun_LargerSample(t *testing.T) {
	features, set := setup(t)

	assert.Len(t, Run(features, set, 10), 3)
	assert.Len(t, Run(features, set, 1), 1)
}

func TestRun_NoFeatures(t *testing.T) {
	results := Run(nil, matcher.NewSet(nil), 2)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestCounts(t *testing.T) {
	features, set := setup(t)

	passed, pending := Counts(Run(features, set, 2))

	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, pending)
}

func TestRun_WithoutTiming(t *testing.T) {
	features, set := setup(t)

	first := Run(features, set, 2, WithoutTiming())
	second := Run(features, set, 2, WithoutTiming())

	assert.Equal(t, first, second)
	for _, r := range first {
		assert.Zero(t, r.DurationEstimate)
		for _, st := range r.Steps {
			assert.Zero(t, st.DurationEstimate)
		}
	}
}

func TestRun_KeywordInsideStepText(t *testing.T) {
	f, err := parser.Parse("nav.feature", []byte(`Feature: Nav
  Scenario: Keyword twice
    Given When the page loads
`))
	require.NoError(t, err)
	set := matcher.NewSet([]registry.StepDefinition{
		{Keyword: parser.When, Pattern: "When the page loads", SourcePath: "nav.steps.js", SourceLine: 3},
	})

	results := Run([]*parser.Feature{f}, set, 1)

	require.Len(t, results, 1)
	assert.Equal(t, "When the page loads", results[0].Steps[0].Step)
	assert.Equal(t, StatusPassed, results[0].Steps[0].Status)
}
