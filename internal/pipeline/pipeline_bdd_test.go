package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/chriserin/stepcov/internal/discovery"
	"github.com/chriserin/stepcov/internal/simulate"
)

type coverageBDDContext struct {
	root   string
	result *Result
}

func (c *coverageBDDContext) writeFile(rel string, doc *godog.DocString) error {
	path := filepath.Join(c.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc.Content+"\n"), 0o644)
}

func (c *coverageBDDContext) run(simulated bool) error {
	opts := discovery.DefaultOptions()
	opts.Root = c.root
	res, err := Run(context.Background(), Options{Discovery: opts, Simulate: simulated})
	if err != nil {
		return err
	}
	c.result = res
	return nil
}

func (c *coverageBDDContext) iRunTheCoveragePipeline() error {
	return c.run(false)
}

func (c *coverageBDDContext) iRunTheCoveragePipelineWithSimulation() error {
	return c.run(true)
}

func (c *coverageBDDContext) theCoverageShouldBe(percent int) error {
	if got := c.result.Report.Summary.StepCoverage; got != percent {
		return fmt.Errorf("expected coverage %d, got %d", percent, got)
	}
	return nil
}

func (c *coverageBDDContext) uniqueStepsShouldBeFound(n int) error {
	if got := c.result.Report.Summary.UniqueSteps; got != n {
		return fmt.Errorf("expected %d unique steps, got %d", n, got)
	}
	return nil
}

func (c *coverageBDDContext) featuresShouldBeReported(n int) error {
	if got := c.result.Report.Summary.TotalFeatures; got != n {
		return fmt.Errorf("expected %d features, got %d", n, got)
	}
	return nil
}

func (c *coverageBDDContext) theMissingStepsShouldBe(doc *godog.DocString) error {
	want := strings.Split(strings.TrimSpace(doc.Content), "\n")
	got := c.result.Report.MissingSteps
	if !slices.Equal(want, got) {
		return fmt.Errorf("expected missing steps %q, got %q", want, got)
	}
	return nil
}

func (c *coverageBDDContext) aRecommendationShouldMention(text string) error {
	for _, r := range c.result.Report.Recommendations {
		if strings.Contains(r, text) {
			return nil
		}
	}
	return fmt.Errorf("no recommendation mentions %q: %q", text, c.result.Report.Recommendations)
}

func (c *coverageBDDContext) aDiagnosticShouldBeReportedFor(code, path string) error {
	for _, d := range c.result.Report.Diagnostics {
		if d.Code == code && d.Path == path {
			return nil
		}
	}
	return fmt.Errorf("no %s diagnostic for %s: %v", code, path, c.result.Report.Diagnostics)
}

func (c *coverageBDDContext) theSimulationShouldHave(passed, pending int) error {
	gotPassed, gotPending := simulate.Counts(c.result.Simulations)
	if gotPassed != passed || gotPending != pending {
		return fmt.Errorf("expected %d passed and %d pending, got %d and %d", passed, pending, gotPassed, gotPending)
	}
	return nil
}

func TestCoverageBDD(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			c := &coverageBDDContext{}

			ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
				dir, err := os.MkdirTemp("", "stepcov-bdd-")
				if err != nil {
					return ctx, err
				}
				c.root = dir
				return ctx, nil
			})
			ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
				return ctx, os.RemoveAll(c.root)
			})

			// Project layout
			ctx.Step(`^a feature file "([^"]*)":$`, c.writeFile)
			ctx.Step(`^a step file "([^"]*)":$`, c.writeFile)

			// Running
			ctx.Step(`^I run the coverage pipeline$`, c.iRunTheCoveragePipeline)
			ctx.Step(`^I run the coverage pipeline with simulation$`, c.iRunTheCoveragePipelineWithSimulation)

			// Report
			ctx.Step(`^the coverage should be (\d+) percent$`, c.theCoverageShouldBe)
			ctx.Step(`^(\d+) unique steps should be found$`, c.uniqueStepsShouldBeFound)
			ctx.Step(`^(\d+) features should be reported$`, c.featuresShouldBeReported)
			ctx.Step(`^the missing steps should be:$`, c.theMissingStepsShouldBe)
			ctx.Step(`^a recommendation should mention "([^"]*)"$`, c.aRecommendationShouldMention)
			ctx.Step(`^a "([^"]*)" diagnostic should be reported for "([^"]*)"$`, c.aDiagnosticShouldBeReportedFor)
			ctx.Step(`^the simulation should have (\d+) passed and (\d+) pending steps$`, c.theSimulationShouldHave)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run BDD tests")
	}
}
