// Package pipeline wires discovery, matching, aggregation, simulation and report
// synthesis into one run.
package pipeline

import (
	"context"
	"time"

	"github.com/chriserin/stepcov/internal/coverage"
	"github.com/chriserin/stepcov/internal/discovery"
	"github.com/chriserin/stepcov/internal/logging"
	"github.com/chriserin/stepcov/internal/matcher"
	"github.com/chriserin/stepcov/internal/metrics"
	"github.com/chriserin/stepcov/internal/report"
	"github.com/chriserin/stepcov/internal/simulate"
)

type Options struct {
	Discovery discovery.Options
	// Simulate attaches a simulated trace of the first SampleSize scenarios
	// per feature to the report.
	Simulate   bool
	SampleSize int
	// UntimedSimulation leaves simulated durations at zero.
	UntimedSimulation bool
	Thresholds report.Thresholds
	// Metrics may be nil.
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Result keeps every intermediate value so commands can render more than the
// report.
type Result struct {
	Discovery   *discovery.Result
	Set         *matcher.Set
	Coverage    coverage.Result
	Simulations []simulate.ScenarioResult
	Report      *report.Report
}

// Run executes the pipeline once. It fails only when discovery fails.
func Run(ctx context.Context, opts Options) (*Result, error) {
	m := opts.Metrics

	start := time.Now()
	disc, err := discovery.Load(ctx, opts.Discovery)
	if err != nil {
		return nil, err
	}
	m.ObserveStage("discovery", start)
	m.RecordDiscovered("feature", len(disc.FeatureFiles))
	m.RecordDiscovered("step", len(disc.StepFiles))
	for _, d := range disc.Diagnostics {
		m.RecordSkipped(d.Code)
	}

	start = time.Now()
	set := matcher.NewSet(disc.Definitions)
	m.ObserveStage("compile", start)
	m.RecordFallbacks(set.FallbackCount())

	start = time.Now()
	cov := coverage.Aggregate(disc.Features, set)
	m.ObserveStage("aggregate", start)
	m.RecordSteps(cov.MatchedCount, len(cov.MissingSteps))
	m.SetCoverage(cov.CoveragePercent)

	res := &Result{
		Discovery: disc,
		Set:       set,
		Coverage:  cov,
	}

	if opts.Simulate {
		start = time.Now()
		var simOpts []simulate.Option
		if opts.UntimedSimulation {
			simOpts = append(simOpts, simulate.WithoutTiming())
		}
		res.Simulations = simulate.Run(disc.Features, set, opts.SampleSize, simOpts...)
		m.ObserveStage("simulate", start)
	}

	res.Report = report.Build(report.Input{
		Features:    disc.Features,
		Definitions: disc.Definitions,
		Coverage:    cov,
		Diagnostics: disc.Diagnostics,
		Simulations: res.Simulations,
		Thresholds:  opts.Thresholds,
		Now:         opts.Now,
	})

	logging.Info("pipeline", "%d features, %d definitions, %d/%d unique steps matched (%d%%)",
		len(disc.Features), len(disc.Definitions), cov.MatchedCount, cov.TotalUniqueSteps, cov.CoveragePercent)
	return res, nil
}
