package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepcov/internal/config"
	"github.com/chriserin/stepcov/internal/simulate"
	"github.com/chriserin/stepcov/internal/ui"
)

var sampleFlag int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a run of the first scenarios of each feature",
	Long: `Simulate walks the first scenarios of each feature and marks every step
passed when a step definition matches it, pending otherwise. No step code is run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSimulate(cmd.Context(), cmd.OutOrStdout(), cfg, sampleFlag)
	},
}

func init() {
	simulateCmd.Flags().IntVarP(&sampleFlag, "sample", "n", 0, "scenarios to simulate per feature (default from config)")
	rootCmd.AddCommand(simulateCmd)
}

func RunSimulate(ctx context.Context, w io.Writer, c config.Config, sample int) error {
	if sample > 0 {
		c.Simulate.SampleSize = sample
	}
	res, err := runPipeline(ctx, c, true, nil)
	if err != nil {
		return err
	}

	for i, r := range res.Simulations {
		if i > 0 {
			fmt.Fprintln(w)
		}
		ui.SimulatedScenario(w, r)
	}

	passed, pending := simulate.Counts(res.Simulations)
	if len(res.Simulations) > 0 {
		fmt.Fprintln(w)
	}
	ui.SimulationSummary(w, len(res.Simulations), passed, pending)
	return nil
}
