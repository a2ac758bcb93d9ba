package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepcov/internal/config"
	"github.com/chriserin/stepcov/internal/history"
	"github.com/chriserin/stepcov/internal/ui"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Scan the project and store the coverage run in history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRecord(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func RunRecord(ctx context.Context, w io.Writer, c config.Config) error {
	if err := requireInit(c); err != nil {
		return err
	}

	res, err := runPipeline(ctx, c, false, nil)
	if err != nil {
		return err
	}

	store, err := history.Open(c.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	id, err := store.Record(ctx, res.Report, c.Root)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	fmt.Fprintf(w, "recorded run %s\n", id)
	s := res.Report.Summary
	ui.CoverageLine(w, s.MatchedSteps, s.UniqueSteps, s.StepCoverage)

	delta, ok, err := store.LastDelta(ctx)
	if err != nil {
		return err
	}
	if ok {
		ui.DeltaLines(w, delta)
	}
	ui.Diagnostics(w, res.Report)
	return nil
}
