package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepcov/internal/config"
	"github.com/chriserin/stepcov/internal/coverage"
	"github.com/chriserin/stepcov/internal/ui"
)

var (
	missingFlag bool
	matchedFlag bool
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List unique steps with their coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSteps(cmd.Context(), cmd.OutOrStdout(), cfg, missingFlag, matchedFlag)
	},
}

func init() {
	stepsCmd.Flags().BoolVar(&missingFlag, "missing", false, "Show only steps without a definition")
	stepsCmd.Flags().BoolVar(&matchedFlag, "matched", false, "Show only steps with a definition")
	stepsCmd.MarkFlagsMutuallyExclusive("missing", "matched")
	rootCmd.AddCommand(stepsCmd)
}

func RunSteps(ctx context.Context, w io.Writer, c config.Config, missingOnly, matchedOnly bool) error {
	res, err := runPipeline(ctx, c, false, nil)
	if err != nil {
		return err
	}
	defs := res.Set.Definitions()

	var rows []coverage.StepCoverage
	for _, s := range res.Coverage.Steps {
		if missingOnly && s.Covered {
			continue
		}
		if matchedOnly && !s.Covered {
			continue
		}
		rows = append(rows, s)
	}

	if len(rows) == 0 {
		return nil
	}

	textWidth := 0
	for _, r := range rows {
		textWidth = max(textWidth, len(r.Text))
	}

	for _, r := range rows {
		detail := fmt.Sprintf("%s:%d", r.Feature, r.Line)
		if r.Covered {
			detail = defs[r.Definition].Location()
		}
		ui.StepRow(w, r.Covered, r.Text, detail, textWidth)
	}

	if !missingOnly && !matchedOnly {
		fmt.Fprintln(w)
		ui.CoverageLine(w, res.Coverage.MatchedCount, res.Coverage.TotalUniqueSteps, res.Coverage.CoveragePercent)
	}
	return nil
}
