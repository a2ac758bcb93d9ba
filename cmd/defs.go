package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepcov/internal/config"
	"github.com/chriserin/stepcov/internal/report"
	"github.com/chriserin/stepcov/internal/ui"
)

var unusedFlag bool

var defsCmd = &cobra.Command{
	Use:   "defs",
	Short: "List step definitions with their location and usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunDefs(cmd.Context(), cmd.OutOrStdout(), cfg, unusedFlag)
	},
}

func init() {
	defsCmd.Flags().BoolVar(&unusedFlag, "unused", false, "Show only definitions that match no step")
	rootCmd.AddCommand(defsCmd)
}

func RunDefs(ctx context.Context, w io.Writer, c config.Config, unusedOnly bool) error {
	res, err := runPipeline(ctx, c, false, nil)
	if err != nil {
		return err
	}

	rows := res.Report.StepDefinitions
	if unusedOnly {
		rows = res.Report.UnusedDefinitions()
	}

	if len(rows) == 0 {
		if unusedOnly {
			fmt.Fprintln(w, "no unused step definitions")
		} else {
			fmt.Fprintln(w, "no step definitions found")
		}
		return nil
	}

	patternWidth := 0
	for _, d := range rows {
		patternWidth = max(patternWidth, len(d.Pattern))
	}
	for _, d := range rows {
		ui.DefRow(w, d.Keyword, d.Pattern, location(d), d.UsageCount, patternWidth)
	}

	fmt.Fprintf(w, "\n%d definitions, %d unused\n", len(res.Report.StepDefinitions), len(res.Report.UnusedDefinitions()))
	return nil
}

func location(d report.DefinitionDetail) string {
	return fmt.Sprintf("%s:%d", d.File, d.Line)
}
