package cmd

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepcov/internal/config"
	"github.com/chriserin/stepcov/internal/coverage"
	"github.com/chriserin/stepcov/internal/parser"
	"github.com/chriserin/stepcov/internal/ui"
)

var rawFlag bool

var showCmd = &cobra.Command{
	Use:   "show <feature>",
	Short: "Show a feature by path or name with per-step coverage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunShow(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], rawFlag)
	},
}

func init() {
	showCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the feature source of each scenario instead of coverage marks")
	rootCmd.AddCommand(showCmd)
}

func RunShow(ctx context.Context, w io.Writer, c config.Config, ref string, raw bool) error {
	res, err := runPipeline(ctx, c, false, nil)
	if err != nil {
		return err
	}

	f := findFeature(res.Discovery.Features, ref)
	if f == nil {
		return fmt.Errorf("feature %q not found", ref)
	}

	covered := make(map[string]bool, len(res.Coverage.Steps))
	for _, s := range res.Coverage.Steps {
		covered[s.Text] = s.Covered
	}

	ui.ShowHeader(w, f)
	for i, sc := range f.Scenarios {
		if raw {
			fmt.Fprintln(w)
			ui.ShowGherkin(w, parser.ScenarioSource(f, i))
			continue
		}
		ui.ShowScenario(w, sc, func(st parser.Step) bool {
			return covered[coverage.StepText(st)]
		})
	}
	return nil
}

// findFeature matches ref against the relative path, the file name (with or
// without extension) and then the feature name, case-insensitively.
func findFeature(features []*parser.Feature, ref string) *parser.Feature {
	ref = strings.TrimPrefix(strings.ReplaceAll(ref, "\\", "/"), "./")
	for _, f := range features {
		base := path.Base(f.Path)
		if f.Path == ref || base == ref || strings.TrimSuffix(base, path.Ext(base)) == ref {
			return f
		}
	}
	for _, f := range features {
		if strings.EqualFold(f.Name, ref) {
			return f
		}
	}
	return nil
}
