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

var limitFlag int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded runs and what changed since the previous one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunStatus(cmd.Context(), cmd.OutOrStdout(), cfg, limitFlag)
	},
}

func init() {
	statusCmd.Flags().IntVarP(&limitFlag, "limit", "n", 10, "number of runs to show (0 for all)")
	rootCmd.AddCommand(statusCmd)
}

func RunStatus(ctx context.Context, w io.Writer, c config.Config, limit int) error {
	if err := requireInit(c); err != nil {
		return err
	}

	store, err := history.Open(c.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	all, err := store.Runs(ctx, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Runs: %d\n", len(all))
	if len(all) == 0 {
		return nil
	}

	shown := all
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, r := range shown {
		ui.RunRow(w, r)
	}

	delta, ok, err := store.LastDelta(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Since previous run:")
		ui.DeltaLines(w, delta)
	}
	return nil
}
