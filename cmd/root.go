package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepcov/internal/config"
	"github.com/chriserin/stepcov/internal/logging"
	"github.com/chriserin/stepcov/internal/metrics"
	"github.com/chriserin/stepcov/internal/pipeline"
)

var (
	cfgFile      string
	rootFlag     string
	logLevelFlag string

	// cfg is loaded once per invocation by the root command.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:           "stepcov",
	Short:         "stepcov: step definition coverage for Gherkin features",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("root") {
			loaded.Root = rootFlag
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level = logLevelFlag
		}
		cfg = loaded

		logging.Init(logging.ParseLevel(cfg.Log.Level), cmd.ErrOrStderr())
		if cfg.File != "" {
			logging.Debug("cli", "using config file %s", cfg.File)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./stepcov.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "project root to scan")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "log level: debug, info, warn or error")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// runPipeline runs the pipeline with the settings in c.
func runPipeline(ctx context.Context, c config.Config, simulate bool, m *metrics.Metrics) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, pipeline.Options{
		Discovery:         c.DiscoveryOptions(),
		Simulate:          simulate,
		SampleSize:        c.Simulate.SampleSize,
		UntimedSimulation: !c.Simulate.MeasureDurations,
		Thresholds:        c.Thresholds(),
		Metrics:           m,
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", c.Root, err)
	}
	return res, nil
}

// requireInit fails with a hint when `stepcov init` has not been run.
func requireInit(c config.Config) error {
	if _, err := os.Stat(c.StateDir()); os.IsNotExist(err) {
		return fmt.Errorf("run `stepcov init` first")
	}
	return nil
}
