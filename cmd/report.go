package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/stepcov/internal/config"
	"github.com/chriserin/stepcov/internal/logging"
	"github.com/chriserin/stepcov/internal/metrics"
	"github.com/chriserin/stepcov/internal/report"
	"github.com/chriserin/stepcov/internal/ui"
)

type reportOptions struct {
	Format      string
	Pretty      bool
	Simulate    bool
	Out         string
	MetricsFile string
}

var reportFlags reportOptions

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Scan the project and print the step coverage report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunReport(cmd.Context(), cmd.OutOrStdout(), cfg, reportFlags)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportFlags.Format, "format", "f", "", "output format: text, json, yaml or markdown (default from config)")
	reportCmd.Flags().BoolVar(&reportFlags.Pretty, "pretty", false, "render markdown for the terminal")
	reportCmd.Flags().BoolVar(&reportFlags.Simulate, "simulate", false, "include a simulated run of the first scenarios of each feature")
	reportCmd.Flags().StringVarP(&reportFlags.Out, "out", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().StringVar(&reportFlags.MetricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")
	rootCmd.AddCommand(reportCmd)
}

func RunReport(ctx context.Context, w io.Writer, c config.Config, opts reportOptions) error {
	formatName := opts.Format
	if formatName == "" {
		formatName = c.Report.Format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if opts.MetricsFile != "" {
		m = metrics.New()
	}

	res, err := runPipeline(ctx, c, opts.Simulate, m)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderReport(&buf, res.Report, format, opts.Pretty); err != nil {
		return err
	}

	if opts.MetricsFile != "" {
		if err := m.WriteTextfile(opts.MetricsFile); err != nil {
			return err
		}
		logging.Info("cli", "metrics written to %s", opts.MetricsFile)
	}

	if opts.Out == "" {
		_, err := w.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.Out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(w, "report written to %s\n", opts.Out)
	return nil
}

func renderReport(w io.Writer, rep *report.Report, format report.Format, pretty bool) error {
	switch format {
	case report.FormatJSON:
		return report.WriteJSON(w, rep)
	case report.FormatYAML:
		return report.WriteYAML(w, rep)
	case report.FormatMarkdown:
		md := report.Markdown(rep)
		if pretty {
			out, err := ui.RenderMarkdown(md)
			if err != nil {
				return err
			}
			md = out
		}
		_, err := io.WriteString(w, md)
		return err
	default:
		ui.Report(w, rep)
		return nil
	}
}
