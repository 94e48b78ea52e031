package main

import (
	"context"
	"fmt"
	"io"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ahrav/judgestat/infrastructure/dataset"
	"github.com/ahrav/judgestat/infrastructure/metrics"
	"github.com/ahrav/judgestat/infrastructure/report"
	"github.com/ahrav/judgestat/internal/application"
)

type analyzeOptions struct {
	configPath     string
	input          string
	outDir         string
	formats        []string
	runName        string
	track          bool
	trackDir       string
	noIndependence bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize a judgment CSV and render the configured reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	f.StringVarP(&opts.input, "input", "i", "", "judgment CSV (default "+dataset.DefaultInputPath+")")
	f.StringVarP(&opts.outDir, "out", "o", "", "directory for rendered reports")
	f.StringSliceVarP(&opts.formats, "format", "f", nil, "report formats: console, csv, png, html, xlsx")
	f.StringVar(&opts.runName, "run-name", "", "tracking run name (random when empty)")
	f.BoolVar(&opts.track, "track", false, "ship metrics and artifacts to the configured tracking sinks")
	f.StringVar(&opts.trackDir, "track-dir", "", "mirror tracked metrics and artifacts into this directory")
	f.BoolVar(&opts.noIndependence, "no-independence", false, "skip the chi-square independence test")
	return cmd
}

// resolveConfig loads the config file, or the defaults, then applies flag
// overrides and validates the result.
func resolveConfig(ctx context.Context, opts analyzeOptions) (*application.AnalysisConfig, error) {
	loader, err := application.NewConfigLoader()
	if err != nil {
		return nil, err
	}

	cfg := application.DefaultAnalysisConfig()
	if opts.configPath != "" {
		loaded, err := loader.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if opts.input != "" {
		cfg.Input.Path = opts.input
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if len(opts.formats) > 0 {
		cfg.Output.Formats = opts.formats
	}
	if opts.runName != "" {
		cfg.Run.Name = opts.runName
	}
	if opts.track {
		cfg.Tracking.Enabled = true
	}
	if opts.trackDir != "" {
		cfg.Tracking.LocalDir = opts.trackDir
	}
	if opts.noIndependence {
		cfg.Statistics.Independence.Enabled = false
	}
	if cfg.Run.Name == "" {
		cfg.Run.Name = "judge-analysis-" + uuid.NewString()[:8]
	}

	if err := loader.Validate(&cfg); err != nil {
		return nil, err
	}
	if err := application.LoadCredentials(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// runAnalyze wires the pipeline from cfg and runs it once.
func runAnalyze(ctx context.Context, cfg *application.AnalysisConfig, stdout io.Writer) error {
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("project", cfg.Run.Project, "run", cfg.Run.Name))

	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheusMetrics(reg)

	engine := application.NewAggregationEngine(
		application.WithYatesCorrection(cfg.Statistics.Independence.YatesCorrection))

	pipelineOpts := []application.PipelineOption{
		application.WithSummaryOptions(cfg.SummaryOptions()),
		application.WithMetricsCollector(collector),
		application.WithRunInfo(cfg.Run.Project, cfg.Run.Name),
	}
	if cfg.Tracking.Enabled {
		tracker, err := buildTracker(ctx, cfg.Tracking, collector, reg)
		if err != nil {
			return fmt.Errorf("configure tracking: %w", err)
		}
		clog.FromContext(ctx).Info("tracking enabled", "sinks", tracker.Sinks())
		pipelineOpts = append(pipelineOpts, application.WithMetricsLogger(tracker))
	}

	p := application.NewPipeline(dataset.NewCSVSource(cfg.Input.Path), engine, pipelineOpts...)

	reporters, err := report.ForConfig(cfg, stdout)
	if err != nil {
		return err
	}
	for _, r := range reporters {
		if err := p.AddReporter(r); err != nil {
			return err
		}
	}

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	clog.InfoContextf(ctx, "analyzed %d records: agreement %.2f%%, %d artifacts in %s",
		res.Summary.Records, res.Summary.OverallAgreement.AgreePct, len(res.Artifacts), cfg.Output.Dir)
	return nil
}
