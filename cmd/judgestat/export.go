package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/judgestat/infrastructure/dataset"
	"github.com/ahrav/judgestat/infrastructure/report"
	"github.com/ahrav/judgestat/internal/application"
)

func newExportCmd() *cobra.Command {
	var (
		input  string
		outDir string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the derived tables to a single CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := application.DefaultAnalysisConfig()
			ind := cfg.Statistics.Independence

			p := application.NewPipeline(
				dataset.NewCSVSource(input),
				application.NewAggregationEngine(application.WithYatesCorrection(ind.YatesCorrection)),
				application.WithSummaryOptions(cfg.SummaryOptions()),
			)
			w := dataset.NewCSVWriter(outDir)
			if err := p.AddReporter(report.NewCSVReporter(w, name, ind.Alpha)); err != nil {
				return err
			}

			res, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range res.Artifacts {
				fmt.Fprintf(cmd.OutOrStdout(), "File successfully saved to: %s\n", a.Path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", dataset.DefaultInputPath, "judgment CSV")
	f.StringVarP(&outDir, "out", "o", dataset.DefaultOutputDir, "output directory")
	f.StringVarP(&name, "name", "n", "", "file name (default data_<timestamp>.csv)")
	return cmd
}
