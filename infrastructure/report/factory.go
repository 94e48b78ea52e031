package report

import (
	"fmt"
	"io"

	"github.com/ahrav/judgestat/infrastructure/dataset"
	"github.com/ahrav/judgestat/internal/application"
	"github.com/ahrav/judgestat/internal/ports"
)

// ForConfig builds one reporter per configured output format, in the
// order the formats are listed. Console output goes to out.
func ForConfig(cfg *application.AnalysisConfig, out io.Writer) ([]ports.Reporter, error) {
	alpha := cfg.Statistics.Independence.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	dir := cfg.Output.Dir

	reporters := make([]ports.Reporter, 0, len(cfg.Output.Formats))
	for _, format := range cfg.Output.Formats {
		var r ports.Reporter
		switch format {
		case application.FormatConsole:
			r = NewConsoleReporter(WithWriter(out), WithAlpha(alpha))
		case application.FormatPNG:
			r = NewPNGReporter(dir)
		case application.FormatHTML:
			r = NewHTMLReporter(dir)
		case application.FormatXLSX:
			r = NewExcelReporter(dir, alpha)
		case application.FormatCSV:
			r = NewCSVReporter(dataset.NewCSVWriter(dir), "", alpha)
		default:
			return nil, fmt.Errorf("unknown report format %q", format)
		}
		reporters = append(reporters, r)
	}
	return reporters, nil
}
