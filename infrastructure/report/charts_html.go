package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

// HTMLReportFile is the interactive chart page written by HTMLReporter.
const HTMLReportFile = "report.html"

const contentTypeHTML = "text/html; charset=utf-8"

// heatColors runs from light to dark for increasing counts.
var heatColors = []string{"#f7fbff", "#c6dbef", "#6baed6", "#2171b5", "#08306b"}

// HTMLReporter renders the summary as a single interactive page.
type HTMLReporter struct {
	dir        string
	assetsHost string
}

// HTMLOption configures an HTMLReporter.
type HTMLOption func(*HTMLReporter)

// WithAssetsHost serves the echarts scripts from host instead of the
// default CDN, for offline viewing.
func WithAssetsHost(host string) HTMLOption {
	return func(r *HTMLReporter) { r.assetsHost = host }
}

// NewHTMLReporter creates a reporter writing report.html into dir.
func NewHTMLReporter(dir string, opts ...HTMLOption) *HTMLReporter {
	r := &HTMLReporter{dir: dir}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *HTMLReporter) Name() string { return "html" }

// Report writes the page and returns it as a single artifact.
func (r *HTMLReporter) Report(ctx context.Context, summary *domain.Summary) ([]ports.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return nil, ports.NewRenderError(r.Name(), r.dir, err)
	}

	page := components.NewPage()
	page.PageTitle = "Human vs GPT Judgment Analysis"
	if r.assetsHost != "" {
		page.SetAssetsHost(r.assetsHost)
	}
	page.AddCharts(
		agreementPie(summary),
		categoryBar(summary),
		agreementBars(summary),
		winnerStack(summary),
		decisionHeat(summary),
	)

	path := filepath.Join(r.dir, HTMLReportFile)
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, ports.NewRenderError(r.Name(), HTMLReportFile, err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return nil, ports.NewRenderError(r.Name(), HTMLReportFile, fmt.Errorf("render: %w", err))
	}
	if err := f.Close(); err != nil {
		return nil, ports.NewRenderError(r.Name(), HTMLReportFile, err)
	}

	return []ports.Artifact{{
		Name:        artifactName(HTMLReportFile),
		Path:        path,
		ContentType: contentTypeHTML,
	}}, nil
}

func baseOpts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	}
}

func agreementPie(s *domain.Summary) *charts.Pie {
	a := s.OverallAgreement
	pie := charts.NewPie()
	pie.SetGlobalOptions(baseOpts("Overall Human-GPT Agreement", fmt.Sprintf("n=%d", s.Records))...)
	pie.AddSeries("agreement", []opts.PieData{
		{Name: "Agree", Value: a.Agreed},
		{Name: "Disagree", Value: a.Disagreed()},
	}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}))
	return pie
}

func categoryBar(s *domain.Summary) *charts.Bar {
	labels := s.CategoryDistribution.Labels()
	data := make([]opts.BarData, len(labels))
	for i, l := range labels {
		data[i] = opts.BarData{Value: round2(s.CategoryDistribution[l])}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOpts("Distribution of Question Categories", "percentage of records")...)
	bar.SetXAxis(labels).
		AddSeries("share", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

func agreementBars(s *domain.Summary) *charts.Bar {
	cats := s.AgreementByCategory.Categories()
	agree := make([]opts.BarData, len(cats))
	disagree := make([]opts.BarData, len(cats))
	for i, c := range cats {
		agree[i] = opts.BarData{Value: round2(s.AgreementByCategory[c].AgreePct)}
		disagree[i] = opts.BarData{Value: round2(s.AgreementByCategory[c].DisagreePct)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOpts("Human-GPT Agreement by Category", "percentage of records in category")...)
	bar.SetXAxis(cats).
		AddSeries("Agree", agree).
		AddSeries("Disagree", disagree)
	return bar
}

func winnerStack(s *domain.Summary) *charts.Bar {
	cats := s.WinnerDistribution.Categories()
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOpts("Human Winner Distribution by Category", "percentage of records in category")...)
	bar.SetXAxis(cats)
	for _, l := range s.WinnerDistribution.Labels() {
		data := make([]opts.BarData, len(cats))
		for i, c := range cats {
			data[i] = opts.BarData{Value: round2(s.WinnerDistribution[c][l])}
		}
		bar.AddSeries(l, data, charts.WithBarChartOpts(opts.BarChart{Stack: "winner"}))
	}
	return bar
}

func decisionHeat(s *domain.Summary) *charts.HeatMap {
	hm := charts.NewHeatMap()
	m := s.DecisionMatrix.ContingencyTable
	if m == nil {
		hm.SetGlobalOptions(baseOpts("Human vs GPT Decision Matrix", "no data")...)
		return hm
	}

	var (
		data []opts.HeatMapData
		peak int
	)
	for r := range m.Rows {
		for c := range m.Cols {
			n := m.Counts[r][c]
			peak = max(peak, n)
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, n}})
		}
	}

	hm.SetGlobalOptions(append(baseOpts("Human vs GPT Decision Matrix", "rows: human, columns: GPT"),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: m.Cols, Name: "GPT"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Rows, Name: "Human"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max(peak, 1)),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)...)
	hm.SetXAxis(m.Cols).AddSeries("decisions", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return hm
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
