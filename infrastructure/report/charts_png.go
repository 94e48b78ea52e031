package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
)

// PNG chart file names.
const (
	ChartCategoryDistribution = "category_distribution.png"
	ChartAgreementRates       = "agreement_rates.png"
	ChartWinnerDistribution   = "winner_distribution.png"
	ChartDecisionMatrix       = "decision_matrix.png"
)

const contentTypePNG = "image/png"

// PNGReporter draws the summary as static charts.
type PNGReporter struct {
	dir    string
	width  vg.Length
	height vg.Length
}

// NewPNGReporter creates a reporter writing into dir.
func NewPNGReporter(dir string) *PNGReporter {
	return &PNGReporter{dir: dir, width: 10 * vg.Inch, height: 6 * vg.Inch}
}

func (r *PNGReporter) Name() string { return "png" }

// Report writes one PNG per chart and returns them as artifacts.
func (r *PNGReporter) Report(ctx context.Context, summary *domain.Summary) ([]ports.Artifact, error) {
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return nil, ports.NewRenderError(r.Name(), r.dir, err)
	}

	charts := []struct {
		file  string
		build func(*domain.Summary) (*plot.Plot, error)
	}{
		{ChartCategoryDistribution, categoryChart},
		{ChartAgreementRates, agreementChart},
		{ChartWinnerDistribution, winnerChart},
		{ChartDecisionMatrix, decisionHeatmap},
	}

	artifacts := make([]ports.Artifact, 0, len(charts))
	for _, c := range charts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := c.build(summary)
		if err != nil {
			return nil, ports.NewRenderError(r.Name(), c.file, err)
		}
		path := filepath.Join(r.dir, c.file)
		if err := p.Save(r.width, r.height, path); err != nil {
			return nil, ports.NewRenderError(r.Name(), c.file, fmt.Errorf("save: %w", err))
		}
		artifacts = append(artifacts, ports.Artifact{
			Name:        artifactName(c.file),
			Path:        path,
			ContentType: contentTypePNG,
		})
	}
	return artifacts, nil
}

func categoryChart(s *domain.Summary) (*plot.Plot, error) {
	labels := s.CategoryDistribution.Labels()
	vals := make(plotter.Values, len(labels))
	for i, l := range labels {
		vals[i] = s.CategoryDistribution[l]
	}

	p := plot.New()
	p.Title.Text = "Distribution of Question Categories"
	p.Y.Label.Text = "Percentage (%)"
	p.Y.Min, p.Y.Max = 0, 100

	bars, err := plotter.NewBarChart(vals, vg.Points(40))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(labels...)

	pct, err := valueLabels(vals, 0, "%.1f%%")
	if err != nil {
		return nil, err
	}
	p.Add(pct)
	return p, nil
}

func agreementChart(s *domain.Summary) (*plot.Plot, error) {
	cats := s.AgreementByCategory.Categories()
	agree := make(plotter.Values, len(cats))
	disagree := make(plotter.Values, len(cats))
	for i, c := range cats {
		agree[i] = s.AgreementByCategory[c].AgreePct
		disagree[i] = s.AgreementByCategory[c].DisagreePct
	}

	p := plot.New()
	p.Title.Text = "Human-GPT Agreement by Category"
	p.Y.Label.Text = "Percentage (%)"
	p.Y.Min, p.Y.Max = 0, 100

	w := vg.Points(24)
	for i, series := range []struct {
		name string
		vals plotter.Values
	}{{"Agree", agree}, {"Disagree", disagree}} {
		bars, err := plotter.NewBarChart(series.vals, w)
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(i + 1)
		bars.Offset = vg.Length(2*i-1) * w / 2
		p.Add(bars)
		p.Legend.Add(series.name, bars)
	}
	p.Legend.Top = true
	p.NominalX(cats...)
	return p, nil
}

func winnerChart(s *domain.Summary) (*plot.Plot, error) {
	cats := s.WinnerDistribution.Categories()
	labels := s.WinnerDistribution.Labels()

	p := plot.New()
	p.Title.Text = "Human Winner Distribution by Category"
	p.Y.Label.Text = "Percentage (%)"
	p.Y.Min, p.Y.Max = 0, 100

	var below *plotter.BarChart
	for i, l := range labels {
		vals := make(plotter.Values, len(cats))
		for j, c := range cats {
			vals[j] = s.WinnerDistribution[c][l]
		}
		bars, err := plotter.NewBarChart(vals, vg.Points(40))
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(i)
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(l, bars)
		below = bars
	}
	p.Legend.Top = true
	p.NominalX(cats...)
	return p, nil
}

func decisionHeatmap(s *domain.Summary) (*plot.Plot, error) {
	m := s.DecisionMatrix.ContingencyTable
	if m == nil || len(m.Rows) == 0 || len(m.Cols) == 0 {
		return nil, fmt.Errorf("decision matrix is empty")
	}
	grid := countGrid{m: m}

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if hm.Max == hm.Min {
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = "Human vs GPT Decision Matrix"
	p.X.Label.Text = "GPT decision"
	p.Y.Label.Text = "Human decision"
	p.Add(hm)

	var cells plotter.XYLabels
	for r := range len(m.Rows) {
		for c := range m.Cols {
			cells.XYs = append(cells.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			cells.Labels = append(cells.Labels, fmt.Sprint(grid.Z(c, r)))
		}
	}
	counts, err := plotter.NewLabels(cells)
	if err != nil {
		return nil, err
	}
	p.Add(counts)

	p.NominalX(m.Cols...)
	rows := make([]string, len(m.Rows))
	for r := range rows {
		rows[r] = grid.row(r)
	}
	p.NominalY(rows...)

	p.X.Min, p.X.Max = -0.5, float64(len(m.Cols))-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(len(m.Rows))-0.5
	return p, nil
}

// countGrid exposes a contingency table as a heat map grid. Grid rows count
// up from the bottom while table rows count down, so grid row r holds table
// row n-1-r and the first table row is drawn at the top.
type countGrid struct{ m *domain.ContingencyTable }

func (g countGrid) Dims() (c, r int)   { return len(g.m.Cols), len(g.m.Rows) }
func (g countGrid) Z(c, r int) float64 { return float64(g.m.Counts[g.tableRow(r)][c]) }
func (g countGrid) X(c int) float64    { return float64(c) }
func (g countGrid) Y(r int) float64    { return float64(r) }

func (g countGrid) tableRow(r int) int { return len(g.m.Rows) - 1 - r }
func (g countGrid) row(r int) string   { return g.m.Rows[g.tableRow(r)] }

// valueLabels places a formatted label above each bar of a single series.
func valueLabels(vals plotter.Values, offset float64, format string) (*plotter.Labels, error) {
	var l plotter.XYLabels
	for i, v := range vals {
		l.XYs = append(l.XYs, plotter.XY{X: float64(i) + offset, Y: v})
		l.Labels = append(l.Labels, fmt.Sprintf(format, v))
	}
	return plotter.NewLabels(l)
}

// artifactName strips the extension from a file name.
func artifactName(file string) string {
	return file[:len(file)-len(filepath.Ext(file))]
}
