package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ahrav/judgestat/infrastructure/dataset"
	"github.com/ahrav/judgestat/internal/application"
	"github.com/ahrav/judgestat/internal/domain"
	"github.com/ahrav/judgestat/internal/ports"
	"github.com/ahrav/judgestat/internal/testutils"
)

// exampleSummary summarizes the three-record example dataset with the
// category x human_winner independence test.
func exampleSummary(t *testing.T) *domain.Summary {
	t.Helper()
	s, err := application.NewAggregationEngine().Summarize(testutils.ExampleDataset(), application.DefaultSummaryOptions())
	require.NoError(t, err)
	return s
}

func tableByName(t *testing.T, tables []Table, name string) Table {
	t.Helper()
	for _, tb := range tables {
		if tb.Name == name {
			return tb
		}
	}
	t.Fatalf("table %s not found", name)
	return Table{}
}

func TestBuildTables(t *testing.T) {
	s := exampleSummary(t)
	tables := BuildTables(s, DefaultAlpha)

	names := make([]string, len(tables))
	for i, tb := range tables {
		names[i] = tb.Name
	}
	assert.Equal(t, []string{
		TableCategoryDistribution,
		TableOverallAgreement,
		TableAgreementByCategory,
		TableDecisionMatrix,
		TableWinnerDistribution,
		TableJudgeLabels,
		TableIndependence,
	}, names)

	cat := tableByName(t, tables, TableCategoryDistribution)
	require.Len(t, cat.Rows, 2)
	assert.Equal(t, "Open-ended", cat.Rows[0][0])
	assert.Equal(t, 2, cat.Rows[0][1])
	assert.InDelta(t, 200.0/3, cat.Rows[0][2], 1e-9)

	dm := tableByName(t, tables, TableDecisionMatrix)
	assert.Equal(t, []string{"Human \\ GPT", "A", "B"}, dm.Header)
	assert.Equal(t, [][]any{{"A", 1, 1}, {"B", 0, 1}}, dm.Rows)

	wd := tableByName(t, tables, TableWinnerDistribution)
	assert.Equal(t, []string{"Category", "A", "B"}, wd.Header)
	assert.Equal(t, [][]any{{"Closed-ended", 0.0, 100.0}, {"Open-ended", 100.0, 0.0}}, wd.Rows)

	labels := tableByName(t, tables, TableJudgeLabels)
	assert.Equal(t, [][]any{{"A", 2, 1}, {"B", 1, 2}}, labels.Rows)
}

func TestBuildTables_WithoutIndependence(t *testing.T) {
	s := exampleSummary(t)
	s.Independence = nil

	tables := BuildTables(s, DefaultAlpha)
	assert.Len(t, tables, 6)
	for _, tb := range tables {
		assert.NotEqual(t, TableIndependence, tb.Name)
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		exact bool
		want  string
	}{
		{name: "string", in: "Open-ended", want: "Open-ended"},
		{name: "int", in: 42, want: "42"},
		{name: "float rounded", in: 66.666666, want: "66.67"},
		{name: "float exact", in: 0.1875, exact: true, want: "0.1875"},
		{name: "tiny float", in: 2.151786437812016e-05, want: "2.152e-05"},
		{name: "zero float", in: 0.0, want: "0.00"},
		{name: "bool", in: true, want: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in, tt.exact))
		})
	}
}

func TestLongRows(t *testing.T) {
	rows := LongRows([]Table{{
		Name:   "t",
		Header: []string{"Category", "Count", "Percentage"},
		Rows:   [][]any{{"Open-ended", 2, 200.0 / 3}},
	}})
	assert.Equal(t, [][]string{
		{"t", "Open-ended", "Count", "2"},
		{"t", "Open-ended", "Percentage", "66.66666666666667"},
	}, rows)
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(WithWriter(&buf))

	arts, err := r.Report(context.Background(), exampleSummary(t))
	require.NoError(t, err)
	assert.Nil(t, arts)
	assert.Equal(t, "console", r.Name())

	out := buf.String()
	for _, want := range []string{
		"## Category Distribution",
		"## Agreement by Category",
		"## Decision Matrix",
		"## Chi-square Test (category x human_winner)",
		"Open-ended",
		"66.67",
		"0.67",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPNGReporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	r := NewPNGReporter(dir)

	arts, err := r.Report(context.Background(), exampleSummary(t))
	require.NoError(t, err)
	require.Len(t, arts, 4)

	wantNames := []string{"category_distribution", "agreement_rates", "winner_distribution", "decision_matrix"}
	for i, a := range arts {
		assert.Equal(t, wantNames[i], a.Name)
		assert.Equal(t, "image/png", a.ContentType)
		info, err := os.Stat(a.Path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestDecisionHeatmap_Orientation(t *testing.T) {
	s := exampleSummary(t)
	m := s.DecisionMatrix.ContingencyTable

	p, err := decisionHeatmap(s)
	require.NoError(t, err)

	assert.InDelta(t, -0.5, p.Y.Min, 1e-9)
	assert.InDelta(t, float64(len(m.Rows))-0.5, p.Y.Max, 1e-9)
	assert.InDelta(t, -0.5, p.X.Min, 1e-9)
	assert.InDelta(t, float64(len(m.Cols))-0.5, p.X.Max, 1e-9)

	grid := countGrid{m: m}
	assert.Less(t, grid.Y(0), grid.Y(1), "grid rows must count up")
	// Human "A" is the first table row and sits on the top grid row.
	assert.Equal(t, "A", grid.row(1))
	assert.Equal(t, "B", grid.row(0))
	assert.InDelta(t, 1, grid.Z(0, 1), 1e-9, "A/A")
	assert.InDelta(t, 0, grid.Z(0, 0), 1e-9, "B/A")
	assert.InDelta(t, 1, grid.Z(1, 0), 1e-9, "B/B")
}

func TestHTMLReporter(t *testing.T) {
	dir := t.TempDir()
	arts, err := NewHTMLReporter(dir).Report(context.Background(), exampleSummary(t))
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, filepath.Join(dir, HTMLReportFile), arts[0].Path)

	body, err := os.ReadFile(arts[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Human vs GPT Decision Matrix")
	assert.Contains(t, string(body), "Distribution of Question Categories")
}

func TestExcelReporter(t *testing.T) {
	dir := t.TempDir()
	arts, err := NewExcelReporter(dir, DefaultAlpha).Report(context.Background(), exampleSummary(t))
	require.NoError(t, err)
	require.Len(t, arts, 1)

	f, err := excelize.OpenFile(arts[0].Path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.NotContains(t, sheets, defaultSheet)
	assert.Contains(t, sheets, TableDecisionMatrix)

	v, err := f.GetCellValue(TableDecisionMatrix, "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	v, err = f.GetCellValue(TableCategoryDistribution, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Open-ended", v)
}

func TestCSVReporter(t *testing.T) {
	dir := t.TempDir()
	r := NewCSVReporter(dataset.NewCSVWriter(dir), "summary", DefaultAlpha)

	arts, err := r.Report(context.Background(), exampleSummary(t))
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, filepath.Join(dir, "summary.csv"), arts[0].Path)

	f, err := os.Open(arts[0].Path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, csvHeader, rows[0])
	assert.Contains(t, rows, []string{TableDecisionMatrix, "A", "B", "1"})

	var stat string
	for _, row := range rows {
		if row[0] == TableIndependence && row[1] == "Chi-square statistic" {
			stat = row[3]
		}
	}
	got, err := strconv.ParseFloat(stat, 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.1875, got, 1e-9)
}

func TestReporters_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()

	reporters := []ports.Reporter{
		NewConsoleReporter(WithWriter(&bytes.Buffer{})),
		NewPNGReporter(dir),
		NewHTMLReporter(dir),
		NewExcelReporter(dir, DefaultAlpha),
		NewCSVReporter(dataset.NewCSVWriter(dir), "", DefaultAlpha),
	}
	for _, r := range reporters {
		t.Run(r.Name(), func(t *testing.T) {
			_, err := r.Report(ctx, exampleSummary(t))
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestReporter_RenderErrorOnBadDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := NewPNGReporter(filepath.Join(blocker, "charts")).Report(context.Background(), exampleSummary(t))
	var renderErr *ports.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "png", renderErr.Reporter)
}

func TestForConfig(t *testing.T) {
	cfg := application.DefaultAnalysisConfig()
	cfg.Output.Dir = t.TempDir()

	reporters, err := ForConfig(&cfg, &bytes.Buffer{})
	require.NoError(t, err)

	names := make([]string, len(reporters))
	for i, r := range reporters {
		names[i] = r.Name()
	}
	assert.Equal(t, application.AllFormats, names)

	cfg.Output.Formats = []string{"pdf"}
	_, err = ForConfig(&cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown report format "pdf"`)
}
