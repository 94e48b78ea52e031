// Package report renders aggregation summaries as console tables, charts,
// spreadsheets and CSV files. Every reporter implements ports.Reporter.
package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ahrav/judgestat/internal/domain"
)

// DefaultAlpha is the significance level used to flag independence results.
const DefaultAlpha = 0.05

// Table names. They double as sheet names and artifact keys.
const (
	TableCategoryDistribution = "category_distribution"
	TableOverallAgreement     = "overall_agreement"
	TableAgreementByCategory  = "agreement_by_category"
	TableDecisionMatrix       = "decision_matrix"
	TableWinnerDistribution   = "winner_distribution"
	TableJudgeLabels          = "judge_labels"
	TableIndependence         = "independence_test"
)

// Table is one derived view laid out as rows of typed cells. Cells hold
// strings, ints, float64s or bools so spreadsheet writers keep numeric types.
type Table struct {
	Name   string
	Title  string
	Header []string
	Rows   [][]any
}

// BuildTables lays out every view of a summary in display order. The
// independence table is included only when the summary carries a result.
func BuildTables(s *domain.Summary, alpha float64) []Table {
	tables := []Table{
		categoryTable(s),
		overallTable(s),
		agreementTable(s),
		decisionTable(s),
		winnerTable(s),
		judgeLabelTable(s),
	}
	if s.Independence != nil {
		tables = append(tables, independenceTable(s.Independence, alpha))
	}
	return tables
}

func categoryTable(s *domain.Summary) Table {
	t := Table{
		Name:   TableCategoryDistribution,
		Title:  "Category Distribution",
		Header: []string{"Category", "Count", "Percentage"},
	}
	for _, cat := range s.CategoryDistribution.Labels() {
		t.Rows = append(t.Rows, []any{cat, s.CategoryCounts[cat], s.CategoryDistribution[cat]})
	}
	return t
}

func overallTable(s *domain.Summary) Table {
	a := s.OverallAgreement
	return Table{
		Name:   TableOverallAgreement,
		Title:  "Overall Agreement",
		Header: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Records", s.Records},
			{"Agreed", a.Agreed},
			{"Disagreed", a.Disagreed()},
			{"Agreement %", a.AgreePct},
			{"Disagreement %", a.DisagreePct},
			{"Cohen's kappa", s.CohenKappa},
		},
	}
}

func agreementTable(s *domain.Summary) Table {
	t := Table{
		Name:   TableAgreementByCategory,
		Title:  "Agreement by Category",
		Header: []string{"Category", "Total", "Agreed", "Disagreed", "Agreement %", "Disagreement %"},
	}
	for _, cat := range s.AgreementByCategory.Categories() {
		a := s.AgreementByCategory[cat]
		t.Rows = append(t.Rows, []any{cat, a.Total, a.Agreed, a.Disagreed(), a.AgreePct, a.DisagreePct})
	}
	return t
}

func decisionTable(s *domain.Summary) Table {
	t := Table{Name: TableDecisionMatrix, Title: "Decision Matrix (human rows, GPT columns)"}
	m := s.DecisionMatrix.ContingencyTable
	if m == nil {
		t.Header = []string{"Human \\ GPT"}
		return t
	}
	t.Header = append([]string{"Human \\ GPT"}, m.Cols...)
	for i, row := range m.Rows {
		cells := []any{row}
		for j := range m.Cols {
			cells = append(cells, m.Counts[i][j])
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func winnerTable(s *domain.Summary) Table {
	labels := s.WinnerDistribution.Labels()
	t := Table{
		Name:   TableWinnerDistribution,
		Title:  "Human Winner Distribution by Category (%)",
		Header: append([]string{"Category"}, labels...),
	}
	for _, cat := range s.WinnerDistribution.Categories() {
		cells := []any{cat}
		for _, l := range labels {
			cells = append(cells, s.WinnerDistribution[cat][l])
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func judgeLabelTable(s *domain.Summary) Table {
	labels := make(domain.LabelCounts)
	for l, n := range s.HumanLabelCounts {
		labels[l] += n
	}
	for l, n := range s.GPTLabelCounts {
		labels[l] += n
	}
	t := Table{
		Name:   TableJudgeLabels,
		Title:  "Votes per Judge",
		Header: []string{"Label", "Human", "GPT"},
	}
	for _, l := range labels.Labels() {
		t.Rows = append(t.Rows, []any{l, s.HumanLabelCounts[l], s.GPTLabelCounts[l]})
	}
	return t
}

func independenceTable(r *domain.IndependenceResult, alpha float64) Table {
	return Table{
		Name:   TableIndependence,
		Title:  fmt.Sprintf("Chi-square Test (%s x %s)", r.ColumnA, r.ColumnB),
		Header: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Chi-square statistic", r.Statistic},
			{"p-value", r.PValue},
			{"Degrees of freedom", r.DegreesOfFreedom},
			{"Yates corrected", r.YatesCorrected},
			{fmt.Sprintf("Significant at %g", alpha), r.Significant(alpha)},
		},
	}
}

// formatCell renders a cell for text output. Floats get two decimals, or
// scientific notation when tiny, unless exact is set, in which case the
// shortest round-trip form is used.
func formatCell(v any, exact bool) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		switch {
		case exact:
			return strconv.FormatFloat(x, 'g', -1, 64)
		case x != 0 && math.Abs(x) < 0.01:
			return strconv.FormatFloat(x, 'e', 3, 64)
		default:
			return strconv.FormatFloat(x, 'f', 2, 64)
		}
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatRow(cells []any, exact bool) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = formatCell(c, exact)
	}
	return out
}
