package application

import (
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/ahrav/judgestat/internal/domain"
)

// AggregationEngine transforms a JudgmentDataset into derived statistical
// views: category shares, judge agreement, decision matrices, winner
// distributions and independence tests.
//
// Every method is a pure function of its dataset argument. The engine holds
// only immutable options, so one instance can be shared freely and repeated
// calls with the same dataset return identical results.
type AggregationEngine struct {
	// yates enables the continuity correction for 2x2 independence tests.
	yates bool
}

// EngineOption configures an AggregationEngine.
type EngineOption func(*AggregationEngine)

// WithYatesCorrection toggles Yates' continuity correction, which is applied
// only when a contingency table has one degree of freedom.
func WithYatesCorrection(enabled bool) EngineOption {
	return func(e *AggregationEngine) { e.yates = enabled }
}

// NewAggregationEngine creates an engine. Yates' correction is enabled by
// default.
func NewAggregationEngine(opts ...EngineOption) *AggregationEngine {
	e := &AggregationEngine{yates: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CategoryDistribution returns each category's share of all records as a
// percentage. It fails with domain.ErrEmptyDataset for an empty dataset.
func (e *AggregationEngine) CategoryDistribution(ds *domain.JudgmentDataset) (domain.CategoryDistribution, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("category distribution: %w", domain.ErrEmptyDataset)
	}

	counts, err := e.LabelCounts(ds, domain.ColumnCategory)
	if err != nil {
		return nil, err
	}

	total := float64(ds.Len())
	dist := make(domain.CategoryDistribution, len(counts))
	for cat, n := range counts {
		dist[cat] = float64(n) / total * 100
	}
	return dist, nil
}

// LabelCounts counts the records holding each value of the given column.
// Only observed values appear as keys.
func (e *AggregationEngine) LabelCounts(ds *domain.JudgmentDataset, col domain.Column) (domain.LabelCounts, error) {
	vals, err := ds.Column(col)
	if err != nil {
		return nil, err
	}
	counts := make(domain.LabelCounts)
	for _, v := range vals {
		counts[v]++
	}
	return counts, nil
}

// Agreement counts how many records have matching human and model winners.
// Labels are compared with exact string equality; any non-empty label is a
// valid vote.
func (e *AggregationEngine) Agreement(ds *domain.JudgmentDataset) (domain.Agreement, error) {
	if ds.Len() == 0 {
		return domain.Agreement{}, fmt.Errorf("agreement: %w", domain.ErrEmptyDataset)
	}
	agreed := 0
	for i := 0; i < ds.Len(); i++ {
		if ds.At(i).Agrees() {
			agreed++
		}
	}
	return domain.NewAgreement(agreed, ds.Len()), nil
}

// AgreementRate returns the percentage of records, in [0, 100], on which
// both judges agree.
func (e *AggregationEngine) AgreementRate(ds *domain.JudgmentDataset) (float64, error) {
	a, err := e.Agreement(ds)
	if err != nil {
		return 0, err
	}
	return a.AgreePct, nil
}

// CategoryAgreementRate returns the agreement percentage restricted to one
// category. A category with no records fails with domain.ErrEmptyDataset.
func (e *AggregationEngine) CategoryAgreementRate(ds *domain.JudgmentDataset, category string) (float64, error) {
	scoped := ds.Filter(func(r domain.JudgmentRecord) bool { return r.Category == category })
	a, err := e.Agreement(scoped)
	if err != nil {
		return 0, fmt.Errorf("category %q: %w", category, err)
	}
	return a.AgreePct, nil
}

// AgreementByCategory computes the agreement summary of every category
// present in the dataset.
func (e *AggregationEngine) AgreementByCategory(ds *domain.JudgmentDataset) (domain.AgreementTable, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("agreement by category: %w", domain.ErrEmptyDataset)
	}

	agreed := make(map[string]int)
	totals := make(map[string]int)
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		totals[r.Category]++
		if r.Agrees() {
			agreed[r.Category]++
		}
	}

	table := make(domain.AgreementTable, len(totals))
	for cat, n := range totals {
		table[cat] = domain.NewAgreement(agreed[cat], n)
	}
	return table, nil
}

// Crosstab builds the contingency table of two columns. Rows and columns are
// the distinct values observed in each column; pairs that never co-occur
// read as zero.
func (e *AggregationEngine) Crosstab(ds *domain.JudgmentDataset, rowCol, colCol domain.Column) (*domain.ContingencyTable, error) {
	rowVals, err := ds.Column(rowCol)
	if err != nil {
		return nil, err
	}
	colVals, err := ds.Column(colCol)
	if err != nil {
		return nil, err
	}

	table := domain.NewContingencyTable(rowCol, colCol, distinct(rowVals), distinct(colVals))
	for i := range rowVals {
		table.Add(rowVals[i], colVals[i])
	}
	return table, nil
}

// DecisionMatrix cross-tabulates human decisions (rows) against model
// decisions (columns). Cell counts sum to the dataset length.
func (e *AggregationEngine) DecisionMatrix(ds *domain.JudgmentDataset) (domain.DecisionMatrix, error) {
	if ds.Len() == 0 {
		return domain.DecisionMatrix{}, fmt.Errorf("decision matrix: %w", domain.ErrEmptyDataset)
	}
	table, err := e.Crosstab(ds, domain.ColumnHumanWinner, domain.ColumnGPTWinner)
	if err != nil {
		return domain.DecisionMatrix{}, err
	}
	return domain.DecisionMatrix{ContingencyTable: table}, nil
}

// WinnerDistributionByCategory returns, for each category, the percentage
// share of each human winner label within that category's records.
func (e *AggregationEngine) WinnerDistributionByCategory(ds *domain.JudgmentDataset) (domain.WinnerDistribution, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("winner distribution: %w", domain.ErrEmptyDataset)
	}
	table, err := e.Crosstab(ds, domain.ColumnCategory, domain.ColumnHumanWinner)
	if err != nil {
		return nil, err
	}

	rowTotals := table.RowTotals()
	dist := make(domain.WinnerDistribution, len(table.Rows))
	for i, cat := range table.Rows {
		shares := make(map[string]float64)
		for j, label := range table.Cols {
			if n := table.Counts[i][j]; n > 0 {
				shares[label] = float64(n) / float64(rowTotals[i]) * 100
			}
		}
		dist[cat] = shares
	}
	return dist, nil
}

// IndependenceTest runs a chi-square test of independence between two
// categorical columns. It fails with domain.ErrInsufficientData when the
// contingency table is degenerate.
func (e *AggregationEngine) IndependenceTest(ds *domain.JudgmentDataset, colA, colB domain.Column) (domain.IndependenceResult, error) {
	if ds.Len() == 0 {
		return domain.IndependenceResult{}, fmt.Errorf("independence test: %w", domain.ErrInsufficientData)
	}
	table, err := e.Crosstab(ds, colA, colB)
	if err != nil {
		return domain.IndependenceResult{}, err
	}
	res, err := chiSquareTest(table, e.yates)
	if err != nil {
		return domain.IndependenceResult{}, fmt.Errorf("independence test %s x %s: %w", colA, colB, err)
	}
	return res, nil
}

// CohenKappa returns the chance-corrected agreement between the human and
// model judges. A dataset in which both judges always pick the same single
// label has perfect agreement and a kappa of 1.
func (e *AggregationEngine) CohenKappa(ds *domain.JudgmentDataset) (float64, error) {
	a, err := e.Agreement(ds)
	if err != nil {
		return 0, fmt.Errorf("cohen kappa: %w", err)
	}
	human, err := e.LabelCounts(ds, domain.ColumnHumanWinner)
	if err != nil {
		return 0, fmt.Errorf("cohen kappa: %w", err)
	}
	gpt, err := e.LabelCounts(ds, domain.ColumnGPTWinner)
	if err != nil {
		return 0, fmt.Errorf("cohen kappa: %w", err)
	}

	labels := distinct(append(slices.Collect(maps.Keys(human)), slices.Collect(maps.Keys(gpt))...))
	n := float64(ds.Len())
	pHuman := make([]float64, len(labels))
	pGPT := make([]float64, len(labels))
	for i, l := range labels {
		pHuman[i] = float64(human[l]) / n
		pGPT[i] = float64(gpt[l]) / n
	}

	observed := float64(a.Agreed) / n
	expected := floats.Dot(pHuman, pGPT)
	if expected >= 1 {
		return 1, nil
	}
	return (observed - expected) / (1 - expected), nil
}

// distinct returns the unique values of vals in lexical order.
func distinct(vals []string) []string {
	out := slices.Clone(vals)
	slices.Sort(out)
	return slices.Compact(out)
}
