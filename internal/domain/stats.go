package domain

import (
	"cmp"
	"maps"
	"slices"
)

// CategoryDistribution maps each category label to its share of all records,
// expressed as a percentage. Shares sum to 100 up to floating point rounding.
type CategoryDistribution map[string]float64

// Labels returns the categories ordered by descending share, ties broken by
// label so that output is deterministic.
func (d CategoryDistribution) Labels() []string { return rankedKeys(d) }

// Agreement summarizes how often the two judges agreed within one scope.
type Agreement struct {
	// Total is the number of records in scope.
	Total int `json:"total"`

	// Agreed is the number of records where both judges picked the same label.
	Agreed int `json:"agreed"`

	// AgreePct is Agreed/Total as a percentage.
	AgreePct float64 `json:"agree_pct"`

	// DisagreePct is 100 - AgreePct.
	DisagreePct float64 `json:"disagree_pct"`
}

// NewAgreement builds an Agreement from raw counts. total must be positive.
func NewAgreement(agreed, total int) Agreement {
	agree := float64(agreed) / float64(total) * 100
	return Agreement{
		Total:       total,
		Agreed:      agreed,
		AgreePct:    agree,
		DisagreePct: 100 - agree,
	}
}

// Disagreed returns the number of records where the judges differed.
func (a Agreement) Disagreed() int { return a.Total - a.Agreed }

// AgreementTable maps each category label to its agreement summary.
type AgreementTable map[string]Agreement

// Categories returns the table's categories in lexical order.
func (t AgreementTable) Categories() []string { return slices.Sorted(maps.Keys(t)) }

// ContingencyTable cross-tabulates two categorical columns. Rows and Cols
// hold the distinct values observed in each column, sorted lexically; Counts
// is indexed [row][col]. Pairs that never co-occur have a count of zero.
type ContingencyTable struct {
	RowColumn Column   `json:"row_column"`
	ColColumn Column   `json:"col_column"`
	Rows      []string `json:"rows"`
	Cols      []string `json:"cols"`
	Counts    [][]int  `json:"counts"`
	rowIndex  map[string]int
	colIndex  map[string]int
}

// NewContingencyTable creates an all-zero table over the given labels.
func NewContingencyTable(rowCol, colCol Column, rows, cols []string) *ContingencyTable {
	t := &ContingencyTable{
		RowColumn: rowCol,
		ColColumn: colCol,
		Rows:      slices.Clone(rows),
		Cols:      slices.Clone(cols),
		Counts:    make([][]int, len(rows)),
		rowIndex:  make(map[string]int, len(rows)),
		colIndex:  make(map[string]int, len(cols)),
	}
	for i, r := range t.Rows {
		t.rowIndex[r] = i
		t.Counts[i] = make([]int, len(cols))
	}
	for j, c := range t.Cols {
		t.colIndex[c] = j
	}
	return t
}

// Add increments the count for (row, col). It reports false if either label
// is not part of the table.
func (t *ContingencyTable) Add(row, col string) bool {
	i, ok := t.rowIndex[row]
	if !ok {
		return false
	}
	j, ok := t.colIndex[col]
	if !ok {
		return false
	}
	t.Counts[i][j]++
	return true
}

// Count returns the number of records with the given row and column labels.
// Unknown labels read as zero.
func (t *ContingencyTable) Count(row, col string) int {
	i, ok := t.rowIndex[row]
	if !ok {
		return 0
	}
	j, ok := t.colIndex[col]
	if !ok {
		return 0
	}
	return t.Counts[i][j]
}

// RowTotals returns the marginal total of each row.
func (t *ContingencyTable) RowTotals() []int {
	totals := make([]int, len(t.Rows))
	for i := range t.Rows {
		for j := range t.Cols {
			totals[i] += t.Counts[i][j]
		}
	}
	return totals
}

// ColTotals returns the marginal total of each column.
func (t *ContingencyTable) ColTotals() []int {
	totals := make([]int, len(t.Cols))
	for i := range t.Rows {
		for j := range t.Cols {
			totals[j] += t.Counts[i][j]
		}
	}
	return totals
}

// Total returns the sum of all cells.
func (t *ContingencyTable) Total() int {
	var n int
	for _, v := range t.RowTotals() {
		n += v
	}
	return n
}

// DecisionMatrix cross-tabulates human_winner (rows) against gpt_winner
// (columns).
type DecisionMatrix struct {
	*ContingencyTable
}

// WinnerDistribution maps each category to the percentage share of each
// human winner label within that category.
type WinnerDistribution map[string]map[string]float64

// Categories returns the distribution's categories in lexical order.
func (w WinnerDistribution) Categories() []string { return slices.Sorted(maps.Keys(w)) }

// Labels returns the union of winner labels across all categories in lexical
// order.
func (w WinnerDistribution) Labels() []string {
	seen := make(map[string]struct{})
	for _, dist := range w {
		for l := range dist {
			seen[l] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// LabelCounts maps each value of one column to the number of records holding it.
type LabelCounts map[string]int

// Labels returns the labels ordered by descending count, ties broken by label.
func (c LabelCounts) Labels() []string { return rankedKeys(c) }

// Total returns the sum of all counts.
func (c LabelCounts) Total() int {
	var n int
	for _, v := range c {
		n += v
	}
	return n
}

// IndependenceResult is the outcome of a chi-square test of independence
// between two categorical columns.
type IndependenceResult struct {
	ColumnA          Column            `json:"column_a"`
	ColumnB          Column            `json:"column_b"`
	Statistic        float64           `json:"statistic"`
	PValue           float64           `json:"p_value"`
	DegreesOfFreedom int               `json:"degrees_of_freedom"`
	YatesCorrected   bool              `json:"yates_corrected"`
	Observed         *ContingencyTable `json:"observed"`
	Expected         [][]float64       `json:"expected"`
}

// Significant reports whether the p-value falls below alpha.
func (r IndependenceResult) Significant(alpha float64) bool { return r.PValue < alpha }

// rankedKeys orders map keys by descending value, then ascending key.
func rankedKeys[V cmp.Ordered](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(m[b], m[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return keys
}
