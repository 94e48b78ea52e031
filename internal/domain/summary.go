package domain

// Summary bundles every derived view computed for one dataset. It is the
// value handed to reporters and the metrics logger; nothing downstream
// recomputes statistics from raw records.
type Summary struct {
	// Records is the number of records in the analyzed dataset.
	Records int `json:"records"`

	// CategoryCounts holds the raw number of records per category.
	CategoryCounts LabelCounts `json:"category_counts"`

	// CategoryDistribution holds each category's percentage share.
	CategoryDistribution CategoryDistribution `json:"category_distribution"`

	// OverallAgreement summarizes agreement across the whole dataset.
	OverallAgreement Agreement `json:"overall_agreement"`

	// AgreementByCategory summarizes agreement within each category.
	AgreementByCategory AgreementTable `json:"agreement_by_category"`

	// DecisionMatrix cross-tabulates human against model decisions.
	DecisionMatrix DecisionMatrix `json:"decision_matrix"`

	// WinnerDistribution holds the human winner shares per category.
	WinnerDistribution WinnerDistribution `json:"winner_distribution"`

	// HumanLabelCounts and GPTLabelCounts are the per-judge vote counts.
	HumanLabelCounts LabelCounts `json:"human_label_counts"`
	GPTLabelCounts   LabelCounts `json:"gpt_label_counts"`

	// CohenKappa is the chance-corrected agreement between the two judges.
	CohenKappa float64 `json:"cohen_kappa"`

	// Independence is the chi-square test result, or nil when the test was
	// not requested.
	Independence *IndependenceResult `json:"independence,omitempty"`
}
