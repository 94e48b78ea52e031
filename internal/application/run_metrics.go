package application

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahrav/judgestat/internal/domain"
)

// Scalar metric keys logged for every run. Per-category keys are built from
// the category slug with the suffixes below.
const (
	MetricOverallAgreementRate = "overall_agreement_rate"
	MetricCohenKappa           = "cohen_kappa"
	MetricChiSquareStatistic   = "chi_square_statistic"
	MetricChiSquarePValue      = "chi_square_p_value"
	MetricRecords              = "records"

	percentageSuffix = "_percentage"
	agreementSuffix  = "_agreement"
)

var (
	lowerCaser   = cases.Lower(language.Und)
	slugReplacer = strings.NewReplacer("-", "_", " ", "_")
)

// MetricSlug turns a category label into a metric key prefix: lower-cased
// with hyphens and spaces mapped to underscores. "Open-ended" becomes
// "open_ended".
func MetricSlug(label string) string {
	return slugReplacer.Replace(lowerCaser.String(strings.TrimSpace(label)))
}

// RunMetrics flattens a summary into the scalar metrics shipped to the
// experiment tracker.
func RunMetrics(s *domain.Summary) map[string]float64 {
	m := map[string]float64{
		MetricRecords:              float64(s.Records),
		MetricOverallAgreementRate: s.OverallAgreement.AgreePct,
		MetricCohenKappa:           s.CohenKappa,
	}
	slugs := categorySlugs(distinct(append(
		slices.Collect(maps.Keys(s.CategoryDistribution)),
		slices.Collect(maps.Keys(s.AgreementByCategory))...,
	)))
	for cat, pct := range s.CategoryDistribution {
		m[slugs[cat]+percentageSuffix] = pct
	}
	for cat, a := range s.AgreementByCategory {
		m[slugs[cat]+agreementSuffix] = a.AgreePct
	}
	if s.Independence != nil {
		m[MetricChiSquareStatistic] = s.Independence.Statistic
		m[MetricChiSquarePValue] = s.Independence.PValue
	}
	return m
}

// categorySlugs assigns each category a unique metric slug. Categories are
// visited in the given order; a category whose slug is already taken gets
// the first free "_2", "_3", ... suffix.
func categorySlugs(categories []string) map[string]string {
	slugs := make(map[string]string, len(categories))
	taken := make(map[string]bool, len(categories))
	for _, cat := range categories {
		base := MetricSlug(cat)
		slug := base
		for n := 2; taken[slug]; n++ {
			slug = fmt.Sprintf("%s_%d", base, n)
		}
		taken[slug] = true
		slugs[cat] = slug
	}
	return slugs
}
