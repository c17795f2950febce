package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// InsightsSummary aggregates categorized transactions.
type InsightsSummary struct {
	CategoryTotals   map[CategoryLabel]decimal.Decimal `json:"category_totals"`
	CategoryCounts   map[CategoryLabel]int             `json:"category_counts"`
	CategoryAverages map[CategoryLabel]decimal.Decimal `json:"category_averages,omitempty"`
	TotalSpending    decimal.Decimal                   `json:"total_spending"`
	TransactionCount int                               `json:"transaction_count"`
}

// NewInsightsSummary returns an all-zero summary with empty, non-nil maps.
func NewInsightsSummary() InsightsSummary {
	return InsightsSummary{
		CategoryTotals:   make(map[CategoryLabel]decimal.Decimal),
		CategoryCounts:   make(map[CategoryLabel]int),
		CategoryAverages: make(map[CategoryLabel]decimal.Decimal),
		TotalSpending:    decimal.Zero,
	}
}

// SortedCategories returns the categories present in the summary ordered by
// descending total, then by name.
func (s InsightsSummary) SortedCategories() []CategoryLabel {
	cats := make([]CategoryLabel, 0, len(s.CategoryCounts))
	for c := range s.CategoryCounts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		ti, tj := s.CategoryTotals[cats[i]], s.CategoryTotals[cats[j]]
		if cmp := ti.Cmp(tj); cmp != 0 {
			return cmp > 0
		}
		return cats[i] < cats[j]
	})
	return cats
}

// Share returns the category's fraction of total spending, or zero when the
// total is zero.
func (s InsightsSummary) Share(c CategoryLabel) decimal.Decimal {
	if s.TotalSpending.IsZero() {
		return decimal.Zero
	}
	return s.CategoryTotals[c].Div(s.TotalSpending)
}
