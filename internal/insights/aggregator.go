// Package insights aggregates categorized transactions into spending totals.
package insights

import (
	"fjacquet/spendcat/internal/models"

	"github.com/shopspring/decimal"
)

// Item is one categorized transaction. A nil Amount counts as zero.
type Item struct {
	Category models.CategoryLabel
	Amount   decimal.NullDecimal
}

// Aggregate sums amounts and counts per category. Averages are rounded to
// two decimal places; totals are exact. Empty input yields a zero summary
// with empty maps.
func Aggregate(items []Item) models.InsightsSummary {
	summary := models.NewInsightsSummary()

	for _, item := range items {
		amount := decimal.Zero
		if item.Amount.Valid {
			amount = item.Amount.Decimal
		}

		total, ok := summary.CategoryTotals[item.Category]
		if !ok {
			total = decimal.Zero
		}
		summary.CategoryTotals[item.Category] = total.Add(amount)
		summary.CategoryCounts[item.Category]++
		summary.TotalSpending = summary.TotalSpending.Add(amount)
		summary.TransactionCount++
	}

	for category, count := range summary.CategoryCounts {
		summary.CategoryAverages[category] = summary.CategoryTotals[category].
			Div(decimal.NewFromInt(int64(count))).
			Round(2)
	}

	return summary
}
