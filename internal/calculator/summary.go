package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Summary aggregates all expenses of a ledger.
type Summary struct {
	TotalAmount decimal.Decimal
	Categories  map[string]decimal.Decimal
}

// Summarize totals all expenses and groups them by category.
// Expenses without a category are counted under models.Uncategorized.
func Summarize(snap models.Snapshot) Summary {
	summary := Summary{
		TotalAmount: decimal.Zero,
		Categories:  make(map[string]decimal.Decimal),
	}
	for _, e := range snap.Expenses {
		summary.TotalAmount = summary.TotalAmount.Add(e.Amount.Decimal)
		category := e.CategoryName()
		summary.Categories[category] = summary.Categories[category].Add(e.Amount.Decimal)
	}
	return summary
}
