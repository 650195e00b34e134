package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Share computes one participant's equal share of an expense.
// Balances and statements both go through here so the two views always agree.
func Share(e models.Expense) decimal.Decimal {
	if len(e.Participants) == 0 {
		return decimal.Zero
	}
	return e.Amount.Div(decimal.NewFromInt(int64(len(e.Participants))))
}
