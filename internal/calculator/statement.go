package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Standing describes which side of the ledger a member is on.
type Standing string

const (
	StandingOwed    Standing = "owed"
	StandingOwes    Standing = "owes"
	StandingSettled Standing = "settled"
)

// Statement is one member's view of the ledger.
type Statement struct {
	Username string

	// Totals are rounded to 2 decimal places.
	TotalPaid  decimal.Decimal
	TotalOwed  decimal.Decimal
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money

	// Expenses in recording order.
	PaidExpenses          []models.Expense
	ParticipatingExpenses []models.Expense
}

// Standing classifies the net balance.
func (s Statement) Standing() Standing {
	switch {
	case s.NetBalance.IsPositive():
		return StandingOwed
	case s.NetBalance.IsNegative():
		return StandingOwes
	default:
		return StandingSettled
	}
}

// Message renders the standing as a sentence, e.g. "B owes 30.00".
func (s Statement) Message() string {
	switch s.Standing() {
	case StandingOwed:
		return fmt.Sprintf("%s is owed %s", s.Username, s.NetBalance.StringFixed(2))
	case StandingOwes:
		return fmt.Sprintf("%s owes %s", s.Username, s.NetBalance.Abs().StringFixed(2))
	default:
		return fmt.Sprintf("%s is even", s.Username)
	}
}

// UserStatement computes what a member paid, what they owe, and their net balance.
func UserStatement(snap models.Snapshot, username string) (Statement, error) {
	if !snap.HasUser(username) {
		return Statement{}, fmt.Errorf("%w: %q", models.ErrUnknownUser, username)
	}

	st := Statement{Username: username}
	totalPaid := decimal.Zero
	totalOwed := decimal.Zero

	for _, e := range snap.Expenses {
		if e.PaidBy == username {
			st.PaidExpenses = append(st.PaidExpenses, e.Clone())
			totalPaid = totalPaid.Add(e.Amount.Decimal)
		}
		if e.HasParticipant(username) {
			st.ParticipatingExpenses = append(st.ParticipatingExpenses, e.Clone())
			totalOwed = totalOwed.Add(Share(e))
		}
	}

	st.TotalPaid = totalPaid.Round(2)
	st.TotalOwed = totalOwed.Round(2)
	st.NetBalance = totalPaid.Sub(totalOwed).Round(2)
	return st, nil
}
