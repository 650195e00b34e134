package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Tolerance is the absolute amount below which a balance or transfer is
// treated as zero.
const Tolerance = 0.01

var tolerance = decimal.NewFromFloat(Tolerance)

// Balance is one member's net position across all expenses.
type Balance struct {
	User string
	Net  decimal.Decimal // Positive = owed money, Negative = owes money
}

// Settlement is a transfer that moves balances toward zero.
type Settlement struct {
	From   string          // Person who owes
	To     string          // Person who is owed
	Amount decimal.Decimal // Rounded to 2 decimal places
}

func (s Settlement) String() string {
	return fmt.Sprintf("%s pays %s %s", s.From, s.To, s.Amount.StringFixed(2))
}

// Balances computes every member's net balance, sorted by handle.
//
// Algorithm:
// - Every member starts at zero, including members without expenses
// - For each expense: payer gets +amount, each participant gets -amount/len(participants)
// - A payer who also participates receives both adjustments
func Balances(snap models.Snapshot) []Balance {
	net := make(map[string]decimal.Decimal, len(snap.Users))
	for _, u := range snap.Users {
		net[u] = decimal.Zero
	}

	for _, e := range snap.Expenses {
		// Skip expenses without participants (can't be split)
		if len(e.Participants) == 0 {
			continue
		}
		share := Share(e)
		net[e.PaidBy] = net[e.PaidBy].Add(e.Amount.Decimal)
		for _, p := range e.Participants {
			net[p] = net[p].Sub(share)
		}
	}

	users := make([]string, 0, len(net))
	for u := range net {
		users = append(users, u)
	}
	sort.Strings(users)

	balances := make([]Balance, len(users))
	for i, u := range users {
		balances[i] = Balance{User: u, Net: net[u]}
	}
	return balances
}

// Simplify turns net balances into a short list of settlements using greedy
// matching: the largest debts are paired with the largest credits.
//
// Members within Tolerance of zero are already settled and take no part.
// Equal balances are ordered by handle, so the output is fully deterministic.
func Simplify(balances []Balance) []Settlement {
	var debtors, creditors []Balance
	for _, b := range balances {
		if b.Net.Abs().LessThan(tolerance) {
			continue
		}
		if b.Net.IsNegative() {
			debtors = append(debtors, b)
		} else {
			creditors = append(creditors, b)
		}
	}

	// Most negative first
	sort.SliceStable(debtors, func(i, j int) bool {
		if !debtors[i].Net.Equal(debtors[j].Net) {
			return debtors[i].Net.LessThan(debtors[j].Net)
		}
		return debtors[i].User < debtors[j].User
	})
	// Largest first
	sort.SliceStable(creditors, func(i, j int) bool {
		if !creditors[i].Net.Equal(creditors[j].Net) {
			return creditors[i].Net.GreaterThan(creditors[j].Net)
		}
		return creditors[i].User < creditors[j].User
	})

	var settlements []Settlement
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debt := debtors[i].Net.Neg()
		credit := creditors[j].Net

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := decimal.Min(debt, credit)

		if amount.GreaterThan(tolerance) {
			settlements = append(settlements, Settlement{
				From:   debtors[i].User,
				To:     creditors[j].User,
				Amount: amount.Round(2),
			})
		}

		debtors[i].Net = debtors[i].Net.Add(amount)
		creditors[j].Net = creditors[j].Net.Sub(amount)

		// Both cursors may move in the same round
		if debtors[i].Net.Abs().LessThan(tolerance) {
			i++
		}
		if creditors[j].Net.LessThan(tolerance) {
			j++
		}
	}

	return settlements
}

// Settle computes the simplified settlements for a snapshot.
func Settle(snap models.Snapshot) []Settlement {
	return Simplify(Balances(snap))
}
