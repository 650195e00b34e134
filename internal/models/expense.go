package models

import "fmt"

// Uncategorized is the aggregation bucket for expenses without a category.
const Uncategorized = "Uncategorized"

// Expense is one shared payment recorded in a ledger.
// Apart from Category, an expense never changes after it is stored.
type Expense struct {
	// ID is the sequential identifier within the ledger, starting at 1.
	ID int `json:"id"`

	// PaidBy is the handle of the member who paid.
	PaidBy string `json:"paid_by"`

	// Amount is the full amount paid.
	Amount Amount `json:"amount"`

	// Description is a free-form label (e.g. "Dinner", "Taxi to airport").
	Description string `json:"description"`

	// Date is the calendar date of the expense.
	Date Date `json:"date"`

	// Participants share the amount equally. Never empty once stored.
	Participants []string `json:"participants"`

	// Category is nil until the expense is categorized.
	Category *string `json:"category,omitempty"`
}

// CategoryName returns the category used for aggregation. Only a missing
// category counts as Uncategorized; an explicit empty one is its own bucket.
func (e Expense) CategoryName() string {
	if e.Category == nil {
		return Uncategorized
	}
	return *e.Category
}

// HasParticipant reports whether name shares this expense.
func (e Expense) HasParticipant(name string) bool {
	for _, p := range e.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// Confirmation is the human-readable message for a newly recorded expense.
func (e Expense) Confirmation() string {
	return fmt.Sprintf("Expense %q (%s) added successfully.", e.Description, e.Amount.StringFixed(2))
}

// Clone returns a deep copy.
func (e Expense) Clone() Expense {
	c := e
	c.Participants = append([]string(nil), e.Participants...)
	if e.Category != nil {
		category := *e.Category
		c.Category = &category
	}
	return c
}

// Validate checks the fields every stored expense must carry.
func (e Expense) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("expense id must be positive, got %d", e.ID)
	}
	if e.PaidBy == "" {
		return fmt.Errorf("expense %d: missing paid_by", e.ID)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("expense %d: missing date", e.ID)
	}
	if len(e.Participants) == 0 {
		return fmt.Errorf("expense %d: no participants", e.ID)
	}
	return nil
}
