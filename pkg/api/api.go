// Package api defines the request and response messages of the splitledger
// RPC services. Messages travel as JSON; see package apiconnect for the
// handlers and clients.
package api

import (
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// Account service

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Ledger service

type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
	Role      string `json:"role,omitempty"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID  string `json:"group_id"`
	Username string `json:"username"`
}

type AddMemberResponse struct {
	// Result is "added" or "already_member".
	Result  string `json:"result"`
	Message string `json:"message"`
}

type RecordExpenseRequest struct {
	GroupID     string `json:"group_id"`
	PaidBy      string `json:"paid_by"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	// Participants defaults to every member when empty.
	Participants []string `json:"participants,omitempty"`
	// Date is YYYY-MM-DD; today when empty.
	Date     string `json:"date,omitempty"`
	Category string `json:"category,omitempty"`
}

type RecordFromTextRequest struct {
	GroupID string `json:"group_id"`
	Text    string `json:"text"`
}

type ExpenseResponse struct {
	Expense models.Expense `json:"expense"`
	Message string         `json:"message"`
}

type SetCategoryRequest struct {
	GroupID   string `json:"group_id"`
	ExpenseID int    `json:"expense_id"`
	Category  string `json:"category"`
}

type GetDashboardRequest struct {
	GroupID string `json:"group_id"`
}

type Settlement struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Amount models.Amount `json:"amount"`
}

type Summary struct {
	TotalAmount models.Amount            `json:"total_amount"`
	Categories  map[string]models.Amount `json:"categories"`
}

type Statement struct {
	Username              string           `json:"username"`
	TotalPaid             models.Amount    `json:"total_paid"`
	TotalOwed             models.Amount    `json:"total_owed"`
	NetBalance            models.Amount    `json:"net_balance"`
	Standing              string           `json:"standing"`
	Message               string           `json:"message"`
	PaidExpenses          []models.Expense `json:"paid_expenses"`
	ParticipatingExpenses []models.Expense `json:"participating_expenses"`
}

type GetDashboardResponse struct {
	Group       Group            `json:"group"`
	Members     []string         `json:"members"`
	Expenses    []models.Expense `json:"expenses"`
	Summary     Summary          `json:"summary"`
	Settlements []Settlement     `json:"settlements"`
	// Statement is nil when the caller is not a ledger member.
	Statement *Statement `json:"statement,omitempty"`
}

type GetStatementRequest struct {
	GroupID  string `json:"group_id"`
	Username string `json:"username"`
}

type GetStatementResponse struct {
	Statement Statement `json:"statement"`
}
