package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIGroup(g *models.Group, role models.Role) api.Group {
	return api.Group{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
		Role:      string(role),
	}
}

func toAPISummary(s calculator.Summary) api.Summary {
	categories := make(map[string]models.Amount, len(s.Categories))
	for name, total := range s.Categories {
		categories[name] = models.NewAmount(total)
	}
	return api.Summary{
		TotalAmount: models.NewAmount(s.TotalAmount),
		Categories:  categories,
	}
}

func toAPISettlements(settlements []calculator.Settlement) []api.Settlement {
	out := make([]api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = api.Settlement{From: s.From, To: s.To, Amount: models.NewAmount(s.Amount)}
	}
	return out
}

func toAPIStatement(st calculator.Statement) api.Statement {
	return api.Statement{
		Username:              st.Username,
		TotalPaid:             models.NewAmount(st.TotalPaid),
		TotalOwed:             models.NewAmount(st.TotalOwed),
		NetBalance:            models.NewAmount(st.NetBalance),
		Standing:              string(st.Standing()),
		Message:               st.Message(),
		PaidExpenses:          nonNil(st.PaidExpenses),
		ParticipatingExpenses: nonNil(st.ParticipatingExpenses),
	}
}

func nonNil(expenses []models.Expense) []models.Expense {
	if expenses == nil {
		return []models.Expense{}
	}
	return expenses
}
