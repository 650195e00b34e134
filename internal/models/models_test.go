package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"90", "90", false},
		{" 12.50 ", "12.5", false},
		{"-5", "-5", false},
		{"0", "0", false},
		{"abc", "", true},
		{"", "", true},
		{"NaN", "", true},
		{"12,50", "", true},
		{"1e400000000", "", true},
		{"1e-400000000", "", true},
		{"0e400000000", "", true},
		{"1e15", "", true},
		{"1000000000000000", "", true},
		{"999999999999999.99", "999999999999999.99", false},
		{"1e14", "100000000000000", false},
		{"0.000000000000000001", "0.000000000000000001", false},
		{"0.0000000000000000001", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestExpenseJSONShape(t *testing.T) {
	category := "Food"
	e := Expense{
		ID:           1,
		PaidBy:       "A",
		Amount:       AmountFromFloat(90.5),
		Description:  "Dinner",
		Date:         NewDate(2024, time.March, 9),
		Participants: []string{"A", "B"},
		Category:     &category,
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":1,"paid_by":"A","amount":90.5,"description":"Dinner","date":"2024-03-09","participants":["A","B"],"category":"Food"}`,
		string(data))

	e.Category = nil
	data, err = json.Marshal(e)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "category")
}

func TestExpenseCategoryName(t *testing.T) {
	blank := ""
	food := "Food"

	assert.Equal(t, Uncategorized, Expense{}.CategoryName())
	assert.Equal(t, "", Expense{Category: &blank}.CategoryName(), "only a missing category is folded")
	assert.Equal(t, "Food", Expense{Category: &food}.CategoryName())
}

func TestAmountUnmarshalRejectsHugeExponent(t *testing.T) {
	var a Amount
	err := json.Unmarshal([]byte(`1e400000000`), &a)
	assert.True(t, errors.Is(err, ErrInvalidAmount), "got %v", err)

	require.NoError(t, json.Unmarshal([]byte(`12.5`), &a))
	assert.Equal(t, "12.50", a.StringFixed(2))
}

func TestDateUnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"09/03/2024"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20240309`), &d))
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-09"`), &d))
	assert.Equal(t, "2024-03-09", d.String())
}

func TestSnapshotValidate(t *testing.T) {
	valid := func() Snapshot {
		return Snapshot{
			Users: []string{"A", "B"},
			Expenses: []Expense{
				{ID: 1, PaidBy: "A", Amount: AmountFromFloat(10), Date: NewDate(2024, 1, 1), Participants: []string{"A", "B"}},
				{ID: 2, PaidBy: "B", Amount: AmountFromFloat(4), Date: NewDate(2024, 1, 2), Participants: []string{"A"}},
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"duplicate user", func(s *Snapshot) { s.Users = append(s.Users, "A") }},
		{"empty handle", func(s *Snapshot) { s.Users = append(s.Users, "") }},
		{"missing payer", func(s *Snapshot) { s.Expenses[0].PaidBy = "" }},
		{"unknown payer", func(s *Snapshot) { s.Expenses[0].PaidBy = "Z" }},
		{"unknown participant", func(s *Snapshot) { s.Expenses[1].Participants = []string{"Z"} }},
		{"no participants", func(s *Snapshot) { s.Expenses[1].Participants = nil }},
		{"missing date", func(s *Snapshot) { s.Expenses[0].Date = Date{} }},
		{"ids out of order", func(s *Snapshot) { s.Expenses[1].ID = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	category := "Rent"
	s := Snapshot{
		Users:    []string{"A"},
		Expenses: []Expense{{ID: 1, PaidBy: "A", Participants: []string{"A"}, Category: &category}},
	}

	c := s.Clone()
	c.Users[0] = "B"
	c.Expenses[0].Participants[0] = "B"
	*c.Expenses[0].Category = "Food"

	assert.Equal(t, "A", s.Users[0])
	assert.Equal(t, "A", s.Expenses[0].Participants[0])
	assert.Equal(t, "Rent", *s.Expenses[0].Category)
}

func TestNextExpenseID(t *testing.T) {
	assert.Equal(t, 1, Snapshot{}.NextExpenseID())
	assert.Equal(t, 8, Snapshot{Expenses: []Expense{{ID: 3}, {ID: 7}}}.NextExpenseID())
}
