package models

import (
	"errors"
	"fmt"
	"sort"
)

// Snapshot is the full state of one ledger at a point in time.
// It is the unit of persistence and the input of every settlement computation.
type Snapshot struct {
	Expenses []Expense `json:"expenses"`
	Users    []string  `json:"users"`
}

// Members returns the member handles as a set.
func (s Snapshot) Members() map[string]struct{} {
	members := make(map[string]struct{}, len(s.Users))
	for _, u := range s.Users {
		members[u] = struct{}{}
	}
	return members
}

// HasUser reports whether name is a member.
func (s Snapshot) HasUser(name string) bool {
	for _, u := range s.Users {
		if u == name {
			return true
		}
	}
	return false
}

// SortedUsers returns the member handles in lexicographic order.
func (s Snapshot) SortedUsers() []string {
	users := append([]string{}, s.Users...)
	sort.Strings(users)
	return users
}

// NextExpenseID returns the id for the next recorded expense.
// Ids are never reused, so this is one past the largest id seen.
func (s Snapshot) NextExpenseID() int {
	maxID := 0
	for _, e := range s.Expenses {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}

// Clone returns a deep copy with non-nil slices.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Expenses: make([]Expense, len(s.Expenses)),
		Users:    append(make([]string, 0, len(s.Users)), s.Users...),
	}
	for i, e := range s.Expenses {
		c.Expenses[i] = e.Clone()
	}
	return c
}

// Validate rejects snapshots that violate the ledger invariants: malformed
// records, duplicate members, ids out of order, or references to non-members.
func (s Snapshot) Validate() error {
	members := make(map[string]struct{}, len(s.Users))
	for _, u := range s.Users {
		if u == "" {
			return errors.New("empty user handle")
		}
		if _, dup := members[u]; dup {
			return fmt.Errorf("duplicate user %q", u)
		}
		members[u] = struct{}{}
	}

	lastID := 0
	for _, e := range s.Expenses {
		if err := e.Validate(); err != nil {
			return err
		}
		if e.ID <= lastID {
			return fmt.Errorf("expense %d: ids must be strictly increasing", e.ID)
		}
		lastID = e.ID
		if _, ok := members[e.PaidBy]; !ok {
			return fmt.Errorf("expense %d: %w: %q", e.ID, ErrUnknownPayer, e.PaidBy)
		}
		for _, p := range e.Participants {
			if _, ok := members[p]; !ok {
				return fmt.Errorf("expense %d: %w: %q", e.ID, ErrUnknownParticipant, p)
			}
		}
	}
	return nil
}
