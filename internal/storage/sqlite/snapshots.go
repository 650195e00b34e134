package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// SaveSnapshot replaces everything stored for a ledger in one transaction.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, ledgerID string, snap *models.Snapshot) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return writeSnapshot(ctx, tx, ledgerID, snap)
	})
}

func writeSnapshot(ctx context.Context, tx *sql.Tx, ledgerID string, snap *models.Snapshot) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ledgers (id, updated_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		ledgerID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger: %w", err)
	}

	// Full overwrite: clear the previous snapshot, children first
	for _, table := range []string{"expense_participants", "expenses", "ledger_members"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE ledger_id = ?", ledgerID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, name := range snap.Users {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO ledger_members (ledger_id, name) VALUES (?, ?)",
			ledgerID, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	for _, e := range snap.Expenses {
		var category interface{}
		if e.Category != nil {
			category = *e.Category
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (ledger_id, id, paid_by, amount, description, date, category)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ledgerID, e.ID, e.PaidBy, e.Amount.String(), e.Description, e.Date.String(), category,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for pos, participant := range e.Participants {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_participants (ledger_id, expense_id, position, name) VALUES (?, ?, ?, ?)",
				ledgerID, e.ID, pos, participant,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}
	}

	return nil
}

// LoadSnapshot reads a ledger's members and expenses.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, ledgerID string) (*models.Snapshot, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM ledgers WHERE id = ?", ledgerID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger %s: %w", ledgerID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger existence: %w", err)
	}

	snap := &models.Snapshot{Users: []string{}, Expenses: []models.Expense{}}

	// Get members
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM ledger_members WHERE ledger_id = ? ORDER BY name",
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		snap.Users = append(snap.Users, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	// Get expenses; participants are fetched in a second pass because the
	// store holds a single connection.
	expenseRows, err := s.db.QueryContext(ctx,
		`SELECT id, paid_by, amount, description, date, category
		 FROM expenses WHERE ledger_id = ? ORDER BY id`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	index := make(map[int]int)
	for expenseRows.Next() {
		var (
			e        models.Expense
			amount   string
			date     string
			category sql.NullString
		)
		if err := expenseRows.Scan(&e.ID, &e.PaidBy, &amount, &e.Description, &date, &category); err != nil {
			expenseRows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if e.Amount, err = models.ParseAmount(amount); err != nil {
			expenseRows.Close()
			return nil, fmt.Errorf("%w: expense %d: %v", storage.ErrCorrupt, e.ID, err)
		}
		if e.Date, err = models.ParseDate(date); err != nil {
			expenseRows.Close()
			return nil, fmt.Errorf("%w: expense %d: %v", storage.ErrCorrupt, e.ID, err)
		}
		if category.Valid {
			c := category.String
			e.Category = &c
		}
		index[e.ID] = len(snap.Expenses)
		snap.Expenses = append(snap.Expenses, e)
	}
	expenseRows.Close()
	if err := expenseRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	participantRows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, name FROM expense_participants
		 WHERE ledger_id = ? ORDER BY expense_id, position`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer participantRows.Close()
	for participantRows.Next() {
		var (
			expenseID int
			name      string
		)
		if err := participantRows.Scan(&expenseID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		i, ok := index[expenseID]
		if !ok {
			return nil, fmt.Errorf("%w: participant for unknown expense %d", storage.ErrCorrupt, expenseID)
		}
		snap.Expenses[i].Participants = append(snap.Expenses[i].Participants, name)
	}
	if err := participantRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCorrupt, err)
	}
	return snap, nil
}
