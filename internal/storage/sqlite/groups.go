package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateGroup inserts a group and its creator's admin membership in one transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO ledger_groups (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
			group.ID, group.Name, group.CreatedBy, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_memberships (group_id, username, role) VALUES (?, ?, ?)",
			group.ID, group.CreatedBy, string(models.RoleAdmin),
		)
		if err != nil {
			return fmt.Errorf("failed to insert admin membership: %w", err)
		}
		return nil
	})
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at FROM ledger_groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroupsForUser returns every group the user belongs to, oldest first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, username string) ([]*models.Group, error) {
	query := `
		SELECT g.id, g.name, g.created_by, g.created_at
		FROM ledger_groups g
		JOIN group_memberships m ON m.group_id = g.id
		WHERE m.username = ?
		ORDER BY g.created_at, g.id
	`

	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}

// AddMembership links an account to a group. Existing memberships are left as they are.
func (s *SQLiteStore) AddMembership(ctx context.Context, m models.Membership) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_memberships (group_id, username, role) VALUES (?, ?, ?)
		 ON CONFLICT(group_id, username) DO NOTHING`,
		m.GroupID, m.Username, string(m.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}
	return nil
}

// GetMembership returns a user's membership in a group.
func (s *SQLiteStore) GetMembership(ctx context.Context, groupID, username string) (*models.Membership, error) {
	var role string
	err := s.db.QueryRowContext(ctx,
		"SELECT role FROM group_memberships WHERE group_id = ? AND username = ?",
		groupID, username,
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("membership %s/%s: %w", groupID, username, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &models.Membership{GroupID: groupID, Username: username, Role: models.Role(role)}, nil
}
