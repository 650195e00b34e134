// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when stored data exists but cannot be decoded
	// into a valid snapshot.
	ErrCorrupt = errors.New("corrupt snapshot")
)

// SnapshotStore persists whole ledger snapshots.
// This abstraction allows swapping storage backends (JSON files, SQLite)
// without changing the ledger.
type SnapshotStore interface {
	// LoadSnapshot returns the stored snapshot for a ledger.
	// Returns ErrNotFound if nothing was stored yet and ErrCorrupt if the
	// stored data is unreadable.
	LoadSnapshot(ctx context.Context, ledgerID string) (*models.Snapshot, error)

	// SaveSnapshot replaces the stored snapshot for a ledger.
	SaveSnapshot(ctx context.Context, ledgerID string, snap *models.Snapshot) error
}

// AccountStore persists login accounts.
type AccountStore interface {
	// CreateAccount inserts a new account. Returns an error if the username is taken.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount retrieves an account by username.
	// Returns ErrNotFound if no such account exists.
	GetAccount(ctx context.Context, username string) (*models.Account, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup inserts a group and makes its creator an admin.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Returns ErrNotFound if it does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns the groups the user belongs to, oldest first.
	ListGroupsForUser(ctx context.Context, username string) ([]*models.Group, error)

	// AddMembership links an account to a group. Adding an existing member is a no-op.
	AddMembership(ctx context.Context, m models.Membership) error

	// GetMembership returns the user's membership in a group.
	// Returns ErrNotFound if the user is not a member.
	GetMembership(ctx context.Context, groupID, username string) (*models.Membership, error)
}

// Store is the full persistence surface of the server.
type Store interface {
	SnapshotStore
	AccountStore
	GroupStore

	// Close releases any resources held by the store.
	Close() error
}
