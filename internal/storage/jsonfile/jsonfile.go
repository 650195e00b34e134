// Package jsonfile provides a storage.SnapshotStore that keeps one JSON file per ledger.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ensure Store implements storage.SnapshotStore
var _ storage.SnapshotStore = (*Store)(nil)

// Store keeps ledger snapshots as <dir>/<ledgerID>.json.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Path returns the file that holds a ledger's snapshot.
func (s *Store) Path(ledgerID string) (string, error) {
	if ledgerID == "" || ledgerID == "." || ledgerID == ".." || strings.ContainsAny(ledgerID, `/\`) {
		return "", fmt.Errorf("invalid ledger id %q", ledgerID)
	}
	return filepath.Join(s.dir, ledgerID+".json"), nil
}

// snapshotFile is the on-disk layout. Pointer fields detect missing keys.
type snapshotFile struct {
	Expenses []expenseRecord `json:"expenses"`
	Users    []string        `json:"users"`
}

type expenseRecord struct {
	ID           *int           `json:"id"`
	PaidBy       *string        `json:"paid_by"`
	Amount       *models.Amount `json:"amount"`
	Description  *string        `json:"description"`
	Date         *models.Date   `json:"date"`
	Participants []string       `json:"participants"`
	Category     *string        `json:"category,omitempty"`
}

func (r expenseRecord) toExpense(index int) (models.Expense, error) {
	missing := func(field string) error {
		return fmt.Errorf("expense #%d: missing %s", index+1, field)
	}
	switch {
	case r.ID == nil:
		return models.Expense{}, missing("id")
	case r.PaidBy == nil:
		return models.Expense{}, missing("paid_by")
	case r.Amount == nil:
		return models.Expense{}, missing("amount")
	case r.Description == nil:
		return models.Expense{}, missing("description")
	case r.Date == nil:
		return models.Expense{}, missing("date")
	case r.Participants == nil:
		return models.Expense{}, missing("participants")
	}
	return models.Expense{
		ID:           *r.ID,
		PaidBy:       *r.PaidBy,
		Amount:       *r.Amount,
		Description:  *r.Description,
		Date:         *r.Date,
		Participants: r.Participants,
		Category:     r.Category,
	}, nil
}

// LoadSnapshot reads and validates a ledger's snapshot file.
// A file that fails to decode or validate is moved aside so that the next
// save does not overwrite it, and ErrCorrupt is returned.
func (s *Store) LoadSnapshot(ctx context.Context, ledgerID string) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(ledgerID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ledger %s: %w", ledgerID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap, err := decode(data)
	if err != nil {
		s.quarantine(path, err)
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrCorrupt, path, err)
	}
	return snap, nil
}

func decode(data []byte) (*models.Snapshot, error) {
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		Users:    append([]string{}, file.Users...),
		Expenses: make([]models.Expense, 0, len(file.Expenses)),
	}
	for i, rec := range file.Expenses {
		e, err := rec.toExpense(i)
		if err != nil {
			return nil, err
		}
		snap.Expenses = append(snap.Expenses, e)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// quarantine renames an unreadable snapshot to <file>.corrupt-<timestamp>.
func (s *Store) quarantine(path string, cause error) {
	target := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405"))
	if err := os.Rename(path, target); err != nil {
		s.logger.Error("Failed to quarantine corrupt snapshot", "path", path, "error", err)
		return
	}
	s.logger.Warn("Quarantined corrupt snapshot", "path", path, "moved_to", target, "cause", cause)
}

// SaveSnapshot writes the snapshot to a temp file in the same directory,
// syncs it, and renames it over the previous file.
func (s *Store) SaveSnapshot(ctx context.Context, ledgerID string, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(ledgerID)
	if err != nil {
		return err
	}

	normalized := snap.Clone()
	data, err := json.MarshalIndent(&normalized, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+ledgerID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
