// Package ledger owns the authoritative state of one group's shared expenses:
// the member set and the ordered expense list. Every mutation is written
// through to a storage.SnapshotStore before it becomes visible.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// RegisterResult tells the caller whether RegisterUser changed the member set.
// The zero value is returned together with an error.
type RegisterResult int

const (
	Added RegisterResult = iota + 1
	AlreadyMember
)

func (r RegisterResult) String() string {
	switch r {
	case Added:
		return "added"
	case AlreadyMember:
		return "already_member"
	default:
		return "unknown"
	}
}

// RestoreStatus describes how Restore obtained the ledger state.
type RestoreStatus int

const (
	// Loaded means the stored snapshot was read successfully.
	Loaded RestoreStatus = iota
	// Missing means nothing was stored yet; the ledger starts empty.
	Missing
	// Recovered means the stored snapshot was corrupt; the ledger starts empty.
	Recovered
)

func (s RestoreStatus) String() string {
	switch s {
	case Missing:
		return "missing"
	case Recovered:
		return "recovered"
	default:
		return "loaded"
	}
}

// ExpenseInput is the caller-supplied part of a new expense.
type ExpenseInput struct {
	PaidBy string
	// Amount is the raw user input; it is parsed as a decimal number.
	Amount      string
	Description string
	// Participants defaults to every current member when empty.
	Participants []string
	// Date defaults to today on the ledger clock when zero.
	Date models.Date
	// Category is stored with the expense when non-nil.
	Category *string
}

// Ledger is one group's member set and expense list.
// It is safe for concurrent use; writers are serialized.
type Ledger struct {
	id     string
	store  storage.SnapshotStore
	logger *slog.Logger
	now    func() time.Time
	strict bool

	mu    sync.RWMutex
	state models.Snapshot
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for default expense dates.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithStrictAmounts rejects zero and negative expense amounts.
func WithStrictAmounts() Option {
	return func(l *Ledger) { l.strict = true }
}

// New creates an empty ledger without touching the store.
func New(id string, store storage.SnapshotStore, opts ...Option) *Ledger {
	l := &Ledger{
		id:     id,
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		state:  models.Snapshot{Expenses: []models.Expense{}, Users: []string{}},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("ledger_id", id)
	return l
}

// Open creates a ledger and restores its state from the store.
// A missing or corrupt snapshot yields an empty ledger. Any other load
// failure, including a cancelled ctx, is returned and no ledger is created.
func Open(ctx context.Context, id string, store storage.SnapshotStore, opts ...Option) (*Ledger, RestoreStatus, error) {
	l := New(id, store, opts...)
	status, err := l.Restore(ctx)
	if err != nil {
		return nil, status, err
	}
	return l, status, nil
}

// ID returns the ledger identifier used by the store.
func (l *Ledger) ID() string {
	return l.id
}

// Restore replaces the in-memory state with the stored snapshot.
// Only a missing or corrupt snapshot resets the state to empty; on any other
// error the state is left as it was and the error is returned wrapped in
// models.ErrPersistence.
func (l *Ledger) Restore(ctx context.Context) (RestoreStatus, error) {
	snap, err := l.store.LoadSnapshot(ctx, l.id)

	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case err == nil:
		snap.Users = snap.SortedUsers()
		l.state = snap.Clone()
		l.logger.Debug("Restored ledger", "users", len(snap.Users), "expenses", len(snap.Expenses))
		return Loaded, nil
	case errors.Is(err, storage.ErrNotFound):
		l.state = models.Snapshot{Expenses: []models.Expense{}, Users: []string{}}
		return Missing, nil
	case errors.Is(err, storage.ErrCorrupt):
		metrics.PersistenceFailures.WithLabelValues(metrics.PathRead).Inc()
		l.logger.Warn("Stored ledger is corrupt, starting empty", "error", err)
		l.state = models.Snapshot{Expenses: []models.Expense{}, Users: []string{}}
		return Recovered, nil
	default:
		metrics.PersistenceFailures.WithLabelValues(metrics.PathRead).Inc()
		l.logger.Warn("Failed to restore ledger", "error", err)
		return 0, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
}

// Snapshot returns a deep copy of the current state with users in lexicographic order.
func (l *Ledger) Snapshot() models.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone()
}

// Persist writes the current state to the store.
func (l *Ledger) Persist(ctx context.Context) error {
	l.mu.RLock()
	snap := l.state.Clone()
	l.mu.RUnlock()
	return l.save(ctx, &snap)
}

// RegisterUser adds name to the member set. Registering an existing member
// is not an error and leaves the ledger unchanged. The result is zero when
// err is non-nil.
func (l *Ledger) RegisterUser(ctx context.Context, name string) (RegisterResult, error) {
	if strings.TrimSpace(name) == "" {
		return 0, models.ErrEmptyHandle
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.HasUser(name) {
		return AlreadyMember, nil
	}

	next := l.state.Clone()
	next.Users = append(next.Users, name)
	sort.Strings(next.Users)

	if err := l.commit(ctx, next); err != nil {
		return 0, err
	}
	metrics.UsersRegistered.Inc()
	l.logger.Info("Registered user", "user", name)
	return Added, nil
}

// RecordExpense validates the input and appends a new expense, with its
// category when one is given, in a single write. On any failure the ledger
// is unchanged.
func (l *Ledger) RecordExpense(ctx context.Context, in ExpenseInput) (models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.state.HasUser(in.PaidBy) {
		return models.Expense{}, fmt.Errorf("%w: %q", models.ErrUnknownPayer, in.PaidBy)
	}

	amount, err := models.ParseAmount(in.Amount)
	if err != nil {
		return models.Expense{}, err
	}
	if l.strict && !amount.IsPositive() {
		return models.Expense{}, fmt.Errorf("%w: %q must be positive", models.ErrInvalidAmount, in.Amount)
	}

	date := in.Date
	if date.IsZero() {
		date = models.DateOf(l.now())
	}

	participants, err := l.resolveParticipants(in.Participants)
	if err != nil {
		return models.Expense{}, err
	}

	expense := models.Expense{
		ID:           l.state.NextExpenseID(),
		PaidBy:       in.PaidBy,
		Amount:       amount,
		Description:  in.Description,
		Date:         date,
		Participants: participants,
	}
	if in.Category != nil {
		category := *in.Category
		expense.Category = &category
	}

	next := l.state.Clone()
	next.Expenses = append(next.Expenses, expense)
	if err := l.commit(ctx, next); err != nil {
		return models.Expense{}, err
	}

	metrics.ExpensesRecorded.Inc()
	l.logger.Info("Recorded expense",
		"expense_id", expense.ID,
		"paid_by", expense.PaidBy,
		"amount", expense.Amount.String(),
		"participants", len(expense.Participants),
		"category", expense.CategoryName(),
	)
	return expense.Clone(), nil
}

// resolveParticipants returns every member when requested is empty, otherwise
// the requested handles. Each handle must be a member and appear once.
// Caller must hold l.mu.
func (l *Ledger) resolveParticipants(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return append([]string{}, l.state.Users...), nil
	}

	members := l.state.Members()
	seen := make(map[string]struct{}, len(requested))
	participants := make([]string, 0, len(requested))
	for _, p := range requested {
		if _, ok := members[p]; !ok {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownParticipant, p)
		}
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("%w: %q", models.ErrDuplicateParticipant, p)
		}
		seen[p] = struct{}{}
		participants = append(participants, p)
	}
	return participants, nil
}

// SetCategory sets the category of an existing expense.
func (l *Ledger) SetCategory(ctx context.Context, expenseID int, category string) (models.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, e := range l.state.Expenses {
		if e.ID == expenseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Expense{}, fmt.Errorf("%w: %d", models.ErrExpenseNotFound, expenseID)
	}

	next := l.state.Clone()
	next.Expenses[idx].Category = &category
	if err := l.commit(ctx, next); err != nil {
		return models.Expense{}, err
	}

	l.logger.Info("Categorized expense", "expense_id", expenseID, "category", category)
	return next.Expenses[idx].Clone(), nil
}

// commit persists next and then makes it the current state. Caller must hold l.mu.
func (l *Ledger) commit(ctx context.Context, next models.Snapshot) error {
	if err := l.save(ctx, &next); err != nil {
		return err
	}
	l.state = next
	return nil
}

func (l *Ledger) save(ctx context.Context, snap *models.Snapshot) error {
	if err := l.store.SaveSnapshot(ctx, l.id, snap); err != nil {
		metrics.PersistenceFailures.WithLabelValues(metrics.PathWrite).Inc()
		l.logger.Error("Failed to persist ledger", "error", err)
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return nil
}
