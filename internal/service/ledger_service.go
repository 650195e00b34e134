package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/extract"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// Ensure LedgerService implements the handler interface
var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService. Every call runs as the
// account placed in the context by middleware.RequireAuth.
type LedgerService struct {
	store     storage.Store
	registry  *ledger.Registry
	extractor extract.Extractor
	logger    *slog.Logger
}

// NewLedgerService creates a LedgerService. extractor may be nil, in which
// case RecordFromText reports CodeUnimplemented.
func NewLedgerService(store storage.Store, registry *ledger.Registry, extractor extract.Extractor, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		store:     store,
		registry:  registry,
		extractor: extractor,
		logger:    logger,
	}
}

func caller(ctx context.Context) (string, error) {
	username := middleware.GetUsername(ctx)
	if username == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errNotAuthenticated)
	}
	return username, nil
}

// access loads the group and the caller's membership in it.
func (s *LedgerService) access(ctx context.Context, groupID string) (string, *models.Group, *models.Membership, error) {
	username, err := caller(ctx)
	if err != nil {
		return "", nil, nil, err
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("group %q not found", groupID))
	}
	if err != nil {
		s.logger.Error("GetGroup failed", "group_id", groupID, "error", err)
		return "", nil, nil, connect.NewError(connect.CodeInternal, errInternal)
	}

	membership, err := s.store.GetMembership(ctx, groupID, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, nil, connect.NewError(connect.CodePermissionDenied, errNoAccess)
	}
	if err != nil {
		s.logger.Error("GetMembership failed", "group_id", groupID, "error", err)
		return "", nil, nil, connect.NewError(connect.CodeInternal, errInternal)
	}

	return username, group, membership, nil
}

// ledgerFor returns the group's ledger, opening it from storage if needed.
func (s *LedgerService) ledgerFor(ctx context.Context, groupID string) (*ledger.Ledger, error) {
	l, err := s.registry.Get(ctx, groupID)
	if err == nil {
		return l, nil
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, connect.NewError(connect.CodeDeadlineExceeded, ctx.Err())
	case ctx.Err() != nil:
		return nil, connect.NewError(connect.CodeCanceled, ctx.Err())
	}
	s.logger.Error("Failed to open ledger", "group_id", groupID, "error", err)
	return nil, connect.NewError(connect.CodeUnavailable, errors.New("ledger is temporarily unavailable, please retry"))
}

// CreateGroup creates a group owned by the caller. The caller becomes the
// group admin and the first member of its ledger.
func (s *LedgerService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group name is required"))
	}

	group := &models.Group{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: username,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, errInternal)
	}

	l, err := s.ledgerFor(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	if _, err := l.RegisterUser(ctx, username); err != nil {
		return nil, ledgerError(s.logger, "CreateGroup", err)
	}

	s.logger.Info("Group created", "group_id", group.ID, "created_by", username)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group, models.RoleAdmin)}), nil
}

// ListGroups returns the caller's groups, oldest first.
func (s *LedgerService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, username)
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, errInternal)
	}

	out := make([]api.Group, 0, len(groups))
	for _, g := range groups {
		role := models.RoleMember
		if g.CreatedBy == username {
			role = models.RoleAdmin
		}
		out = append(out, toAPIGroup(g, role))
	}

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds an existing account to the group and its ledger. Admin only.
func (s *LedgerService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	_, _, membership, err := s.access(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if membership.Role != models.RoleAdmin {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotAdmin)
	}

	target := req.Msg.Username
	if _, err := s.store.GetAccount(ctx, target); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("user %q does not exist", target))
		}
		s.logger.Error("GetAccount failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, errInternal)
	}

	l, err := s.ledgerFor(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	// Membership goes first so a failed ledger write is repaired by a retry.
	// Both writes are idempotent.
	err = s.store.AddMembership(ctx, models.Membership{GroupID: req.Msg.GroupID, Username: target, Role: models.RoleMember})
	if err != nil {
		s.logger.Error("AddMembership failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, errInternal)
	}

	result, err := l.RegisterUser(ctx, target)
	if err != nil {
		return nil, ledgerError(s.logger, "AddMember", err)
	}

	message := fmt.Sprintf("User %s added successfully.", target)
	if result == ledger.AlreadyMember {
		message = fmt.Sprintf("User %s already exists.", target)
	}
	return connect.NewResponse(&api.AddMemberResponse{Result: result.String(), Message: message}), nil
}

// RecordExpense records an expense and, when given, its category.
func (s *LedgerService) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	if _, _, _, err := s.access(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}

	input := ledger.ExpenseInput{
		PaidBy:       req.Msg.PaidBy,
		Amount:       req.Msg.Amount,
		Description:  req.Msg.Description,
		Participants: req.Msg.Participants,
	}
	if req.Msg.Date != "" {
		date, err := models.ParseDate(req.Msg.Date)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		input.Date = date
	}

	return s.record(ctx, req.Msg.GroupID, input, strings.TrimSpace(req.Msg.Category))
}

// RecordFromText extracts an expense from free text and records it as the caller.
func (s *LedgerService) RecordFromText(ctx context.Context, req *connect.Request[api.RecordFromTextRequest]) (*connect.Response[api.ExpenseResponse], error) {
	username, _, _, err := s.access(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if s.extractor == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("expense extraction is not configured"))
	}

	text := strings.TrimSpace(req.Msg.Text)
	if text == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("no message provided"))
	}

	candidate, err := s.extractor.Extract(ctx, text)
	if err != nil {
		s.logger.Error("Extraction failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("expense extraction is unavailable"))
	}
	if candidate.Status != extract.StatusSuccess {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New(candidate.Message))
	}
	if !candidate.Amount.IsPositive() {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("%w: %s must be positive", models.ErrInvalidAmount, candidate.Amount.String()))
	}

	input := ledger.ExpenseInput{
		PaidBy:       resolveSelf(candidate.PaidBy, username),
		Amount:       candidate.Amount.String(),
		Description:  candidate.Description,
		Participants: make([]string, 0, len(candidate.Participants)),
		Date:         candidate.Date,
	}
	for _, p := range candidate.Participants {
		input.Participants = append(input.Participants, resolveSelf(p, username))
	}

	category := candidate.Category
	if strings.EqualFold(category, extract.DefaultCategory) {
		category = ""
	}

	return s.record(ctx, req.Msg.GroupID, input, category)
}

// resolveSelf maps the extractor's first-person placeholder to the caller.
func resolveSelf(name, username string) string {
	if strings.EqualFold(name, extract.DefaultPayer) {
		return username
	}
	return name
}

func (s *LedgerService) record(ctx context.Context, groupID string, input ledger.ExpenseInput, category string) (*connect.Response[api.ExpenseResponse], error) {
	l, err := s.ledgerFor(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if category != "" {
		input.Category = &category
	}

	expense, err := l.RecordExpense(ctx, input)
	if err != nil {
		return nil, ledgerError(s.logger, "RecordExpense", err)
	}

	return connect.NewResponse(&api.ExpenseResponse{Expense: expense, Message: expense.Confirmation()}), nil
}

// SetCategory sets the category of an existing expense.
func (s *LedgerService) SetCategory(ctx context.Context, req *connect.Request[api.SetCategoryRequest]) (*connect.Response[api.ExpenseResponse], error) {
	if _, _, _, err := s.access(ctx, req.Msg.GroupID); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(req.Msg.Category)
	if category == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("category is required"))
	}

	l, err := s.ledgerFor(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	expense, err := l.SetCategory(ctx, req.Msg.ExpenseID, category)
	if err != nil {
		return nil, ledgerError(s.logger, "SetCategory", err)
	}

	message := fmt.Sprintf("Expense %d categorized as %s.", expense.ID, category)
	return connect.NewResponse(&api.ExpenseResponse{Expense: expense, Message: message}), nil
}

// GetDashboard returns the group's ledger with its summary, settlements and
// the caller's statement.
func (s *LedgerService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	username, group, membership, err := s.access(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	l, err := s.ledgerFor(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	snap := l.Snapshot()

	resp := &api.GetDashboardResponse{
		Group:       toAPIGroup(group, membership.Role),
		Members:     snap.Users,
		Expenses:    snap.Expenses,
		Summary:     toAPISummary(calculator.Summarize(snap)),
		Settlements: toAPISettlements(calculator.Settle(snap)),
	}
	if st, err := calculator.UserStatement(snap, username); err == nil {
		statement := toAPIStatement(st)
		resp.Statement = &statement
	}

	return connect.NewResponse(resp), nil
}

// GetStatement returns one member's statement; the caller's own when no
// username is given.
func (s *LedgerService) GetStatement(ctx context.Context, req *connect.Request[api.GetStatementRequest]) (*connect.Response[api.GetStatementResponse], error) {
	username, _, _, err := s.access(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	target := req.Msg.Username
	if target == "" {
		target = username
	}

	l, err := s.ledgerFor(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	st, err := calculator.UserStatement(l.Snapshot(), target)
	if err != nil {
		return nil, ledgerError(s.logger, "GetStatement", err)
	}

	return connect.NewResponse(&api.GetStatementResponse{Statement: toAPIStatement(st)}), nil
}
