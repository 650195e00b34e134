package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	errNotAuthenticated = errors.New("authentication required")
	errNoAccess         = errors.New("you do not have access to this group")
	errNotAdmin         = errors.New("you do not have admin access to this group")
	errSaveFailed       = errors.New("failed to save ledger, please retry")
	errInternal         = errors.New("internal error")
)

// ledgerError maps ledger and engine errors to Connect errors. Validation
// failures keep their message; persistence and unexpected errors are logged
// and replaced with a generic message.
func ledgerError(logger *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, models.ErrUnknownPayer),
		errors.Is(err, models.ErrUnknownParticipant),
		errors.Is(err, models.ErrDuplicateParticipant),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrEmptyHandle):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrUnknownUser),
		errors.Is(err, models.ErrExpenseNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrPersistence):
		logger.Error(op+" failed to persist", "error", err)
		return connect.NewError(connect.CodeInternal, errSaveFailed)
	default:
		logger.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}
