package models

import "errors"

// Validation and persistence failures reported by the ledger and the settlement engine.
// Callers match them with errors.Is; the wrapped message names the offending value.
var (
	ErrEmptyHandle          = errors.New("user handle is empty")
	ErrUnknownPayer         = errors.New("payer is not a member")
	ErrUnknownParticipant   = errors.New("participant is not a member")
	ErrDuplicateParticipant = errors.New("participant is listed more than once")
	ErrUnknownUser          = errors.New("user is not a member")
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrPersistence          = errors.New("failed to persist ledger")
)
