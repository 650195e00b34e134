package models

import "time"

// Account is a registered login for the service layer.
//
// Accounts are separate from ledger members: a member is only a handle inside one
// ledger, while an account carries credentials. The username doubles as the member
// handle when an account joins a group.
type Account struct {
	// Username is the unique, case-sensitive login and member handle.
	Username string

	// Email is the contact address given at registration.
	Email string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewAccount creates an account stamped with the current time.
func NewAccount(username, email, passwordHash string) *Account {
	return &Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
