package models

// Role is an account's role within a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Group is a named ledger shared by a set of accounts.
// The group ID is also the ledger ID used by the snapshot store.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// CreatedBy is the username of the account that created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership links an account to a group.
type Membership struct {
	GroupID  string
	Username string
	Role     Role
}
