// Package models defines the core domain models for splitledger.
//
// # Ledger Models
//
//   - Expense: one shared payment, split equally among its participants
//   - Snapshot: the full (members, expenses) state of one ledger
//   - Amount and Date: value types with the wire format used by snapshot files
//
// Members are identified by case-sensitive name handles. Accounts and groups are
// a concern of the service layer and live alongside, referencing ledgers by ID.
//
// # Design Principles
//
// 1. **Typed records**: snapshots decode into fixed-shape structs and are validated
// before a ledger accepts them
// 2. **Decimal money**: amounts are decimals, never binary floats, until they are
// rendered for display
// 3. **Shared sentinels**: validation failures are the sentinel errors in errors.go
package models
