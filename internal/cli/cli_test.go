package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--data-dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, "args: %v", args)
	return out
}

func TestUserAdd(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "User 'alice' added successfully.\n", mustRun(t, dir, "user", "add", "alice"))
	assert.Equal(t, "User 'alice' already exists.\n", mustRun(t, dir, "user", "add", "alice"))
	mustRun(t, dir, "user", "add", "bob")

	assert.Equal(t, "alice\nbob\n", mustRun(t, dir, "user", "list"))
	assert.FileExists(t, filepath.Join(dir, "expenses.json"))
}

func TestExpenseWorkflow(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"A", "B", "C"} {
		mustRun(t, dir, "user", "add", name)
	}

	out := mustRun(t, dir, "expense", "add",
		"--paid-by", "A", "--amount", "90", "--description", "Dinner",
		"--date", "2024-07-04", "--category", "food")
	assert.Equal(t, "Expense \"Dinner\" (90.00) added successfully.\n", out)

	out = mustRun(t, dir, "expense", "add",
		"--paid-by", "B", "--amount", "20", "--description", "Taxi",
		"--participants", "A,B", "--date", "2024-07-05")
	assert.Contains(t, out, "added successfully")

	out = mustRun(t, dir, "expense", "list")
	assert.Contains(t, out, "1: Dinner - 90.00 (2024-07-04, paid by A, A, B, C) [food]")
	assert.Contains(t, out, "2: Taxi - 20.00 (2024-07-05, paid by B, A, B) [Uncategorized]")

	assert.Equal(t, "Expense 2 categorized as 'transport'.\n",
		mustRun(t, dir, "expense", "categorize", "2", "transport"))

	out = mustRun(t, dir, "summary")
	assert.Contains(t, out, "Total: 110.00")
	assert.Contains(t, out, "food: 90.00")
	assert.Contains(t, out, "transport: 20.00")

	// A: +90 -30 -10 = 50, B: +20 -30 -10 = -20, C: -30
	out = mustRun(t, dir, "settle")
	assert.Contains(t, out, "C pays A 30.00")
	assert.Contains(t, out, "B pays A 20.00")

	out = mustRun(t, dir, "statement", "B")
	assert.Contains(t, out, "Total paid: 20.00")
	assert.Contains(t, out, "Total owed: 40.00")
	assert.Contains(t, out, "Net balance: -20.00")
	assert.Contains(t, out, "B owes 20.00")
}

func TestSettleWhenEven(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "user", "add", "A")

	assert.Equal(t, "No settlements needed. Everyone is even.\n", mustRun(t, dir, "settle"))
	assert.Equal(t, "No expenses added yet.\n", mustRun(t, dir, "expense", "list"))
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "user", "add", "A")

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown payer", args: []string{"expense", "add", "--paid-by", "Z", "--amount", "10", "--description", "x"}},
		{name: "bad amount", args: []string{"expense", "add", "--paid-by", "A", "--amount", "ten", "--description", "x"}},
		{name: "bad date", args: []string{"expense", "add", "--paid-by", "A", "--amount", "10", "--date", "07/04/2024"}},
		{name: "missing amount flag", args: []string{"expense", "add", "--paid-by", "A"}},
		{name: "unknown expense", args: []string{"expense", "categorize", "7", "food"}},
		{name: "non-numeric id", args: []string{"expense", "categorize", "seven", "food"}},
		{name: "unknown statement user", args: []string{"statement", "Z"}},
		{name: "strict rejects zero", args: []string{"--strict", "expense", "add", "--paid-by", "A", "--amount", "0"}},
		{name: "duplicate participant", args: []string{"expense", "add", "--paid-by", "A", "--amount", "10", "--participants", "A,A"}},
		{name: "amount out of range", args: []string{"expense", "add", "--paid-by", "A", "--amount", "1e400000000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dir, tt.args...)
			assert.Error(t, err)
		})
	}

	out := mustRun(t, dir, "expense", "list")
	assert.Equal(t, "No expenses added yet.\n", out)
}

func TestSeparateLedgers(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "--ledger", "trip", "user", "add", "A")
	mustRun(t, dir, "--ledger", "home", "user", "add", "B")

	assert.Equal(t, "A\n", mustRun(t, dir, "--ledger", "trip", "user", "list"))
	assert.Equal(t, "B\n", mustRun(t, dir, "--ledger", "home", "user", "list"))
}

func TestCorruptLedgerStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expenses.json"), []byte("{not json"), 0o644))

	assert.Equal(t, "User 'A' added successfully.\n", mustRun(t, dir, "user", "add", "A"))
	assert.Equal(t, "A\n", mustRun(t, dir, "user", "list"))
}
