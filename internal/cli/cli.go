// Package cli implements the splitledger command line tool, which works on a
// single ledger stored as a JSON file.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/jsonfile"
	"github.com/mmynk/splitledger/pkg/logging"
)

type rootOptions struct {
	dataDir  string
	ledgerID string
	strict   bool
	verbose  bool
}

// NewRootCmd builds the splitledger command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "splitledger",
		Short:         "Track shared expenses and settle up",
		Long:          `Track shared expenses among a group and compute the fewest payments that settle everyone's balance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.dataDir, "data-dir", "d", ".", "Directory holding ledger files")
	root.PersistentFlags().StringVarP(&opts.ledgerID, "ledger", "l", "expenses", "Ledger name; stored as <data-dir>/<ledger>.json")
	root.PersistentFlags().BoolVar(&opts.strict, "strict", false, "Reject zero and negative amounts")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newUserCmd(opts),
		newExpenseCmd(opts),
		newSummaryCmd(opts),
		newSettleCmd(opts),
		newStatementCmd(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) open(cmd *cobra.Command) (*ledger.Ledger, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(logging.NewHandler(cmd.ErrOrStderr(), level, os.Getenv("LOG_FORMAT")))

	store, err := jsonfile.New(o.dataDir, logger)
	if err != nil {
		return nil, err
	}

	ledgerOpts := []ledger.Option{ledger.WithLogger(logger)}
	if o.strict {
		ledgerOpts = append(ledgerOpts, ledger.WithStrictAmounts())
	}

	l, status, err := ledger.Open(cmd.Context(), o.ledgerID, store, ledgerOpts...)
	if err != nil {
		return nil, err
	}
	if status == ledger.Recovered {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: ledger %q was unreadable and has been set aside; starting empty.\n", o.ledgerID)
	}
	return l, nil
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage ledger members",
	}
	userCmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			result, err := l.RegisterUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if result == ledger.AlreadyMember {
				fmt.Fprintf(cmd.OutOrStdout(), "User '%s' already exists.\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' added successfully.\n", args[0])
			return nil
		},
	})
	userCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			for _, u := range l.Snapshot().Users {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	})
	return userCmd
}

func newExpenseCmd(opts *rootOptions) *cobra.Command {
	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and inspect expenses",
	}

	var (
		paidBy, amount, description, date, category string
		participants                                []string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense split equally among participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(cmd)
			if err != nil {
				return err
			}

			input := ledger.ExpenseInput{
				PaidBy:       paidBy,
				Amount:       amount,
				Description:  description,
				Participants: trimAll(participants),
			}
			if date != "" {
				if input.Date, err = models.ParseDate(date); err != nil {
					return err
				}
			}
			if category != "" {
				input.Category = &category
			}

			e, err := l.RecordExpense(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.Confirmation())
			return nil
		},
	}
	addCmd.Flags().StringVarP(&paidBy, "paid-by", "p", "", "Member who paid")
	addCmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount paid")
	addCmd.Flags().StringVar(&description, "description", "", "What the expense was for")
	addCmd.Flags().StringSliceVar(&participants, "participants", nil, "Comma-separated members sharing the cost (default: everyone)")
	addCmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default: today)")
	addCmd.Flags().StringVarP(&category, "category", "c", "", "Optional category")
	_ = addCmd.MarkFlagRequired("paid-by")
	_ = addCmd.MarkFlagRequired("amount")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			snap := l.Snapshot()
			if len(snap.Expenses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No expenses added yet.")
				return nil
			}
			for _, e := range snap.Expenses {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: %s - %s (%s, paid by %s, %s) [%s]\n",
					e.ID, e.Description, e.Amount.StringFixed(2), e.Date, e.PaidBy,
					strings.Join(e.Participants, ", "), e.CategoryName())
			}
			return nil
		},
	}

	categorizeCmd := &cobra.Command{
		Use:   "categorize ID CATEGORY",
		Short: "Set the category of an expense",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid expense id %q", args[0])
			}
			l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if _, err := l.SetCategory(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expense %d categorized as '%s'.\n", id, args[1])
			return nil
		},
	}

	expenseCmd.AddCommand(addCmd, listCmd, categorizeCmd)
	return expenseCmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show total spending by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			s := calculator.Summarize(l.Snapshot())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total: %s\n", s.TotalAmount.StringFixed(2))

			names := make([]string, 0, len(s.Categories))
			for name := range s.Categories {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %s: %s\n", name, s.Categories[name].StringFixed(2))
			}
			return nil
		},
	}
}

func newSettleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Show the payments that settle all balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			settlements := calculator.Settle(l.Snapshot())
			if len(settlements) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No settlements needed. Everyone is even.")
				return nil
			}
			for _, s := range settlements {
				fmt.Fprintln(cmd.OutOrStdout(), s.String())
			}
			return nil
		},
	}
}

func newStatementCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "statement NAME",
		Short: "Show what a member paid and owes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.open(cmd)
			if err != nil {
				return err
			}
			st, err := calculator.UserStatement(l.Snapshot(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Expense summary for %s:\n", st.Username)
			fmt.Fprintf(out, "Total paid: %s\n", st.TotalPaid.StringFixed(2))
			fmt.Fprintf(out, "Total owed: %s\n", st.TotalOwed.StringFixed(2))
			fmt.Fprintf(out, "Net balance: %s\n", st.NetBalance.StringFixed(2))
			fmt.Fprintln(out, st.Message())
			return nil
		},
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
