package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fennelhq/fennel/internal/cli"
	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/service"
	"github.com/fennelhq/fennel/internal/suggest"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Manage expense records",
		Long:  `Create and list the expense records the suggestion engine works on.`,
	}

	cmd.AddCommand(expensesAddCmd())
	cmd.AddCommand(expensesListCmd())

	return cmd
}

func expensesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new expense",
		Long:  `Create an expense awaiting review. Unset fields keep their defaults and stay eligible for autofill.`,
		RunE:  runExpensesAdd,
	}

	cmd.Flags().String("supplier", "", "supplier name")
	cmd.Flags().String("date", "", "expense date (YYYY-MM-DD, default today)")
	cmd.Flags().Int64("amount-cents", 0, "gross amount in cents")
	cmd.Flags().String("currency", "EUR", "3-letter currency code")
	cmd.Flags().String("category", "", "expense category")

	return cmd
}

func runExpensesAdd(cmd *cobra.Command, _ []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	supplier, _ := cmd.Flags().GetString("supplier")
	amountCents, _ := cmd.Flags().GetInt64("amount-cents")
	currency, _ := cmd.Flags().GetString("currency")

	expense := &model.Expense{
		UserID:           user,
		SupplierName:     supplier,
		GrossAmountCents: amountCents,
		Currency:         currency,
	}

	if dateArg, _ := cmd.Flags().GetString("date"); dateArg != "" {
		date, parseErr := time.Parse("2006-01-02", dateArg)
		if parseErr != nil {
			return fmt.Errorf("invalid date %q: %w", dateArg, parseErr)
		}
		expense.ExpenseDate = date
	}
	if categoryArg, _ := cmd.Flags().GetString("category"); categoryArg != "" {
		category := suggest.CategoryOrDefault(categoryArg)
		expense.Category = &category
	}

	if err := store.CreateExpense(ctx, expense); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	cmd.Println(cli.FormatSuccess(fmt.Sprintf("Created expense %s", expense.ID)))
	return nil
}

func expensesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		RunE:  runExpensesList,
	}

	cmd.Flags().String("status", "", "filter by status (needs_review, approved, exported)")
	cmd.Flags().Int("limit", 50, "maximum number of expenses to show")

	return cmd
}

func runExpensesList(cmd *cobra.Command, _ []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	limit, _ := cmd.Flags().GetInt("limit")
	filter := service.ExpenseFilter{UserID: user, Limit: limit}
	if statusArg, _ := cmd.Flags().GetString("status"); statusArg != "" {
		status := model.ExpenseStatus(statusArg)
		filter.Status = &status
	}

	expenses, err := store.ListExpenses(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}

	if len(expenses) == 0 {
		cmd.Println(cli.SubtleStyle.Render("No expenses found."))
		return nil
	}

	cmd.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-36s  %-20s  %-12s  %-10s  %s",
		"ID", "Supplier", "Amount", "Date", "Status")))
	for _, expense := range expenses {
		supplier := expense.SupplierName
		if supplier == "" {
			supplier = "-"
		}
		cmd.Println(cli.TableCellStyle.Render(fmt.Sprintf("%-36s  %-20s  %-12s  %-10s  %s",
			expense.ID,
			supplier,
			formatAmount(expense.GrossAmountCents, expense.Currency),
			expense.ExpenseDate.Format("2006-01-02"),
			expense.Status)))
	}
	return nil
}
