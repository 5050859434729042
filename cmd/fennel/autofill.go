package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fennelhq/fennel/internal/autofill"
	"github.com/fennelhq/fennel/internal/cli"
	"github.com/fennelhq/fennel/internal/common"
	"github.com/fennelhq/fennel/internal/model"
)

func autofillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autofill <expense-id>",
		Short: "Autofill still-default fields of an expense",
		Long: `Apply high-confidence proposals to the expense. Only fields still in
their default state are written; expenses not awaiting review are left
untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: runAutofill,
	}

	cmd.Flags().String("filename", "", "receipt filename to extract fields from")

	return cmd
}

func runAutofill(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	expenseID, err := parseExpenseID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	filename, _ := cmd.Flags().GetString("filename")
	if filename == "" {
		// Fall back to the most recently attached receipt.
		files, filesErr := store.GetExpenseFilesByExpenseID(ctx, expenseID)
		if filesErr != nil {
			return filesErr
		}
		if len(files) > 0 {
			filename = files[0].OriginalFilename
			common.LogDebug("Using most recent attachment for extraction", common.Fields{
				"expense_id": expenseID,
				"filename":   filename,
			})
		}
	}

	applier, err := buildApplier(store)
	if err != nil {
		return err
	}

	before, err := store.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return err
	}
	if before == nil {
		return fmt.Errorf("expense %s does not exist", expenseID)
	}

	after, err := applier.Apply(ctx, expenseID, autofill.Context{
		Filename: filename,
		UserID:   user,
	})
	if err != nil {
		return err
	}

	if before.Status != model.StatusNeedsReview {
		cmd.Println(cli.FormatWarning(fmt.Sprintf("Expense is %s; autofill only acts on expenses awaiting review", before.Status)))
		return nil
	}
	if after.UpdatedAt.Equal(before.UpdatedAt) {
		cmd.Println(cli.SubtleStyle.Render("Nothing to autofill; no field cleared its gate."))
		return nil
	}

	cmd.Println(cli.FormatSuccess(fmt.Sprintf("Autofilled expense %s", expenseID)))
	printDiff(cmd, before, after)
	return nil
}

func printDiff(cmd *cobra.Command, before, after *model.Expense) {
	if before.SupplierName != after.SupplierName {
		cmd.Printf("  supplier: %q → %q\n", before.SupplierName, after.SupplierName)
	}
	if derefString(before.Description) != derefString(after.Description) {
		cmd.Printf("  description: %q\n", derefString(after.Description))
	}
	if !before.ExpenseDate.Equal(after.ExpenseDate) {
		cmd.Printf("  date: %s → %s\n", before.ExpenseDate.Format("2006-01-02"), after.ExpenseDate.Format("2006-01-02"))
	}
	if before.GrossAmountCents != after.GrossAmountCents {
		cmd.Printf("  amount: %s → %s\n",
			formatAmount(before.GrossAmountCents, before.Currency),
			formatAmount(after.GrossAmountCents, after.Currency))
	}
	if derefCategory(before.Category) != derefCategory(after.Category) {
		cmd.Printf("  category: %s\n", derefCategory(after.Category))
	}
	if before.VatMode != after.VatMode {
		cmd.Printf("  vat mode: %s → %s\n", before.VatMode, after.VatMode)
	}
	if before.BusinessUsePct != after.BusinessUsePct {
		cmd.Printf("  business use: %d%% → %d%%\n", before.BusinessUsePct, after.BusinessUsePct)
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefCategory(c *model.Category) model.Category {
	if c == nil {
		return ""
	}
	return *c
}
