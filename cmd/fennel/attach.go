package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fennelhq/fennel/internal/autofill"
	"github.com/fennelhq/fennel/internal/cli"
	"github.com/fennelhq/fennel/internal/model"
)

func attachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach <expense-id> <filename>",
		Short: "Record a receipt file for an expense",
		Long: `Record a receipt attachment. With --autofill, still-default fields are
filled from the filename and from suggestion rules immediately.`,
		Args: cobra.ExactArgs(2),
		RunE: runAttach,
	}

	cmd.Flags().Bool("autofill", false, "run autofill after attaching")

	return cmd
}

func runAttach(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	expenseID, err := parseExpenseID(args[0])
	if err != nil {
		return err
	}
	filename := args[1]

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	existing, err := store.GetExpenseFilesByExpenseID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to check existing files: %w", err)
	}

	file := &model.ExpenseFile{
		ExpenseID:        expenseID,
		OriginalFilename: filename,
	}
	if err := store.AddExpenseFile(ctx, file); err != nil {
		return fmt.Errorf("failed to attach file: %w", err)
	}
	cmd.Println(cli.FormatSuccess(fmt.Sprintf("Attached %q to expense %s", filename, expenseID)))

	if runAuto, _ := cmd.Flags().GetBool("autofill"); !runAuto {
		return nil
	}

	applier, err := buildApplier(store)
	if err != nil {
		return err
	}

	expense, err := applier.Apply(ctx, expenseID, autofill.Context{
		Filename:       filename,
		UserID:         user,
		IsFirstReceipt: len(existing) == 0,
	})
	if err != nil {
		return err
	}
	if expense == nil {
		return fmt.Errorf("expense %s does not exist", expenseID)
	}

	cmd.Println(cli.FormatSuccess("Autofill applied"))
	return nil
}
