package main

import (
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fennelhq/fennel/internal/cli"
	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/propose"
	"github.com/fennelhq/fennel/internal/score"
	"github.com/fennelhq/fennel/internal/service"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [expense-id]",
		Short: "Show review-completeness scores",
		Long: `Score how ready an expense is for approval. With --all, every expense
awaiting review is scored in one pass.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScore,
	}

	cmd.Flags().Bool("all", false, "score every expense awaiting review")

	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
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

	builder, err := buildBuilder(store)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	if !all {
		if len(args) != 1 {
			return fmt.Errorf("expense id required unless --all is given")
		}
		expenseID, idErr := parseExpenseID(args[0])
		if idErr != nil {
			return idErr
		}
		expense, getErr := store.GetExpenseByID(ctx, expenseID)
		if getErr != nil {
			return getErr
		}
		if expense == nil {
			return fmt.Errorf("expense %s does not exist", expenseID)
		}
		return scoreOne(cmd, builder, expense, user, nil)
	}

	status := model.StatusNeedsReview
	expenses, err := store.ListExpenses(ctx, service.ExpenseFilter{UserID: user, Status: &status})
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		cmd.Println(cli.SubtleStyle.Render("No expenses awaiting review."))
		return nil
	}

	bar := progressbar.NewOptions(len(expenses),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scoring expenses..."),
	)

	for i := range expenses {
		expense := &expenses[i]
		// Preload files once per expense so the builder and the engine
		// behind it share one fetch instead of issuing their own.
		files, filesErr := store.GetExpenseFilesByExpenseID(ctx, expense.ID)
		if filesErr != nil {
			return filesErr
		}
		if err := scoreOne(cmd, builder, expense, user, files); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	cmd.Println()
	return nil
}

func scoreOne(cmd *cobra.Command, builder *propose.Builder, expense *model.Expense, user string, files []model.ExpenseFile) error {
	proposed, err := builder.Build(cmd.Context(), expense, user, files)
	if err != nil {
		return err
	}

	overall := score.OverallScore(expense, proposed)
	label := score.ReviewScoreLabel(overall)

	supplier := expense.SupplierName
	if supplier == "" {
		supplier = "(no supplier)"
	}
	cmd.Printf("%s  %-20s  %s  %s\n",
		expense.ID,
		supplier,
		cli.ScoreStyle(overall).Render(fmt.Sprintf("%3d/100", overall)),
		label)

	if missing := score.MissingRequiredFields(expense); len(missing) > 0 {
		cmd.Println(cli.SubtleStyle.Render("    missing: " + strings.Join(missing, ", ")))
	}
	return nil
}
