package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fennelhq/fennel/internal/cli"
	"github.com/fennelhq/fennel/internal/score"
)

func proposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "propose <expense-id>",
		Short: "Preview proposed autofill values for an expense",
		Long: `Build the preview of proposed field values: only fields still in their
default state receive a proposal, and each proposal carries the
confidence and reason a reviewer would see.`,
		Args: cobra.ExactArgs(1),
		RunE: runPropose,
	}
}

func runPropose(cmd *cobra.Command, args []string) error {
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

	expense, err := store.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense == nil {
		return fmt.Errorf("expense %s does not exist", expenseID)
	}

	builder, err := buildBuilder(store)
	if err != nil {
		return err
	}

	proposed, err := builder.Build(ctx, expense, user, nil)
	if err != nil {
		return err
	}

	if len(proposed) == 0 {
		cmd.Println(cli.SubtleStyle.Render("Nothing to propose; all fields are set."))
	} else {
		cmd.Println(cli.TitleStyle.Render("Proposed fields"))
		for _, field := range sortedFields(proposed) {
			pf := proposed[field]
			cmd.Printf("%s %v  %s\n",
				cli.BoldStyle.Render(string(field)+":"),
				formatProposedValue(field, pf.Value),
				cli.SubtleStyle.Render(fmt.Sprintf("[%.2f, %s] %s", pf.Confidence, pf.Source, pf.Reason)))
		}
	}

	overall := score.OverallScore(expense, proposed)
	cmd.Printf("\nReview score: %s  %s\n",
		cli.ScoreStyle(overall).Render(fmt.Sprintf("%d/100", overall)),
		cli.BoldStyle.Render(score.ReviewScoreLabel(overall)))

	if missing := score.MissingRequiredFields(expense); len(missing) > 0 {
		cmd.Println(cli.FormatWarning("Missing: " + strings.Join(missing, ", ")))
	}
	return nil
}
