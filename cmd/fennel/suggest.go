package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fennelhq/fennel/internal/cli"
	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/score"
)

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <expense-id>",
		Short: "Show raw rule suggestions for an expense",
		Long: `Evaluate the suggestion rules and print every resolved suggestion with
its confidence and reason, irrespective of the expense's current state.`,
		Args: cobra.ExactArgs(1),
		RunE: runSuggest,
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
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

	engine, err := buildEngine(store)
	if err != nil {
		return err
	}

	suggestions, err := engine.Suggest(ctx, expenseID, user)
	if err != nil {
		return err
	}

	if len(suggestions) == 0 {
		cmd.Println(cli.SubtleStyle.Render("No suggestions."))
		return nil
	}

	cmd.Println(cli.TitleStyle.Render("Suggestions"))
	for _, field := range sortedFields(suggestions) {
		suggestion := suggestions[field]
		level := score.ConfidenceLevel(suggestion.Confidence)
		cmd.Printf("%s %s = %v  %s\n",
			cli.BoldStyle.Render(string(field)+":"),
			cli.SubtleStyle.Render(fmt.Sprintf("[%.2f %s, %s]", suggestion.Confidence, level, suggestion.Source)),
			formatProposedValue(field, suggestion.Value),
			cli.SubtleStyle.Render(suggestion.Reason))
	}
	return nil
}

func sortedFields[V any](m map[model.Field]V) []model.Field {
	fields := make([]model.Field, 0, len(m))
	for field := range m {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
