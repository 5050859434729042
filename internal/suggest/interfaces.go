// Package suggest evaluates rule-based field suggestions for expenses.
// Every suggestion is deterministic and carries a confidence plus a
// human-readable reason, so each proposal can be audited.
package suggest

import (
	"context"

	"github.com/fennelhq/fennel/internal/model"
)

// Rule evaluates one heuristic over an expense and its context and returns
// zero or more field suggestions. Rules are pure: all data they may inspect
// arrives through the RuleContext.
type Rule interface {
	// Name identifies the rule in logs.
	Name() string
	// Evaluate returns the rule's suggestions for the expense.
	Evaluate(ctx context.Context, rc *RuleContext) []model.Suggestion
}

// RuleContext carries everything a rule may inspect: the expense, its
// attached receipt files, the supplier history for the acting user, and
// the suggestions collected from rules that ran earlier in the ordered
// rule list.
type RuleContext struct {
	Expense   *model.Expense
	Files     []model.ExpenseFile
	History   []model.Expense
	Collected []model.Suggestion
}

// EffectiveCategory resolves the category a later rule should reason about:
// a supplier-history proposal wins, then a keyword proposal, then whatever
// the expense already has.
func (rc *RuleContext) EffectiveCategory() *model.Category {
	for _, source := range []model.Source{model.SourceSupplierMemory, model.SourceKeyword} {
		for _, s := range rc.Collected {
			if s.Field != model.FieldCategory || s.Source != source {
				continue
			}
			if category, ok := s.Value.(model.Category); ok {
				return &category
			}
		}
	}
	return rc.Expense.Category
}
