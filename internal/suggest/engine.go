package suggest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/service"
)

// SupplierHistoryLimit bounds how many previous expenses the supplier
// history rule may consider.
const SupplierHistoryLimit = 5

// Engine evaluates an ordered list of rules over an expense and resolves
// per-field conflicts by maximum confidence. It is read-only with respect
// to persisted state.
type Engine struct {
	store  service.Store
	logger *slog.Logger
	rules  []Rule
}

// NewEngine creates an engine with the standard rule set. The keyword
// dictionary is injected so alternate tables can be supplied from
// configuration or tests.
func NewEngine(store service.Store, keywords KeywordDictionary, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		logger: logger,
		// Order matters: the VAT heuristic reads categories collected by
		// the two rules before it, and ties resolve toward earlier rules.
		rules: []Rule{
			SupplierHistoryRule{},
			NewKeywordMatchRule(keywords),
			CategoryVatHeuristicRule{},
			CurrencyGuardRule{},
		},
	}
}

// Suggest loads the expense and evaluates all rules. A missing expense
// yields empty suggestions, not an error.
func (e *Engine) Suggest(ctx context.Context, expenseID uuid.UUID, userID string) (model.Suggestions, error) {
	expense, err := e.store.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	if expense == nil {
		return model.Suggestions{}, nil
	}
	return e.SuggestFor(ctx, expense, userID, nil)
}

// SuggestFor evaluates all rules for an already-loaded expense. Batch
// callers may pass preloaded receipt files to skip the per-expense store
// round trip; nil means "fetch them here".
func (e *Engine) SuggestFor(ctx context.Context, expense *model.Expense, userID string, preloadedFiles []model.ExpenseFile) (model.Suggestions, error) {
	files := preloadedFiles
	if files == nil {
		var err error
		files, err = e.store.GetExpenseFilesByExpenseID(ctx, expense.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load expense files: %w", err)
		}
	}

	history, err := e.loadSupplierHistory(ctx, expense, userID)
	if err != nil {
		return nil, err
	}

	rc := &RuleContext{
		Expense: expense,
		Files:   files,
		History: history,
	}

	for _, rule := range e.rules {
		for _, suggestion := range rule.Evaluate(ctx, rc) {
			if err := suggestion.Validate(); err != nil {
				e.logger.Warn("Dropping malformed suggestion",
					"rule", rule.Name(),
					"field", suggestion.Field,
					"error", err)
				continue
			}
			rc.Collected = append(rc.Collected, suggestion)
		}
	}

	resolved := resolve(rc.Collected)
	e.logger.Debug("Evaluated suggestion rules",
		"expense_id", expense.ID,
		"collected", len(rc.Collected),
		"resolved", len(resolved))
	return resolved, nil
}

// loadSupplierHistory fetches up to SupplierHistoryLimit confirmed expenses
// sharing the normalized supplier, excluding the expense itself.
func (e *Engine) loadSupplierHistory(ctx context.Context, expense *model.Expense, userID string) ([]model.Expense, error) {
	normalized := model.NormalizeSupplier(expense.SupplierName)
	if normalized == "" {
		return nil, nil
	}

	// Fetch one extra row so excluding the expense itself still leaves a
	// full window.
	rows, err := e.store.ListSupplierHistory(ctx, userID, normalized, SupplierHistoryLimit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier history: %w", err)
	}

	history := make([]model.Expense, 0, len(rows))
	for _, row := range rows {
		if row.ID == expense.ID {
			continue
		}
		history = append(history, row)
		if len(history) == SupplierHistoryLimit {
			break
		}
	}
	return history, nil
}

// resolve keeps, per field, the suggestion with strictly highest
// confidence. Earlier rules win ties because only a strictly higher
// confidence replaces an entry.
func resolve(collected []model.Suggestion) model.Suggestions {
	resolved := make(model.Suggestions, len(collected))
	for _, suggestion := range collected {
		existing, ok := resolved[suggestion.Field]
		if !ok || suggestion.Confidence > existing.Confidence {
			resolved[suggestion.Field] = suggestion
		}
	}
	return resolved
}
