// Package autofill persists a bounded subset of high-confidence proposals
// back onto an expense, under strict non-destructive guarantees: only
// fields still in their default state are written, the update payload can
// never carry status or payment fields, and nothing is written when there
// is nothing to change.
package autofill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/parse"
	"github.com/fennelhq/fennel/internal/propose"
	"github.com/fennelhq/fennel/internal/service"
	"github.com/fennelhq/fennel/internal/suggest"
)

// Confidence thresholds for engine-sourced fields. Filename-sourced fields
// carry no threshold: a strict pattern match is treated as deterministic
// truth and only the gates decide.
const (
	CategoryConfidenceThreshold    = 0.7
	VatModeConfidenceThreshold     = 0.8
	BusinessUseConfidenceThreshold = 0.8
)

// VAT rates derived when German VAT is applied and a category is known.
const (
	ReducedVatRate  = 7.0
	StandardVatRate = 19.0
)

// Context carries the caller-supplied inputs for one apply invocation.
type Context struct {
	Filename       string
	UserID         string
	IsFirstReceipt bool
}

// Applier conditionally persists autofill values for an expense.
type Applier struct {
	store  service.Store
	engine *suggest.Engine
	logger *slog.Logger
	now    func() time.Time
}

// NewApplier creates an applier.
func NewApplier(store service.Store, engine *suggest.Engine, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		store:  store,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// Apply autofills still-default fields of the expense and persists them.
// It returns nil only when the expense does not exist. Expenses that are
// not awaiting review are returned unchanged without a store write, as is
// any expense for which no field cleared its gate.
func (a *Applier) Apply(ctx context.Context, expenseID uuid.UUID, actx Context) (*model.Expense, error) {
	expense, err := a.store.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	if expense == nil {
		return nil, nil
	}

	if expense.Status != model.StatusNeedsReview {
		a.logger.Debug("Skipping autofill, expense is not awaiting review",
			"expense_id", expenseID,
			"status", expense.Status)
		return expense, nil
	}

	var parsed model.ParsedFilename
	if actx.Filename != "" {
		parsed = parse.Filename(actx.Filename)
	}

	suggestions, err := a.engine.SuggestFor(ctx, expense, actx.UserID, nil)
	if err != nil {
		return nil, err
	}

	update := a.buildUpdate(expense, parsed, suggestions)
	if update.IsEmpty() {
		// Nothing beyond the audit stamp would change; skip the write so
		// the expense does not get a spurious updatedAt bump.
		return expense, nil
	}

	a.logger.Info("Applying autofill",
		"expense_id", expenseID,
		"user_id", actx.UserID,
		"is_first_receipt", actx.IsFirstReceipt,
		"fields", len(update.Changes()))

	updated, err := a.store.UpdateExpense(ctx, expenseID, update, actx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to persist autofill: %w", err)
	}
	return updated, nil
}

// buildUpdate derives the write set. Every inclusion re-checks the live
// field state through the shared gates, so a concurrent edit can at worst
// cause a field to be skipped, never overwritten.
func (a *Applier) buildUpdate(expense *model.Expense, parsed model.ParsedFilename, suggestions model.Suggestions) model.ExpenseUpdate {
	var update model.ExpenseUpdate

	if parsed.SupplierName != "" && parsed.SupplierName != parse.SupplierFallback && propose.SupplierNameIsDefault(expense) {
		update.SupplierName = &parsed.SupplierName
	}
	if parsed.Description != "" && propose.DescriptionIsDefault(expense) {
		update.Description = &parsed.Description
	}
	if parsed.ExpenseDate != nil && propose.ExpenseDateIsDefault(expense, a.now()) {
		update.ExpenseDate = parsed.ExpenseDate
	}
	if parsed.Currency != "" && parsed.Currency != expense.Currency && propose.CurrencyIsDefault(expense) {
		update.Currency = &parsed.Currency
	}
	if parsed.GrossAmountCents != nil && propose.GrossAmountIsDefault(expense) && propose.CurrencyIsDefault(expense) {
		update.GrossAmountCents = parsed.GrossAmountCents
	}

	if s, ok := suggestions[model.FieldCategory]; ok && propose.CategoryIsDefault(expense) && s.Confidence >= CategoryConfidenceThreshold {
		if category, valid := s.Value.(model.Category); valid {
			update.Category = &category
		}
	}

	if s, ok := suggestions[model.FieldVatMode]; ok && propose.VatModeIsDefault(expense) && s.Confidence >= VatModeConfidenceThreshold {
		if vatMode, valid := s.Value.(model.VatMode); valid {
			update.VatMode = &vatMode
			if vatMode == model.VatModeGerman {
				if rate := deriveVatRate(expense, update.Category); rate != nil {
					update.VatRate = rate
				}
			}
		}
	}

	if s, ok := suggestions[model.FieldBusinessUsePct]; ok && propose.BusinessUseIsDefault(expense) && s.Confidence >= BusinessUseConfidenceThreshold {
		if pct, valid := s.Value.(int); valid {
			update.BusinessUsePct = &pct
		}
	}

	return update
}

// deriveVatRate picks the German VAT rate from the category in effect:
// the one just applied wins over the stored one. No category, no rate.
func deriveVatRate(expense *model.Expense, applied *model.Category) *float64 {
	category := applied
	if category == nil {
		category = expense.Category
	}
	if category == nil {
		return nil
	}

	rate := StandardVatRate
	if *category == model.CategoryMeals || *category == model.CategoryTravel {
		rate = ReducedVatRate
	}
	return &rate
}
