// Package propose builds preview proposals for an expense's unset fields
// and defines the per-field gating predicates shared by the preview and
// autofill paths.
package propose

import (
	"strings"
	"time"

	"github.com/fennelhq/fennel/internal/model"
)

// The gates below are the single definition of "is this field still in its
// default state". Both the preview builder and the autofill applier call
// these, so a proposal shown in the preview is exactly a proposal the apply
// step would accept. A field only ever receives a proposal while its gate
// holds, which is what makes concurrent autofill runs safe: once a human
// (or an earlier run) has advanced a field past its default, the gate
// closes and no later run can overwrite it.

// SupplierNameIsDefault reports whether the supplier name is still the
// generic placeholder: blank, a stock word like "receipt", or too short to
// be a real name.
func SupplierNameIsDefault(e *model.Expense) bool {
	name := strings.TrimSpace(e.SupplierName)
	if name == "" {
		return true
	}
	lower := strings.ToLower(name)
	if lower == "receipt" || lower == "expense" {
		return true
	}
	return len([]rune(name)) < 3
}

// DescriptionIsDefault reports whether no description has been set.
func DescriptionIsDefault(e *model.Expense) bool {
	return e.Description == nil || strings.TrimSpace(*e.Description) == ""
}

// ExpenseDateIsDefault reports whether the expense date still equals the
// creation-time default of "today", compared by calendar day.
func ExpenseDateIsDefault(e *model.Expense, now time.Time) bool {
	if e.ExpenseDate.IsZero() {
		return true
	}
	y1, m1, d1 := e.ExpenseDate.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// GrossAmountIsDefault reports whether no amount has been entered.
func GrossAmountIsDefault(e *model.Expense) bool {
	return e.GrossAmountCents == 0
}

// CurrencyIsDefault reports whether the currency is unset or still the EUR
// default, so a filename-derived EUR amount is not blocked by it.
func CurrencyIsDefault(e *model.Expense) bool {
	return e.Currency == "" || e.Currency == "EUR"
}

// CategoryIsDefault reports whether no category has been chosen.
func CategoryIsDefault(e *model.Expense) bool {
	return e.Category == nil
}

// VatModeIsDefault reports whether the VAT mode is still "none".
func VatModeIsDefault(e *model.Expense) bool {
	return e.VatMode == model.VatModeNone
}

// BusinessUseIsDefault reports whether the business-use share still equals
// the creation-time default of 100%.
func BusinessUseIsDefault(e *model.Expense) bool {
	return e.BusinessUsePct == model.DefaultBusinessUsePct
}
