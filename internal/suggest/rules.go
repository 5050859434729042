package suggest

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fennelhq/fennel/internal/model"
)

// SupplierHistoryRule copies category, VAT mode, and business-use share
// from the most recent confirmed expense with the same normalized supplier.
// Confidence grows with the number of matches and caps at 0.95.
type SupplierHistoryRule struct{}

// Name implements Rule.
func (SupplierHistoryRule) Name() string { return "supplier_history" }

// Evaluate implements Rule.
func (SupplierHistoryRule) Evaluate(_ context.Context, rc *RuleContext) []model.Suggestion {
	matchCount := len(rc.History)
	if matchCount == 0 {
		return nil
	}

	latest := rc.History[0]
	confidence := math.Min(0.8+0.05*float64(matchCount), 0.95)
	reason := fmt.Sprintf("Matches %d earlier expense(s) from %s", matchCount, rc.Expense.SupplierName)

	var suggestions []model.Suggestion
	if latest.Category != nil {
		suggestions = append(suggestions, model.Suggestion{
			Field:      model.FieldCategory,
			Value:      *latest.Category,
			Confidence: confidence,
			Reason:     reason,
			Source:     model.SourceSupplierMemory,
		})
	}
	if latest.VatMode != model.VatModeNone {
		suggestions = append(suggestions, model.Suggestion{
			Field:      model.FieldVatMode,
			Value:      latest.VatMode,
			Confidence: confidence,
			Reason:     reason,
			Source:     model.SourceSupplierMemory,
		})
	}
	if latest.BusinessUsePct != model.DefaultBusinessUsePct {
		suggestions = append(suggestions, model.Suggestion{
			Field:      model.FieldBusinessUsePct,
			Value:      latest.BusinessUsePct,
			Confidence: confidence,
			Reason:     reason,
			Source:     model.SourceSupplierMemory,
		})
	}
	return suggestions
}

// KeywordMatchRule scans the supplier name and every attached filename
// against the injected keyword dictionary and suggests a category for the
// first matching keyword in dictionary order.
type KeywordMatchRule struct {
	dict KeywordDictionary
}

// NewKeywordMatchRule creates the rule with the given dictionary.
func NewKeywordMatchRule(dict KeywordDictionary) KeywordMatchRule {
	return KeywordMatchRule{dict: dict}
}

// Name implements Rule.
func (KeywordMatchRule) Name() string { return "keyword_match" }

// Evaluate implements Rule.
func (r KeywordMatchRule) Evaluate(_ context.Context, rc *RuleContext) []model.Suggestion {
	var haystack strings.Builder
	haystack.WriteString(strings.ToLower(rc.Expense.SupplierName))
	for _, file := range rc.Files {
		haystack.WriteString(" ")
		haystack.WriteString(strings.ToLower(file.OriginalFilename))
	}
	text := haystack.String()

	var matched []KeywordEntry
	for _, entry := range r.dict {
		if strings.Contains(text, entry.Keyword) {
			matched = append(matched, entry)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	confidence := 0.6
	reason := fmt.Sprintf("Supplier or receipt filename mentions %q", matched[0].Keyword)
	if len(matched) > 1 {
		confidence = 0.7
		reason = fmt.Sprintf("Supplier or receipt filename mentions %q and %d more keyword(s)",
			matched[0].Keyword, len(matched)-1)
	}

	return []model.Suggestion{{
		Field:      model.FieldCategory,
		Value:      matched[0].Category,
		Confidence: confidence,
		Reason:     reason,
		Source:     model.SourceKeyword,
	}}
}

// vatHeuristicCategories are the categories that usually carry German VAT
// for EUR expenses.
var vatHeuristicCategories = map[model.Category]bool{
	model.CategoryMeals:  true,
	model.CategoryTravel: true,
	model.CategoryRent:   true,
}

// CategoryVatHeuristicRule suggests German VAT for EUR expenses whose
// effective category typically carries it. The effective category honors
// earlier rules: supplier history first, then keywords, then whatever the
// expense already has.
type CategoryVatHeuristicRule struct{}

// Name implements Rule.
func (CategoryVatHeuristicRule) Name() string { return "category_vat_heuristic" }

// Evaluate implements Rule.
func (CategoryVatHeuristicRule) Evaluate(_ context.Context, rc *RuleContext) []model.Suggestion {
	if rc.Expense.Currency != "EUR" {
		return nil
	}
	category := rc.EffectiveCategory()
	if category == nil || !vatHeuristicCategories[*category] {
		return nil
	}

	return []model.Suggestion{{
		Field:      model.FieldVatMode,
		Value:      model.VatModeGerman,
		Confidence: 0.6,
		Reason:     fmt.Sprintf("EUR expenses categorized as %s usually carry German VAT", *category),
		Source:     model.SourceHeuristic,
	}}
}

// CurrencyGuardRule marks every non-EUR expense as foreign VAT with full
// confidence. Its 1.0 confidence means it always wins conflict resolution
// for the VAT mode, whatever the other rules proposed.
type CurrencyGuardRule struct{}

// Name implements Rule.
func (CurrencyGuardRule) Name() string { return "currency_guard" }

// Evaluate implements Rule.
func (CurrencyGuardRule) Evaluate(_ context.Context, rc *RuleContext) []model.Suggestion {
	currency := rc.Expense.Currency
	if currency == "" || currency == "EUR" {
		return nil
	}

	return []model.Suggestion{{
		Field:      model.FieldVatMode,
		Value:      model.VatModeForeign,
		Confidence: 1.0,
		Reason:     fmt.Sprintf("Currency %s is not EUR, so German VAT cannot apply", currency),
		Source:     model.SourceHeuristic,
	}}
}
