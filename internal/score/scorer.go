// Package score computes how ready an expense is for approval. Scoring is
// pure: it reads the expense and an optional proposed-fields map and never
// touches the store.
package score

import (
	"strings"

	"github.com/fennelhq/fennel/internal/model"
)

// Level buckets a confidence value for display.
type Level string

// Confidence level constants.
const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// LowConfidenceThreshold is the confidence below which a proposed field
// counts against the review score.
const LowConfidenceThreshold = 0.70

// ConfidenceLevel buckets a confidence score.
func ConfidenceLevel(confidence float64) Level {
	switch {
	case confidence >= 0.85:
		return LevelHigh
	case confidence >= 0.70:
		return LevelMedium
	default:
		return LevelLow
	}
}

// scoredFields are the proposed fields whose low confidence penalizes the
// overall score.
var scoredFields = []model.Field{
	model.FieldCategory,
	model.FieldGrossAmountCents,
	model.FieldSupplierName,
	model.FieldVatMode,
	model.FieldBusinessUsePct,
}

// OverallScore rates review completeness on a 0–100 scale. Missing required
// fields cost fixed penalties, and any low-confidence proposal costs 10
// points exactly once no matter how many fields are affected.
func OverallScore(expense *model.Expense, proposed model.ProposedFields) int {
	scoreValue := 100

	if expense.Category == nil {
		scoreValue -= 30
	}
	if expense.GrossAmountCents <= 0 {
		scoreValue -= 30
	}
	if strings.TrimSpace(expense.SupplierName) == "" {
		scoreValue -= 20
	}
	if expense.ExpenseDate.IsZero() {
		scoreValue -= 10
	}

	for _, field := range scoredFields {
		if pf, ok := proposed[field]; ok && pf.Confidence < LowConfidenceThreshold {
			scoreValue -= 10
			break
		}
	}

	if scoreValue < 0 {
		scoreValue = 0
	}
	if scoreValue > 100 {
		scoreValue = 100
	}
	return scoreValue
}

// ReviewScoreLabel maps an overall score onto the label shown to reviewers.
func ReviewScoreLabel(scoreValue int) string {
	switch {
	case scoreValue >= 85:
		return "Quick approve"
	case scoreValue >= 60:
		return "Check"
	default:
		return "Needs attention"
	}
}

// MissingRequiredFields lists human labels for the required fields the
// expense still lacks, in a fixed display order.
func MissingRequiredFields(expense *model.Expense) []string {
	var missing []string
	if expense.Category == nil {
		missing = append(missing, "Category")
	}
	if expense.GrossAmountCents <= 0 {
		missing = append(missing, "Amount")
	}
	if strings.TrimSpace(expense.SupplierName) == "" {
		missing = append(missing, "Supplier")
	}
	if expense.ExpenseDate.IsZero() {
		missing = append(missing, "Date")
	}
	return missing
}
