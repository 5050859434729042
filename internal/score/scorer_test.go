package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fennelhq/fennel/internal/model"
)

func completeExpense() *model.Expense {
	category := model.CategoryTravel
	return &model.Expense{
		SupplierName:     "Deutsche Bahn",
		ExpenseDate:      time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC),
		GrossAmountCents: 4900,
		Currency:         "EUR",
		Category:         &category,
		VatMode:          model.VatModeGerman,
		BusinessUsePct:   100,
	}
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name     string
		expense  func() *model.Expense
		proposed model.ProposedFields
		want     int
	}{
		{
			name:    "complete expense scores full",
			expense: completeExpense,
			want:    100,
		},
		{
			name: "everything missing scores exactly ten",
			expense: func() *model.Expense {
				return &model.Expense{}
			},
			want: 10,
		},
		{
			name: "missing category only",
			expense: func() *model.Expense {
				e := completeExpense()
				e.Category = nil
				return e
			},
			want: 70,
		},
		{
			name: "zero amount counts as missing",
			expense: func() *model.Expense {
				e := completeExpense()
				e.GrossAmountCents = 0
				return e
			},
			want: 70,
		},
		{
			name: "whitespace supplier counts as missing",
			expense: func() *model.Expense {
				e := completeExpense()
				e.SupplierName = "   "
				return e
			},
			want: 80,
		},
		{
			name:    "low confidence proposal costs ten",
			expense: completeExpense,
			proposed: model.ProposedFields{
				model.FieldCategory: {Value: model.CategoryMeals, Confidence: 0.6, Reason: "keyword", Source: model.SourceKeyword},
			},
			want: 90,
		},
		{
			name:    "several low confidence proposals still cost ten once",
			expense: completeExpense,
			proposed: model.ProposedFields{
				model.FieldCategory:       {Value: model.CategoryMeals, Confidence: 0.6, Reason: "keyword", Source: model.SourceKeyword},
				model.FieldVatMode:        {Value: model.VatModeGerman, Confidence: 0.6, Reason: "heuristic", Source: model.SourceHeuristic},
				model.FieldBusinessUsePct: {Value: 50, Confidence: 0.5, Reason: "history", Source: model.SourceSupplierMemory},
			},
			want: 90,
		},
		{
			name:    "proposal at threshold costs nothing",
			expense: completeExpense,
			proposed: model.ProposedFields{
				model.FieldCategory: {Value: model.CategoryMeals, Confidence: 0.70, Reason: "keyword", Source: model.SourceKeyword},
			},
			want: 100,
		},
		{
			name:    "low confidence on unscored field costs nothing",
			expense: completeExpense,
			proposed: model.ProposedFields{
				model.FieldDescription: {Value: "Bahn", Confidence: 0.5, Reason: "filename", Source: model.SourceFilename},
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverallScore(tt.expense(), tt.proposed)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestConfidenceLevel(t *testing.T) {
	assert.Equal(t, LevelHigh, ConfidenceLevel(0.85))
	assert.Equal(t, LevelHigh, ConfidenceLevel(1.0))
	assert.Equal(t, LevelMedium, ConfidenceLevel(0.70))
	assert.Equal(t, LevelMedium, ConfidenceLevel(0.84))
	assert.Equal(t, LevelLow, ConfidenceLevel(0.69))
	assert.Equal(t, LevelLow, ConfidenceLevel(0))
}

func TestReviewScoreLabel(t *testing.T) {
	assert.Equal(t, "Quick approve", ReviewScoreLabel(100))
	assert.Equal(t, "Quick approve", ReviewScoreLabel(85))
	assert.Equal(t, "Check", ReviewScoreLabel(84))
	assert.Equal(t, "Check", ReviewScoreLabel(60))
	assert.Equal(t, "Needs attention", ReviewScoreLabel(59))
	assert.Equal(t, "Needs attention", ReviewScoreLabel(0))
}

func TestMissingRequiredFields(t *testing.T) {
	empty := &model.Expense{}
	assert.Equal(t, []string{"Category", "Amount", "Supplier", "Date"}, MissingRequiredFields(empty))

	complete := completeExpense()
	assert.Empty(t, MissingRequiredFields(complete))

	noAmount := completeExpense()
	noAmount.GrossAmountCents = 0
	noAmount.SupplierName = ""
	assert.Equal(t, []string{"Amount", "Supplier"}, MissingRequiredFields(noAmount))
}
