package propose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fennelhq/fennel/internal/model"
)

func strPtr(s string) *string { return &s }

func TestSupplierNameIsDefault(t *testing.T) {
	tests := []struct {
		name     string
		supplier string
		want     bool
	}{
		{"blank", "", true},
		{"whitespace only", "   ", true},
		{"stock receipt word", "Receipt", true},
		{"stock expense word", "expense", true},
		{"too short", "Ob", true},
		{"short but real", "Obi", false},
		{"real name", "Deutsche Bahn", false},
		{"multibyte counts runes not bytes", "Tü", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &model.Expense{SupplierName: tt.supplier}
			assert.Equal(t, tt.want, SupplierNameIsDefault(e))
		})
	}
}

func TestDescriptionIsDefault(t *testing.T) {
	assert.True(t, DescriptionIsDefault(&model.Expense{}))
	assert.True(t, DescriptionIsDefault(&model.Expense{Description: strPtr("  ")}))
	assert.False(t, DescriptionIsDefault(&model.Expense{Description: strPtr("Team lunch")}))
}

func TestExpenseDateIsDefault(t *testing.T) {
	now := time.Date(2024, 12, 17, 15, 30, 0, 0, time.UTC)

	assert.True(t, ExpenseDateIsDefault(&model.Expense{}, now))
	assert.True(t, ExpenseDateIsDefault(&model.Expense{
		ExpenseDate: time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC),
	}, now), "same calendar day is still the creation default")
	assert.False(t, ExpenseDateIsDefault(&model.Expense{
		ExpenseDate: time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC),
	}, now))
}

func TestAmountAndCurrencyGates(t *testing.T) {
	assert.True(t, GrossAmountIsDefault(&model.Expense{}))
	assert.False(t, GrossAmountIsDefault(&model.Expense{GrossAmountCents: 1}))

	assert.True(t, CurrencyIsDefault(&model.Expense{}))
	assert.True(t, CurrencyIsDefault(&model.Expense{Currency: "EUR"}))
	assert.False(t, CurrencyIsDefault(&model.Expense{Currency: "USD"}))
}

func TestCategoryVatAndBusinessUseGates(t *testing.T) {
	category := model.CategoryMeals

	assert.True(t, CategoryIsDefault(&model.Expense{}))
	assert.False(t, CategoryIsDefault(&model.Expense{Category: &category}))

	assert.True(t, VatModeIsDefault(&model.Expense{VatMode: model.VatModeNone}))
	assert.False(t, VatModeIsDefault(&model.Expense{VatMode: model.VatModeGerman}))

	assert.True(t, BusinessUseIsDefault(&model.Expense{BusinessUsePct: model.DefaultBusinessUsePct}))
	assert.False(t, BusinessUseIsDefault(&model.Expense{BusinessUsePct: 80}))
}
