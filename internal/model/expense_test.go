package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSupplier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "AMAZON", want: "amazon"},
		{name: "strips punctuation", input: "Müller & Sohn", want: "m ller sohn"},
		{name: "strips legal suffix", input: "Acme GmbH", want: "acme"},
		{name: "strips multiple suffixes", input: "Acme Holding GmbH Co KG", want: "acme holding"},
		{name: "collapses whitespace", input: "  Deutsche   Bahn  ", want: "deutsche bahn"},
		{name: "suffix only", input: "GmbH", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "keeps digits", input: "Studio 54 Ltd.", want: "studio 54"},
		{name: "suffix inside word is kept", input: "Agfa", want: "agfa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSupplier(tt.input))
		})
	}
}

func TestExpenseUpdate_IsEmpty(t *testing.T) {
	assert.True(t, ExpenseUpdate{}.IsEmpty())

	name := "Amazon"
	assert.False(t, ExpenseUpdate{SupplierName: &name}.IsEmpty())

	pct := 50
	assert.False(t, ExpenseUpdate{BusinessUsePct: &pct}.IsEmpty())
}

func TestExpenseUpdate_ChangesNeverCarriesProtectedColumns(t *testing.T) {
	name := "Amazon"
	desc := "Office chair"
	date := time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC)
	cents := int64(12345)
	currency := "EUR"
	category := CategoryEquipment
	vatMode := VatModeGerman
	vatRate := 19.0
	pct := 80

	update := ExpenseUpdate{
		SupplierName:     &name,
		Description:      &desc,
		ExpenseDate:      &date,
		GrossAmountCents: &cents,
		Currency:         &currency,
		Category:         &category,
		VatMode:          &vatMode,
		VatRate:          &vatRate,
		BusinessUsePct:   &pct,
	}

	changes := update.Changes()
	assert.Len(t, changes, 9)
	for _, column := range []string{"status", "payment_status", "payment_date", "payment_method"} {
		assert.NotContains(t, changes, column)
	}
	assert.Equal(t, "Amazon", changes["supplier_name"])
	assert.Equal(t, int64(12345), changes["gross_amount_cents"])
}

func TestSuggestion_Validate(t *testing.T) {
	valid := Suggestion{
		Field:      FieldCategory,
		Value:      CategoryTravel,
		Confidence: 0.8,
		Reason:     "looks like travel",
		Source:     SourceKeyword,
	}
	assert.NoError(t, valid.Validate())

	noReason := valid
	noReason.Reason = ""
	assert.Error(t, noReason.Validate())

	outOfRange := valid
	outOfRange.Confidence = 1.2
	assert.Error(t, outOfRange.Validate())

	negative := valid
	negative.Confidence = -0.1
	assert.Error(t, negative.Validate())

	noField := valid
	noField.Field = ""
	assert.Error(t, noField.Validate())
}
