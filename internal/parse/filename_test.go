package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(t *testing.T, value string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return &d
}

func centsPtr(c int64) *int64 { return &c }

func TestFilename(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		wantSupplier string
		wantDesc     string
		wantDate     string
		wantCents    *int64
		wantCurrency string
		wantEmpty    bool
	}{
		{
			name:         "full iso date amount and supplier",
			filename:     "2024-12-17_Amazon_123.45€.pdf",
			wantSupplier: "Amazon",
			wantDesc:     "Amazon",
			wantDate:     "2024-12-17",
			wantCents:    centsPtr(12345),
			wantCurrency: "EUR",
		},
		{
			name:      "no date or amount yields nothing",
			filename:  "randomfile.pdf",
			wantEmpty: true,
		},
		{
			name:      "empty string",
			filename:  "",
			wantEmpty: true,
		},
		{
			name:         "german date with comma decimal",
			filename:     "Telekom_17.12.2024_49,99 EUR.pdf",
			wantSupplier: "Telekom",
			wantDesc:     "Telekom",
			wantDate:     "2024-12-17",
			wantCents:    centsPtr(4999),
			wantCurrency: "EUR",
		},
		{
			name:         "integer amount with euro sign",
			filename:     "hotel-berlin-250€.jpg",
			wantSupplier: "Hotel Berlin",
			wantDesc:     "Hotel Berlin",
			wantCents:    centsPtr(25000),
			wantCurrency: "EUR",
		},
		{
			name:         "date only falls back to receipt supplier",
			filename:     "2024-03-01.pdf",
			wantSupplier: "Receipt",
			wantDate:     "2024-03-01",
		},
		{
			name:      "amount without currency marker is ignored",
			filename:  "invoice_123.45.pdf",
			wantEmpty: true,
		},
		{
			name:         "invalid calendar date is rejected but amount kept",
			filename:     "2024-02-30_Obi_12€.pdf",
			wantSupplier: "Obi",
			wantDesc:     "Obi",
			wantCents:    centsPtr(1200),
			wantCurrency: "EUR",
		},
		{
			name:         "euro sign before amount",
			filename:     "Adobe_€ 23.99_2024-05-02.pdf",
			wantSupplier: "Adobe",
			wantDesc:     "Adobe",
			wantDate:     "2024-05-02",
			wantCents:    centsPtr(2399),
			wantCurrency: "EUR",
		},
		{
			name:         "no extension",
			filename:     "2024-12-17 Bahn 49€",
			wantSupplier: "Bahn",
			wantDesc:     "Bahn",
			wantDate:     "2024-12-17",
			wantCents:    centsPtr(4900),
			wantCurrency: "EUR",
		},
		{
			name:         "multi word supplier is title cased",
			filename:     "media-markt_2024-11-03_899.00€.pdf",
			wantSupplier: "Media Markt",
			wantDesc:     "Media Markt",
			wantDate:     "2024-11-03",
			wantCents:    centsPtr(89900),
			wantCurrency: "EUR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Filename(tt.filename)

			if tt.wantEmpty {
				assert.True(t, parsed.IsEmpty(), "expected empty result, got %+v", parsed)
				return
			}

			assert.Equal(t, tt.wantSupplier, parsed.SupplierName)
			assert.Equal(t, tt.wantDesc, parsed.Description)
			assert.Equal(t, tt.wantCurrency, parsed.Currency)

			if tt.wantDate == "" {
				assert.Nil(t, parsed.ExpenseDate)
			} else {
				require.NotNil(t, parsed.ExpenseDate)
				assert.Equal(t, *datePtr(t, tt.wantDate), *parsed.ExpenseDate)
			}

			if tt.wantCents == nil {
				assert.Nil(t, parsed.GrossAmountCents)
			} else {
				require.NotNil(t, parsed.GrossAmountCents)
				assert.Equal(t, *tt.wantCents, *parsed.GrossAmountCents)
			}
		})
	}
}

func TestFilename_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		".",
		"...",
		".pdf",
		"€",
		"€€€€",
		"_-_-_-_",
		"9999-99-99_x_99999999999999999999€.pdf",
		"2024-12-17",
		"Ünïcodé Quittung 2024-12-17 12,5€.PDF",
		"日本語のレシート_2024-01-01.pdf",
		"\x00\x01\x02",
		"a1€",
		"00.00.0000_1€",
		string(make([]byte, 1024)),
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			parsed := Filename(input)
			if parsed.GrossAmountCents != nil {
				assert.GreaterOrEqual(t, *parsed.GrossAmountCents, int64(0))
			}
		}, "input %q", input)
	}
}

func TestFilename_DescriptionOmittedForFallbackSupplier(t *testing.T) {
	parsed := Filename("12.05€.pdf")

	assert.Equal(t, "Receipt", parsed.SupplierName)
	assert.Empty(t, parsed.Description)
}
