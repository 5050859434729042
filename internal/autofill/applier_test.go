package autofill_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennelhq/fennel/internal/autofill"
	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/suggest"
	"github.com/fennelhq/fennel/internal/testutil"
)

const testUser = "user-1"

func newApplier(db *testutil.TestDB) *autofill.Applier {
	engine := suggest.NewEngine(db.Store, suggest.DefaultKeywords(), nil)
	return autofill.NewApplier(db.Store, engine, nil)
}

func TestApplier_FillsDefaultFieldsFromFilenameAndMemory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	applier := newApplier(db)
	ctx := context.Background()

	db.MustCreateExpense(testUser,
		testutil.WithSupplier("Deutsche Bahn"),
		testutil.WithCategory(model.CategoryTravel),
		testutil.WithVatMode(model.VatModeGerman),
		testutil.WithBusinessUse(80),
		testutil.WithStatus(model.StatusApproved),
	)
	current := db.MustCreateExpense(testUser, testutil.WithSupplier("Deutsche Bahn"))

	updated, err := applier.Apply(ctx, current.ID, autofill.Context{
		Filename: "2024-12-17_Bahn_49.00€.pdf",
		UserID:   testUser,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	require.NotNil(t, updated.Category)
	assert.Equal(t, model.CategoryTravel, *updated.Category)
	assert.Equal(t, model.VatModeGerman, updated.VatMode)
	require.NotNil(t, updated.VatRate)
	assert.InDelta(t, 7.0, *updated.VatRate, 1e-9)
	assert.Equal(t, 80, updated.BusinessUsePct)
	assert.Equal(t, int64(4900), updated.GrossAmountCents)
	assert.Equal(t, time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC), updated.ExpenseDate.UTC())
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Bahn", *updated.Description)

	// The supplier was already set, so the filename must not replace it.
	assert.Equal(t, "Deutsche Bahn", updated.SupplierName)

	// Review and payment state are untouchable by autofill.
	assert.Equal(t, model.StatusNeedsReview, updated.Status)
	assert.Equal(t, model.PaymentUnpaid, updated.PaymentStatus)
}

func TestApplier_StandardRateForNonReducedCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	applier := newApplier(db)

	db.MustCreateExpense(testUser,
		testutil.WithSupplier("Hetzner Online GmbH"),
		testutil.WithCategory(model.CategorySoftware),
		testutil.WithVatMode(model.VatModeGerman),
		testutil.WithStatus(model.StatusApproved),
	)
	current := db.MustCreateExpense(testUser, testutil.WithSupplier("Hetzner Online GmbH"))

	updated, err := applier.Apply(context.Background(), current.ID, autofill.Context{UserID: testUser})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, model.VatModeGerman, updated.VatMode)
	require.NotNil(t, updated.VatRate)
	assert.InDelta(t, 19.0, *updated.VatRate, 1e-9)
}

func TestApplier_LowConfidenceSuggestionsAreNotApplied(t *testing.T) {
	db := testutil.SetupTestDB(t)
	applier := newApplier(db)

	// Keyword category at 0.6 and the VAT heuristic at 0.6 both sit below
	// their write thresholds.
	current := db.MustCreateExpense(testUser, testutil.WithSupplier("Hotel California"))

	updated, err := applier.Apply(context.Background(), current.ID, autofill.Context{UserID: "autofill-bot"})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Nil(t, updated.Category)
	assert.Equal(t, model.VatModeNone, updated.VatMode)
	// Nothing cleared its gate, so no write happened and the audit stamp
	// still names the creator.
	assert.Equal(t, testUser, updated.UpdatedByUserID)
}

func TestApplier_CurrencyGuardAppliesForeignVat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	applier := newApplier(db)

	current := db.MustCreateExpense(testUser,
		testutil.WithSupplier("Linode"),
		testutil.WithCurrency("USD"),
	)

	updated, err := applier.Apply(context.Background(), current.ID, autofill.Context{UserID: testUser})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, model.VatModeForeign, updated.VatMode)
	assert.Nil(t, updated.VatRate)
}

func TestApplier_SkipsExpensesNotAwaitingReview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	applier := newApplier(db)

	current := db.MustCreateExpense(testUser,
		testutil.WithSupplier("Deutsche Bahn"),
		testutil.WithStatus(model.StatusApproved),
	)

	updated, err := applier.Apply(context.Background(), current.ID, autofill.Context{
		Filename: "2024-12-17_Bahn_49.00€.pdf",
		UserID:   "autofill-bot",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, int64(0), updated.GrossAmountCents)
	assert.Equal(t, testUser, updated.UpdatedByUserID)
}

func TestApplier_MissingExpenseReturnsNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	applier := newApplier(db)

	updated, err := applier.Apply(context.Background(), uuid.New(), autofill.Context{UserID: testUser})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestApplier_SecondRunIsANoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	applier := newApplier(db)
	ctx := context.Background()

	current := db.MustCreateExpense(testUser)
	actx := autofill.Context{
		Filename: "2024-12-17_Mediamarkt_899€.pdf",
		UserID:   testUser,
	}

	first, err := applier.Apply(ctx, current.ID, actx)
	require.NoError(t, err)
	assert.Equal(t, "Mediamarkt", first.SupplierName)
	assert.Equal(t, int64(89900), first.GrossAmountCents)

	// Every field filled by the first run is past its default now, so the
	// second run must not touch the row at all.
	actx.UserID = "autofill-bot"
	second, err := applier.Apply(ctx, current.ID, actx)
	require.NoError(t, err)

	assert.Equal(t, testUser, second.UpdatedByUserID)
	assert.Equal(t, first.SupplierName, second.SupplierName)
	assert.Equal(t, first.GrossAmountCents, second.GrossAmountCents)
	assert.Equal(t, first.ExpenseDate.UTC(), second.ExpenseDate.UTC())
}

func TestApplier_UserEnteredDateIsNeverOverwritten(t *testing.T) {
	db := testutil.SetupTestDB(t)
	applier := newApplier(db)

	current := db.MustCreateExpense(testUser,
		testutil.WithExpenseDate(time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)),
	)

	updated, err := applier.Apply(context.Background(), current.ID, autofill.Context{
		Filename: "2024-12-17_Bauhaus_20€.pdf",
		UserID:   testUser,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), updated.ExpenseDate.UTC())
	assert.Equal(t, "Bauhaus", updated.SupplierName)
}
