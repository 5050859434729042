// Package testutil provides test utilities for the fennel project: an
// in-memory database with migrations applied and builders for seeding
// expense data.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/service"
	"github.com/fennelhq/fennel/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Store service.Store
	t     *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically
// handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Store: store,
		t:     t,
	}
}

// ExpenseOption mutates an expense before it is seeded.
type ExpenseOption func(*model.Expense)

// WithSupplier sets the supplier name.
func WithSupplier(name string) ExpenseOption {
	return func(e *model.Expense) { e.SupplierName = name }
}

// WithCategory sets the category.
func WithCategory(category model.Category) ExpenseOption {
	return func(e *model.Expense) { e.Category = &category }
}

// WithVatMode sets the VAT mode.
func WithVatMode(mode model.VatMode) ExpenseOption {
	return func(e *model.Expense) { e.VatMode = mode }
}

// WithBusinessUse sets the business-use percentage.
func WithBusinessUse(pct int) ExpenseOption {
	return func(e *model.Expense) { e.BusinessUsePct = pct }
}

// WithStatus sets the review status.
func WithStatus(status model.ExpenseStatus) ExpenseOption {
	return func(e *model.Expense) { e.Status = status }
}

// WithCurrency sets the currency.
func WithCurrency(currency string) ExpenseOption {
	return func(e *model.Expense) { e.Currency = currency }
}

// WithAmount sets the gross amount in cents.
func WithAmount(cents int64) ExpenseOption {
	return func(e *model.Expense) { e.GrossAmountCents = cents }
}

// WithExpenseDate sets the expense date.
func WithExpenseDate(date time.Time) ExpenseOption {
	return func(e *model.Expense) { e.ExpenseDate = date }
}

// MustCreateExpense seeds an expense for the given user and returns it.
func (db *TestDB) MustCreateExpense(userID string, opts ...ExpenseOption) *model.Expense {
	db.t.Helper()

	expense := &model.Expense{
		UserID: userID,
		Status: model.StatusNeedsReview,
	}
	for _, opt := range opts {
		opt(expense)
	}

	if err := db.Store.CreateExpense(context.Background(), expense); err != nil {
		db.t.Fatalf("failed to seed expense: %v", err)
	}
	return expense
}

// MustAttachFile seeds a receipt attachment and returns it.
func (db *TestDB) MustAttachFile(expenseID uuid.UUID, filename string) *model.ExpenseFile {
	db.t.Helper()

	file := &model.ExpenseFile{
		ExpenseID:        expenseID,
		OriginalFilename: filename,
	}
	if err := db.Store.AddExpenseFile(context.Background(), file); err != nil {
		db.t.Fatalf("failed to seed expense file: %v", err)
	}
	return file
}
