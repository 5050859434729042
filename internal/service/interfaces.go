// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fennelhq/fennel/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	Status *model.ExpenseStatus
	UserID string
	Limit  int
	Offset int
}

// Store defines the contract for the persistence layer the suggestion
// engine collaborates with.
type Store interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	// GetExpenseByID returns (nil, nil) when no expense with the given id
	// exists; callers decide how to surface that.
	GetExpenseByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)
	// UpdateExpense applies a partial update and stamps the acting user and
	// updated-at on the row. It returns the re-read expense.
	UpdateExpense(ctx context.Context, id uuid.UUID, update model.ExpenseUpdate, actingUserID string) (*model.Expense, error)

	// Receipt file operations
	AddExpenseFile(ctx context.Context, file *model.ExpenseFile) error
	// GetExpenseFilesByExpenseID returns attachments most-recent first.
	GetExpenseFilesByExpenseID(ctx context.Context, expenseID uuid.UUID) ([]model.ExpenseFile, error)

	// ListSupplierHistory returns confirmed expenses for the user whose
	// stored normalized supplier matches, most-recent first, server-side
	// filtered and limited.
	ListSupplierHistory(ctx context.Context, userID, normalizedSupplier string, limit int) ([]model.Expense, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
