package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fennelhq/fennel/internal/common"
	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/service"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidExpense = errors.New("invalid expense")
	ErrInvalidFile    = errors.New("invalid expense file")
	ErrInvalidFilter  = errors.New("invalid filter")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense validates a single expense.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if strings.TrimSpace(expense.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidExpense)
	}
	if expense.GrossAmountCents < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidExpense)
	}
	if expense.BusinessUsePct < 0 || expense.BusinessUsePct > 100 {
		return fmt.Errorf("%w: business use must be between 0 and 100", ErrInvalidExpense)
	}
	if expense.Currency != "" && len(expense.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidExpense)
	}
	return nil
}

// validateExpenseFile validates a receipt attachment.
func validateExpenseFile(file *model.ExpenseFile) error {
	if file == nil {
		return fmt.Errorf("%w: file", ErrNilParameter)
	}
	if file.ExpenseID == uuid.Nil {
		return fmt.Errorf("%w: missing expense id", ErrInvalidFile)
	}
	if strings.TrimSpace(file.OriginalFilename) == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidFile)
	}
	return nil
}

// execWithRetry runs a write operation with retry on transient sqlite busy
// errors. The engine above this layer stays retry-free; this is purely a
// storage concern.
func (s *SQLiteStorage) execWithRetry(ctx context.Context, operation func() error) error {
	return common.WithRetry(ctx, operation, service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
	})
}

// wrapBusy marks sqlite lock contention as retryable and maps unique
// constraint violations onto the shared duplicate sentinel.
func wrapBusy(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return &common.RetryableError{Err: err, Retryable: true}
	}
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", common.ErrDuplicateEntry, err)
	}
	return err
}
