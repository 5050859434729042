package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fennelhq/fennel/internal/common"
	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/service"
)

const expenseColumns = `id, user_id, supplier_name, description, expense_date,
	gross_amount_cents, currency, category, vat_mode, vat_rate,
	business_use_pct, status, payment_status, payment_date, payment_method,
	updated_by_user_id, created_at, updated_at`

// CreateExpense inserts a new expense, filling creation-time defaults for
// anything the caller left unset.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	applyCreationDefaults(expense)

	return s.execWithRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO expenses (
				id, user_id, supplier_name, supplier_norm, description,
				expense_date, gross_amount_cents, currency, category,
				vat_mode, vat_rate, business_use_pct, status,
				payment_status, payment_date, payment_method,
				updated_by_user_id, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			expense.ID.String(),
			expense.UserID,
			expense.SupplierName,
			model.NormalizeSupplier(expense.SupplierName),
			nullString(expense.Description),
			expense.ExpenseDate.UTC(),
			expense.GrossAmountCents,
			expense.Currency,
			nullCategory(expense.Category),
			string(expense.VatMode),
			nullFloat(expense.VatRate),
			expense.BusinessUsePct,
			string(expense.Status),
			string(expense.PaymentStatus),
			nullTime(expense.PaymentDate),
			expense.PaymentMethod,
			expense.UpdatedByUserID,
			expense.CreatedAt.UTC(),
			expense.UpdatedAt.UTC(),
		)
		if err != nil {
			return wrapBusy(fmt.Errorf("failed to insert expense: %w", err))
		}
		return nil
	})
}

func applyCreationDefaults(expense *model.Expense) {
	now := time.Now()
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	if expense.Currency == "" {
		expense.Currency = "EUR"
	}
	if expense.VatMode == "" {
		expense.VatMode = model.VatModeNone
	}
	if expense.Status == "" {
		expense.Status = model.StatusNeedsReview
	}
	if expense.PaymentStatus == "" {
		expense.PaymentStatus = model.PaymentUnpaid
	}
	if expense.BusinessUsePct == 0 {
		expense.BusinessUsePct = model.DefaultBusinessUsePct
	}
	if expense.ExpenseDate.IsZero() {
		// "today" is the creation-time default the gates compare against.
		expense.ExpenseDate = now
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt.IsZero() {
		expense.UpdatedAt = now
	}
	if expense.UpdatedByUserID == "" {
		expense.UpdatedByUserID = expense.UserID
	}
}

// GetExpenseByID returns the expense, or (nil, nil) when it does not exist.
func (s *SQLiteStorage) GetExpenseByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id.String())

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns expenses matching the filter, most recently created
// first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	var conditions []string
	var args []any

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectExpenses(rows)
}

// UpdateExpense applies a partial update, stamps the acting user and
// updated-at, and returns the re-read expense. The partial update type
// cannot express status or payment fields, so those columns are never part
// of the SET clause here.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, id uuid.UUID, update model.ExpenseUpdate, actingUserID string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(actingUserID, "actingUserID"); err != nil {
		return nil, err
	}

	changes := update.Changes()
	if supplier, ok := changes["supplier_name"]; ok {
		name, _ := supplier.(string)
		changes["supplier_norm"] = model.NormalizeSupplier(name)
	}
	changes["updated_by_user_id"] = actingUserID
	changes["updated_at"] = time.Now().UTC()

	columns := make([]string, 0, len(changes))
	for column := range changes {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for _, column := range columns {
		assignments = append(assignments, column+" = ?")
		args = append(args, changes[column])
	}
	args = append(args, id.String())

	err := s.execWithRetry(ctx, func() error {
		result, execErr := s.db.ExecContext(ctx,
			"UPDATE expenses SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...)
		if execErr != nil {
			return wrapBusy(fmt.Errorf("failed to update expense: %w", execErr))
		}
		affected, raErr := result.RowsAffected()
		if raErr != nil {
			return fmt.Errorf("failed to check update result: %w", raErr)
		}
		if affected == 0 {
			return fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetExpenseByID(ctx, id)
}

// ListSupplierHistory returns confirmed expenses for the user whose stored
// normalized supplier matches, most recent first. Expenses still awaiting
// review don't count as supplier memory: their fields were never confirmed
// by anyone.
func (s *SQLiteStorage) ListSupplierHistory(ctx context.Context, userID, normalizedSupplier string, limit int) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(normalizedSupplier, "normalizedSupplier"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidFilter)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = ? AND supplier_norm = ? AND status != ?
		ORDER BY expense_date DESC, updated_at DESC
		LIMIT ?
	`, userID, normalizedSupplier, string(model.StatusNeedsReview), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectExpenses(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*model.Expense, error) {
	var (
		expense     model.Expense
		idText      string
		description sql.NullString
		expenseDate sql.NullTime
		category    sql.NullString
		vatRate     sql.NullFloat64
		paymentDate sql.NullTime
	)

	err := row.Scan(
		&idText,
		&expense.UserID,
		&expense.SupplierName,
		&description,
		&expenseDate,
		&expense.GrossAmountCents,
		&expense.Currency,
		&category,
		&expense.VatMode,
		&vatRate,
		&expense.BusinessUsePct,
		&expense.Status,
		&expense.PaymentStatus,
		&paymentDate,
		&expense.PaymentMethod,
		&expense.UpdatedByUserID,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("invalid expense id %q: %w", idText, err)
	}
	expense.ID = id

	if description.Valid {
		expense.Description = &description.String
	}
	if expenseDate.Valid {
		expense.ExpenseDate = expenseDate.Time
	}
	if category.Valid {
		cat := model.Category(category.String)
		expense.Category = &cat
	}
	if vatRate.Valid {
		expense.VatRate = &vatRate.Float64
	}
	if paymentDate.Valid {
		expense.PaymentDate = &paymentDate.Time
	}

	return &expense, nil
}

func collectExpenses(rows *sql.Rows) ([]model.Expense, error) {
	var expenses []model.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullCategory(c *model.Category) any {
	if c == nil {
		return nil
	}
	return string(*c)
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
