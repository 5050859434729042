package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fennelhq/fennel/internal/model"
)

// AddExpenseFile records a receipt attachment for an expense.
func (s *SQLiteStorage) AddExpenseFile(ctx context.Context, file *model.ExpenseFile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpenseFile(file); err != nil {
		return err
	}

	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if file.AttachedAt.IsZero() {
		file.AttachedAt = time.Now()
	}

	return s.execWithRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO expense_files (id, expense_id, original_filename, attached_at)
			VALUES (?, ?, ?, ?)
		`, file.ID.String(), file.ExpenseID.String(), file.OriginalFilename, file.AttachedAt.UTC())
		if err != nil {
			return wrapBusy(fmt.Errorf("failed to insert expense file: %w", err))
		}
		return nil
	})
}

// GetExpenseFilesByExpenseID returns all receipt attachments for an
// expense, most recently attached first.
func (s *SQLiteStorage) GetExpenseFilesByExpenseID(ctx context.Context, expenseID uuid.UUID) ([]model.ExpenseFile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expense_id, original_filename, attached_at
		FROM expense_files
		WHERE expense_id = ?
		ORDER BY attached_at DESC, id
	`, expenseID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list expense files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectExpenseFiles(rows)
}

func collectExpenseFiles(rows *sql.Rows) ([]model.ExpenseFile, error) {
	var files []model.ExpenseFile
	for rows.Next() {
		var (
			file          model.ExpenseFile
			idText        string
			expenseIDText string
		)
		if err := rows.Scan(&idText, &expenseIDText, &file.OriginalFilename, &file.AttachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense file: %w", err)
		}

		id, err := uuid.Parse(idText)
		if err != nil {
			return nil, fmt.Errorf("invalid file id %q: %w", idText, err)
		}
		expenseID, err := uuid.Parse(expenseIDText)
		if err != nil {
			return nil, fmt.Errorf("invalid expense id %q: %w", expenseIDText, err)
		}
		file.ID = id
		file.ExpenseID = expenseID

		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense files: %w", err)
	}
	return files, nil
}
