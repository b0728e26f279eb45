package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/models"
)

// CreateExpense persists a new expense and its shares in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = s.nowMicros()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, payer_id, description, amount, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.PayerID, expense.Description,
			expense.Amount, toMicros(expense.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for i := range expense.Shares {
			share := &expense.Shares[i]
			share.ExpenseID = expense.ID
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_shares (expense_id, member_id, share_amount, paid) VALUES (?, ?, ?, ?)",
				share.ExpenseID, share.MemberID, share.Amount, share.Paid,
			)
			if err != nil {
				return fmt.Errorf("failed to insert share: %w", err)
			}
		}
		return nil
	})
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, description, amount, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Description, &expense.Amount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.CreatedAt = fromMicros(createdAt)

	shares, err := s.queryShares(ctx, s.db,
		"SELECT expense_id, member_id, share_amount, paid FROM expense_shares WHERE expense_id = ? ORDER BY member_id",
		expenseID,
	)
	if err != nil {
		return nil, err
	}
	expense.Shares = shares[expenseID]

	return expense, nil
}

// UpdateExpense changes the description and amount of an expense.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expenseID, description string, amount float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET description = ?, amount = ? WHERE id = ?",
		description, amount, expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireAffected(res, "expense", expenseID)
}

// DeleteExpense removes an expense; its shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(res, "expense", expenseID)
}

// ListExpenses retrieves all expenses for a group, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		expenses, err = s.listExpenses(ctx, tx,
			`WHERE group_id = ? ORDER BY created_at DESC, id`, groupID)
		return err
	})
	return expenses, err
}

// ListExpensesSince returns expenses created strictly after the given time,
// oldest first, with their shares. Both reads share one transaction so the
// shares match the expenses.
func (s *SQLiteStore) ListExpensesSince(ctx context.Context, groupID string, after time.Time) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		expenses, err = s.listExpenses(ctx, tx,
			`WHERE group_id = ? AND created_at > ? ORDER BY created_at, id`, groupID, toMicros(after))
		return err
	})
	return expenses, err
}

// listExpenses loads the expenses matching where, then their shares in a
// second query. Rows are fully drained before the second query runs.
func (s *SQLiteStore) listExpenses(ctx context.Context, tx *sql.Tx, where string, args ...any) ([]*models.Expense, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, group_id, payer_id, description, amount, created_at FROM expenses `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var createdAt int64
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Description,
			&expense.Amount, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.CreatedAt = fromMicros(createdAt)
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if len(expenses) == 0 {
		return expenses, nil
	}

	shares, err := s.queryShares(ctx, tx,
		`SELECT expense_id, member_id, share_amount, paid FROM expense_shares
		 WHERE expense_id IN (SELECT id FROM expenses `+where+`)
		 ORDER BY expense_id, member_id`, args...)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Shares = shares[e.ID]
	}

	return expenses, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryShares groups share rows by expense ID.
func (s *SQLiteStore) queryShares(ctx context.Context, q queryer, query string, args ...any) (map[string][]models.Share, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	shares := make(map[string][]models.Share)
	for rows.Next() {
		var share models.Share
		if err := rows.Scan(&share.ExpenseID, &share.MemberID, &share.Amount, &share.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares[share.ExpenseID] = append(shares[share.ExpenseID], share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return shares, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
	}
	return nil
}
