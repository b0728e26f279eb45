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

const settlementColumns = `id, group_id, from_member, to_member, amount, status, created_at, settled_at`

// InsertPendingSettlements persists one pending settlement per transfer.
// Either every row is inserted or none is.
func (s *SQLiteStore) InsertPendingSettlements(ctx context.Context, groupID string, transfers []models.Transfer) ([]*models.Settlement, error) {
	createdAt := s.nowMicros()
	settlements := make([]*models.Settlement, 0, len(transfers))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range transfers {
			settlement := &models.Settlement{
				ID:           uuid.New().String(),
				GroupID:      groupID,
				FromMemberID: t.From,
				ToMemberID:   t.To,
				Amount:       t.Amount,
				Status:       models.SettlementPending,
				CreatedAt:    createdAt,
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
				settlement.ID, settlement.GroupID, settlement.FromMemberID, settlement.ToMemberID,
				settlement.Amount, string(settlement.Status), toMicros(settlement.CreatedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to insert settlement: %w", err)
			}
			settlements = append(settlements, settlement)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return settlements, nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	return getSettlement(ctx, s.db, settlementID)
}

func getSettlement(ctx context.Context, q queryRower, settlementID string) (*models.Settlement, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, settlementID)

	settlement, err := scanSettlement(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// LatestApprovedSettlement returns the settled_at of the most recent
// approved settlement in the group, or nil when none exists.
func (s *SQLiteStore) LatestApprovedSettlement(ctx context.Context, groupID string) (*time.Time, error) {
	return latestApproved(ctx, s.db, groupID)
}

func latestApproved(ctx context.Context, q queryRower, groupID string) (*time.Time, error) {
	var settledAt sql.NullInt64
	err := q.QueryRowContext(ctx,
		`SELECT MAX(settled_at) FROM settlements
		 WHERE group_id = ? AND status = 'approved' AND settled_at IS NOT NULL`,
		groupID,
	).Scan(&settledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest approved settlement: %w", err)
	}
	if !settledAt.Valid {
		return nil, nil
	}
	t := fromMicros(settledAt.Int64)
	return &t, nil
}

// ApproveSettlementAtomic approves a pending settlement and marks the
// debtor's shares in the checkpoint window as paid.
//
// The window is computed inside the transaction from the approvals committed
// before this one and ends at settledAt. The status update is conditional on status = 'pending', so
// a concurrent approval that already committed makes this one fail with
// ErrInvalidState and leave every share untouched.
func (s *SQLiteStore) ApproveSettlementAtomic(ctx context.Context, settlementID, callerID string, settledAt time.Time) (*models.Settlement, error) {
	settledAt = fromMicros(toMicros(settledAt))

	var approved *models.Settlement
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		settlement, err := pendingFor(ctx, tx, settlementID, callerID)
		if err != nil {
			return err
		}

		checkpoint, err := latestApproved(ctx, tx, settlement.GroupID)
		if err != nil {
			return err
		}
		var after int64
		if checkpoint != nil {
			after = toMicros(*checkpoint)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE settlements SET status = 'approved', settled_at = ?
			 WHERE id = ? AND status = 'pending'`,
			toMicros(settledAt), settlementID,
		)
		if err != nil {
			return fmt.Errorf("failed to approve settlement: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		} else if n == 0 {
			return fmt.Errorf("settlement %s: %w", settlementID, apperrors.ErrInvalidState)
		}

		// Expenses created after settledAt belong to the next window.
		_, err = tx.ExecContext(ctx,
			`UPDATE expense_shares SET paid = 1
			 WHERE member_id = ? AND paid = 0 AND expense_id IN (
			     SELECT id FROM expenses
			     WHERE group_id = ? AND created_at > ? AND created_at <= ?
			 )`,
			settlement.FromMemberID, settlement.GroupID, after, toMicros(settledAt),
		)
		if err != nil {
			return fmt.Errorf("failed to mark shares paid: %w", err)
		}

		settlement.Status = models.SettlementApproved
		settlement.SettledAt = &settledAt
		approved = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}

	return approved, nil
}

// RejectSettlement rejects a pending settlement. Shares are not touched.
func (s *SQLiteStore) RejectSettlement(ctx context.Context, settlementID, callerID string) (*models.Settlement, error) {
	var rejected *models.Settlement
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		settlement, err := pendingFor(ctx, tx, settlementID, callerID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE settlements SET status = 'rejected' WHERE id = ? AND status = 'pending'`,
			settlementID,
		)
		if err != nil {
			return fmt.Errorf("failed to reject settlement: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		} else if n == 0 {
			return fmt.Errorf("settlement %s: %w", settlementID, apperrors.ErrInvalidState)
		}

		settlement.Status = models.SettlementRejected
		rejected = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rejected, nil
}

// pendingFor loads a settlement and checks that callerID is its creditor and
// that it is still pending, in that order.
func pendingFor(ctx context.Context, tx *sql.Tx, settlementID, callerID string) (*models.Settlement, error) {
	settlement, err := getSettlement(ctx, tx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.ToMemberID != callerID {
		return nil, fmt.Errorf("settlement %s is addressed to another member: %w", settlementID, apperrors.ErrPermissionDenied)
	}
	if settlement.Status != models.SettlementPending {
		return nil, fmt.Errorf("settlement %s is %s: %w", settlementID, settlement.Status, apperrors.ErrInvalidState)
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`WHERE group_id = ? ORDER BY created_at DESC, id`, groupID)
}

// ListPendingSettlementsFor retrieves pending settlements addressed to memberID.
func (s *SQLiteStore) ListPendingSettlementsFor(ctx context.Context, memberID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`WHERE to_member = ? AND status = 'pending' ORDER BY created_at DESC, id`, memberID)
}

func (s *SQLiteStore) listSettlements(ctx context.Context, where string, args ...any) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+settlementColumns+` FROM settlements `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// scanSettlement scans one settlement row. An unknown status fails the scan
// rather than defaulting.
func scanSettlement(scan func(dest ...any) error) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var status string
	var createdAt int64
	var settledAt sql.NullInt64

	if err := scan(&settlement.ID, &settlement.GroupID, &settlement.FromMemberID, &settlement.ToMemberID,
		&settlement.Amount, &status, &createdAt, &settledAt); err != nil {
		return nil, err
	}

	settlement.Status = models.SettlementStatus(status)
	if !settlement.Status.Valid() {
		return nil, fmt.Errorf("settlement %s has unknown status %q", settlement.ID, status)
	}
	settlement.CreatedAt = fromMicros(createdAt)
	if settledAt.Valid {
		t := fromMicros(settledAt.Int64)
		settlement.SettledAt = &t
	}
	return settlement, nil
}
