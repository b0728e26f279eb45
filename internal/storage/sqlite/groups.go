package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/models"
)

// CreateGroup persists a new group and its initial roster.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = s.nowMicros()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
			group.ID, group.Name, toMicros(group.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for _, m := range group.Members {
			if err := insertMember(ctx, tx, group.ID, m.ID, toMicros(group.CreatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddGroupMember adds a user to a group roster.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("group %s: %w", groupID, apperrors.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}

		err = tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", userID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check user existence: %w", err)
		}

		return insertMember(ctx, tx, groupID, userID, toMicros(s.nowMicros()))
	})
}

func insertMember(ctx context.Context, tx *sql.Tx, groupID, userID string, joinedAt int64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		groupID, userID, joinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its roster in join order.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?", groupID,
	).Scan(&group.ID, &group.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedAt = fromMicros(createdAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.display_name
		 FROM group_members gm JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = ?
		 ORDER BY gm.joined_at, u.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return group, nil
}
