package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

const subuserColumns = `id, user_id, server_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubuser(row rowScanner) (*models.Subuser, error) {
	var sub models.Subuser
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.ServerID, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubuser вставляет выдачу доступа вместе с её правами в одной транзакции
// и возвращает созданную запись. Повторная выдача той же пары (user_id, server_id)
// даёт ErrAlreadyExists, ссылка на несуществующую строку: ErrReferenceMissing.
func (s *Storage) CreateSubuser(ctx context.Context, sub models.Subuser, permissions []string) (*models.Subuser, error) {
	const op = "storage.CreateSubuser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var created *models.Subuser
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO subusers (user_id, server_id)
				  VALUES ($1, $2)
				  RETURNING ` + subuserColumns
		var err error
		created, err = scanSubuser(tx.QueryRowContext(ctx, query, sub.UserID, sub.ServerID))
		if err != nil {
			return err
		}
		return insertPermissions(ctx, tx, created.ID, permissions)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// ReadSubuser возвращает выдачу доступа по ID или ErrNotFound.
func (s *Storage) ReadSubuser(ctx context.Context, id int) (*models.Subuser, error) {
	const op = "storage.ReadSubuser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subuserColumns + ` FROM subusers WHERE id = $1`
	sub, err := scanSubuser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// FindSubuser возвращает выдачу доступа пользователя userID к серверу serverID или ErrNotFound.
func (s *Storage) FindSubuser(ctx context.Context, userID, serverID int) (*models.Subuser, error) {
	const op = "storage.FindSubuser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subuserColumns + ` FROM subusers WHERE user_id = $1 AND server_id = $2`
	sub, err := scanSubuser(s.DB.QueryRowContext(ctx, query, userID, serverID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// ListSubusers возвращает все выдачи доступа к серверу в порядке создания.
func (s *Storage) ListSubusers(ctx context.Context, serverID int) ([]*models.Subuser, error) {
	const op = "storage.ListSubusers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subuserColumns + `
			  FROM subusers
			  WHERE server_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Subuser, 0)
	for rows.Next() {
		sub, err := scanSubuser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RevokeSubuser в одной транзакции удаляет выдачу доступа по ID и ключ демона пары
// (server_id, user_id) этой выдачи. Возвращает количество удалённых выдач; если выдачи
// уже нет, ключ не трогается. Права удаляются каскадно, учётная запись и сервер остаются.
func (s *Storage) RevokeSubuser(ctx context.Context, id int) (int, error) {
	const op = "storage.RevokeSubuser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	removed := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var serverID, userID int
		err := tx.QueryRowContext(ctx,
			`DELETE FROM subusers WHERE id = $1 RETURNING server_id, user_id`, id).Scan(&serverID, &userID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM daemon_keys WHERE server_id = $1 AND user_id = $2`, serverID, userID); err != nil {
			return err
		}
		removed = 1
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}
