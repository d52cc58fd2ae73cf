package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ListPermissions возвращает права субаккаунта, отсортированные по имени.
// Пустой срез: допустимый результат.
func (s *Storage) ListPermissions(ctx context.Context, subuserID int) ([]string, error) {
	const op = "storage.ListPermissions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT permission FROM permissions WHERE subuser_id = $1 ORDER BY permission`
	rows, err := s.DB.QueryContext(ctx, query, subuserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReplacePermissions заменяет набор прав субаккаунта целиком и обновляет updated_at.
// Если субаккаунта нет, возвращается ErrNotFound.
func (s *Storage) ReplacePermissions(ctx context.Context, subuserID int, permissions []string) error {
	const op = "storage.ReplacePermissions"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// Блокируем запись, чтобы параллельные правки не смешали наборы.
		var id int
		err := tx.QueryRowContext(ctx,
			`UPDATE subusers SET updated_at = NOW() WHERE id = $1 RETURNING id`, subuserID).Scan(&id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM permissions WHERE subuser_id = $1`, subuserID); err != nil {
			return err
		}
		return insertPermissions(ctx, tx, subuserID, permissions)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

func insertPermissions(ctx context.Context, tx *sql.Tx, subuserID int, permissions []string) error {
	if len(permissions) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO permissions (subuser_id, permission) VALUES ($1, $2)`)
	if err != nil {
		return err
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, p := range permissions {
		if _, err := stmt.ExecContext(ctx, subuserID, p); err != nil {
			return err
		}
	}
	return nil
}
