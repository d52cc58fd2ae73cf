package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// FindDaemonKey ищет ключ демона по составному ключу (server_id, user_id).
// Прямой ссылки из subusers на daemon_keys нет. Если ключа нет, возвращается ErrNotFound.
func (s *Storage) FindDaemonKey(ctx context.Context, serverID, userID int) (*models.DaemonKey, error) {
	const op = "storage.FindDaemonKey"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, server_id, user_id, secret, expires_at, created_at, updated_at
			  FROM daemon_keys
			  WHERE server_id = $1 AND user_id = $2`
	var k models.DaemonKey
	err := s.DB.QueryRowContext(ctx, query, serverID, userID).Scan(
		&k.ID, &k.ServerID, &k.UserID, &k.Secret, &k.ExpiresAt, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &k, nil
}

// CreateDaemonKey сохраняет новый ключ демона и возвращает его с присвоенным ID.
func (s *Storage) CreateDaemonKey(ctx context.Context, key models.DaemonKey) (*models.DaemonKey, error) {
	const op = "storage.CreateDaemonKey"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO daemon_keys (server_id, user_id, secret, expires_at)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at, updated_at`
	err := s.DB.QueryRowContext(ctx, query, key.ServerID, key.UserID, key.Secret, key.ExpiresAt).
		Scan(&key.ID, &key.CreatedAt, &key.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &key, nil
}

// FindDaemonKeysExpiringBefore возвращает ключи, срок действия которых заканчивается не позже before.
func (s *Storage) FindDaemonKeysExpiringBefore(ctx context.Context, before time.Time) ([]*models.DaemonKey, error) {
	const op = "storage.FindDaemonKeysExpiringBefore"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, server_id, user_id, secret, expires_at, created_at, updated_at
			  FROM daemon_keys
			  WHERE expires_at <= $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []*models.DaemonKey
	for rows.Next() {
		var k models.DaemonKey
		if err := rows.Scan(&k.ID, &k.ServerID, &k.UserID, &k.Secret, &k.ExpiresAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys = append(keys, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}

// RenewDaemonKey заменяет секрет ключа и продлевает срок его действия.
func (s *Storage) RenewDaemonKey(ctx context.Context, id int, secret string, expiresAt time.Time) (int, error) {
	const op = "storage.RenewDaemonKey"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE daemon_keys SET secret = $1, expires_at = $2, updated_at = NOW() WHERE id = $3`,
		secret, expiresAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
