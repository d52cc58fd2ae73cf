package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// UserExists проверяет, существует ли учётная запись с указанным ID.
func (s *Storage) UserExists(ctx context.Context, id int) (bool, error) {
	const op = "storage.UserExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ServerExists проверяет, существует ли сервер с указанным ID.
func (s *Storage) ServerExists(ctx context.Context, id int) (bool, error) {
	const op = "storage.ServerExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM servers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// FindUser возвращает учётную запись по ID или ErrNotFound.
func (s *Storage) FindUser(ctx context.Context, id int) (*models.User, error) {
	const op = "storage.FindUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, email, username, root_admin FROM users WHERE id = $1`
	var u models.User
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Username, &u.RootAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &u, nil
}

// FindServer возвращает сервер по ID или ErrNotFound.
func (s *Storage) FindServer(ctx context.Context, id int) (*models.Server, error) {
	const op = "storage.FindServer"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, uuid_short, name, owner_id FROM servers WHERE id = $1`
	var srv models.Server
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&srv.ID, &srv.UUIDShort, &srv.Name, &srv.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &srv, nil
}
