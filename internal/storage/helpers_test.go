package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/panel-subusers/internal/migrations"
)

// testDataFactory содержит методы для создания тестовых данных
type testDataFactory struct {
	storage *Storage
}

func newTestDataFactory(storage *Storage) *testDataFactory {
	return &testDataFactory{storage: storage}
}

// createUser создает тестового пользователя и возвращает его ID
func (f *testDataFactory) createUser(t *testing.T, username string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO users (email, username) VALUES ($1, $2) RETURNING id`,
		username+"@example.com", username).Scan(&id)
	require.NoError(t, err)
	return id
}

// createServer создает тестовый сервер владельца ownerID, name не короче 8 символов
func (f *testDataFactory) createServer(t *testing.T, name string, ownerID int) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO servers (uuid_short, name, owner_id) VALUES ($1, $2, $3) RETURNING id`,
		name[:8], name, ownerID).Scan(&id)
	require.NoError(t, err)
	return id
}

// countRows возвращает количество строк таблицы, удовлетворяющих условию
func (f *testDataFactory) countRows(t *testing.T, query string, args ...any) int {
	var count int
	require.NoError(t, f.storage.DB.QueryRow(query, args...).Scan(&count))
	return count
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) *Storage {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	t.Cleanup(func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	return storage
}
