package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

func TestStorage_Integration(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := newTestDataFactory(storage)
	ctx := context.Background()

	owner := factory.createUser(t, "owner")
	member := factory.createUser(t, "member")
	serverID := factory.createServer(t, "srv00001", owner)

	require.NoError(t, CheckDatabaseReady(ctx, storage))

	t.Run("existence checks", func(t *testing.T) {
		ok, err := storage.UserExists(ctx, member)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = storage.UserExists(ctx, 999999)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = storage.ServerExists(ctx, serverID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = storage.ServerExists(ctx, 999999)
		require.NoError(t, err)
		assert.False(t, ok)

		srv, err := storage.FindServer(ctx, serverID)
		require.NoError(t, err)
		assert.Equal(t, owner, srv.OwnerID)

		_, err = storage.FindUser(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	var sub *models.Subuser
	t.Run("create with empty permissions", func(t *testing.T) {
		var err error
		sub, err = storage.CreateSubuser(ctx, models.Subuser{UserID: member, ServerID: serverID}, nil)
		require.NoError(t, err)
		assert.Positive(t, sub.ID)
		assert.Equal(t, member, sub.UserID)
		assert.Equal(t, serverID, sub.ServerID)
		assert.False(t, sub.CreatedAt.IsZero())

		perms, err := storage.ListPermissions(ctx, sub.ID)
		require.NoError(t, err)
		assert.Empty(t, perms)
		assert.NotNil(t, perms)
	})

	t.Run("duplicate grant is rejected", func(t *testing.T) {
		_, err := storage.CreateSubuser(ctx, models.Subuser{UserID: member, ServerID: serverID}, []string{"power-start"})
		assert.ErrorIs(t, err, ErrAlreadyExists)
		assert.Equal(t, "subusers_user_id_server_id_unique", ViolatedConstraint(err))
	})

	t.Run("missing reference persists nothing", func(t *testing.T) {
		before := factory.countRows(t, `SELECT COUNT(*) FROM subusers`)
		_, err := storage.CreateSubuser(ctx, models.Subuser{UserID: 999999, ServerID: serverID}, []string{"power-start"})
		assert.ErrorIs(t, err, ErrReferenceMissing)
		assert.Equal(t, ConstraintSubuserUser, ViolatedConstraint(err))

		_, err = storage.CreateSubuser(ctx, models.Subuser{UserID: member, ServerID: 999999}, nil)
		assert.ErrorIs(t, err, ErrReferenceMissing)
		assert.Equal(t, ConstraintSubuserServer, ViolatedConstraint(err))
		assert.Equal(t, before, factory.countRows(t, `SELECT COUNT(*) FROM subusers`))
	})

	t.Run("read and find", func(t *testing.T) {
		got, err := storage.ReadSubuser(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)

		got, err = storage.FindSubuser(ctx, member, serverID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)

		_, err = storage.ReadSubuser(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)

		list, err := storage.ListSubusers(ctx, serverID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, sub.ID, list[0].ID)
	})

	t.Run("replace permissions", func(t *testing.T) {
		require.NoError(t, storage.ReplacePermissions(ctx, sub.ID, []string{"send-command", "power-start"}))
		perms, err := storage.ListPermissions(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"power-start", "send-command"}, perms)

		require.NoError(t, storage.ReplacePermissions(ctx, sub.ID, []string{"list-files"}))
		perms, err = storage.ListPermissions(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"list-files"}, perms)

		err = storage.ReplacePermissions(ctx, 999999, []string{"list-files"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("daemon key lookup is scoped to server and user", func(t *testing.T) {
		_, err := storage.FindDaemonKey(ctx, serverID, member)
		assert.ErrorIs(t, err, ErrNotFound)

		// ключ владельца на том же сервере не должен находиться для субаккаунта
		_, err = storage.CreateDaemonKey(ctx, models.DaemonKey{
			ServerID: serverID, UserID: owner, Secret: "i_owner", ExpiresAt: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)
		_, err = storage.FindDaemonKey(ctx, serverID, member)
		assert.ErrorIs(t, err, ErrNotFound)

		created, err := storage.CreateDaemonKey(ctx, models.DaemonKey{
			ServerID: serverID, UserID: member, Secret: "i_member", ExpiresAt: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)

		got, err := storage.FindDaemonKey(ctx, serverID, member)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "i_member", got.Secret)
	})

	t.Run("renew expiring daemon keys", func(t *testing.T) {
		keys, err := storage.FindDaemonKeysExpiringBefore(ctx, time.Now().Add(2*time.Hour))
		require.NoError(t, err)
		require.Len(t, keys, 2)

		keys, err = storage.FindDaemonKeysExpiringBefore(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Empty(t, keys)

		memberKey, err := storage.FindDaemonKey(ctx, serverID, member)
		require.NoError(t, err)
		expires := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
		n, err := storage.RenewDaemonKey(ctx, memberKey.ID, "i_renewed", expires)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := storage.FindDaemonKey(ctx, serverID, member)
		require.NoError(t, err)
		assert.Equal(t, "i_renewed", got.Secret)
		assert.True(t, got.ExpiresAt.Equal(expires))

		n, err = storage.RenewDaemonKey(ctx, 1_000_000, "i_missing", expires)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("revoke removes grant and its key only", func(t *testing.T) {
		n, err := storage.RevokeSubuser(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		assert.Zero(t, factory.countRows(t, `SELECT COUNT(*) FROM permissions WHERE subuser_id = $1`, sub.ID))
		assert.Equal(t, 1, factory.countRows(t, `SELECT COUNT(*) FROM users WHERE id = $1`, member))
		assert.Equal(t, 1, factory.countRows(t, `SELECT COUNT(*) FROM servers WHERE id = $1`, serverID))

		_, err = storage.FindDaemonKey(ctx, serverID, member)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = storage.FindDaemonKey(ctx, serverID, owner)
		require.NoError(t, err)
	})

	t.Run("revoke of missing grant leaves keys", func(t *testing.T) {
		_, err := storage.CreateDaemonKey(ctx, models.DaemonKey{
			ServerID: serverID, UserID: member, Secret: "i_member2", ExpiresAt: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)

		n, err := storage.RevokeSubuser(ctx, sub.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = storage.FindDaemonKey(ctx, serverID, member)
		require.NoError(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.ReadSubuser(cctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
