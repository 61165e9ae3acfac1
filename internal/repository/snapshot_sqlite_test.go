package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rocketscienceinc/tictactoe-solo/internal/repository/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStorage(ctx context.Context, t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	sqliteStorage, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "saves", "tictactoe.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqliteStorage.Close()
	})

	require.NoError(t, sqliteStorage.Init(ctx))

	return sqliteStorage
}

func TestSQLiteSnapshotRepository(t *testing.T) {
	ctx := context.Background()

	testSnapshotRepository(ctx, t, func(t *testing.T) SnapshotRepository {
		t.Helper()

		return NewSQLiteSnapshotRepository(newSQLiteStorage(ctx, t).Connection)
	})

	t.Run("Init is idempotent", func(t *testing.T) {
		sqliteStorage := newSQLiteStorage(ctx, t)

		require.NoError(t, sqliteStorage.Init(ctx))
	})

	t.Run("Corrupt payload surfaces as a decode error", func(t *testing.T) {
		sqliteStorage := newSQLiteStorage(ctx, t)
		repo := NewSQLiteSnapshotRepository(sqliteStorage.Connection)

		_, err := sqliteStorage.Connection.ExecContext(ctx,
			`INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, 0)`, testKey, "{broken")
		require.NoError(t, err)

		snapshot, err := repo.Load(ctx, testKey)

		require.Error(t, err)
		assert.Nil(t, snapshot)
	})
}
