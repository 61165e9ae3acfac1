package repository

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "current-game"

func fullBoardSnapshot(isPlayerTurn bool) *entity.Snapshot {
	return &entity.Snapshot{
		IsGameInProgress: false,
		Board: entity.Board{
			{entity.PlayerX, entity.PlayerO, entity.PlayerX},
			{entity.PlayerX, entity.PlayerO, entity.PlayerO},
			{entity.PlayerO, entity.PlayerX, entity.PlayerX},
		},
		IsPlayerTurn:      isPlayerTurn,
		TotalScore:        49,
		TotalReactionTime: 7.25,
	}
}

func inProgressSnapshot() *entity.Snapshot {
	return &entity.Snapshot{
		IsGameInProgress: true,
		Board: entity.Board{
			{entity.PlayerX, entity.EmptyCell, entity.EmptyCell},
			{entity.EmptyCell, entity.PlayerO, entity.EmptyCell},
			{entity.EmptyCell, entity.EmptyCell, entity.EmptyCell},
		},
		IsPlayerTurn:      true,
		TotalScore:        100,
		TotalReactionTime: 3.5,
	}
}

// testSnapshotRepository runs the behaviour every backend has to share.
func testSnapshotRepository(ctx context.Context, t *testing.T, newRepo func(t *testing.T) SnapshotRepository) {
	t.Helper()

	t.Run("Load returns ErrSnapshotNotFound for a missing key", func(t *testing.T) {
		repo := newRepo(t)

		// When: loading a key that was never saved
		snapshot, err := repo.Load(ctx, testKey)

		// Then: absence is reported
		require.ErrorIs(t, err, apperror.ErrSnapshotNotFound)
		assert.Nil(t, snapshot)
	})

	t.Run("Round-trips snapshots for both turn values", func(t *testing.T) {
		for _, expected := range []*entity.Snapshot{fullBoardSnapshot(true), fullBoardSnapshot(false), inProgressSnapshot()} {
			repo := newRepo(t)

			// Given: a saved snapshot
			require.NoError(t, repo.Save(ctx, testKey, expected))

			// When: loading it back
			actual, err := repo.Load(ctx, testKey)

			// Then: it is identical
			require.NoError(t, err)
			assert.Equal(t, expected, actual)
		}
	})

	t.Run("Save overwrites the previous snapshot", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Save(ctx, testKey, inProgressSnapshot()))
		require.NoError(t, repo.Save(ctx, testKey, fullBoardSnapshot(false)))

		actual, err := repo.Load(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, fullBoardSnapshot(false), actual)
	})

	t.Run("HasKey reflects saves and deletes", func(t *testing.T) {
		repo := newRepo(t)

		exists, err := repo.HasKey(ctx, testKey)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, repo.Save(ctx, testKey, inProgressSnapshot()))

		exists, err = repo.HasKey(ctx, testKey)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, repo.Delete(ctx, testKey))

		exists, err = repo.HasKey(ctx, testKey)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = repo.Load(ctx, testKey)
		require.ErrorIs(t, err, apperror.ErrSnapshotNotFound)
	})

	t.Run("Delete of a missing key is not an error", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Delete(ctx, "never-saved"))
	})

	t.Run("Keys are independent", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Save(ctx, "a", inProgressSnapshot()))
		require.NoError(t, repo.Save(ctx, "b", fullBoardSnapshot(true)))

		a, err := repo.Load(ctx, "a")
		require.NoError(t, err)
		b, err := repo.Load(ctx, "b")
		require.NoError(t, err)

		assert.Equal(t, inProgressSnapshot(), a)
		assert.Equal(t, fullBoardSnapshot(true), b)
	})

	t.Run("Every operation rejects an empty key", func(t *testing.T) {
		repo := newRepo(t)

		require.ErrorIs(t, repo.Save(ctx, "", inProgressSnapshot()), ErrInvalidKey)

		snapshot, err := repo.Load(ctx, "")
		require.ErrorIs(t, err, ErrInvalidKey)
		assert.Nil(t, snapshot)

		exists, err := repo.HasKey(ctx, "")
		require.ErrorIs(t, err, ErrInvalidKey)
		assert.False(t, exists)

		require.ErrorIs(t, repo.Delete(ctx, ""), ErrInvalidKey)
	})
}
