package service

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotService_ChooseMove(t *testing.T) {
	t.Run("Always picks the only empty cell", func(t *testing.T) {
		// Given: a board with a single free cell at (2, 1)
		board := entity.Board{
			{entity.PlayerX, entity.PlayerO, entity.PlayerX},
			{entity.PlayerO, entity.PlayerX, entity.PlayerO},
			{entity.PlayerO, entity.EmptyCell, entity.PlayerX},
		}

		for seed := range uint64(50) {
			bot := NewBotService(seed)

			// When: the bot chooses a move
			cell, err := bot.ChooseMove(&board)

			// Then: it is always that cell
			require.NoError(t, err)
			assert.Equal(t, entity.Cell{Row: 2, Col: 1}, cell)
		}
	})

	t.Run("Returns error on a full board", func(t *testing.T) {
		board := entity.Board{
			{entity.PlayerX, entity.PlayerO, entity.PlayerX},
			{entity.PlayerX, entity.PlayerO, entity.PlayerO},
			{entity.PlayerO, entity.PlayerX, entity.PlayerX},
		}

		_, err := NewBotService(1).ChooseMove(&board)

		assert.ErrorIs(t, err, ErrNoAvailableMoves)
	})

	t.Run("Never picks an occupied cell", func(t *testing.T) {
		board := entity.Board{
			{entity.PlayerX, entity.EmptyCell, entity.EmptyCell},
			{entity.EmptyCell, entity.PlayerO, entity.EmptyCell},
			{entity.EmptyCell, entity.EmptyCell, entity.PlayerX},
		}
		bot := NewBotService(7)

		for range 200 {
			cell, err := bot.ChooseMove(&board)
			require.NoError(t, err)
			assert.Equal(t, entity.EmptyCell, board.Cell(cell.Row, cell.Col))
		}
	})

	t.Run("Same seed gives the same choices", func(t *testing.T) {
		var board entity.Board
		first, second := NewBotService(42), NewBotService(42)

		for range 20 {
			a, err := first.ChooseMove(&board)
			require.NoError(t, err)
			b, err := second.ChooseMove(&board)
			require.NoError(t, err)

			assert.Equal(t, a, b)
		}
	})

	t.Run("Covers every empty cell", func(t *testing.T) {
		var board entity.Board
		bot := NewBotService(3)
		seen := make(map[entity.Cell]bool)

		for range 1000 {
			cell, err := bot.ChooseMove(&board)
			require.NoError(t, err)
			seen[cell] = true
		}

		assert.Len(t, seen, 9)
	})
}
