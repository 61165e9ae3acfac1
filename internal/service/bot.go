package service

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	ChooseMove(board *entity.Board) (entity.Cell, error)
}

type botService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBotService returns a bot that picks uniformly among the empty cells.
// The same seed always produces the same sequence of choices.
func NewBotService(seed uint64) BotService {
	return &botService{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint: gosec // not security sensitive
	}
}

func (that *botService) ChooseMove(board *entity.Board) (entity.Cell, error) {
	availableCells := slices.Collect(board.EmptyCells())
	if len(availableCells) == 0 {
		return entity.Cell{}, ErrNoAvailableMoves
	}

	that.mu.Lock()
	index := that.rnd.IntN(len(availableCells))
	that.mu.Unlock()

	return availableCells[index], nil
}
