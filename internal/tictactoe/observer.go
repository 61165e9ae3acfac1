package tictactoe

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

// Observer receives presentation events from the GameManager. Calls are
// made synchronously from the goroutine that caused the event, never while
// the GameManager holds its lock.
type Observer interface {
	TurnChanged(isPlayerTurn bool)
	CellUpdated(row, col int, mark entity.Mark)
	GameOver(result entity.Result, line entity.Line, finalScore, bestScore int)
	BoardReset()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnTurnChanged func(isPlayerTurn bool)
	OnCellUpdated func(row, col int, mark entity.Mark)
	OnGameOver    func(result entity.Result, line entity.Line, finalScore, bestScore int)
	OnBoardReset  func()
}

func (that ObserverFuncs) TurnChanged(isPlayerTurn bool) {
	if that.OnTurnChanged != nil {
		that.OnTurnChanged(isPlayerTurn)
	}
}

func (that ObserverFuncs) CellUpdated(row, col int, mark entity.Mark) {
	if that.OnCellUpdated != nil {
		that.OnCellUpdated(row, col, mark)
	}
}

func (that ObserverFuncs) GameOver(result entity.Result, line entity.Line, finalScore, bestScore int) {
	if that.OnGameOver != nil {
		that.OnGameOver(result, line, finalScore, bestScore)
	}
}

func (that ObserverFuncs) BoardReset() {
	if that.OnBoardReset != nil {
		that.OnBoardReset()
	}
}

type subscription struct {
	id       int
	observer Observer
}

type dispatcher struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

func newDispatcher(logger *slog.Logger) *dispatcher {
	return &dispatcher{
		logger: logger,
	}
}

func (that *dispatcher) subscribe(observer Observer) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID
	that.subs = append(that.subs, subscription{id: id, observer: observer})

	var once sync.Once

	return func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			for i, sub := range that.subs {
				if sub.id == id {
					that.subs = append(that.subs[:i:i], that.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// notify delivers the event to every subscriber. A panicking subscriber is
// logged and skipped so the rest still get the event.
func (that *dispatcher) notify(event string, deliver func(Observer)) {
	that.mu.RLock()
	subs := append([]subscription(nil), that.subs...)
	that.mu.RUnlock()

	for _, sub := range subs {
		func() {
			defer func() {
				if recovered := recover(); recovered != nil {
					that.logger.Error("observer panicked", "event", event, "subscriber", sub.id, "panic", fmt.Sprint(recovered))
				}
			}()

			deliver(sub.observer)
		}()
	}
}

func (that *dispatcher) TurnChanged(isPlayerTurn bool) {
	that.notify("turn_changed", func(o Observer) { o.TurnChanged(isPlayerTurn) })
}

func (that *dispatcher) CellUpdated(row, col int, mark entity.Mark) {
	that.notify("cell_updated", func(o Observer) { o.CellUpdated(row, col, mark) })
}

func (that *dispatcher) GameOver(result entity.Result, line entity.Line, finalScore, bestScore int) {
	that.notify("game_over", func(o Observer) { o.GameOver(result, line, finalScore, bestScore) })
}

func (that *dispatcher) BoardReset() {
	that.notify("board_reset", func(o Observer) { o.BoardReset() })
}
