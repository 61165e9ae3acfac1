package tictactoe

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const eventTimeout = 2 * time.Second

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryRepo struct {
	mu        sync.Mutex
	snapshots map[string]entity.Snapshot
	loadErr   error
	saves     int
	deletes   int
	loads     int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{snapshots: make(map[string]entity.Snapshot)}
}

func (that *memoryRepo) Save(_ context.Context, key string, snapshot *entity.Snapshot) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.saves++
	that.snapshots[key] = *snapshot

	return nil
}

func (that *memoryRepo) Load(_ context.Context, key string) (*entity.Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.loads++

	if that.loadErr != nil {
		return nil, that.loadErr
	}

	snapshot, ok := that.snapshots[key]
	if !ok {
		return nil, apperror.ErrSnapshotNotFound
	}

	return &snapshot, nil
}

func (that *memoryRepo) HasKey(_ context.Context, key string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, ok := that.snapshots[key]

	return ok, nil
}

func (that *memoryRepo) Delete(_ context.Context, key string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.deletes++
	delete(that.snapshots, key)

	return nil
}

func (that *memoryRepo) stored(key string) (entity.Snapshot, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot, ok := that.snapshots[key]

	return snapshot, ok
}

func (that *memoryRepo) saveCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.saves
}

// scriptedBot plays the given cells in order, then the first empty cell.
// With a gate it waits for a value (or close) before every move.
type scriptedBot struct {
	mu    sync.Mutex
	moves []entity.Cell
	gate  chan struct{}
}

func (that *scriptedBot) ChooseMove(board *entity.Board) (entity.Cell, error) {
	if that.gate != nil {
		<-that.gate
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for len(that.moves) > 0 {
		next := that.moves[0]
		that.moves = that.moves[1:]

		if board.Cell(next.Row, next.Col) == entity.EmptyCell {
			return next, nil
		}
	}

	for cell := range board.EmptyCells() {
		return cell, nil
	}

	return entity.Cell{}, io.EOF
}

// steppingClock advances by step on every reading.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (that *steppingClock) Now() time.Time {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.now = that.now.Add(that.step)

	return that.now
}

type event struct {
	kind         string
	isPlayerTurn bool
	row, col     int
	mark         entity.Mark
	result       entity.Result
	line         entity.Line
	finalScore   int
	bestScore    int
}

type recorder struct {
	events chan event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan event, 128)}
}

func (that *recorder) TurnChanged(isPlayerTurn bool) {
	that.events <- event{kind: "turn", isPlayerTurn: isPlayerTurn}
}

func (that *recorder) CellUpdated(row, col int, mark entity.Mark) {
	that.events <- event{kind: "cell", row: row, col: col, mark: mark}
}

func (that *recorder) GameOver(result entity.Result, line entity.Line, finalScore, bestScore int) {
	that.events <- event{kind: "over", result: result, line: line, finalScore: finalScore, bestScore: bestScore}
}

func (that *recorder) BoardReset() {
	that.events <- event{kind: "reset"}
}

// await skips events until one matches.
func (that *recorder) await(t *testing.T, match func(event) bool) event {
	t.Helper()

	timeout := time.After(eventTimeout)

	for {
		select {
		case got := <-that.events:
			if match(got) {
				return got
			}
		case <-timeout:
			t.Fatal("timed out waiting for event")
			return event{}
		}
	}
}

func (that *recorder) awaitKind(t *testing.T, kind string) event {
	t.Helper()

	return that.await(t, func(e event) bool { return e.kind == kind })
}

func (that *recorder) awaitTurn(t *testing.T, isPlayerTurn bool) {
	t.Helper()

	that.await(t, func(e event) bool { return e.kind == "turn" && e.isPlayerTurn == isPlayerTurn })
}

// next returns the next event without skipping.
func (that *recorder) next(t *testing.T) event {
	t.Helper()

	select {
	case got := <-that.events:
		return got
	case <-time.After(eventTimeout):
		t.Fatal("timed out waiting for event")
		return event{}
	}
}

func newTestManager(ctx context.Context, repo snapshotRepo, bot moveSelector, opts ...Option) (*GameManager, *recorder) {
	rec := newRecorder()
	clock := &steppingClock{now: time.Unix(0, 0), step: 5 * time.Second}

	base := []Option{
		WithBot(bot),
		WithThinkingDelay(0, 0),
		WithClock(clock.Now),
		WithRand(1),
		WithObservers(rec),
	}

	return NewGameManager(ctx, discardLogger(), repo, append(base, opts...)...), rec
}

func startGame(ctx context.Context, gm *GameManager, playerFirst bool) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- gm.LoadNewGame(ctx, &playerFirst)
	}()

	return done
}

func awaitDone(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(eventTimeout):
		t.Fatal("timed out waiting for the game to stop")
		return nil
	}
}
