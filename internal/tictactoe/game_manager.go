package tictactoe

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/lifecycle"
	"github.com/rocketscienceinc/tictactoe-solo/internal/score"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
)

const saveTimeout = 5 * time.Second

type snapshotRepo interface {
	Save(ctx context.Context, key string, snapshot *entity.Snapshot) error
	Load(ctx context.Context, key string) (*entity.Snapshot, error)
	HasKey(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

type moveSelector interface {
	ChooseMove(board *entity.Board) (entity.Cell, error)
}

type State int

const (
	StateIdle State = iota
	StateInProgress
	StateGameOver
)

func (that State) String() string {
	switch that {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in_progress"
	case StateGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("state(%d)", int(that))
	}
}

// GameManager drives a single human-vs-bot session. The human plays X and
// the bot plays O.
type GameManager struct {
	logger    *slog.Logger
	repo      snapshotRepo
	bot       moveSelector
	observers *dispatcher
	hooks     lifecycle.Hooks

	key                string
	thinkMin, thinkMax time.Duration
	now                func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu                sync.Mutex
	state             State
	board             entity.Board
	isPlayerTurn      bool
	isGameInProgress  bool
	movePending       bool
	loopRunning       bool
	result            entity.Result
	winningLine       entity.Line
	totalReactionTime time.Duration
	finalScore        int
	bestScore         int
	resume            *entity.Snapshot

	moveCh   chan struct{}
	replayCh chan struct{}
}

// NewGameManager builds the session and reads the saved snapshot once.
// A missing or unreadable snapshot starts a fresh session.
func NewGameManager(ctx context.Context, logger *slog.Logger, repo snapshotRepo, opts ...Option) *GameManager {
	seed := uint64(time.Now().UnixNano()) //nolint: gosec // seed only

	that := &GameManager{
		logger:    logger.With("component", "game_manager"),
		repo:      repo,
		observers: newDispatcher(logger.With("component", "observers")),
		key:       DefaultSnapshotKey,
		thinkMin:  defaultThinkMin,
		thinkMax:  defaultThinkMax,
		now:       time.Now,
		rnd:       newRand(seed),
		moveCh:    make(chan struct{}, 1),
		replayCh:  make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(that)
	}

	if that.bot == nil {
		that.bot = service.NewBotService(seed)
	}

	if that.hooks != nil {
		that.hooks.OnPause(func(paused bool) {
			if paused {
				that.saveOnHook("pause")
			}
		})
		that.hooks.OnQuit(func() {
			that.saveOnHook("quit")
		})
	}

	that.restore(ctx)

	return that
}

// Subscribe registers an observer and returns a func that removes it.
func (that *GameManager) Subscribe(observer Observer) func() {
	return that.observers.subscribe(observer)
}

func (that *GameManager) restore(ctx context.Context) {
	log := that.logger.With("method", "restore", "key", that.key)

	exists, err := that.repo.HasKey(ctx, that.key)
	if err != nil {
		log.Warn("failed to check saved game", "error", err)
		return
	}

	if !exists {
		log.Info("no saved game")
		return
	}

	snapshot, err := that.repo.Load(ctx, that.key)
	if err != nil {
		log.Warn("ignoring unreadable saved game", "error", err)
		return
	}

	if err = snapshot.Validate(); err != nil {
		log.Warn("ignoring corrupt saved game", "error", err)
		return
	}

	that.bestScore = max(snapshot.TotalScore, 0)

	if snapshot.IsResumable() {
		that.resume = snapshot
	}

	log.Info("saved game loaded", "best_score", that.bestScore, "resumable", that.resume != nil)
}

// Initialize plays the first game with a random starting side and then
// serves replays until ctx ends.
func (that *GameManager) Initialize(ctx context.Context) error {
	return that.Run(ctx, nil)
}

// Run plays a game, then waits for RequestReplay and plays again. It
// returns the context error once ctx ends.
func (that *GameManager) Run(ctx context.Context, firstTurn *bool) error {
	if err := that.LoadNewGame(ctx, firstTurn); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-that.replayCh:
		}

		if err := that.LoadNewGame(ctx, nil); err != nil {
			return err
		}
	}
}

// LoadNewGame starts a session, resuming the saved one when there is a game
// in progress, and blocks until the game is over or ctx ends. A non-nil
// firstTurn decides who moves first.
func (that *GameManager) LoadNewGame(ctx context.Context, firstTurn *bool) error {
	log := that.logger.With("method", "LoadNewGame")

	restored, err := that.reset(firstTurn)
	if err != nil {
		return err
	}

	defer func() {
		that.mu.Lock()
		that.loopRunning = false
		that.mu.Unlock()
	}()

	that.observers.BoardReset()

	for _, cell := range restored {
		that.observers.CellUpdated(cell.Row, cell.Col, cell.Mark)
	}

	log.Info("game started", "resumed", len(restored) > 0, "player_first", that.IsPlayerTurn())

	return that.gameLoop(ctx)
}

type placedMark struct {
	entity.Cell
	Mark entity.Mark
}

func (that *GameManager) reset(firstTurn *bool) ([]placedMark, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.loopRunning {
		return nil, apperror.ErrGameInProgress
	}

	that.board.Reset()
	that.totalReactionTime = 0
	resumed := false

	if snapshot := that.resume; snapshot != nil {
		that.resume = nil

		if snapshot.Board.EvaluateTerminal().IsTerminal() {
			that.logger.Warn("saved game is already finished, starting fresh", "board", snapshot.Board.String())
		} else {
			that.board = snapshot.Board
			that.isPlayerTurn = snapshot.IsPlayerTurn
			that.totalReactionTime = time.Duration(snapshot.TotalReactionTime * float64(time.Second))
			resumed = true
		}
	}

	switch {
	case firstTurn != nil:
		that.isPlayerTurn = *firstTurn
	case !resumed:
		that.isPlayerTurn = that.coinFlip()
	}

	that.result = entity.ResultNone
	that.winningLine = entity.LineNone
	that.finalScore = 0
	that.isGameInProgress = true
	that.movePending = false
	that.loopRunning = true
	that.state = StateInProgress

	for _, ch := range []chan struct{}{that.moveCh, that.replayCh} {
		select {
		case <-ch:
		default:
		}
	}

	var restored []placedMark

	for row := range entity.BoardSize {
		for col := range entity.BoardSize {
			if mark := that.board.Cell(row, col); mark != entity.EmptyCell {
				restored = append(restored, placedMark{Cell: entity.Cell{Row: row, Col: col}, Mark: mark})
			}
		}
	}

	return restored, nil
}

func (that *GameManager) gameLoop(ctx context.Context) error {
	for {
		that.mu.Lock()
		isPlayerTurn := that.isPlayerTurn
		that.mu.Unlock()

		that.observers.TurnChanged(isPlayerTurn)

		var err error
		if isPlayerTurn {
			err = that.waitForPlayer(ctx)
		} else {
			err = that.playBot(ctx)
		}

		if err != nil {
			return err
		}

		that.mu.Lock()
		outcome := that.board.EvaluateTerminal()
		if !outcome.IsTerminal() {
			that.isPlayerTurn = !that.isPlayerTurn
			that.movePending = false
			that.mu.Unlock()

			continue
		}
		that.mu.Unlock()

		that.finish(ctx, outcome)

		return nil
	}
}

func (that *GameManager) waitForPlayer(ctx context.Context) error {
	start := that.now()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-that.moveCh:
	}

	elapsed := that.now().Sub(start)

	that.mu.Lock()
	that.totalReactionTime += elapsed
	that.mu.Unlock()

	return nil
}

func (that *GameManager) playBot(ctx context.Context) error {
	timer := time.NewTimer(that.thinkingDelay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	that.mu.Lock()
	board := that.board
	that.mu.Unlock()

	cell, err := that.bot.ChooseMove(&board)
	if err != nil {
		return fmt.Errorf("bot move: %w", err)
	}

	that.mu.Lock()
	placed := that.board.Place(cell.Row, cell.Col, entity.PlayerO)
	that.mu.Unlock()

	if !placed {
		return fmt.Errorf("bot chose unavailable cell (%d, %d)", cell.Row, cell.Col)
	}

	that.observers.CellUpdated(cell.Row, cell.Col, entity.PlayerO)

	return nil
}

func (that *GameManager) finish(ctx context.Context, outcome entity.Outcome) {
	log := that.logger.With("method", "finish")

	that.mu.Lock()
	that.result = entity.ResultFor(outcome)
	that.winningLine = outcome.Line
	that.isGameInProgress = false
	that.state = StateGameOver
	that.finalScore = score.Compute(that.result, that.totalReactionTime)
	that.bestScore = score.Best(that.bestScore, that.finalScore)

	snapshot := that.snapshotLocked()
	result, line, finalScore, bestScore := that.result, that.winningLine, that.finalScore, that.bestScore
	that.mu.Unlock()

	log.Info("game over",
		"result", result.String(),
		"line", line.String(),
		"final_score", finalScore,
		"best_score", bestScore,
		"reaction_time", snapshot.TotalReactionTime,
	)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := that.repo.Save(saveCtx, that.key, snapshot); err != nil {
		log.Error("failed to save finished game", "error", err)
	}

	that.observers.GameOver(result, line, finalScore, bestScore)
}

// SubmitPlayerMove places an X for the human. It reports false, changing
// nothing, when no game is running, it is not the human's turn, a move was
// already made this turn, or the cell is taken or out of range.
func (that *GameManager) SubmitPlayerMove(row, col int) bool {
	log := that.logger.With("method", "SubmitPlayerMove", "row", row, "col", col)

	that.mu.Lock()
	if !that.loopRunning || !that.isGameInProgress || !that.isPlayerTurn || that.movePending {
		that.mu.Unlock()
		log.Debug("move ignored: not accepting moves")

		return false
	}

	if !that.board.Place(row, col, entity.PlayerX) {
		that.mu.Unlock()
		log.Debug("move ignored: cell unavailable")

		return false
	}

	that.movePending = true
	that.mu.Unlock()

	that.observers.CellUpdated(row, col, entity.PlayerX)

	select {
	case that.moveCh <- struct{}{}:
	default:
	}

	return true
}

// RequestReplay asks Run to start another game. It is only accepted once
// the current game is over.
func (that *GameManager) RequestReplay() bool {
	that.mu.Lock()
	gameOver := that.state == StateGameOver
	that.mu.Unlock()

	if !gameOver {
		return false
	}

	select {
	case that.replayCh <- struct{}{}:
		return true
	default:
		return false
	}
}

// SaveSnapshot persists the live session. Nothing is written before the
// first game starts so a resumable save is never overwritten.
func (that *GameManager) SaveSnapshot(ctx context.Context) error {
	that.mu.Lock()
	if that.state == StateIdle {
		that.mu.Unlock()
		return nil
	}
	snapshot := that.snapshotLocked()
	that.mu.Unlock()

	if err := that.repo.Save(ctx, that.key, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// ResetProgress forgets the best score and removes the saved game.
func (that *GameManager) ResetProgress(ctx context.Context) error {
	that.mu.Lock()
	that.bestScore = 0
	that.resume = nil
	that.mu.Unlock()

	if err := that.repo.Delete(ctx, that.key); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	that.logger.Info("progress reset", "key", that.key)

	return nil
}

func (that *GameManager) saveOnHook(hook string) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := that.SaveSnapshot(ctx); err != nil {
		that.logger.Error("failed to save game", "hook", hook, "error", err)
		return
	}

	that.logger.Info("game saved", "hook", hook)
}

// snapshotLocked must be called with mu held. A pending move already used
// the human's turn, so the snapshot hands the turn to the bot.
func (that *GameManager) snapshotLocked() *entity.Snapshot {
	return &entity.Snapshot{
		IsGameInProgress:  that.isGameInProgress,
		Board:             that.board,
		IsPlayerTurn:      that.isPlayerTurn && !that.movePending,
		TotalScore:        that.bestScore,
		TotalReactionTime: that.totalReactionTime.Seconds(),
	}
}

func (that *GameManager) coinFlip() bool {
	that.rndMu.Lock()
	defer that.rndMu.Unlock()

	return that.rnd.IntN(2) == 0
}

func (that *GameManager) thinkingDelay() time.Duration {
	if that.thinkMax <= that.thinkMin {
		return that.thinkMin
	}

	that.rndMu.Lock()
	defer that.rndMu.Unlock()

	return that.thinkMin + time.Duration(that.rnd.Int64N(int64(that.thinkMax-that.thinkMin)+1))
}

func (that *GameManager) Snapshot() *entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotLocked()
}

func (that *GameManager) State() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

func (that *GameManager) Board() entity.Board {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board
}

func (that *GameManager) IsPlayerTurn() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.isPlayerTurn
}

func (that *GameManager) IsGameInProgress() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.isGameInProgress
}

func (that *GameManager) Result() entity.Result {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.result
}

func (that *GameManager) WinningLine() entity.Line {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.winningLine
}

// FinalScore is 0 while a game is in progress.
func (that *GameManager) FinalScore() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.isGameInProgress {
		return 0
	}

	return that.finalScore
}

func (that *GameManager) BestScore() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.bestScore
}

func (that *GameManager) TotalReactionTime() time.Duration {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.totalReactionTime
}
