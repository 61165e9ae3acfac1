package score

import (
	"fmt"
	"math"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const (
	LoseScore = 1

	WinMin = 50
	WinMax = 100

	TieMin = 2
	TieMax = 49
)

// the window in which a score decays linearly from max to min.
const (
	fastThreshold = 10 * time.Second
	slowThreshold = 20 * time.Second
)

// Compute maps a finished game's result and the player's accumulated
// reaction time to a score. It panics for results that are not terminal.
func Compute(result entity.Result, elapsed time.Duration) int {
	switch result {
	case entity.ResultLose:
		return LoseScore
	case entity.ResultWin:
		return Ranged(elapsed, WinMin, WinMax)
	case entity.ResultTie:
		return Ranged(elapsed, TieMin, TieMax)
	default:
		panic(fmt.Errorf("%w: cannot score %d", apperror.ErrUnknownResult, int(result)))
	}
}

// Ranged rewards fast games: max up to 10s, min from 20s on, linear in between.
func Ranged(elapsed time.Duration, minScore, maxScore int) int {
	switch {
	case elapsed <= fastThreshold:
		return maxScore
	case elapsed >= slowThreshold:
		return minScore
	}

	progress := (elapsed - fastThreshold).Seconds() / (slowThreshold - fastThreshold).Seconds()
	value := float64(maxScore) + float64(minScore-maxScore)*progress

	return int(math.Round(value))
}

// Best returns the running maximum; the best score never decreases.
func Best(current, candidate int) int {
	return max(current, candidate)
}
