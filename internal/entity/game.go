package entity

import (
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
)

type Line int

const (
	LineNone Line = iota
	HorizontalTop
	HorizontalMiddle
	HorizontalBottom
	VerticalLeft
	VerticalMiddle
	VerticalRight
	ForwardSlash
	BackwardSlash
)

// WinLines is the evaluation order: rows, columns, main diagonal, anti-diagonal.
var WinLines = [...]Line{
	HorizontalTop,
	HorizontalMiddle,
	HorizontalBottom,
	VerticalLeft,
	VerticalMiddle,
	VerticalRight,
	BackwardSlash,
	ForwardSlash,
}

var lineCells = map[Line][3]Cell{
	HorizontalTop:    {{0, 0}, {0, 1}, {0, 2}},
	HorizontalMiddle: {{1, 0}, {1, 1}, {1, 2}},
	HorizontalBottom: {{2, 0}, {2, 1}, {2, 2}},
	VerticalLeft:     {{0, 0}, {1, 0}, {2, 0}},
	VerticalMiddle:   {{0, 1}, {1, 1}, {2, 1}},
	VerticalRight:    {{0, 2}, {1, 2}, {2, 2}},
	ForwardSlash:     {{0, 2}, {1, 1}, {2, 0}},
	BackwardSlash:    {{0, 0}, {1, 1}, {2, 2}},
}

var lineNames = map[Line]string{
	LineNone:         "none",
	HorizontalTop:    "horizontal_top",
	HorizontalMiddle: "horizontal_middle",
	HorizontalBottom: "horizontal_bottom",
	VerticalLeft:     "vertical_left",
	VerticalMiddle:   "vertical_middle",
	VerticalRight:    "vertical_right",
	ForwardSlash:     "forward_slash",
	BackwardSlash:    "backward_slash",
}

// Cells returns the three cells of the line. It panics for LineNone and
// unknown values.
func (that Line) Cells() [3]Cell {
	cells, ok := lineCells[that]
	if !ok {
		panic(fmt.Errorf("%w: %d", apperror.ErrUnknownLine, int(that)))
	}

	return cells
}

func (that Line) String() string {
	name, ok := lineNames[that]
	if !ok {
		panic(fmt.Errorf("%w: %d", apperror.ErrUnknownLine, int(that)))
	}

	return name
}

func (that Line) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Line) UnmarshalText(text []byte) error {
	for line, name := range lineNames {
		if name == string(text) {
			*that = line
			return nil
		}
	}

	return fmt.Errorf("%w: %q", apperror.ErrUnknownLine, text)
}

type Result int

const (
	ResultNone Result = iota
	ResultWin
	ResultLose
	ResultTie
)

var resultNames = map[Result]string{
	ResultNone: "none",
	ResultWin:  "win",
	ResultLose: "lose",
	ResultTie:  "tie",
}

func (that Result) String() string {
	name, ok := resultNames[that]
	if !ok {
		panic(fmt.Errorf("%w: %d", apperror.ErrUnknownResult, int(that)))
	}

	return name
}

func (that Result) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Result) UnmarshalText(text []byte) error {
	for result, name := range resultNames {
		if name == string(text) {
			*that = result
			return nil
		}
	}

	return fmt.Errorf("%w: %q", apperror.ErrUnknownResult, text)
}

// ResultFor maps a terminal outcome to the human player's result.
func ResultFor(outcome Outcome) Result {
	switch outcome.Status {
	case StatusTie:
		return ResultTie
	case StatusWin:
		if outcome.Winner == PlayerX {
			return ResultWin
		}
		return ResultLose
	default:
		return ResultNone
	}
}

// Snapshot is the persisted projection of a game session.
type Snapshot struct {
	IsGameInProgress  bool    `json:"is_game_in_progress" yaml:"is_game_in_progress"`
	Board             Board   `json:"board"               yaml:"board"`
	IsPlayerTurn      bool    `json:"is_player_turn"      yaml:"is_player_turn"`
	TotalScore        int     `json:"total_score"         yaml:"total_score"`
	TotalReactionTime float64 `json:"total_reaction_time" yaml:"total_reaction_time"`
}

func (that *Snapshot) IsResumable() bool {
	return that != nil && that.IsGameInProgress
}

// Validate checks that the snapshot describes a board that can occur in
// play: known marks only, X never more than one move ahead of O and a
// finite non-negative reaction time.
func (that *Snapshot) Validate() error {
	if that == nil {
		return fmt.Errorf("%w: nil snapshot", apperror.ErrInvalidSnapshot)
	}

	var xCount, oCount int

	for row := range BoardSize {
		for col := range BoardSize {
			switch mark := that.Board[row][col]; mark {
			case EmptyCell:
			case PlayerX:
				xCount++
			case PlayerO:
				oCount++
			default:
				return fmt.Errorf("%w: unknown mark %q at (%d, %d)", apperror.ErrInvalidSnapshot, mark, row, col)
			}
		}
	}

	if xCount-oCount > 1 || oCount-xCount > 1 {
		return fmt.Errorf("%w: %d X against %d O", apperror.ErrInvalidSnapshot, xCount, oCount)
	}

	if math.IsNaN(that.TotalReactionTime) || math.IsInf(that.TotalReactionTime, 0) || that.TotalReactionTime < 0 {
		return fmt.Errorf("%w: reaction time %v", apperror.ErrInvalidSnapshot, that.TotalReactionTime)
	}

	return nil
}
