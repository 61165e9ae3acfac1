package entity

import (
	"iter"
	"strings"
)

const BoardSize = 3

type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""
)

// IsPlayable reports whether the mark can be placed on a board.
func (that Mark) IsPlayable() bool {
	return that == PlayerX || that == PlayerO
}

// Cell is a (row, col) board coordinate.
type Cell struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

func (that Cell) inBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

type Status int

const (
	StatusOngoing Status = iota
	StatusWin
	StatusTie
)

// Outcome is the result of evaluating a board.
type Outcome struct {
	Status Status
	Winner Mark
	Line   Line
}

func (that Outcome) IsTerminal() bool {
	return that.Status != StatusOngoing
}

// Board is a fixed 3x3 grid. The zero value is an empty board.
type Board [BoardSize][BoardSize]Mark

// Place puts mark at (row, col). It returns false and leaves the board
// untouched when the coordinates are out of range, the cell is taken or
// the mark is not playable.
func (that *Board) Place(row, col int, mark Mark) bool {
	cell := Cell{Row: row, Col: col}
	if !cell.inBounds() || !mark.IsPlayable() {
		return false
	}

	if that[row][col] != EmptyCell {
		return false
	}

	that[row][col] = mark

	return true
}

// Cell returns the mark at (row, col), or EmptyCell when out of range.
func (that *Board) Cell(row, col int) Mark {
	if !(Cell{Row: row, Col: col}).inBounds() {
		return EmptyCell
	}

	return that[row][col]
}

// EmptyCells yields the free cells in row-major order.
func (that *Board) EmptyCells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for row := range BoardSize {
			for col := range BoardSize {
				if that[row][col] != EmptyCell {
					continue
				}
				if !yield(Cell{Row: row, Col: col}) {
					return
				}
			}
		}
	}
}

func (that *Board) IsFull() bool {
	for range that.EmptyCells() {
		return false
	}

	return true
}

// EvaluateTerminal checks the lines in WinLines order; the first complete line wins.
func (that *Board) EvaluateTerminal() Outcome {
	for _, line := range WinLines {
		cells := line.Cells()
		a := that[cells[0].Row][cells[0].Col]
		b := that[cells[1].Row][cells[1].Col]
		c := that[cells[2].Row][cells[2].Col]

		if a != EmptyCell && a == b && b == c {
			return Outcome{Status: StatusWin, Winner: a, Line: line}
		}
	}

	// the game will continue until all the squares are full
	if !that.IsFull() {
		return Outcome{Status: StatusOngoing}
	}

	return Outcome{Status: StatusTie}
}

func (that *Board) Reset() {
	*that = Board{}
}

// String renders rows separated by "/" with "." for empty cells, e.g. "X.O/.X./..O".
func (that *Board) String() string {
	var sb strings.Builder

	for row := range BoardSize {
		if row > 0 {
			sb.WriteByte('/')
		}
		for col := range BoardSize {
			if that[row][col] == EmptyCell {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(string(that[row][col]))
		}
	}

	return sb.String()
}
