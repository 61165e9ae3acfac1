package websocket

import "github.com/rocketscienceinc/tictactoe-solo/internal/entity"

func (that *Server) TurnChanged(isPlayerTurn bool) {
	that.broadcast(actionTurnChanged, TurnChangedPayload{IsPlayerTurn: isPlayerTurn})
}

func (that *Server) CellUpdated(row, col int, mark entity.Mark) {
	that.broadcast(actionCellUpdated, CellPayload{Row: row, Col: col, Mark: mark})
}

func (that *Server) GameOver(result entity.Result, line entity.Line, finalScore, bestScore int) {
	that.broadcast(actionGameOver, GameOverPayload{
		Result:     result,
		Line:       line,
		FinalScore: finalScore,
		BestScore:  bestScore,
	})
}

func (that *Server) BoardReset() {
	that.broadcast(actionBoardReset, struct{}{})
}
