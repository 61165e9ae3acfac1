package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

const (
	actionState        = "game:state"
	actionTurn         = "game:turn"
	actionReplay       = "game:replay"
	actionTurnChanged  = "game:turn_changed"
	actionCellUpdated  = "game:cell_updated"
	actionGameOver     = "game:over"
	actionBoardReset   = "game:reset"
	actionErrorMessage = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type TurnRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type StatePayload struct {
	ClientID   string           `json:"client_id,omitempty"`
	State      string           `json:"state"`
	Snapshot   *entity.Snapshot `json:"snapshot"`
	Result     entity.Result    `json:"result"`
	Line       entity.Line      `json:"line"`
	FinalScore int              `json:"final_score"`
	BestScore  int              `json:"best_score"`
}

type TurnChangedPayload struct {
	IsPlayerTurn bool `json:"is_player_turn"`
}

type CellPayload struct {
	Row  int         `json:"row"`
	Col  int         `json:"col"`
	Mark entity.Mark `json:"mark"`
}

type GameOverPayload struct {
	Result     entity.Result `json:"result"`
	Line       entity.Line   `json:"line"`
	FinalScore int           `json:"final_score"`
	BestScore  int           `json:"best_score"`
}

type ErrorPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}
