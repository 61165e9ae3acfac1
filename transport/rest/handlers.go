package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	GetSnapshot(w http.ResponseWriter, _ *http.Request)
	DeleteSnapshot(w http.ResponseWriter, r *http.Request)
}

type gameService interface {
	Snapshot() *entity.Snapshot
	State() tictactoe.State
	ResetProgress(ctx context.Context) error
}

type snapshotResponse struct {
	State    string           `json:"state"`
	Snapshot *entity.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger *slog.Logger
	game   gameService
}

func NewHandlers(logger *slog.Logger, game gameService) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// GetSnapshot returns the live session in the same shape it is saved in.
func (that *handlers) GetSnapshot(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, snapshotResponse{
		State:    that.game.State().String(),
		Snapshot: that.game.Snapshot(),
	})
}

// DeleteSnapshot forgets the saved game and the best score.
func (that *handlers) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "DeleteSnapshot")

	if err := that.game.ResetProgress(r.Context()); err != nil {
		log.Error("failed to reset progress", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to reset progress"})

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
