package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func (that *Server) handleState(_ context.Context, c *client, _ *Message) error {
	if err := c.send(actionState, that.state(c.id)); err != nil {
		return fmt.Errorf("failed to send state: %w", err)
	}

	return nil
}

func (that *Server) handleTurn(_ context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleTurn", "client", c.id)

	var request TurnRequest
	if err := json.Unmarshal(msg.Payload, &request); err != nil {
		that.sendError(c, msg.Action, "malformed payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if request.Row == nil || request.Col == nil {
		that.sendError(c, msg.Action, "row and col are required")
		return nil
	}

	if !that.game.SubmitPlayerMove(*request.Row, *request.Col) {
		log.Debug("move rejected", "row", *request.Row, "col", *request.Col)
		that.sendError(c, msg.Action, "move rejected")
	}

	return nil
}

func (that *Server) handleReplay(_ context.Context, c *client, msg *Message) error {
	if !that.game.RequestReplay() {
		that.sendError(c, msg.Action, "replay is not available")
	}

	return nil
}
