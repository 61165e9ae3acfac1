package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

const (
	writeTimeout     = 10 * time.Second
	handshakeTimeout = 10 * time.Second
	maxMessageSize   = 4096
)

var errUnknownAction = errors.New("unknown action")

type game interface {
	SubmitPlayerMove(row, col int) bool
	RequestReplay() bool
	Subscribe(observer tictactoe.Observer) func()

	Snapshot() *entity.Snapshot
	State() tictactoe.State
	Result() entity.Result
	WinningLine() entity.Line
	FinalScore() int
	BestScore() int
}

type client struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (that *client) send(action string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Server lets browser clients watch and play the local game. Every
// connected client sees the same session.
type Server struct {
	logger   *slog.Logger
	game     game
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[string]*client

	handlers    map[string]func(ctx context.Context, c *client, msg *Message) error
	unsubscribe func()
}

func New(logger *slog.Logger, game game, allowedOrigins []string) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: handshakeTimeout,
			CheckOrigin:      checkOrigin(allowedOrigins),
		},
		clients: make(map[string]*client),
	}

	server.handlers = map[string]func(context.Context, *client, *Message) error{
		actionState:  server.handleState,
		actionTurn:   server.handleTurn,
		actionReplay: server.handleReplay,
	}

	server.unsubscribe = game.Subscribe(server)

	return server
}

// checkOrigin accepts clients that send no Origin, pages served by this
// host and the listed origins.
func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil {
			return false
		}

		return strings.EqualFold(u.Host, req.Host)
	}
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)

	c := &client{id: uuid.NewString(), conn: conn}
	that.register(c)

	defer func() {
		that.unregister(c.id)
		_ = conn.Close()
	}()

	log.Info("client connected", "client", c.id)

	if err = c.send(actionState, that.state(c.id)); err != nil {
		log.Error("failed to send initial state", "client", c.id, "error", err)
		return
	}

	that.handleMessages(req.Context(), c)
}

// Close detaches from the game and drops every client.
func (that *Server) Close() {
	that.unsubscribe()

	that.clientsMu.Lock()
	defer that.clientsMu.Unlock()

	for id, c := range that.clients {
		_ = c.conn.Close()
		delete(that.clients, id)
	}
}

func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages", "client", c.id)

	for {
		_, body, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}

			log.Info("client disconnected")

			return
		}

		var message Message
		if err = json.Unmarshal(body, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(c, "", "malformed message")

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("error processing message", "action", message.Action, "error", errUnknownAction)
			that.sendError(c, message.Action, errUnknownAction.Error())

			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(c *client) {
	that.clientsMu.Lock()
	defer that.clientsMu.Unlock()

	that.clients[c.id] = c
}

func (that *Server) unregister(id string) {
	that.clientsMu.Lock()
	defer that.clientsMu.Unlock()

	delete(that.clients, id)
}

func (that *Server) broadcast(action string, payload any) {
	that.clientsMu.RLock()
	clients := make([]*client, 0, len(that.clients))
	for _, c := range that.clients {
		clients = append(clients, c)
	}
	that.clientsMu.RUnlock()

	for _, c := range clients {
		if err := c.send(action, payload); err != nil {
			that.logger.Warn("failed to broadcast", "action", action, "client", c.id, "error", err)
		}
	}
}

func (that *Server) sendError(c *client, action, errorMsg string) {
	if err := c.send(actionErrorMessage, ErrorPayload{Action: action, Error: errorMsg}); err != nil {
		that.logger.Warn("failed to send error response", "client", c.id, "error", err)
	}
}

func (that *Server) state(clientID string) StatePayload {
	return StatePayload{
		ClientID:   clientID,
		State:      that.game.State().String(),
		Snapshot:   that.game.Snapshot(),
		Result:     that.game.Result(),
		Line:       that.game.WinningLine(),
		FinalScore: that.game.FinalScore(),
		BestScore:  that.game.BestScore(),
	}
}
