package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/game"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Connection represents a WebSocket connection to a client. The connection's
// id doubles as the player id once it joins a table.
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	tableID   string
	registry  *TableRegistry
	limiter   *rate.Limiter
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, registry *TableRegistry, limiter *rate.Limiter) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()

	return &Connection{
		id:       id,
		conn:     conn,
		send:     make(chan *Message, 256),
		registry: registry,
		limiter:  limiter,
		logger:   logger.WithPrefix("conn").With("conn", id[:8]),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SubscriberID returns the connection id.
func (c *Connection) SubscriberID() string { return c.id }

// Send queues msg for the client.
func (c *Connection) Send(msg *Message) error { return c.SendMessage(msg) }

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
	c.sendTableList()
}

// Done is closed once the connection shuts down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client without blocking. A client that
// cannot keep up is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetTable associates this connection with a table
func (c *Connection) SetTable(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID = tableID
}

// GetTable returns the associated table ID
func (c *Connection) GetTable() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
	ErrRateLimited      = errors.New("too many actions, slow down")
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "table", c.GetTable())

	switch msg.Type {
	case MessageTypeJoinTable:
		var data JoinTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join_table data")
			return
		}
		c.handleJoinTable(data)

	case MessageTypeStartGame:
		c.handleStartGame()

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_action", "Failed to parse player_action data")
			return
		}
		c.handlePlayerAction(data)

	case MessageTypeLeaveTable:
		c.handleLeaveTable()

	case MessageTypeListTables:
		c.sendTableList()

	case MessageTypeSendMessage:
		var data SendMessageData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse send_message data")
			return
		}
		c.handleSendMessage(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleJoinTable(data JoinTableData) {
	if current := c.GetTable(); current != "" {
		c.sendErr(ErrAlreadySeated)
		return
	}
	table, err := c.registry.Table(data.TableID)
	if err != nil {
		c.sendErr(err)
		return
	}
	seat, err := table.Join(c, data)
	if err != nil {
		c.sendErr(err)
		return
	}
	c.SetTable(table.ID())
	c.logger.Info("Joined table", "table", table.ID(), "seat", seat, "player", data.PlayerName)
}

func (c *Connection) handleStartGame() {
	table, err := c.currentTable()
	if err != nil {
		c.sendErr(err)
		return
	}
	if err := table.StartGame(c.id); err != nil {
		c.sendErr(err)
	}
}

func (c *Connection) handlePlayerAction(data PlayerActionData) {
	if c.limiter != nil && !c.limiter.Allow() {
		c.sendErr(ErrRateLimited)
		return
	}
	table, err := c.currentTable()
	if err != nil {
		c.sendErr(err)
		return
	}
	if err := table.Act(c.id, data.Action, data.Amount); err != nil {
		c.logger.Debug("Rejected action", "action", data.Action, "amount", data.Amount, "error", err)
		c.sendErr(err)
	}
}

func (c *Connection) handleLeaveTable() {
	table, err := c.currentTable()
	if err != nil {
		c.sendErr(err)
		return
	}
	if err := table.Leave(c.id); err != nil {
		c.sendErr(err)
		return
	}
	c.SetTable("")
}

func (c *Connection) handleSendMessage(data SendMessageData) {
	if c.limiter != nil && !c.limiter.Allow() {
		c.sendErr(ErrRateLimited)
		return
	}
	table, err := c.currentTable()
	if err != nil {
		c.sendErr(err)
		return
	}
	if err := table.Chat(c.id, data.Message); err != nil {
		c.sendErr(err)
	}
}

// disconnect marks the player inactive at their table, keeping the seat.
func (c *Connection) disconnect() {
	table, err := c.currentTable()
	if err != nil {
		return
	}
	if err := table.Disconnect(c.id); err != nil && !errors.Is(err, game.ErrPlayerNotFound) {
		c.logger.Warn("Failed to mark player disconnected", "error", err)
	}
}

func (c *Connection) currentTable() (*ServerTable, error) {
	tableID := c.GetTable()
	if tableID == "" {
		return nil, ErrNotJoined
	}
	return c.registry.Table(tableID)
}

func (c *Connection) sendTableList() {
	msg, err := NewMessage(MessageTypeTableList, TableListData{Tables: c.registry.List()})
	if err != nil {
		c.logger.Error("Failed to encode table list", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendErr(err error) {
	code, message := errorCode(err)
	c.sendError(code, message)
}

func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}

// errorCode maps an error to its wire code and client-facing message.
func errorCode(err error) (string, string) {
	switch {
	case errors.Is(err, ErrTableNotFound):
		return "table_not_found", "Table not found"
	case errors.Is(err, game.ErrTableFull):
		return "table_full", "Table is full"
	case errors.Is(err, game.ErrSeatTaken):
		return "seat_taken", "Seat is already taken"
	case errors.Is(err, game.ErrInvalidSeat), errors.Is(err, ErrInvalidName), errors.Is(err, game.ErrDuplicatePlayer):
		return "invalid_join", err.Error()
	case errors.Is(err, ErrAlreadySeated):
		return "already_seated", "You are already seated at a table"
	case errors.Is(err, ErrNotJoined):
		return "not_joined", "You need to join a table first"
	case errors.Is(err, ErrAlreadyPlaying):
		return "already_playing", "Game is already in progress"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "not_enough_players", "Need at least 2 players to start"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn", "Not your turn"
	case errors.Is(err, game.ErrNoHandInProgress):
		return "no_hand", "No hand in progress"
	case errors.Is(err, game.ErrIllegalCheck),
		errors.Is(err, game.ErrIllegalRaise),
		errors.Is(err, game.ErrInvalidAction),
		errors.Is(err, game.ErrCannotAct):
		return "invalid_action", err.Error()
	case errors.Is(err, ErrInvalidChat):
		return "invalid_message", err.Error()
	case errors.Is(err, ErrRateLimited):
		return "rate_limited", err.Error()
	default:
		return "internal_error", err.Error()
	}
}
