package server

import (
	"encoding/json"
	"time"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type JoinTableData struct {
	TableID    string `json:"tableId"`
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar,omitempty"`
	Chips      int    `json:"chips,omitempty"`
	// Seat is optional; nil takes the first free seat.
	Seat *int `json:"seat,omitempty"`
}

type PlayerActionData struct {
	Action game.Action `json:"action"`
	Amount int         `json:"amount,omitempty"`
}

type SendMessageData struct {
	Message string `json:"message"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableInfo struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	PlayerCount int         `json:"playerCount"`
	MaxPlayers  int         `json:"maxPlayers"`
	SmallBlind  int         `json:"smallBlind"`
	BigBlind    int         `json:"bigBlind"`
	Status      game.Status `json:"status"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type GameStartingData struct {
	TableID string `json:"tableId"`
	Dealer  int    `json:"dealer"`
}

type ActionAcknowledgedData struct {
	Action game.Action `json:"action"`
	Amount int         `json:"amount"`
}

type PlayerLeftData struct {
	PlayerID string `json:"playerId"`
}

// ChatData is a chat line relayed to everyone at the table.
type ChatData struct {
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}
