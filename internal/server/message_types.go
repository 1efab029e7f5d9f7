package server

// MessageType represents a WebSocket message type
type MessageType string

const (
	// Client to server messages
	MessageTypeJoinTable    MessageType = "join_table"
	MessageTypeStartGame    MessageType = "start_game"
	MessageTypePlayerAction MessageType = "player_action"
	MessageTypeLeaveTable   MessageType = "leave_table"
	MessageTypeListTables   MessageType = "list_tables"
	MessageTypeSendMessage  MessageType = "send_message"

	// Server to client messages
	MessageTypeTableList          MessageType = "table_list"
	MessageTypeTableState         MessageType = "table_state"
	MessageTypeGameStarting       MessageType = "game_starting"
	MessageTypeActionAcknowledged MessageType = "action_acknowledged"
	MessageTypePlayerLeft         MessageType = "player_left"
	MessageTypePlayerDisconnected MessageType = "player_disconnected"
	MessageTypeNewMessage         MessageType = "new_message"
	MessageTypeError              MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
