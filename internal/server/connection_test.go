package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/game"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     error
		code    string
		message string
	}{
		{fmt.Errorf("%w: x", ErrTableNotFound), "table_not_found", "Table not found"},
		{game.ErrTableFull, "table_full", "Table is full"},
		{game.ErrNotYourTurn, "not_your_turn", "Not your turn"},
		{ErrNotJoined, "not_joined", "You need to join a table first"},
		{ErrAlreadyPlaying, "already_playing", "Game is already in progress"},
		{fmt.Errorf("%w: 1 eligible", game.ErrNotEnoughPlayers), "not_enough_players", "Need at least 2 players to start"},
		{fmt.Errorf("%w: 20 to call", game.ErrIllegalCheck), "invalid_action", "cannot check when there is a bet to call: 20 to call"},
		{ErrInvalidChat, "invalid_message", "chat message must be 1 to 500 characters"},
		{errors.New("boom"), "internal_error", "boom"},
	}
	for _, tt := range tests {
		code, message := errorCode(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.message, message)
	}
}
