package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServerConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultServerConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:3001", cfg.Addr())
	assert.Equal(t, time.Second, cfg.StartDelayDuration())

	require.Len(t, cfg.Tables, 1)
	table := cfg.Tables[0]
	assert.Equal(t, "test-table", table.ID)
	assert.Equal(t, "Test Table", table.DisplayName)
	assert.Equal(t, 8, table.MaxPlayers)
	assert.Equal(t, 10, table.SmallBlind)
	assert.Equal(t, 20, table.BigBlind)
	assert.Equal(t, 1000, table.StartingChips)
}

func TestParseServerConfig(t *testing.T) {
	t.Parallel()

	src := `
server {
  address            = "0.0.0.0"
  port               = 8080
  log_level          = "debug"
  start_delay        = "250ms"
  actions_per_second = 2
  allowed_origins    = ["https://example.com"]
}

table "high-stakes" {
  display_name   = "High Stakes"
  max_players    = 6
  small_blind    = 50
  big_blind      = 100
  starting_chips = 5000
  auto_start     = true
  hand_delay     = "5s"
}

table "micro" {}
`
	cfg, err := ParseServerConfig([]byte(src), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.StartDelayDuration())
	assert.InDelta(t, 2.0, cfg.Server.ActionsPerSecond, 0.001)
	assert.Equal(t, defaultActionBurst, cfg.Server.ActionBurst)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)

	require.Len(t, cfg.Tables, 2)
	high := cfg.Tables[0]
	assert.Equal(t, "High Stakes", high.DisplayName)
	assert.Equal(t, 6, high.MaxPlayers)
	assert.True(t, high.AutoStart)
	assert.Equal(t, 5*time.Second, high.HandDelayDuration())

	micro := cfg.Tables[1]
	assert.Equal(t, "micro", micro.DisplayName)
	assert.Equal(t, 20, micro.BigBlind)
	assert.False(t, micro.AutoStart)
}

func TestParseServerConfigRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `server {`},
		{"unknown attribute", `server { colour = "red" }`},
		{"port", `server { port = 70000 }`},
		{"start delay", `server { start_delay = "soon" }`},
		{"seats", `table "t" { max_players = 9 }`},
		{"blinds", `table "t" { small_blind = 30 }`},
		{"duplicate", "table \"t\" {}\ntable \"t\" {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseServerConfig([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoadServerConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := LoadServerConfig(filepath.Join(dir, "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)

	path := filepath.Join(dir, "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server { port = 4000 }`), 0o600))
	cfg, err = LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, "test-table", cfg.Tables[0].ID)
}
