package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/game"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Tables []TableConfig   `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address          string   `hcl:"address,optional"`
	Port             int      `hcl:"port,optional"`
	LogLevel         string   `hcl:"log_level,optional"`
	StartDelay       string   `hcl:"start_delay,optional"`
	ActionsPerSecond float64  `hcl:"actions_per_second,optional"`
	ActionBurst      int      `hcl:"action_burst,optional"`
	AllowedOrigins   []string `hcl:"allowed_origins,optional"`
}

// TableConfig defines a poker table configuration
type TableConfig struct {
	ID            string `hcl:"id,label"`
	DisplayName   string `hcl:"display_name,optional"`
	MaxPlayers    int    `hcl:"max_players,optional"`
	SmallBlind    int    `hcl:"small_blind,optional"`
	BigBlind      int    `hcl:"big_blind,optional"`
	StartingChips int    `hcl:"starting_chips,optional"`
	AutoStart     bool   `hcl:"auto_start,optional"`
	HandDelay     string `hcl:"hand_delay,optional"`
}

const (
	defaultAddress          = "localhost"
	defaultPort             = 3001
	defaultLogLevel         = "info"
	defaultStartDelay       = "1s"
	defaultActionsPerSecond = 5
	defaultActionBurst      = 10
	defaultStartingChips    = 1000
	defaultHandDelay        = "3s"
	defaultTableID          = "test-table"
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{
		Tables: []TableConfig{{
			ID:          defaultTableID,
			DisplayName: "Test Table",
		}},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultServerConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseServerConfig(src, filename)
}

// ParseServerConfig decodes HCL source into a validated configuration.
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", formatDiagnostics(diags))
	}

	if len(config.Tables) == 0 {
		config.Tables = DefaultServerConfig().Tables
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	s := c.Server
	if s.Address == "" {
		s.Address = defaultAddress
	}
	if s.Port == 0 {
		s.Port = defaultPort
	}
	if s.LogLevel == "" {
		s.LogLevel = defaultLogLevel
	}
	if s.StartDelay == "" {
		s.StartDelay = defaultStartDelay
	}
	if s.ActionsPerSecond == 0 {
		s.ActionsPerSecond = defaultActionsPerSecond
	}
	if s.ActionBurst == 0 {
		s.ActionBurst = defaultActionBurst
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.DisplayName == "" {
			t.DisplayName = t.ID
		}
		if t.MaxPlayers == 0 {
			t.MaxPlayers = game.MaxSeats
		}
		if t.SmallBlind == 0 {
			t.SmallBlind = game.DefaultSmallBlind
		}
		if t.BigBlind == 0 {
			t.BigBlind = game.DefaultBigBlind
		}
		if t.StartingChips == 0 {
			t.StartingChips = defaultStartingChips
		}
		if t.HandDelay == "" {
			t.HandDelay = defaultHandDelay
		}
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server == nil {
		return errors.New("missing server settings")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.StartDelay); err != nil {
		return fmt.Errorf("invalid start_delay %q: %w", c.Server.StartDelay, err)
	}
	if c.Server.ActionsPerSecond < 0 || c.Server.ActionBurst < 0 {
		return errors.New("action rate limits must not be negative")
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if seen[t.ID] {
			return fmt.Errorf("duplicate table %q", t.ID)
		}
		seen[t.ID] = true

		if t.MaxPlayers < 2 || t.MaxPlayers > game.MaxSeats {
			return fmt.Errorf("table %s: max_players must be between 2 and %d", t.ID, game.MaxSeats)
		}
		if t.SmallBlind <= 0 || t.BigBlind <= 0 {
			return fmt.Errorf("table %s: blinds must be positive", t.ID)
		}
		if t.SmallBlind > t.BigBlind {
			return fmt.Errorf("table %s: small blind %d exceeds big blind %d", t.ID, t.SmallBlind, t.BigBlind)
		}
		if t.StartingChips <= 0 {
			return fmt.Errorf("table %s: starting_chips must be positive", t.ID)
		}
		if _, err := time.ParseDuration(t.HandDelay); err != nil {
			return fmt.Errorf("table %s: invalid hand_delay %q: %w", t.ID, t.HandDelay, err)
		}
	}
	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// StartDelayDuration is the pause between accepting a start request and dealing.
func (c *ServerConfig) StartDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.Server.StartDelay)
	return d
}

// HandDelayDuration is the pause before an auto-started table deals again.
func (t TableConfig) HandDelayDuration() time.Duration {
	d, _ := time.ParseDuration(t.HandDelay)
	return d
}

func formatDiagnostics(diags hcl.Diagnostics) string {
	if len(diags) == 1 {
		return diags[0].Error()
	}
	return diags.Error()
}
