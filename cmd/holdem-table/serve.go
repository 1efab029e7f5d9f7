package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/server"
	"github.com/gin-gonic/gin"
)

// ServeCmd runs the HTTP and WebSocket server
type ServeCmd struct {
	Config string `short:"c" default:"holdem-table.hcl" env:"HOLDEM_CONFIG" help:"Path to HCL configuration file"`
	Addr   string `short:"a" env:"HOST" help:"Address to bind to (overrides config)"`
	Port   int    `short:"p" env:"PORT" help:"Port to listen on (overrides config)"`
	Seed   int64  `help:"Deterministic shuffle seed (0 for random)"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if cli.LogLevel != "" {
		cfg.Server.LogLevel = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Server.LogLevel)
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := server.NewTableRegistry(cfg.Tables,
		server.WithRegistryLogger(logger),
		server.WithSeed(c.Seed),
		server.WithStartDelay(cfg.StartDelayDuration()),
	)
	for _, t := range registry.List() {
		logger.Info("Table ready", "id", t.ID, "name", t.Name, "seats", t.MaxPlayers, "blinds", fmt.Sprintf("%d/%d", t.SmallBlind, t.BigBlind))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewServer(cfg, registry, logger).Serve(ctx)
}
