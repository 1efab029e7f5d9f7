package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	LogLevel string           `short:"l" env:"LOG_LEVEL" help:"Log level: debug, info, warn or error (overrides config)"`

	Serve    ServeCmd    `cmd:"" default:"withargs" help:"Run the table server"`
	Simulate SimulateCmd `cmd:"" help:"Play random hands across many tables and report the results"`
}

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem-table"),
		kong.Description("Multiplayer Texas Hold'em table server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// newLogger builds the process logger at the given level.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
