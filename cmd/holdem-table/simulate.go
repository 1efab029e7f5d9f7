package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/simulator"
	"github.com/charmbracelet/lipgloss"
)

// SimulateCmd plays random hands to exercise the engine
type SimulateCmd struct {
	Tables      int   `short:"t" default:"8" help:"Number of tables"`
	Players     int   `short:"n" default:"6" help:"Players per table (2-8)"`
	Hands       int   `default:"1000" help:"Hands per table"`
	Concurrency int   `short:"j" default:"0" help:"Tables played at once (0 for all)"`
	Chips       int   `default:"1000" help:"Starting chips per player"`
	SmallBlind  int   `default:"10" help:"Small blind"`
	BigBlind    int   `default:"20" help:"Big blind"`
	Seed        int64 `short:"s" help:"RNG seed (0 for random)"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

func (c *SimulateCmd) Run(cli *CLI) error {
	logger := newLogger(cli.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := simulator.Run(ctx, simulator.Config{
		Tables:        c.Tables,
		Players:       c.Players,
		Hands:         c.Hands,
		Concurrency:   c.Concurrency,
		StartingChips: c.Chips,
		SmallBlind:    c.SmallBlind,
		BigBlind:      c.BigBlind,
		Seed:          c.Seed,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	fmt.Println(renderReport(report))
	return nil
}

func renderReport(r *simulator.Report) string {
	s := r.Stats
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		headerStyle.Render("Simulation Summary"),
		"",
		row("Seed", fmt.Sprintf("%d", r.Seed)),
		row("Tables", fmt.Sprintf("%d (%d busted)", r.Tables, r.Busted)),
		row("Hands", fmt.Sprintf("%d in %s", s.Hands, r.Duration.Round(time.Millisecond))),
		row("Showdowns", fmt.Sprintf("%d (%.1f%%)", s.Showdowns, 100*s.ShowdownRate())),
		row("Split pots", fmt.Sprintf("%d", s.SplitPots)),
		row("Avg pot", fmt.Sprintf("%.2f bb (median %.2f, p95 %.2f)", s.Mean(), s.Median(), s.Percentile(0.95))),
		row("Largest pot", fmt.Sprintf("%d chips (%.1f bb)", s.MaxPotChips, s.MaxPotBB)),
		row("Actions", fmt.Sprintf("%d", s.Actions)),
	}

	if ranks := s.Ranks(); len(ranks) > 0 {
		lines = append(lines, "", headerStyle.Render("Winning hands"))
		for _, rank := range ranks {
			n := s.RankCounts[rank]
			lines = append(lines, row(rank, fmt.Sprintf("%d (%.1f%%)", n, 100*float64(n)/float64(s.Showdowns))))
		}
	}

	if len(s.StreetCounts) > 0 {
		lines = append(lines, "", headerStyle.Render("Hands ended on"))
		for _, street := range []string{"preflop", "flop", "turn", "river"} {
			lines = append(lines, row(street, fmt.Sprintf("%d", s.StreetCounts[street])))
		}
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}
