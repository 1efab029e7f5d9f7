// Package simulator plays many tables of randomly acting players concurrently
// to exercise the table engine and check that chips are conserved.
package simulator

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/game"
	"github.com/Tom-BUXDAO/buxdao-poker/internal/randutil"
	"github.com/Tom-BUXDAO/buxdao-poker/internal/statistics"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// maxActionsPerHand bounds a single hand so a stuck table is reported
// instead of spinning forever.
const maxActionsPerHand = 500

// ErrChipsNotConserved is returned when a table's chip total changes.
var ErrChipsNotConserved = errors.New("chips not conserved")

// Config holds configuration for running simulations
type Config struct {
	Tables        int
	Players       int // Per table
	Hands         int // Per table
	Concurrency   int // Tables played at once; 0 means one per table
	StartingChips int
	SmallBlind    int
	BigBlind      int
	Seed          int64
	Logger        *log.Logger
}

// Report summarizes a simulation run.
type Report struct {
	Seed     int64
	Tables   int
	Busted   int // Tables that ran out of players before the hand limit
	Stats    *statistics.Statistics
	Duration time.Duration
}

func (c *Config) applyDefaults() {
	if c.Tables <= 0 {
		c.Tables = 1
	}
	if c.Players == 0 {
		c.Players = 6
	}
	if c.Hands <= 0 {
		c.Hands = 100
	}
	if c.Concurrency <= 0 {
		c.Concurrency = c.Tables
	}
	if c.StartingChips <= 0 {
		c.StartingChips = 1000
	}
	if c.SmallBlind <= 0 {
		c.SmallBlind = game.DefaultSmallBlind
	}
	if c.BigBlind <= 0 {
		c.BigBlind = game.DefaultBigBlind
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	c.Seed = randutil.Seed(c.Seed)
}

func (c *Config) validate() error {
	if c.Players < 2 || c.Players > game.MaxSeats {
		return fmt.Errorf("players must be between 2 and %d, got %d", game.MaxSeats, c.Players)
	}
	if c.SmallBlind > c.BigBlind {
		return fmt.Errorf("small blind %d exceeds big blind %d", c.SmallBlind, c.BigBlind)
	}
	return nil
}

// Run plays every table to completion and aggregates the results. It stops
// at the first table that fails an invariant.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger.WithPrefix("simulator")
	logger.Info("Starting simulation", "tables", cfg.Tables, "players", cfg.Players, "hands", cfg.Hands, "seed", cfg.Seed)

	start := time.Now()
	report := &Report{Seed: cfg.Seed, Tables: cfg.Tables, Stats: &statistics.Statistics{}}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i := range cfg.Tables {
		g.Go(func() error {
			run := newTableRun(cfg, i, logger)
			stats, busted, err := run.play(ctx)
			if err != nil {
				return fmt.Errorf("table %s: %w", run.id, err)
			}

			mu.Lock()
			defer mu.Unlock()
			report.Stats.Merge(stats)
			if busted {
				report.Busted++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	if report.Stats.Hands > 0 {
		if err := report.Stats.Validate(); err != nil {
			return nil, fmt.Errorf("statistics validation failed: %w", err)
		}
	}
	logger.Info("Simulation complete", "hands", report.Stats.Hands, "duration", report.Duration)
	return report, nil
}

// tableRun drives one table with random players.
type tableRun struct {
	id     string
	cfg    Config
	table  *game.Table
	policy *rand.Rand
	logger *log.Logger

	streets int
}

func newTableRun(cfg Config, index int, logger *log.Logger) *tableRun {
	seed := randutil.Derive(cfg.Seed, index)
	r := &tableRun{
		id:     fmt.Sprintf("sim-%d", index+1),
		cfg:    cfg,
		policy: randutil.New(randutil.Derive(seed, 0)),
	}
	r.logger = logger.With("table", r.id)
	r.table = game.NewTable(r.id,
		game.WithRNG(randutil.New(seed)),
		game.WithBlinds(cfg.SmallBlind, cfg.BigBlind),
		game.WithEventSink(game.EventSinkFunc(r.observe)),
	)
	return r
}

func (r *tableRun) observe(e game.Event) {
	if e.Type == game.EventTypeStreetChange {
		r.streets++
	}
}

func (r *tableRun) play(ctx context.Context) (*statistics.Statistics, bool, error) {
	for i := range r.cfg.Players {
		if _, err := r.table.SeatPlayer(game.SeatRequest{
			ID:    fmt.Sprintf("%s-p%d", r.id, i+1),
			Name:  fmt.Sprintf("Player %d", i+1),
			Chips: r.cfg.StartingChips,
			Seat:  game.NoSeat,
		}); err != nil {
			return nil, false, err
		}
	}
	if err := r.table.RandomDealer(); err != nil {
		return nil, false, err
	}

	want := r.table.TotalChips()
	stats := &statistics.Statistics{}
	for range r.cfg.Hands {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		if r.funded() < 2 {
			r.logger.Debug("Table busted", "hands", stats.Hands)
			return stats, true, nil
		}

		result, err := r.playHand(want)
		if err != nil {
			return nil, false, fmt.Errorf("hand %d: %w", r.table.State.HandNumber, err)
		}
		stats.Add(result)
		r.moveButton()
	}
	return stats, false, nil
}

func (r *tableRun) playHand(want int) (statistics.HandResult, error) {
	r.streets = 0
	if err := r.table.StartNewHand(); err != nil {
		return statistics.HandResult{}, err
	}

	actions := 0
	for r.table.State.InHand() {
		if actions >= maxActionsPerHand {
			return statistics.HandResult{}, fmt.Errorf("hand did not finish after %d actions", actions)
		}
		p := r.table.Seat(r.table.State.CurrentPlayer)
		if p == nil {
			return statistics.HandResult{}, fmt.Errorf("no player at current seat %d", r.table.State.CurrentPlayer)
		}
		action, amount := r.choose(r.table.ValidActions())
		if err := r.table.ProcessPlayerAction(p.ID, action, amount); err != nil {
			return statistics.HandResult{}, fmt.Errorf("%s %s %d: %w", p.Name, action, amount, err)
		}
		actions++

		if got := r.table.TotalChips(); got != want {
			return statistics.HandResult{}, fmt.Errorf("%w: have %d, want %d", ErrChipsNotConserved, got, want)
		}
		for _, seated := range r.table.Players() {
			if seated.Chips < 0 {
				return statistics.HandResult{}, fmt.Errorf("%w: %s has %d chips", ErrChipsNotConserved, seated.Name, seated.Chips)
			}
		}
	}

	return r.result(actions), nil
}

func (r *tableRun) result(actions int) statistics.HandResult {
	winners := r.table.State.Winners
	pot := 0
	for _, w := range winners {
		pot += w.Amount
	}
	res := statistics.HandResult{
		TableID:       r.id,
		HandNumber:    r.table.State.HandNumber,
		PotChips:      pot,
		PotBB:         float64(pot) / float64(r.cfg.BigBlind),
		StreetReached: streetName(r.streets),
		Actions:       actions,
	}
	if len(winners) > 0 && winners[0].HandRank != game.WinnerByDefault {
		res.WentToShowdown = true
		res.WinningRank = winners[0].HandRank
		res.SplitPot = len(winners) > 1
	}
	return res
}

// choose picks a random legal action. Passive actions are weighted up so
// hands regularly reach a showdown.
func (r *tableRun) choose(valid []game.ValidAction) (game.Action, int) {
	weights := map[game.Action]int{
		game.Fold:  1,
		game.Check: 6,
		game.Call:  5,
		game.Raise: 2,
		game.AllIn: 1,
	}
	total := 0
	for _, va := range valid {
		total += weights[va.Action]
	}
	if total == 0 {
		return game.Fold, 0
	}
	pick := r.policy.IntN(total)
	for _, va := range valid {
		pick -= weights[va.Action]
		if pick >= 0 {
			continue
		}
		if va.Action == game.Raise {
			return va.Action, va.MinAmount + r.policy.IntN(va.MaxAmount-va.MinAmount+1)
		}
		return va.Action, va.MinAmount
	}
	return game.Fold, 0
}

// moveButton passes the dealer button to the next funded player.
func (r *tableRun) moveButton() {
	dealer := r.table.State.Dealer
	for i := 1; i <= game.MaxSeats; i++ {
		pos := (dealer + i) % game.MaxSeats
		if p := r.table.Seat(pos); p != nil && p.Chips > 0 {
			_ = r.table.SetDealer(pos)
			return
		}
	}
}

func (r *tableRun) funded() int {
	n := 0
	for _, p := range r.table.Players() {
		if p.IsActive && p.Chips > 0 {
			n++
		}
	}
	return n
}

func streetName(changes int) string {
	switch changes {
	case 0:
		return string(game.PhasePreflop)
	case 1:
		return string(game.PhaseFlop)
	case 2:
		return string(game.PhaseTurn)
	default:
		return string(game.PhaseRiver)
	}
}
