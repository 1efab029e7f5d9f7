package game

import (
	"fmt"
	"testing"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/randutil"
	"github.com/Tom-BUXDAO/buxdao-poker/poker"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

var testNames = []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Heidi"}

type testTableBuilder struct {
	seed   int64
	dealer int
	small  int
	big    int
	chips  []int
}

// TestTableOption configures test table creation
type TestTableOption func(*testTableBuilder)

func withSeed(seed int64) TestTableOption {
	return func(b *testTableBuilder) { b.seed = seed }
}

func withDealer(pos int) TestTableOption {
	return func(b *testTableBuilder) { b.dealer = pos }
}

func withTestBlinds(small, big int) TestTableOption {
	return func(b *testTableBuilder) {
		b.small = small
		b.big = big
	}
}

func withChips(chips ...int) TestTableOption {
	return func(b *testTableBuilder) { b.chips = chips }
}

// newTestTable seats players "p0".."pN" in seats 0..N with a seeded deck,
// a mock clock and a recording sink. Four players with 1000 chips each and
// blinds of 10/20 by default.
func newTestTable(t *testing.T, opts ...TestTableOption) (*Table, *Recorder) {
	t.Helper()

	b := &testTableBuilder{
		seed:  42,
		small: 10,
		big:   20,
		chips: []int{1000, 1000, 1000, 1000},
	}
	for _, opt := range opts {
		opt(b)
	}

	rec := &Recorder{}
	table := NewTable("test-table",
		WithRNG(randutil.New(b.seed)),
		WithClock(quartz.NewMock(t)),
		WithEventSink(rec),
		WithBlinds(b.small, b.big),
	)
	for i, chips := range b.chips {
		_, err := table.SeatPlayer(SeatRequest{
			ID:    fmt.Sprintf("p%d", i),
			Name:  testNames[i],
			Chips: chips,
			Seat:  i,
		})
		require.NoError(t, err)
	}
	require.NoError(t, table.SetDealer(b.dealer))
	rec.Reset()
	return table, rec
}

func act(t *testing.T, table *Table, seat int, action Action, amount int) {
	t.Helper()
	p := table.Seat(seat)
	require.NotNil(t, p, "seat %d is empty", seat)
	require.NoError(t, table.ProcessPlayerAction(p.ID, action, amount), "seat %d %s %d", seat, action, amount)
}

// checkDown checks every remaining street until the hand is settled.
func checkDown(t *testing.T, table *Table) {
	t.Helper()
	for i := 0; table.State.InHand() && i < 64; i++ {
		act(t, table, table.State.CurrentPlayer, Check, 0)
	}
	require.False(t, table.State.InHand(), "hand did not finish")
}

func cards(s string) []poker.Card {
	return poker.MustParseCards(s)
}
