package game

import (
	"errors"
	"testing"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/randutil"
	"github.com/Tom-BUXDAO/buxdao-poker/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartNewHandPostsBlinds(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t)
	require.NoError(t, table.StartNewHand())

	s := table.State
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, PhasePreflop, s.Phase)
	assert.Equal(t, 10, table.Seat(1).Bet)
	assert.Equal(t, 20, table.Seat(2).Bet)
	assert.Equal(t, 20, s.CurrentBet)
	assert.Equal(t, 30, s.Pot)
	assert.Equal(t, 3, s.CurrentPlayer)
	assert.Equal(t, 1, s.HandNumber)
	assert.Empty(t, s.CommunityCards)
	assert.Equal(t, poker.DeckSize-8, s.Deck.Remaining())

	for _, p := range table.Players() {
		assert.Len(t, p.Hand, 2, "seat %d", p.Position)
	}

	assert.Equal(t, []string{
		"Starting a new hand",
		"Dealer: Cards dealt to all players",
		"Dealer button at Alice",
		"Bob posts small blind: $10",
		"Carol posts big blind: $20",
		"Action to Dave",
	}, rec.Messages())
}

func TestStartNewHandDealsOneCardAtATime(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, withSeed(9))
	deck := poker.NewDeck(randutil.New(9)).Cards()
	require.NoError(t, table.StartNewHand())

	top := len(deck) - 1
	order := []int{1, 2, 3, 0}
	for i, seat := range order {
		hand := table.Seat(seat).Hand
		assert.Equal(t, deck[top-i], hand[0], "first card for seat %d", seat)
		assert.Equal(t, deck[top-i-len(order)], hand[1], "second card for seat %d", seat)
	}
}

func TestStartNewHandNeedsTwoPlayers(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, withChips(1000))
	err := table.StartNewHand()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, StatusWaiting, table.State.Status)

	table, _ = newTestTable(t, withChips(1000, 1000))
	require.NoError(t, table.SetConnected("p1", false))
	assert.ErrorIs(t, table.StartNewHand(), ErrNotEnoughPlayers)

	table, _ = newTestTable(t, withChips(1000, 0))
	assert.ErrorIs(t, table.StartNewHand(), ErrNotEnoughPlayers, "busted players are not dealt in")
}

func TestStartNewHandWhileRunning(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t)
	require.NoError(t, table.StartNewHand())
	assert.ErrorIs(t, table.StartNewHand(), ErrHandInProgress)
}

func TestHeadsUpBlinds(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, withChips(1000, 1000))
	require.NoError(t, table.StartNewHand())

	assert.Equal(t, 10, table.Seat(1).Bet, "non-dealer posts the small blind")
	assert.Equal(t, 20, table.Seat(0).Bet, "dealer posts the big blind")
	assert.Equal(t, 1, table.State.CurrentPlayer)
}

func TestBlindAllIn(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t, withChips(1000, 5, 20, 1000))
	require.NoError(t, table.StartNewHand())

	sb, bb := table.Seat(1), table.Seat(2)
	assert.True(t, sb.AllIn)
	assert.Equal(t, 5, sb.Bet)
	assert.Equal(t, 0, sb.Chips)
	assert.True(t, bb.AllIn, "a stack equal to the blind goes all in")
	assert.Equal(t, 20, bb.Bet)
	assert.Equal(t, 25, table.State.Pot)
	assert.Equal(t, 20, table.State.CurrentBet)
	assert.Contains(t, rec.Messages(), "Bob posts small blind and is ALL IN with $5")
	assert.Contains(t, rec.Messages(), "Carol posts big blind and is ALL IN with $20")
}

func TestFourPlayerHandToFlop(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t)
	require.NoError(t, table.StartNewHand())

	act(t, table, 3, Call, 20)
	act(t, table, 0, Call, 20)
	act(t, table, 1, Call, 20)
	assert.Equal(t, PhasePreflop, table.State.Phase, "big blind still has the option")
	assert.Equal(t, 2, table.State.CurrentPlayer)

	act(t, table, 2, Check, 0)

	s := table.State
	assert.Equal(t, PhaseFlop, s.Phase)
	assert.Len(t, s.CommunityCards, 3)
	assert.Equal(t, 80, s.Pot)
	assert.Equal(t, 0, s.CurrentBet)
	for _, p := range table.Players() {
		assert.Equal(t, 0, p.Bet, "seat %d", p.Position)
		assert.Equal(t, 980, p.Chips, "seat %d", p.Position)
	}
	assert.Equal(t, 1, s.CurrentPlayer, "first seat left of the dealer opens the flop")
	assert.Contains(t, rec.Messages(), "Dealer: Dealing the flop")
}

func TestFullHandConservesChips(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t)
	require.NoError(t, table.StartNewHand())

	act(t, table, 3, Call, 20)
	act(t, table, 0, Call, 20)
	act(t, table, 1, Call, 20)
	act(t, table, 2, Check, 0)

	for _, street := range []Phase{PhaseFlop, PhaseTurn, PhaseRiver} {
		require.Equal(t, street, table.State.Phase)
		for range 4 {
			act(t, table, table.State.CurrentPlayer, Check, 0)
		}
	}

	s := table.State
	assert.Equal(t, StatusWaiting, s.Status)
	assert.Equal(t, PhaseWaiting, s.Phase)
	assert.Equal(t, 0, s.Pot)
	assert.Equal(t, 0, s.Dealer, "dealer is not rotated")
	assert.NotEmpty(t, s.Winners)
	assert.Equal(t, 4000, table.TotalChips())

	msgs := rec.Messages()
	assert.Contains(t, msgs, "Dealer: Dealing the turn")
	assert.Contains(t, msgs, "Dealer: Dealing the river")
	for _, p := range table.Players() {
		assert.Empty(t, p.Hand)
		assert.False(t, p.Folded)
	}
}

func TestWinByDefault(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t)
	require.NoError(t, table.StartNewHand())
	carolHand := table.Seat(2).Hand

	act(t, table, 3, Fold, 0)
	act(t, table, 0, Fold, 0)
	act(t, table, 1, Fold, 0)

	s := table.State
	assert.Equal(t, StatusWaiting, s.Status)
	require.Len(t, s.Winners, 1)
	w := s.Winners[0]
	assert.Equal(t, "p2", w.ID)
	assert.Equal(t, WinnerByDefault, w.HandRank)
	assert.Equal(t, carolHand, w.WinningHand)
	assert.Equal(t, 30, w.Amount)
	assert.Equal(t, 1010, table.Seat(2).Chips)
	assert.Equal(t, 990, table.Seat(1).Chips)
	assert.Empty(t, s.CommunityCards, "no streets are dealt after everyone folds")
	assert.Contains(t, rec.Messages(), "Showdown: Carol wins with "+WinnerByDefault)
	assert.Contains(t, rec.Messages(), "Carol wins $30")
}

func TestSplitPot(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t)
	require.NoError(t, table.StartNewHand())

	act(t, table, 3, Fold, 0)
	act(t, table, 0, Fold, 0)
	act(t, table, 1, Call, 20)
	act(t, table, 2, Check, 0)

	for table.State.Phase != PhaseRiver {
		act(t, table, table.State.CurrentPlayer, Check, 0)
	}
	table.State.CommunityCards = cards("AS KS QS JS 10S")
	table.Seat(1).Hand = cards("2C 3D")
	table.Seat(2).Hand = cards("2D 3C")
	checkDown(t, table)

	winners := table.State.Winners
	require.Len(t, winners, 2)
	for _, w := range winners {
		assert.Equal(t, "Royal Flush", w.HandRank)
		assert.Equal(t, 20, w.Amount)
	}
	assert.Equal(t, 1000, table.Seat(1).Chips)
	assert.Equal(t, 1000, table.Seat(2).Chips)
	assert.Contains(t, rec.Messages(), "Showdown: Split pot! Winners: Bob, Carol with Royal Flush")
}

func TestSplitPotOddChip(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t)
	require.NoError(t, table.StartNewHand())

	act(t, table, 3, Call, 20)
	act(t, table, 0, Call, 20)
	act(t, table, 1, Fold, 0)
	act(t, table, 2, Check, 0)

	for table.State.Phase != PhaseRiver {
		act(t, table, table.State.CurrentPlayer, Check, 0)
	}
	table.State.CommunityCards = cards("AH KH QH JH 10H")
	checkDown(t, table)

	assert.Len(t, table.State.Winners, 3)
	assert.Equal(t, 1003, table.Seat(0).Chips)
	assert.Equal(t, 1004, table.Seat(2).Chips, "odd chip goes to the first winner left of the dealer")
	assert.Equal(t, 1003, table.Seat(3).Chips)
	assert.Equal(t, 4000, table.TotalChips())
}

func TestAllInRunsOutTheBoard(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, withChips(100, 100))
	require.NoError(t, table.StartNewHand())

	act(t, table, 1, AllIn, 0)
	act(t, table, 0, Call, 0)

	assert.Equal(t, StatusWaiting, table.State.Status)
	assert.Equal(t, 200, table.TotalChips())
	require.NotEmpty(t, table.State.Winners)
	if len(table.State.Winners) == 1 {
		assert.Equal(t, 200, table.State.Winners[0].Amount)
	}
}

func TestRemoveCurrentPlayerFolds(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t)
	require.NoError(t, table.StartNewHand())

	require.NoError(t, table.RemovePlayer("p3"))
	assert.Nil(t, table.Seat(3))
	assert.Equal(t, 0, table.State.CurrentPlayer)
	assert.Contains(t, rec.Messages(), "Dave folds")

	err := table.RemovePlayer("p3")
	assert.True(t, errors.Is(err, ErrPlayerNotFound))
}

func TestDisconnectedPlayerStaysInHand(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, withChips(1000, 1000, 1000))
	require.NoError(t, table.StartNewHand())

	require.NoError(t, table.SetConnected("p1", false))
	assert.False(t, table.Seat(1).Folded, "disconnecting does not fold")
	assert.False(t, table.Seat(1).IsActive)

	require.NoError(t, table.SetConnected("p1", true))
	assert.True(t, table.Seat(1).IsActive)
}

func TestSeatPlayer(t *testing.T) {
	t.Parallel()

	table := NewTable("seats")
	for i := range MaxSeats {
		pos, err := table.SeatPlayer(SeatRequest{ID: testNames[i], Name: testNames[i], Chips: 100, Seat: NoSeat})
		require.NoError(t, err)
		assert.Equal(t, i, pos)
	}

	_, err := table.SeatPlayer(SeatRequest{ID: "late", Name: "Late", Chips: 100, Seat: NoSeat})
	assert.ErrorIs(t, err, ErrTableFull)

	require.NoError(t, table.RemovePlayer("Carol"))
	_, err = table.SeatPlayer(SeatRequest{ID: "Alice", Name: "Again", Chips: 100, Seat: NoSeat})
	assert.ErrorIs(t, err, ErrDuplicatePlayer)
	_, err = table.SeatPlayer(SeatRequest{ID: "late", Name: "Late", Chips: 100, Seat: 0})
	assert.ErrorIs(t, err, ErrSeatTaken)
	_, err = table.SeatPlayer(SeatRequest{ID: "late", Name: "Late", Chips: 100, Seat: 9})
	assert.ErrorIs(t, err, ErrInvalidSeat)

	pos, err := table.SeatPlayer(SeatRequest{ID: "late", Name: "Late", Chips: 100, Seat: NoSeat})
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestPlayerSeatedMidHandSitsOut(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, withChips(1000, 1000))
	require.NoError(t, table.StartNewHand())

	pos, err := table.SeatPlayer(SeatRequest{ID: "late", Name: "Late", Chips: 500, Seat: NoSeat})
	require.NoError(t, err)
	assert.True(t, table.Seat(pos).Folded)
	assert.Empty(t, table.Seat(pos).Hand)
}

func TestMessageHistoryIsBounded(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t)
	for range 10 {
		require.NoError(t, table.StartNewHand())
		for table.State.InHand() {
			act(t, table, table.State.CurrentPlayer, Fold, 0)
		}
	}

	events := rec.Events()
	require.Greater(t, len(events), HistoryLimit)
	history := table.MessageHistory()
	assert.Len(t, history, HistoryLimit)
	assert.Equal(t, events[len(events)-HistoryLimit:], history)
}

func TestDisconnectedPlayerFoldsWhenStreetClosesWithoutThem(t *testing.T) {
	t.Parallel()

	table, rec := newTestTable(t)
	require.NoError(t, table.StartNewHand())

	act(t, table, 3, Raise, 100)
	require.NoError(t, table.SetConnected("p1", false))
	act(t, table, 0, Call, 100)
	act(t, table, 2, Call, 100)

	require.Equal(t, PhaseFlop, table.State.Phase)
	assert.Equal(t, 310, table.State.Pot)
	assert.True(t, table.Seat(1).Folded, "a bet that was never matched forfeits the hand")
	assert.Contains(t, rec.Messages(), "Bob folds")

	require.NoError(t, table.SetConnected("p1", true))
	assert.False(t, table.Seat(1).InHand())
	assert.Equal(t, 990, table.Seat(1).Chips)

	checkDown(t, table)
	for _, w := range table.State.Winners {
		assert.NotEqual(t, "p1", w.ID)
	}
	assert.Equal(t, 4000, table.TotalChips())
}

func TestDisconnectedPlayerWhoMatchedStaysIn(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t)
	require.NoError(t, table.StartNewHand())

	act(t, table, 3, Call, 20)
	act(t, table, 0, Call, 20)
	act(t, table, 1, Call, 20)
	require.NoError(t, table.SetConnected("p1", false))
	act(t, table, 2, Check, 0)

	require.Equal(t, PhaseFlop, table.State.Phase)
	assert.False(t, table.Seat(1).Folded)
}

func TestSplitPotShares(t *testing.T) {
	t.Parallel()

	three := []WinnerInfo{{Position: 1}, {Position: 4}, {Position: 6}}

	t.Run("even pot gives each winner the floor share", func(t *testing.T) {
		assert.Equal(t, []int{30, 30, 30}, splitPot(90, three, 0))
	})

	t.Run("remainder goes left of the dealer", func(t *testing.T) {
		shares := splitPot(100, three, 3)
		assert.Equal(t, []int{33, 34, 33}, shares)
		for _, s := range shares {
			assert.GreaterOrEqual(t, s, 100/3)
		}
	})

	t.Run("remainder wraps past the last seat", func(t *testing.T) {
		assert.Equal(t, []int{34, 34, 33}, splitPot(101, three, 6))
	})
}
