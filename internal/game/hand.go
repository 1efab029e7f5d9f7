package game

import (
	"fmt"
	"strings"

	"github.com/Tom-BUXDAO/buxdao-poker/poker"
)

// StartNewHand resets the table for a new hand, deals hole cards, posts the
// blinds and hands the action to the seat after the big blind.
//
// Every connected player with chips is dealt in. The dealer button is not
// moved.
func (t *Table) StartNewHand() error {
	if t.State.InHand() {
		return ErrHandInProgress
	}

	eligible := 0
	for _, p := range t.seats {
		if p != nil && p.IsActive && p.Chips > 0 {
			eligible++
		}
	}
	if eligible < 2 {
		return fmt.Errorf("%w: %d eligible", ErrNotEnoughPlayers, eligible)
	}

	s := &t.State
	s.HandNumber++
	s.Status = StatusPlaying
	s.Phase = PhasePreflop
	s.CommunityCards = []poker.Card{}
	s.Pot = 0
	s.CurrentBet = 0
	s.Winners = []WinnerInfo{}
	s.CurrentPlayer = NoSeat

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		p.Hand = []poker.Card{}
		p.Bet = 0
		p.AllIn = false
		p.Acted = false
		p.Folded = !p.IsActive || p.Chips == 0
	}

	t.emit(EventTypeHandStart, "Starting a new hand")

	s.Deck = poker.NewDeck(t.rng)
	order := t.dealOrder()
	for range 2 {
		for _, pos := range order {
			p := t.seats[pos]
			p.Hand = append(p.Hand, t.draw())
		}
	}
	t.emit(EventTypeDeal, "Dealer: Cards dealt to all players")
	t.emit(EventTypeDealer, "Dealer button at %s", t.seatName(s.Dealer))

	sb := t.nextInHand(s.Dealer)
	bb := t.nextInHand(sb)
	t.postBlind(sb, s.SmallBlind, "small blind")
	t.postBlind(bb, s.BigBlind, "big blind")
	s.CurrentBet = s.BigBlind

	if IsRoundComplete(t.seatSlice(), s.CurrentBet) {
		t.AdvanceGamePhase()
		return nil
	}
	s.CurrentPlayer = nextToAct(t.seatSlice(), bb, s.CurrentBet)
	t.announceTurn()
	return nil
}

// ValidateTurn reports whether playerID may act now.
func (t *Table) ValidateTurn(playerID string) error {
	if !t.State.InHand() {
		return ErrNoHandInProgress
	}
	p := t.PlayerByID(playerID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if t.State.CurrentPlayer != p.Position {
		return ErrNotYourTurn
	}
	if !p.CanAct() {
		return ErrCannotAct
	}
	return nil
}

// ValidActions lists the actions available to the player to act, or nil
// when nobody is to act.
func (t *Table) ValidActions() []ValidAction {
	if !t.State.InHand() {
		return nil
	}
	p := t.Seat(t.State.CurrentPlayer)
	if p == nil {
		return nil
	}
	return validActionsFor(p, t.State.CurrentBet)
}

// ProcessPlayerAction applies one betting action for playerID. For Raise,
// amount is the target total bet for the street; it is ignored otherwise.
// On error the table is unchanged.
func (t *Table) ProcessPlayerAction(playerID string, action Action, amount int) error {
	if err := t.ValidateTurn(playerID); err != nil {
		return err
	}
	p := t.PlayerByID(playerID)
	s := &t.State

	switch action {
	case Fold:
		p.Folded = true
		t.emit(EventTypePlayerAction, "%s folds", p.Name)

	case Check:
		if s.CurrentBet != 0 && p.Bet != s.CurrentBet {
			return fmt.Errorf("%w: %d to call", ErrIllegalCheck, s.CurrentBet-p.Bet)
		}
		t.emit(EventTypePlayerAction, "%s checks", p.Name)

	case Call:
		toCall := s.CurrentBet - p.Bet
		if toCall <= 0 {
			t.emit(EventTypePlayerAction, "%s checks", p.Name)
			break
		}
		paid := p.commit(toCall)
		s.Pot += paid
		if p.AllIn {
			t.emit(EventTypePlayerAction, "%s calls $%d and is ALL IN", p.Name, paid)
		} else {
			t.emit(EventTypePlayerAction, "%s calls $%d", p.Name, paid)
		}

	case Raise:
		minRaise := MinRaiseTarget(s.CurrentBet)
		if amount < minRaise || amount <= s.CurrentBet {
			return fmt.Errorf("%w: raise must be at least %d", ErrIllegalRaise, max(minRaise, s.CurrentBet+1))
		}
		if amount > p.Chips+p.Bet {
			return fmt.Errorf("%w: cannot bet %d with %d available", ErrIllegalRaise, amount, p.Chips+p.Bet)
		}
		s.Pot += p.commit(amount - p.Bet)
		s.CurrentBet = amount
		t.reopenAction(p)
		if p.AllIn {
			t.emit(EventTypePlayerAction, "%s raises to $%d and is ALL IN", p.Name, amount)
		} else {
			t.emit(EventTypePlayerAction, "%s raises to $%d", p.Name, amount)
		}

	case AllIn:
		s.Pot += p.commit(p.Chips)
		if p.Bet > s.CurrentBet {
			s.CurrentBet = p.Bet
			t.reopenAction(p)
		}
		t.emit(EventTypePlayerAction, "%s is ALL IN with $%d", p.Name, p.Bet)

	default:
		return fmt.Errorf("%w: %v", ErrInvalidAction, action)
	}

	p.Acted = true
	t.afterAction(p.Position)
	return nil
}

// AdvanceGamePhase closes the current street. It clears bets, then deals
// the next street or, after the river, settles the hand at showdown. When
// fewer than two players can still bet the remaining streets are dealt
// without stopping.
func (t *Table) AdvanceGamePhase() {
	s := &t.State
	if !s.InHand() {
		return
	}

	t.foldUnmatched()
	for _, p := range t.seats {
		if p != nil {
			p.Bet = 0
			p.Acted = false
		}
	}
	s.CurrentBet = 0
	s.CurrentPlayer = NoSeat

	if countInHand(t.seatSlice()) <= 1 {
		t.showdown()
		return
	}

	switch s.Phase {
	case PhasePreflop:
		s.Phase = PhaseFlop
		t.emit(EventTypeStreetChange, "Dealer: Dealing the flop")
		t.dealCommunity(3)
	case PhaseFlop:
		s.Phase = PhaseTurn
		t.emit(EventTypeStreetChange, "Dealer: Dealing the turn")
		t.dealCommunity(1)
	case PhaseTurn:
		s.Phase = PhaseRiver
		t.emit(EventTypeStreetChange, "Dealer: Dealing the river")
		t.dealCommunity(1)
	case PhaseRiver:
		t.showdown()
		return
	default:
		return
	}

	if IsRoundComplete(t.seatSlice(), 0) {
		t.AdvanceGamePhase()
		return
	}
	s.CurrentPlayer = nextToAct(t.seatSlice(), s.Dealer, 0)
	t.announceTurn()
}

// ResetGameState returns the table to waiting between hands. The dealer,
// blinds, chip stacks and the last hand's winners are kept.
func (t *Table) ResetGameState() {
	prev := t.State
	t.State = newGameState(prev.SmallBlind, prev.BigBlind)
	t.State.Dealer = prev.Dealer
	t.State.HandNumber = prev.HandNumber
	if prev.Winners != nil {
		t.State.Winners = prev.Winners
	}

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		p.Hand = []poker.Card{}
		p.Bet = 0
		p.Folded = false
		p.AllIn = false
		p.Acted = false
	}
}

// afterAction moves the hand on after the player at from acted or left.
func (t *Table) afterAction(from int) {
	seats := t.seatSlice()
	if countInHand(seats) <= 1 {
		t.showdown()
		return
	}
	if IsRoundComplete(seats, t.State.CurrentBet) {
		t.AdvanceGamePhase()
		return
	}
	t.State.CurrentPlayer = nextToAct(seats, from, t.State.CurrentBet)
	t.announceTurn()
}

// showdown awards the pot and resets the table.
func (t *Table) showdown() {
	s := &t.State
	t.foldUnmatched()
	s.Phase = PhaseShowdown
	s.CurrentPlayer = NoSeat

	winners := DetermineWinners(t.seatSlice(), s.CommunityCards)
	if len(winners) == 0 {
		// Everyone left in the hand is disconnected; they still own the pot.
		winners = determineWinners(t.seatSlice(), s.CommunityCards, false)
	}

	if n := len(winners); n > 0 {
		if n == 1 {
			t.emit(EventTypeShowdown, "Showdown: %s wins with %s", winners[0].Name, winners[0].HandRank)
		} else {
			names := make([]string, n)
			for i, w := range winners {
				names[i] = w.Name
			}
			t.emit(EventTypeShowdown, "Showdown: Split pot! Winners: %s with %s", strings.Join(names, ", "), winners[0].HandRank)
		}

		shares := splitPot(s.Pot, winners, s.Dealer)
		for i := range winners {
			p := t.seats[winners[i].Position]
			p.Chips += shares[i]
			winners[i].Amount = shares[i]
			winners[i].Chips = p.Chips
			t.emit(EventTypePayout, "%s wins $%d", winners[i].Name, shares[i])
		}
		s.Pot = 0
	}

	s.Winners = winners
	s.Status = StatusEnded
	t.ResetGameState()
}

// foldUnmatched folds players who are still holding cards but never matched
// the bet that closed the street, which only happens to players who were
// disconnected while facing it. Nobody is folded when no player matched.
func (t *Table) foldUnmatched() {
	var short []*Player
	matched := false
	for _, p := range t.seats {
		if p == nil || p.Folded {
			continue
		}
		if p.AllIn || p.Bet >= t.State.CurrentBet {
			matched = true
			continue
		}
		short = append(short, p)
	}
	if !matched {
		return
	}
	for _, p := range short {
		p.Folded = true
		t.emit(EventTypePlayerAction, "%s folds", p.Name)
	}
}

// splitPot divides pot evenly. Odd chips go one each to the winners closest
// to the left of the dealer.
func splitPot(pot int, winners []WinnerInfo, dealer int) []int {
	n := len(winners)
	shares := make([]int, n)
	for i := range shares {
		shares[i] = pot / n
	}
	rem := pot % n
	for off := 1; rem > 0 && off <= MaxSeats; off++ {
		pos := (dealer + off) % MaxSeats
		for i, w := range winners {
			if w.Position == pos {
				shares[i]++
				rem--
				break
			}
		}
	}
	return shares
}

func (t *Table) reopenAction(raiser *Player) {
	for _, p := range t.seats {
		if p != nil && p != raiser {
			p.Acted = false
		}
	}
}

func (t *Table) postBlind(pos, amount int, label string) {
	p := t.seats[pos]
	if p.Chips <= amount {
		t.State.Pot += p.commit(p.Chips)
		t.emit(EventTypeBlind, "%s posts %s and is ALL IN with $%d", p.Name, label, p.Bet)
		return
	}
	t.State.Pot += p.commit(amount)
	t.emit(EventTypeBlind, "%s posts %s: $%d", p.Name, label, amount)
}

func (t *Table) announceTurn() {
	if p := t.Seat(t.State.CurrentPlayer); p != nil {
		t.emit(EventTypeTurn, "Action to %s", p.Name)
	}
}

// dealOrder returns the dealt-in seats clockwise starting left of the dealer.
func (t *Table) dealOrder() []int {
	order := make([]int, 0, MaxSeats)
	for off := 1; off <= MaxSeats; off++ {
		pos := (t.State.Dealer + off) % MaxSeats
		if t.seats[pos].InHand() {
			order = append(order, pos)
		}
	}
	return order
}

// nextInHand returns the next seat clockwise from pos still in the hand.
func (t *Table) nextInHand(pos int) int {
	for off := 1; off <= MaxSeats; off++ {
		next := (pos + off) % MaxSeats
		if t.seats[next].InHand() {
			return next
		}
	}
	return NoSeat
}

func (t *Table) dealCommunity(n int) {
	for range n {
		t.State.CommunityCards = append(t.State.CommunityCards, t.draw())
	}
}

// draw takes the next card from the hand's deck. Running out of cards is a
// bug in the state machine, not a recoverable condition.
func (t *Table) draw() poker.Card {
	c, err := t.State.Deck.Draw()
	if err != nil {
		panic(fmt.Sprintf("table %s: %v", t.ID, err))
	}
	return c
}

func (t *Table) seatName(pos int) string {
	if p := t.Seat(pos); p != nil {
		return p.Name
	}
	return fmt.Sprintf("seat %d", pos)
}
