package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/Tom-BUXDAO/buxdao-poker/poker"
	"github.com/coder/quartz"
)

// HistoryLimit bounds the table's message history.
const HistoryLimit = 50

// Table is the aggregate root for one poker table. Players and GameState are
// only mutated through Table methods.
type Table struct {
	ID    string
	State GameState

	seats   [MaxSeats]*Player
	history []Event

	rng   *rand.Rand
	clock quartz.Clock
	sink  EventSink
}

// TableOption configures a Table during creation.
type TableOption func(*Table)

// WithRNG sets the random source used to shuffle each hand's deck.
func WithRNG(rng *rand.Rand) TableOption {
	return func(t *Table) { t.rng = rng }
}

// WithClock sets the clock used to timestamp events.
func WithClock(clock quartz.Clock) TableOption {
	return func(t *Table) { t.clock = clock }
}

// WithEventSink sets where events are published.
func WithEventSink(sink EventSink) TableOption {
	return func(t *Table) { t.sink = sink }
}

// WithBlinds sets the blind amounts.
func WithBlinds(small, big int) TableOption {
	return func(t *Table) {
		t.State.SmallBlind = small
		t.State.BigBlind = big
	}
}

// NewTable creates an empty table in the waiting state.
func NewTable(id string, opts ...TableOption) *Table {
	t := &Table{
		ID:    id,
		State: newGameState(DefaultSmallBlind, DefaultBigBlind),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if t.clock == nil {
		t.clock = quartz.NewReal()
	}
	if t.sink == nil {
		t.sink = discardSink{}
	}
	return t
}

// SeatRequest describes a player taking a seat.
type SeatRequest struct {
	ID     string
	Name   string
	Avatar string
	Chips  int
	// Seat is the requested position, or NoSeat for the first free seat.
	Seat int
}

// SeatPlayer seats a new player and returns the seat index. A player seated
// while a hand is running sits out until the next hand.
func (t *Table) SeatPlayer(req SeatRequest) (int, error) {
	if req.ID == "" {
		return NoSeat, fmt.Errorf("%w: empty player id", ErrInvalidSeat)
	}
	if t.PlayerByID(req.ID) != nil {
		return NoSeat, fmt.Errorf("%w: %s", ErrDuplicatePlayer, req.ID)
	}
	if req.Chips < 0 {
		return NoSeat, fmt.Errorf("%w: negative chips", ErrInvalidSeat)
	}

	pos := req.Seat
	switch {
	case pos == NoSeat:
		pos = slices.Index(t.seats[:], nil)
		if pos < 0 {
			return NoSeat, ErrTableFull
		}
	case pos < 0 || pos >= MaxSeats:
		return NoSeat, fmt.Errorf("%w: %d", ErrInvalidSeat, pos)
	case t.seats[pos] != nil:
		return NoSeat, fmt.Errorf("%w: %d", ErrSeatTaken, pos)
	}

	p := &Player{
		ID:       req.ID,
		Name:     req.Name,
		Avatar:   req.Avatar,
		Chips:    req.Chips,
		Position: pos,
		Hand:     []poker.Card{},
		IsActive: true,
		Folded:   t.State.InHand(),
	}
	t.seats[pos] = p
	t.emit(EventTypeTable, "%s joined the table", p.Name)
	return pos, nil
}

// RemovePlayer vacates the player's seat. A player leaving mid-hand folds
// first so the hand can continue.
func (t *Table) RemovePlayer(playerID string) error {
	p := t.PlayerByID(playerID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}

	if t.State.InHand() && p.InHand() {
		wasCurrent := t.State.CurrentPlayer == p.Position
		p.Folded = true
		t.emit(EventTypePlayerAction, "%s folds", p.Name)
		t.seats[p.Position] = nil
		t.emit(EventTypeTable, "%s left the table", p.Name)
		if wasCurrent || IsRoundComplete(t.seatSlice(), t.State.CurrentBet) {
			t.afterAction(p.Position)
		}
		return nil
	}

	t.seats[p.Position] = nil
	t.emit(EventTypeTable, "%s left the table", p.Name)
	return nil
}

// SetConnected marks a player connected or disconnected. Disconnecting does
// not fold the player.
func (t *Table) SetConnected(playerID string, connected bool) error {
	p := t.PlayerByID(playerID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if p.IsActive == connected {
		return nil
	}
	p.IsActive = connected
	if connected {
		t.emit(EventTypeTable, "%s reconnected", p.Name)
	} else {
		t.emit(EventTypeTable, "%s disconnected", p.Name)
	}
	return nil
}

// RebindPlayer moves a seated player to a new connection identity.
func (t *Table) RebindPlayer(oldID, newID string) error {
	p := t.PlayerByID(oldID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, oldID)
	}
	if oldID != newID && t.PlayerByID(newID) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, newID)
	}
	p.ID = newID
	return nil
}

// PlayerByID returns the seated player with the given id, or nil.
func (t *Table) PlayerByID(id string) *Player {
	for _, p := range t.seats {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName returns the first seated player with the given name, or nil.
func (t *Table) PlayerByName(name string) *Player {
	for _, p := range t.seats {
		if p != nil && p.Name == name {
			return p
		}
	}
	return nil
}

// Seat returns the player at pos, or nil.
func (t *Table) Seat(pos int) *Player {
	if pos < 0 || pos >= MaxSeats {
		return nil
	}
	return t.seats[pos]
}

// Players returns the seated players in seat order.
func (t *Table) Players() []*Player {
	out := make([]*Player, 0, MaxSeats)
	for _, p := range t.seats {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ActivePlayerCount counts seated, connected players.
func (t *Table) ActivePlayerCount() int {
	n := 0
	for _, p := range t.seats {
		if p != nil && p.IsActive {
			n++
		}
	}
	return n
}

// TotalChips returns the chips on the table: stacks plus the pot.
func (t *Table) TotalChips() int {
	total := t.State.Pot
	for _, p := range t.seats {
		if p != nil {
			total += p.Chips
		}
	}
	return total
}

// MessageHistory returns a copy of the recent events, oldest first.
func (t *Table) MessageHistory() []Event {
	return slices.Clone(t.history)
}

// SetDealer moves the dealer button. It fails while a hand is running.
func (t *Table) SetDealer(pos int) error {
	if t.State.InHand() {
		return ErrHandInProgress
	}
	if pos < 0 || pos >= MaxSeats {
		return fmt.Errorf("%w: %d", ErrInvalidSeat, pos)
	}
	t.State.Dealer = pos
	return nil
}

// RandomDealer moves the dealer button to a random connected player.
func (t *Table) RandomDealer() error {
	if t.State.InHand() {
		return ErrHandInProgress
	}
	var candidates []int
	for _, p := range t.seats {
		if p != nil && p.IsActive {
			candidates = append(candidates, p.Position)
		}
	}
	if len(candidates) == 0 {
		return ErrNotEnoughPlayers
	}
	t.State.Dealer = candidates[t.rng.IntN(len(candidates))]
	return nil
}

// SetStatus records an externally driven lifecycle change, such as the
// delay between accepting a start request and dealing.
func (t *Table) SetStatus(status Status) {
	t.State.Status = status
}

// Announce publishes a table-level event on behalf of the host.
func (t *Table) Announce(format string, args ...any) {
	t.emit(EventTypeTable, format, args...)
}

func (t *Table) seatSlice() []*Player {
	return t.seats[:]
}

func (t *Table) emit(kind EventType, format string, args ...any) {
	e := Event{
		Time:    t.clock.Now(),
		Type:    kind,
		TableID: t.ID,
		Message: fmt.Sprintf(format, args...),
	}
	t.history = append(t.history, e)
	if over := len(t.history) - HistoryLimit; over > 0 {
		t.history = slices.Delete(t.history, 0, over)
	}
	t.sink.Publish(e)
}
