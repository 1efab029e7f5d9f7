package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Tom-BUXDAO/buxdao-poker/internal/game"
	"github.com/Tom-BUXDAO/buxdao-poker/internal/randutil"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

var (
	ErrTableNotFound  = errors.New("table not found")
	ErrNotJoined      = errors.New("you need to join a table first")
	ErrAlreadyPlaying = errors.New("game is already in progress")
	ErrAlreadySeated  = errors.New("already seated at a table")
	ErrInvalidName    = errors.New("player name is required")
	ErrInvalidChat    = errors.New("chat message must be 1 to 500 characters")
)

// Subscriber receives the messages addressed to one seated player.
type Subscriber interface {
	SubscriberID() string
	Send(msg *Message) error
}

// RegistryOption configures a TableRegistry.
type RegistryOption func(*TableRegistry)

// WithRegistryClock sets the clock driving start and hand delays.
func WithRegistryClock(clock quartz.Clock) RegistryOption {
	return func(r *TableRegistry) { r.clock = clock }
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(logger *log.Logger) RegistryOption {
	return func(r *TableRegistry) { r.logger = logger }
}

// WithSeed makes every table's shuffles reproducible.
func WithSeed(seed int64) RegistryOption {
	return func(r *TableRegistry) { r.seed = seed }
}

// WithStartDelay sets the pause between start_game and the first deal.
func WithStartDelay(d time.Duration) RegistryOption {
	return func(r *TableRegistry) { r.startDelay = d }
}

// TableRegistry owns the configured tables.
type TableRegistry struct {
	tables     map[string]*ServerTable
	clock      quartz.Clock
	logger     *log.Logger
	seed       int64
	startDelay time.Duration
}

// NewTableRegistry creates one table per config entry.
func NewTableRegistry(configs []TableConfig, opts ...RegistryOption) *TableRegistry {
	r := &TableRegistry{
		tables:     make(map[string]*ServerTable, len(configs)),
		startDelay: time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = quartz.NewReal()
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	r.seed = randutil.Seed(r.seed)
	r.logger.Debug("Table registry seeded", "seed", r.seed)

	for i, cfg := range configs {
		r.tables[cfg.ID] = newServerTable(cfg, r, randutil.Derive(r.seed, i))
	}
	return r
}

// Table returns the table with the given id.
func (r *TableRegistry) Table(id string) (*ServerTable, error) {
	t, ok := r.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	return t, nil
}

// List summarizes every table, ordered by id.
func (r *TableRegistry) List() []TableInfo {
	out := make([]TableInfo, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close cancels pending timers on every table.
func (r *TableRegistry) Close() {
	for _, t := range r.tables {
		t.close()
	}
}

// ServerTable serializes access to one game.Table and fans its state out to
// the seated players' connections.
type ServerTable struct {
	mu          sync.Mutex
	cfg         TableConfig
	table       *game.Table
	subscribers map[string]Subscriber
	clock       quartz.Clock
	logger      *log.Logger
	startDelay  time.Duration
	timer       *quartz.Timer
	closed      bool
}

func newServerTable(cfg TableConfig, r *TableRegistry, seed int64) *ServerTable {
	logger := r.logger.WithPrefix("table").With("table", cfg.ID)
	st := &ServerTable{
		cfg:         cfg,
		subscribers: make(map[string]Subscriber),
		clock:       r.clock,
		logger:      logger,
		startDelay:  r.startDelay,
	}
	st.table = game.NewTable(cfg.ID,
		game.WithBlinds(cfg.SmallBlind, cfg.BigBlind),
		game.WithRNG(randutil.New(seed)),
		game.WithClock(r.clock),
		game.WithEventSink(game.EventSinkFunc(func(e game.Event) {
			logger.Debug(e.Message, "kind", e.Type)
		})),
	)
	return st
}

// ID returns the table id.
func (st *ServerTable) ID() string { return st.cfg.ID }

// Info summarizes the table for listings.
func (st *ServerTable) Info() TableInfo {
	st.mu.Lock()
	defer st.mu.Unlock()
	return TableInfo{
		ID:          st.cfg.ID,
		Name:        st.cfg.DisplayName,
		PlayerCount: len(st.table.Players()),
		MaxPlayers:  st.cfg.MaxPlayers,
		SmallBlind:  st.cfg.SmallBlind,
		BigBlind:    st.cfg.BigBlind,
		Status:      st.table.State.Status,
	}
}

// Snapshot returns the view of the table for viewerID.
func (st *ServerTable) Snapshot(viewerID string) game.Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.table.Snapshot(viewerID)
}

// TotalChips returns the chips in play at the table.
func (st *ServerTable) TotalChips() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.table.TotalChips()
}

// Join seats sub's player. A disconnected player rejoining under the same
// name reclaims the seat and stack.
func (st *ServerTable) Join(sub Subscriber, data JoinTableData) (int, error) {
	if data.PlayerName == "" {
		return game.NoSeat, ErrInvalidName
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	id := sub.SubscriberID()
	if existing := st.table.PlayerByName(data.PlayerName); existing != nil && !existing.IsActive {
		oldID := existing.ID
		if err := st.table.RebindPlayer(oldID, id); err != nil {
			return game.NoSeat, err
		}
		delete(st.subscribers, oldID)
		if err := st.table.SetConnected(id, true); err != nil {
			return game.NoSeat, err
		}
		st.subscribers[id] = sub
		st.logger.Info("Player reconnected", "player", data.PlayerName, "seat", existing.Position)
		st.broadcastLocked()
		return existing.Position, nil
	}

	if len(st.table.Players()) >= st.cfg.MaxPlayers {
		return game.NoSeat, game.ErrTableFull
	}

	chips := data.Chips
	if chips <= 0 {
		chips = st.cfg.StartingChips
	}
	seat := game.NoSeat
	if data.Seat != nil {
		seat = *data.Seat
		if seat >= st.cfg.MaxPlayers {
			return game.NoSeat, fmt.Errorf("%w: %d", game.ErrInvalidSeat, seat)
		}
	}

	pos, err := st.table.SeatPlayer(game.SeatRequest{
		ID:     id,
		Name:   data.PlayerName,
		Avatar: data.Avatar,
		Chips:  chips,
		Seat:   seat,
	})
	if err != nil {
		return game.NoSeat, err
	}
	st.subscribers[id] = sub
	st.logger.Info("Player joined", "player", data.PlayerName, "seat", pos, "chips", chips)
	st.broadcastLocked()
	return pos, nil
}

// Leave removes the player from the table.
func (st *ServerTable) Leave(playerID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.table.RemovePlayer(playerID); err != nil {
		return err
	}
	delete(st.subscribers, playerID)
	st.sendAllLocked(MessageTypePlayerLeft, PlayerLeftData{PlayerID: playerID})
	st.broadcastLocked()
	st.scheduleNextHandLocked()
	return nil
}

// Disconnect keeps the player's seat but marks them inactive.
func (st *ServerTable) Disconnect(playerID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.table.SetConnected(playerID, false); err != nil {
		return err
	}
	delete(st.subscribers, playerID)
	st.sendAllLocked(MessageTypePlayerDisconnected, PlayerLeftData{PlayerID: playerID})
	st.broadcastLocked()
	return nil
}

// MaxChatLength caps a chat message, in characters.
const MaxChatLength = 500

// Chat relays a chat line from a seated player to everyone at the table.
func (st *ServerTable) Chat(playerID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxChatLength {
		return ErrInvalidChat
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.table.PlayerByID(playerID)
	if p == nil {
		return ErrNotJoined
	}
	st.sendAllLocked(MessageTypeNewMessage, ChatData{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Message:    text,
		Timestamp:  st.clock.Now().UTC(),
	})
	return nil
}

// StartGame moves the table to the starting state and deals the first hand
// after the start delay.
func (st *ServerTable) StartGame(playerID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.table.PlayerByID(playerID) == nil {
		return ErrNotJoined
	}
	switch st.table.State.Status {
	case game.StatusPlaying, game.StatusStarting:
		return ErrAlreadyPlaying
	}
	if st.table.ActivePlayerCount() < 2 {
		return fmt.Errorf("%w: need at least 2 players to start", game.ErrNotEnoughPlayers)
	}

	if st.table.State.HandNumber == 0 || st.table.Seat(st.table.State.Dealer) == nil {
		if err := st.table.RandomDealer(); err != nil {
			return err
		}
	}
	st.table.SetStatus(game.StatusStarting)
	st.logger.Info("Starting game", "by", playerID, "delay", st.startDelay)
	st.sendAllLocked(MessageTypeGameStarting, GameStartingData{
		TableID: st.cfg.ID,
		Dealer:  st.table.State.Dealer,
	})
	st.armLocked(st.startDelay, func() { st.dealHand(playerID) })
	return nil
}

// Act applies a betting action for playerID and acknowledges it to them.
func (st *ServerTable) Act(playerID string, action game.Action, amount int) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.table.ValidateTurn(playerID); err != nil {
		return err
	}
	if err := st.table.ProcessPlayerAction(playerID, action, amount); err != nil {
		return err
	}
	st.broadcastLocked()
	st.sendToLocked(playerID, MessageTypeActionAcknowledged, ActionAcknowledgedData{
		Action: action,
		Amount: amount,
	})
	if !st.table.State.InHand() {
		st.logger.Info("Hand complete", "hand", st.table.State.HandNumber, "winners", len(st.table.State.Winners))
		st.scheduleNextHandLocked()
	}
	return nil
}

func (st *ServerTable) dealHand(requestedBy string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.closed {
		return
	}
	if err := st.table.StartNewHand(); err != nil {
		st.logger.Warn("Failed to start hand", "error", err)
		if st.table.State.Status == game.StatusStarting {
			st.table.SetStatus(game.StatusWaiting)
		}
		if requestedBy != "" {
			st.sendToLocked(requestedBy, MessageTypeError, ErrorData{
				Code:    "start_failed",
				Message: "Failed to start game. Please try again.",
			})
		}
		st.broadcastLocked()
		return
	}
	st.logger.Info("Hand started", "hand", st.table.State.HandNumber, "dealer", st.table.State.Dealer)
	st.broadcastLocked()
	if !st.table.State.InHand() {
		st.scheduleNextHandLocked()
	}
}

// scheduleNextHandLocked arms the next deal on auto-start tables once a hand
// has been played and none is running.
func (st *ServerTable) scheduleNextHandLocked() {
	s := st.table.State
	if !st.cfg.AutoStart || s.HandNumber == 0 || s.Status != game.StatusWaiting {
		return
	}
	if st.table.ActivePlayerCount() < 2 {
		return
	}
	st.armLocked(st.cfg.HandDelayDuration(), func() { st.dealHand("") })
}

func (st *ServerTable) armLocked(d time.Duration, fn func()) {
	if st.closed {
		return
	}
	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = st.clock.AfterFunc(d, fn)
}

func (st *ServerTable) close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.closed = true
	if st.timer != nil {
		st.timer.Stop()
	}
}

// broadcastLocked sends each subscriber its own view of the table.
func (st *ServerTable) broadcastLocked() {
	for id, sub := range st.subscribers {
		msg, err := NewMessage(MessageTypeTableState, st.table.Snapshot(id))
		if err != nil {
			st.logger.Error("Failed to encode table state", "error", err)
			return
		}
		if err := sub.Send(msg); err != nil {
			st.logger.Debug("Dropped table state", "player", id, "error", err)
		}
	}
}

func (st *ServerTable) sendAllLocked(msgType MessageType, data any) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		st.logger.Error("Failed to encode message", "type", msgType, "error", err)
		return
	}
	for id, sub := range st.subscribers {
		if err := sub.Send(msg); err != nil {
			st.logger.Debug("Dropped message", "type", msgType, "player", id, "error", err)
		}
	}
}

func (st *ServerTable) sendToLocked(playerID string, msgType MessageType, data any) {
	sub, ok := st.subscribers[playerID]
	if !ok {
		return
	}
	msg, err := NewMessage(msgType, data)
	if err != nil {
		st.logger.Error("Failed to encode message", "type", msgType, "error", err)
		return
	}
	if err := sub.Send(msg); err != nil {
		st.logger.Debug("Dropped message", "type", msgType, "player", playerID, "error", err)
	}
}
