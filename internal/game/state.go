package game

import "github.com/Tom-BUXDAO/buxdao-poker/poker"

// Status is the table lifecycle state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusStarting Status = "starting"
	StatusPlaying  Status = "playing"
	StatusEnded    Status = "ended"
)

// Phase is the street of the hand in progress.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

const (
	// MaxSeats is the number of seats at a table.
	MaxSeats = 8

	// NoSeat marks the absence of a seat, e.g. when nobody is to act.
	NoSeat = -1

	// DefaultSmallBlind and DefaultBigBlind apply when no blinds are configured.
	DefaultSmallBlind = 10
	DefaultBigBlind   = 20
)

// WinnerByDefault is the hand label used when every other player folded.
const WinnerByDefault = "Winner by default (all others folded)"

// WinnerInfo describes one winner of a showdown.
type WinnerInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	HandRank    string       `json:"handRank"`
	WinningHand []poker.Card `json:"winningHand"`
	Position    int          `json:"position"`
	Chips       int          `json:"chips"`
	Amount      int          `json:"amount"`
}

// GameState is the per-hand state of a table.
type GameState struct {
	Status         Status       `json:"status"`
	Phase          Phase        `json:"phase"`
	Dealer         int          `json:"dealer"`
	SmallBlind     int          `json:"smallBlind"`
	BigBlind       int          `json:"bigBlind"`
	CurrentPlayer  int          `json:"currentPlayer"`
	Pot            int          `json:"pot"`
	CommunityCards []poker.Card `json:"communityCards"`
	CurrentBet     int          `json:"currentBet"`
	Winners        []WinnerInfo `json:"winners"`
	HandNumber     int          `json:"handNumber"`

	// Deck is the live deck of the hand in progress, nil between hands.
	Deck *poker.Deck `json:"-"`
}

func newGameState(smallBlind, bigBlind int) GameState {
	return GameState{
		Status:         StatusWaiting,
		Phase:          PhaseWaiting,
		SmallBlind:     smallBlind,
		BigBlind:       bigBlind,
		CurrentPlayer:  NoSeat,
		CommunityCards: []poker.Card{},
		Winners:        []WinnerInfo{},
	}
}

// InHand reports whether a hand is being played.
func (s *GameState) InHand() bool {
	return s.Status == StatusPlaying
}
