package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	if a < Fold || a > AllIn {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// ParseAction converts a wire action name into an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise", "bet":
		return Raise, nil
	case "allin", "all-in", "all_in":
		return AllIn, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ValidAction is an action available to the player to act. For Raise the
// amounts bound the target total bet; for Call and AllIn both equal the
// chips that would be committed.
type ValidAction struct {
	Action    Action `json:"action"`
	MinAmount int    `json:"minAmount,omitempty"`
	MaxAmount int    `json:"maxAmount,omitempty"`
}

// MinRaiseTarget returns the smallest legal raise target for a street with
// the given current bet. A raise must at least double the current bet.
func MinRaiseTarget(currentBet int) int {
	return currentBet * 2
}

// validActionsFor lists what p may do facing currentBet.
func validActionsFor(p *Player, currentBet int) []ValidAction {
	if !p.CanAct() {
		return nil
	}

	actions := []ValidAction{{Action: Fold}}
	toCall := currentBet - p.Bet
	if toCall <= 0 {
		actions = append(actions, ValidAction{Action: Check})
	} else {
		amount := min(toCall, p.Chips)
		actions = append(actions, ValidAction{Action: Call, MinAmount: amount, MaxAmount: amount})
	}

	maxTarget := p.Chips + p.Bet
	minTarget := max(MinRaiseTarget(currentBet), currentBet+1)
	if maxTarget >= minTarget {
		actions = append(actions, ValidAction{Action: Raise, MinAmount: minTarget, MaxAmount: maxTarget})
	}
	if p.Chips > 0 {
		actions = append(actions, ValidAction{Action: AllIn, MinAmount: p.Chips, MaxAmount: p.Chips})
	}
	return actions
}

// NextActiveSeat scans clockwise from the seat after from and returns the
// first seat whose player can act, or NoSeat when it wraps back to from
// without finding one.
func NextActiveSeat(seats []*Player, from int) int {
	n := len(seats)
	if n == 0 {
		return NoSeat
	}
	for i := 1; i < n; i++ {
		pos := ((from+i)%n + n) % n
		if seats[pos].CanAct() {
			return pos
		}
	}
	return NoSeat
}

// IsRoundComplete reports whether the current betting street is closed.
//
// A street closes when at most one player remains in the hand, or when every
// player still in the hand is all-in or has matched currentBet. While two or
// more players can still bet, each of them must also have acted on this
// street, which gives the big blind its option and stops a lone check from
// closing the flop.
func IsRoundComplete(seats []*Player, currentBet int) bool {
	if countInHand(seats) <= 1 {
		return true
	}
	for _, p := range seats {
		if p.CanAct() && p.Bet != currentBet {
			return false
		}
	}
	if countCanAct(seats) <= 1 {
		return true
	}
	for _, p := range seats {
		if p.CanAct() && !p.Acted {
			return false
		}
	}
	return true
}

func countInHand(seats []*Player) int {
	n := 0
	for _, p := range seats {
		if p.InHand() {
			n++
		}
	}
	return n
}

func countCanAct(seats []*Player) int {
	n := 0
	for _, p := range seats {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// nextToAct returns the first seat after from that still owes an action on
// this street.
func nextToAct(seats []*Player, from int, currentBet int) int {
	first := NextActiveSeat(seats, from)
	pos := first
	for pos != NoSeat {
		p := seats[pos]
		if !p.Acted || p.Bet != currentBet {
			return pos
		}
		pos = NextActiveSeat(seats, pos)
		if pos == first {
			break
		}
	}
	return first
}
