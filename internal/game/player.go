package game

import (
	"slices"

	"github.com/Tom-BUXDAO/buxdao-poker/poker"
)

// Player is the occupant of one seat.
type Player struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Avatar   string       `json:"avatar,omitempty"`
	Chips    int          `json:"chips"`
	Position int          `json:"position"`
	Hand     []poker.Card `json:"hand"`
	Bet      int          `json:"bet"`
	Folded   bool         `json:"folded"`
	AllIn    bool         `json:"allIn"`
	IsActive bool         `json:"isActive"`

	// Acted is set once the player has voluntarily acted on the current
	// street. Posting a blind does not count.
	Acted bool `json:"-"`
}

// InHand reports whether the player still contends for the pot.
func (p *Player) InHand() bool {
	return p != nil && p.IsActive && !p.Folded
}

// CanAct reports whether the player can still take betting actions.
func (p *Player) CanAct() bool {
	return p.InHand() && !p.AllIn
}

// commit moves chips from the stack into the current bet, capped at the
// stack. It returns the amount actually moved.
func (p *Player) commit(amount int) int {
	if amount >= p.Chips {
		amount = p.Chips
		p.AllIn = true
	}
	p.Chips -= amount
	p.Bet += amount
	return amount
}

// view returns a copy of the player with hole cards hidden unless reveal is set.
func (p *Player) view(reveal bool) Player {
	out := *p
	if reveal {
		out.Hand = slices.Clone(p.Hand)
	} else {
		out.Hand = []poker.Card{}
	}
	if out.Hand == nil {
		out.Hand = []poker.Card{}
	}
	return out
}
