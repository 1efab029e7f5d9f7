package game

import (
	"fmt"
	"slices"

	"github.com/Tom-BUXDAO/buxdao-poker/poker"
)

// DetermineWinners returns the winners among the players still in the hand.
// Disconnected and folded players are excluded. A lone survivor wins by
// default; otherwise every player tied for the best hand wins.
func DetermineWinners(seats []*Player, community []poker.Card) []WinnerInfo {
	return determineWinners(seats, community, true)
}

func determineWinners(seats []*Player, community []poker.Card, requireActive bool) []WinnerInfo {
	var contenders []*Player
	for _, p := range seats {
		if p == nil || p.Folded {
			continue
		}
		if requireActive && !p.IsActive {
			continue
		}
		contenders = append(contenders, p)
	}

	switch len(contenders) {
	case 0:
		return []WinnerInfo{}
	case 1:
		p := contenders[0]
		return []WinnerInfo{{
			ID:          p.ID,
			Name:        p.Name,
			HandRank:    WinnerByDefault,
			WinningHand: slices.Clone(p.Hand),
			Position:    p.Position,
			Chips:       p.Chips,
		}}
	}

	type scored struct {
		player *Player
		hand   poker.EvaluatedHand
	}
	results := make([]scored, 0, len(contenders))
	for _, p := range contenders {
		if len(p.Hand) != 2 {
			panic(fmt.Sprintf("player %s has %d hole cards at showdown", p.Name, len(p.Hand)))
		}
		cards := append(slices.Clone(p.Hand), community...)
		h, err := poker.EvaluateHand(cards)
		if err != nil {
			panic(fmt.Sprintf("evaluate %s: %v", p.Name, err))
		}
		results = append(results, scored{player: p, hand: h})
	}

	best := results[0].hand
	for _, r := range results[1:] {
		if poker.CompareHands(r.hand, best) > 0 {
			best = r.hand
		}
	}

	winners := make([]WinnerInfo, 0, 1)
	for _, r := range results {
		if poker.CompareHands(r.hand, best) != 0 {
			continue
		}
		winners = append(winners, WinnerInfo{
			ID:          r.player.ID,
			Name:        r.player.Name,
			HandRank:    r.hand.RankName(),
			WinningHand: r.hand.Cards(),
			Position:    r.player.Position,
			Chips:       r.player.Chips,
		})
	}
	return winners
}
