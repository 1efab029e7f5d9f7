package poker

import (
	"errors"
	"fmt"
	"slices"
)

// HandRank is the category of an evaluated hand. Higher values are stronger.
type HandRank uint8

const (
	HighCardRank HandRank = iota + 1
	PairRank
	TwoPairRank
	ThreeOfAKindRank
	StraightRank
	FlushRank
	FullHouseRank
	FourOfAKindRank
	StraightFlushRank
	RoyalFlushRank
)

var handRankNames = [...]string{
	HighCardRank:      "High Card",
	PairRank:          "Pair",
	TwoPairRank:       "Two Pair",
	ThreeOfAKindRank:  "Three of a Kind",
	StraightRank:      "Straight",
	FlushRank:         "Flush",
	FullHouseRank:     "Full House",
	FourOfAKindRank:   "Four of a Kind",
	StraightFlushRank: "Straight Flush",
	RoyalFlushRank:    "Royal Flush",
}

func (r HandRank) String() string {
	if r < HighCardRank || r > RoyalFlushRank {
		return fmt.Sprintf("HandRank(%d)", uint8(r))
	}
	return handRankNames[r]
}

var (
	ErrInsufficientCards = errors.New("at least 5 cards are required")
	ErrTooManyCards      = errors.New("at most 7 cards can be evaluated")
)

// EvaluatedHand is the best five-card hand found by EvaluateHand. The
// concrete type identifies the category and carries its tie-break values.
type EvaluatedHand interface {
	Rank() HandRank
	RankName() string
	// Cards returns the five cards making the hand, grouped cards first.
	Cards() []Card
	tiebreak() []Rank
}

type hand struct {
	cards []Card
}

func (h hand) Cards() []Card { return slices.Clone(h.cards) }

// RoyalFlush is an ace-high straight flush. All royal flushes tie.
type RoyalFlush struct{ hand }

func (RoyalFlush) Rank() HandRank   { return RoyalFlushRank }
func (RoyalFlush) RankName() string { return RoyalFlushRank.String() }
func (RoyalFlush) tiebreak() []Rank { return nil }

type StraightFlush struct {
	hand
	High Rank
}

func (StraightFlush) Rank() HandRank     { return StraightFlushRank }
func (StraightFlush) RankName() string   { return StraightFlushRank.String() }
func (h StraightFlush) tiebreak() []Rank { return []Rank{h.High} }

type FourOfAKind struct {
	hand
	Quad   Rank
	Kicker Rank
}

func (FourOfAKind) Rank() HandRank     { return FourOfAKindRank }
func (FourOfAKind) RankName() string   { return FourOfAKindRank.String() }
func (h FourOfAKind) tiebreak() []Rank { return []Rank{h.Quad, h.Kicker} }

type FullHouse struct {
	hand
	Trips Rank
	Pair  Rank
}

func (FullHouse) Rank() HandRank     { return FullHouseRank }
func (FullHouse) RankName() string   { return FullHouseRank.String() }
func (h FullHouse) tiebreak() []Rank { return []Rank{h.Trips, h.Pair} }

type Flush struct {
	hand
	Ranks [5]Rank
}

func (Flush) Rank() HandRank     { return FlushRank }
func (Flush) RankName() string   { return FlushRank.String() }
func (h Flush) tiebreak() []Rank { return h.Ranks[:] }

// Straight is five consecutive ranks. The wheel (A-2-3-4-5) has High Five.
type Straight struct {
	hand
	High Rank
}

func (Straight) Rank() HandRank     { return StraightRank }
func (Straight) RankName() string   { return StraightRank.String() }
func (h Straight) tiebreak() []Rank { return []Rank{h.High} }

type ThreeOfAKind struct {
	hand
	Trips   Rank
	Kickers [2]Rank
}

func (ThreeOfAKind) Rank() HandRank   { return ThreeOfAKindRank }
func (ThreeOfAKind) RankName() string { return ThreeOfAKindRank.String() }
func (h ThreeOfAKind) tiebreak() []Rank {
	return []Rank{h.Trips, h.Kickers[0], h.Kickers[1]}
}

type TwoPair struct {
	hand
	High   Rank
	Low    Rank
	Kicker Rank
}

func (TwoPair) Rank() HandRank     { return TwoPairRank }
func (TwoPair) RankName() string   { return TwoPairRank.String() }
func (h TwoPair) tiebreak() []Rank { return []Rank{h.High, h.Low, h.Kicker} }

type OnePair struct {
	hand
	Pair    Rank
	Kickers [3]Rank
}

func (OnePair) Rank() HandRank   { return PairRank }
func (OnePair) RankName() string { return PairRank.String() }
func (h OnePair) tiebreak() []Rank {
	return []Rank{h.Pair, h.Kickers[0], h.Kickers[1], h.Kickers[2]}
}

type HighCard struct {
	hand
	Ranks [5]Rank
}

func (HighCard) Rank() HandRank     { return HighCardRank }
func (HighCard) RankName() string   { return HighCardRank.String() }
func (h HighCard) tiebreak() []Rank { return h.Ranks[:] }

// EvaluateHand returns the best five-card hand among 5 to 7 cards.
func EvaluateHand(cards []Card) (EvaluatedHand, error) {
	switch {
	case len(cards) < 5:
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientCards, len(cards))
	case len(cards) > 7:
		return nil, fmt.Errorf("%w: got %d", ErrTooManyCards, len(cards))
	case len(cards) == 5:
		return evaluateFive(cards), nil
	}

	var best EvaluatedHand
	combo := make([]Card, 5)
	forEachCombination(len(cards), 5, func(idx []int) {
		for i, j := range idx {
			combo[i] = cards[j]
		}
		h := evaluateFive(combo)
		if best == nil || CompareHands(h, best) > 0 {
			best = h
		}
	})
	return best, nil
}

// CompareHands returns 1 if a beats b, -1 if b beats a and 0 on a tie.
func CompareHands(a, b EvaluatedHand) int {
	if a.Rank() != b.Rank() {
		if a.Rank() > b.Rank() {
			return 1
		}
		return -1
	}
	ta, tb := a.tiebreak(), b.tiebreak()
	for i := 0; i < len(ta) && i < len(tb); i++ {
		switch {
		case ta[i] > tb[i]:
			return 1
		case ta[i] < tb[i]:
			return -1
		}
	}
	return 0
}

// forEachCombination calls fn with every k-subset of [0,n) in lexicographic order.
func forEachCombination(n, k int, fn func([]int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// evaluateFive classifies exactly five cards.
func evaluateFive(in []Card) EvaluatedHand {
	cards := slices.Clone(in)
	slices.SortStableFunc(cards, func(a, b Card) int { return int(b.Rank) - int(a.Rank) })

	flush := true
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			flush = false
			break
		}
	}
	straightCards, high, straight := findStraight(cards)

	switch {
	case flush && straight && high == Ace:
		return RoyalFlush{hand{straightCards}}
	case flush && straight:
		return StraightFlush{hand: hand{straightCards}, High: high}
	}

	groups := groupByRank(cards)
	ordered := make([]Card, 0, 5)
	for _, g := range groups {
		ordered = append(ordered, g...)
	}
	h := hand{ordered}

	switch {
	case len(groups[0]) == 4:
		return FourOfAKind{hand: h, Quad: groups[0][0].Rank, Kicker: groups[1][0].Rank}
	case len(groups[0]) == 3 && len(groups[1]) == 2:
		return FullHouse{hand: h, Trips: groups[0][0].Rank, Pair: groups[1][0].Rank}
	case flush:
		return Flush{hand: hand{cards}, Ranks: fiveRanks(cards)}
	case straight:
		return Straight{hand: hand{straightCards}, High: high}
	case len(groups[0]) == 3:
		return ThreeOfAKind{
			hand:    h,
			Trips:   groups[0][0].Rank,
			Kickers: [2]Rank{groups[1][0].Rank, groups[2][0].Rank},
		}
	case len(groups[0]) == 2 && len(groups[1]) == 2:
		return TwoPair{
			hand:   h,
			High:   groups[0][0].Rank,
			Low:    groups[1][0].Rank,
			Kicker: groups[2][0].Rank,
		}
	case len(groups[0]) == 2:
		return OnePair{
			hand:    h,
			Pair:    groups[0][0].Rank,
			Kickers: [3]Rank{groups[1][0].Rank, groups[2][0].Rank, groups[3][0].Rank},
		}
	default:
		return HighCard{hand: hand{cards}, Ranks: fiveRanks(cards)}
	}
}

// findStraight looks for five consecutive ranks in cards sorted by rank
// descending. Duplicate ranks are dropped first, keeping the first instance.
// The wheel is returned ordered 5-4-3-2-A with high card Five.
func findStraight(sorted []Card) ([]Card, Rank, bool) {
	unique := make([]Card, 0, len(sorted))
	for _, c := range sorted {
		if len(unique) == 0 || unique[len(unique)-1].Rank != c.Rank {
			unique = append(unique, c)
		}
	}

	for i := 0; i+5 <= len(unique); i++ {
		window := unique[i : i+5]
		if window[0].Rank-window[4].Rank == 4 {
			return slices.Clone(window), window[0].Rank, true
		}
	}

	if len(unique) >= 5 && unique[0].Rank == Ace {
		tail := unique[len(unique)-4:]
		if tail[0].Rank == Five && tail[3].Rank == Two {
			wheel := append(slices.Clone(tail), unique[0])
			return wheel, Five, true
		}
	}
	return nil, 0, false
}

// groupByRank splits sorted cards into same-rank groups ordered by size then
// rank, both descending.
func groupByRank(sorted []Card) [][]Card {
	var groups [][]Card
	for _, c := range sorted {
		n := len(groups)
		if n > 0 && groups[n-1][0].Rank == c.Rank {
			groups[n-1] = append(groups[n-1], c)
			continue
		}
		groups = append(groups, []Card{c})
	}
	slices.SortStableFunc(groups, func(a, b []Card) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return int(b[0].Rank) - int(a[0].Rank)
	})
	return groups
}

func fiveRanks(cards []Card) [5]Rank {
	var out [5]Rank
	for i := range out {
		out[i] = cards[i].Rank
	}
	return out
}
