package poker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in deck construction order.
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the lower-case suit name used on the wire.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// Initial returns the upper-case suit letter used in card codes.
func (s Suit) Initial() byte {
	switch s {
	case Hearts:
		return 'H'
	case Diamonds:
		return 'D'
	case Clubs:
		return 'C'
	case Spades:
		return 'S'
	default:
		return '?'
	}
}

// Rank represents a card rank, Two through Ace.
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Ranks lists every rank from Two to Ace.
var Ranks = [...]Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the display value: "2".."10", "J", "Q", "K", "A".
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card is an immutable playing card.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a card from a rank and suit
func NewCard(rank Rank, suit Suit) Card {
	return Card{Suit: suit, Rank: rank}
}

// Code returns the display value followed by the suit initial, e.g. "10H" or "AS".
func (c Card) Code() string {
	return c.Rank.String() + string(c.Suit.Initial())
}

func (c Card) String() string {
	return c.Code()
}

type cardJSON struct {
	Suit     string `json:"suit"`
	Value    string `json:"value"`
	Code     string `json:"code"`
	FileName string `json:"fileName"`
}

// MarshalJSON encodes the card the way clients render it.
func (c Card) MarshalJSON() ([]byte, error) {
	code := c.Code()
	return json.Marshal(cardJSON{
		Suit:     c.Suit.String(),
		Value:    c.Rank.String(),
		Code:     code,
		FileName: code,
	})
}

// UnmarshalJSON accepts the object form produced by MarshalJSON.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCard(raw.Code)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a card code. Both "10H" and "Th" forms are accepted,
// case-insensitively.
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || len(s) > 3 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	value, suitChar := s[:len(s)-1], s[len(s)-1]

	var rank Rank
	switch value {
	case "A":
		rank = Ace
	case "K":
		rank = King
	case "Q":
		rank = Queen
	case "J":
		rank = Jack
	case "T", "10":
		rank = Ten
	default:
		if len(value) != 1 || value[0] < '2' || value[0] > '9' {
			return Card{}, fmt.Errorf("invalid rank in card %q", s)
		}
		rank = Rank(value[0] - '0')
	}

	var suit Suit
	switch suitChar {
	case 'H':
		suit = Hearts
	case 'D':
		suit = Diamonds
	case 'C':
		suit = Clubs
	case 'S':
		suit = Spades
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	return NewCard(rank, suit), nil
}

// ParseCards parses space separated card codes.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixtures; it panics on bad input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
