package poker

import (
	"errors"
	rand "math/rand/v2"
)

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

// ErrEmptyDeck is returned when drawing from an exhausted deck.
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is a single-use shuffled deck. Cards are drawn from the end.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a full shuffled deck using the supplied random source.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, DeckSize),
		rng:   rng,
	}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	d.Shuffle()
	return d
}

// Shuffle shuffles the remaining cards using Fisher-Yates
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	top := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return top, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, top of deck last.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
