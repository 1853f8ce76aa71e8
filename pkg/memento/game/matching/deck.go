package matching

import "math/rand/v2"

// Shuffler permutes n elements using swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// DefaultShuffler shuffles with the math/rand/v2 global source.
func DefaultShuffler() Shuffler {
	return globalShuffler{}
}

type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

// NoShuffle leaves the deck in deal order.
func NoShuffle() Shuffler {
	return noShuffle{}
}

// NewDeck duplicates every distinct symbol, numbers the cards in that order
// and then shuffles them. Repeated symbols are dealt once so every value
// appears on exactly two cards. A nil shuffler uses DefaultShuffler.
func NewDeck(symbols []string, shuffler Shuffler) []Card {
	if shuffler == nil {
		shuffler = DefaultShuffler()
	}
	symbols = distinct(symbols)
	deck := make([]Card, 0, 2*len(symbols))
	for range 2 {
		for _, symbol := range symbols {
			deck = append(deck, Card{ID: len(deck), Value: symbol})
		}
	}
	shuffler.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

func distinct(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if !seen[symbol] {
			seen[symbol] = true
			out = append(out, symbol)
		}
	}
	return out
}

// Layout builds a face down row with the given values in order.
func Layout(values ...string) []Card {
	cards := make([]Card, len(values))
	for i, v := range values {
		cards[i] = Card{ID: i, Value: v}
	}
	return cards
}
