// Package matching implements the pair matching card game as a pure state
// machine plus a small host wrapper that schedules deferred resolutions.
package matching

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// MatchDelay is how long an equal pair stays face up before it is marked matched.
	MatchDelay = 500 * time.Millisecond

	// MismatchDelay is how long an unequal pair stays face up before it is hidden again.
	MismatchDelay = 1000 * time.Millisecond
)

// DefaultSymbols are the eight card faces of a standard deal.
var DefaultSymbols = []string{"🐶", "🐱", "🐰", "🦁", "🌸", "🌞", "🍎", "🍪"}

// Card is one position of the row. ID is its position in the unshuffled deck.
type Card struct {
	ID       int    `json:"id"`
	Value    string `json:"value"`
	Revealed bool   `json:"revealed"`
	Matched  bool   `json:"matched"`
}

// Phase is derived from the state; it is never stored.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingSecond
	PhaseEvaluating
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingSecond:
		return "awaiting_second"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseComplete:
		return "complete"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseAwaitingSecond, PhaseEvaluating, PhaseComplete} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is a snapshot of one game. Values are treated as immutable; Transition
// returns a new State.
type State struct {
	Cards    []Card
	Selected []int
	Moves    int
	Complete bool
	// Deal counts resets so that resolutions scheduled for a previous deck can
	// be recognised and dropped.
	Deal int
}

// NewState deals deck face down.
func NewState(deck []Card) State {
	return State{Cards: hideAll(deck)}
}

// Phase reports where the game is in its click cycle.
func (s State) Phase() Phase {
	switch {
	case s.Complete:
		return PhaseComplete
	case len(s.Selected) == 2:
		return PhaseEvaluating
	case len(s.Selected) == 1:
		return PhaseAwaitingSecond
	}
	return PhaseIdle
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.Cards = append([]Card(nil), s.Cards...)
	c.Selected = append([]int(nil), s.Selected...)
	return c
}

func hideAll(deck []Card) []Card {
	cards := make([]Card, len(deck))
	for i, card := range deck {
		card.Revealed = false
		card.Matched = false
		cards[i] = card
	}
	return cards
}

// CompletionMessage is shown once every pair is matched.
func CompletionMessage(moves int) string {
	return "Congratulations! You completed the game in " + strconv.Itoa(moves) + " moves!"
}
