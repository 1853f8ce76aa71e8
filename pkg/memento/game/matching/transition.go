package matching

import "time"

// Event is an input to Transition.
type Event interface {
	isEvent()
}

// Click reveals the card at Index.
type Click struct {
	Index int
}

// Resolve settles the pending pair of deal Deal.
type Resolve struct {
	Deal int
}

// Reset replaces the row with Deck and starts a new deal.
type Reset struct {
	Deck []Card
}

func (Click) isEvent()   {}
func (Resolve) isEvent() {}
func (Reset) isEvent()   {}

// Timer asks the host to deliver Event after Delay.
type Timer struct {
	Delay time.Duration
	Event Resolve
}

// Transition applies e to s. It returns the next state and, when a second
// card has just been revealed, the resolution the host must schedule. Events
// that are not allowed in the current phase leave the state unchanged.
func Transition(s State, e Event) (State, *Timer) {
	switch e := e.(type) {
	case Click:
		return click(s, e.Index)
	case Resolve:
		return resolve(s, e.Deal), nil
	case Reset:
		return State{Cards: hideAll(e.Deck), Deal: s.Deal + 1}, nil
	}
	return s, nil
}

func click(s State, index int) (State, *Timer) {
	if s.Complete || len(s.Selected) == 2 || index < 0 || index >= len(s.Cards) {
		return s, nil
	}
	if card := s.Cards[index]; card.Revealed || card.Matched {
		return s, nil
	}

	next := s.Clone()
	next.Cards[index].Revealed = true
	next.Selected = append(next.Selected, index)
	if len(next.Selected) < 2 {
		return next, nil
	}

	next.Moves++
	delay := MismatchDelay
	if first, second := next.Cards[next.Selected[0]], next.Cards[next.Selected[1]]; first.Value == second.Value {
		delay = MatchDelay
	}
	return next, &Timer{Delay: delay, Event: Resolve{Deal: next.Deal}}
}

func resolve(s State, deal int) State {
	if deal != s.Deal || len(s.Selected) != 2 {
		return s
	}

	next := s.Clone()
	a, b := next.Selected[0], next.Selected[1]
	if next.Cards[a].Value == next.Cards[b].Value {
		next.Cards[a].Matched = true
		next.Cards[b].Matched = true
	} else {
		next.Cards[a].Revealed = false
		next.Cards[b].Revealed = false
	}
	next.Selected = nil
	next.Complete = allMatched(next.Cards)
	return next
}

func allMatched(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	for _, card := range cards {
		if !card.Matched {
			return false
		}
	}
	return true
}
