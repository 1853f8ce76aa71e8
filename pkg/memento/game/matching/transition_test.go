package matching_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/memento/pkg/memento/game/matching"
)

func assertInvariants(t *testing.T, s matching.State) {
	t.Helper()
	pending := 0
	counts := map[string]int{}
	for _, c := range s.Cards {
		if c.Revealed && !c.Matched {
			pending++
		}
		if c.Matched {
			assert.True(t, c.Revealed, "matched card %d must be revealed", c.ID)
		}
		counts[c.Value]++
	}
	assert.LessOrEqual(t, pending, 2)
	for value, n := range counts {
		assert.Equal(t, 2, n, "value %s", value)
	}
}

func TestTransition_MatchingPair(t *testing.T) {
	s := matching.NewState(matching.Layout("A", "A"))

	s, timer := matching.Transition(s, matching.Click{Index: 0})
	assert.Nil(t, timer)
	assert.Equal(t, matching.PhaseAwaitingSecond, s.Phase())

	s, timer = matching.Transition(s, matching.Click{Index: 1})
	require.NotNil(t, timer)
	assert.Equal(t, matching.MatchDelay, timer.Delay)
	assert.Equal(t, matching.PhaseEvaluating, s.Phase())
	assert.Equal(t, 1, s.Moves)

	s, _ = matching.Transition(s, timer.Event)
	assert.True(t, s.Cards[0].Matched)
	assert.True(t, s.Cards[1].Matched)
	assert.True(t, s.Complete)
	assert.Equal(t, matching.PhaseComplete, s.Phase())
	assert.Equal(t, 1, s.Moves)
	assertInvariants(t, s)
}

func TestTransition_MismatchedPair(t *testing.T) {
	s := matching.NewState(matching.Layout("A", "B", "A", "B"))

	s, _ = matching.Transition(s, matching.Click{Index: 0})
	s, timer := matching.Transition(s, matching.Click{Index: 1})
	require.NotNil(t, timer)
	assert.Equal(t, matching.MismatchDelay, timer.Delay)

	s, _ = matching.Transition(s, timer.Event)
	assert.False(t, s.Cards[0].Revealed)
	assert.False(t, s.Cards[1].Revealed)
	assert.Equal(t, 1, s.Moves)
	assert.Equal(t, matching.PhaseIdle, s.Phase())
	assert.False(t, s.Complete)
	assertInvariants(t, s)
}

func TestTransition_IgnoredClicks(t *testing.T) {
	s := matching.NewState(matching.Layout("A", "B", "A", "B"))
	s, _ = matching.Transition(s, matching.Click{Index: 0})

	t.Run("same card again", func(t *testing.T) {
		next, timer := matching.Transition(s, matching.Click{Index: 0})
		assert.Nil(t, timer)
		assert.Equal(t, s, next)
	})

	t.Run("out of range", func(t *testing.T) {
		next, _ := matching.Transition(s, matching.Click{Index: 9})
		assert.Equal(t, s, next)
		next, _ = matching.Transition(s, matching.Click{Index: -1})
		assert.Equal(t, s, next)
	})

	t.Run("third card while evaluating", func(t *testing.T) {
		two, _ := matching.Transition(s, matching.Click{Index: 1})
		next, timer := matching.Transition(two, matching.Click{Index: 2})
		assert.Nil(t, timer)
		assert.Equal(t, two, next)
		assert.False(t, next.Cards[2].Revealed)
	})

	t.Run("matched card", func(t *testing.T) {
		two, timer := matching.Transition(s, matching.Click{Index: 2})
		resolved, _ := matching.Transition(two, timer.Event)
		next, _ := matching.Transition(resolved, matching.Click{Index: 0})
		assert.Equal(t, resolved, next)
	})
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	s := matching.NewState(matching.Layout("A", "A"))
	_, _ = matching.Transition(s, matching.Click{Index: 0})
	assert.False(t, s.Cards[0].Revealed)
	assert.Empty(t, s.Selected)
}

func TestTransition_StaleResolveIgnored(t *testing.T) {
	s := matching.NewState(matching.Layout("A", "B", "A", "B"))
	s, _ = matching.Transition(s, matching.Click{Index: 0})
	s, timer := matching.Transition(s, matching.Click{Index: 1})
	require.NotNil(t, timer)

	s, _ = matching.Transition(s, matching.Reset{Deck: matching.Layout("C", "C")})
	assert.Equal(t, 0, s.Moves)
	assert.Equal(t, matching.PhaseIdle, s.Phase())

	s, _ = matching.Transition(s, matching.Click{Index: 0})
	after, _ := matching.Transition(s, timer.Event)
	assert.Equal(t, s, after)
}

func TestTransition_ResolveWithoutPairIgnored(t *testing.T) {
	s := matching.NewState(matching.Layout("A", "A"))
	next, _ := matching.Transition(s, matching.Resolve{Deal: s.Deal})
	assert.Equal(t, s, next)
}

func TestTransition_FullGame(t *testing.T) {
	deck := matching.NewDeck(matching.DefaultSymbols, rand.New(rand.NewPCG(1, 2)))
	s := matching.NewState(deck)
	require.Len(t, s.Cards, 16)
	assertInvariants(t, s)

	positions := map[string][]int{}
	for i, c := range s.Cards {
		positions[c.Value] = append(positions[c.Value], i)
	}

	for _, symbol := range matching.DefaultSymbols {
		pair := positions[symbol]
		require.Len(t, pair, 2)
		s, _ = matching.Transition(s, matching.Click{Index: pair[0]})
		var timer *matching.Timer
		s, timer = matching.Transition(s, matching.Click{Index: pair[1]})
		require.NotNil(t, timer)
		s, _ = matching.Transition(s, timer.Event)
		assertInvariants(t, s)
	}

	assert.True(t, s.Complete)
	assert.Equal(t, 8, s.Moves)
}

func TestNewDeck(t *testing.T) {
	deck := matching.NewDeck([]string{"x", "y"}, matching.NoShuffle())
	assert.Equal(t, []matching.Card{
		{ID: 0, Value: "x"},
		{ID: 1, Value: "y"},
		{ID: 2, Value: "x"},
		{ID: 3, Value: "y"},
	}, deck)

	shuffled := matching.NewDeck(matching.DefaultSymbols, nil)
	ids := map[int]bool{}
	for _, c := range shuffled {
		ids[c.ID] = true
	}
	assert.Len(t, ids, 16)
}

func TestNewDeck_RepeatedSymbolsDealtOnce(t *testing.T) {
	deck := matching.NewDeck([]string{"A", "A", "B"}, matching.NoShuffle())

	assert.Equal(t, []matching.Card{
		{ID: 0, Value: "A"},
		{ID: 1, Value: "B"},
		{ID: 2, Value: "A"},
		{ID: 3, Value: "B"},
	}, deck)
	assertInvariants(t, matching.NewState(deck))
}
