package matching

import "time"

// Scheduler delivers f after d on the goroutine that owns the game.
// eventloop.Loop and eventloop.Manual both satisfy it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Game hosts a State: it applies clicks, schedules the deferred resolutions
// and deals new decks. A Game is not safe for concurrent use; every method and
// every scheduled callback must run on the same event loop.
type Game struct {
	state      State
	scheduler  Scheduler
	shuffler   Shuffler
	symbols    []string
	onMove     func(State)
	onComplete func(State)
}

// Option configures a Game.
type Option func(*Game)

// WithSymbols sets the card faces; each is dealt twice.
func WithSymbols(symbols ...string) Option {
	return func(g *Game) {
		g.symbols = append([]string(nil), symbols...)
	}
}

// WithShuffler sets the deck shuffler.
func WithShuffler(s Shuffler) Option {
	return func(g *Game) {
		g.shuffler = s
	}
}

// OnMove is called after a second card is revealed.
func OnMove(f func(State)) Option {
	return func(g *Game) {
		g.onMove = f
	}
}

// OnComplete is called once when the last pair is matched.
func OnComplete(f func(State)) Option {
	return func(g *Game) {
		g.onComplete = f
	}
}

// NewGame deals a shuffled deck.
func NewGame(scheduler Scheduler, opts ...Option) *Game {
	g := &Game{
		scheduler: scheduler,
		shuffler:  DefaultShuffler(),
		symbols:   DefaultSymbols,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.state = NewState(NewDeck(g.symbols, g.shuffler))
	return g
}

// Click reveals the card at index. It reports whether the click was accepted.
func (g *Game) Click(index int) bool {
	next, timer := Transition(g.state, Click{Index: index})
	accepted := len(next.Selected) > len(g.state.Selected)
	g.state = next
	if timer != nil {
		if g.onMove != nil {
			g.onMove(g.state.Clone())
		}
		g.scheduler.AfterFunc(timer.Delay, func() {
			g.apply(timer.Event)
		})
	}
	return accepted
}

// Reset deals a new shuffled deck. A resolution still pending for the old deck
// is dropped when it fires.
func (g *Game) Reset() {
	g.state, _ = Transition(g.state, Reset{Deck: NewDeck(g.symbols, g.shuffler)})
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() State {
	return g.state.Clone()
}

func (g *Game) apply(e Resolve) {
	wasComplete := g.state.Complete
	g.state = resolve(g.state, e.Deal)
	if g.state.Complete && !wasComplete && g.onComplete != nil {
		g.onComplete(g.state.Clone())
	}
}
