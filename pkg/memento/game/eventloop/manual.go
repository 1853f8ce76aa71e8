package eventloop

import (
	"sort"
	"time"
)

// Manual is a scheduler whose clock only moves when Advance is called. It is
// not safe for concurrent use.
type Manual struct {
	now   time.Duration
	seq   int
	queue []timer
}

type timer struct {
	at  time.Duration
	seq int
	f   func()
}

// NewManual creates a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc schedules f to run d after the current manual time.
func (m *Manual) AfterFunc(d time.Duration, f func()) {
	m.seq++
	m.queue = append(m.queue, timer{at: m.now + d, seq: m.seq, f: f})
}

// Advance moves the clock forward by d and runs every timer that falls due,
// in due order. Timers scheduled by those callbacks run too if they fall
// within the window.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	ran := 0
	for {
		next, ok := m.popDue(target)
		if !ok {
			break
		}
		m.now = next.at
		next.f()
		ran++
	}
	m.now = target
	return ran
}

// Flush runs every pending timer regardless of its delay.
func (m *Manual) Flush() int {
	ran := 0
	for len(m.queue) > 0 {
		latest := m.queue[0].at
		for _, t := range m.queue {
			if t.at > latest {
				latest = t.at
			}
		}
		ran += m.Advance(latest - m.now)
	}
	return ran
}

// Pending returns the number of timers not yet run.
func (m *Manual) Pending() int {
	return len(m.queue)
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

func (m *Manual) popDue(target time.Duration) (timer, bool) {
	if len(m.queue) == 0 {
		return timer{}, false
	}
	sort.Slice(m.queue, func(i, j int) bool {
		if m.queue[i].at != m.queue[j].at {
			return m.queue[i].at < m.queue[j].at
		}
		return m.queue[i].seq < m.queue[j].seq
	})
	if m.queue[0].at > target {
		return timer{}, false
	}
	t := m.queue[0]
	m.queue = m.queue[1:]
	return t, true
}
