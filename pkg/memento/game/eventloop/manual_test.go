package eventloop_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/memento/pkg/memento/game/eventloop"
)

func TestManual_Advance(t *testing.T) {
	m := eventloop.NewManual()

	var fired []string
	m.AfterFunc(1000*time.Millisecond, func() { fired = append(fired, "slow") })
	m.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "fast") })
	assert.Equal(t, 2, m.Pending())

	assert.Equal(t, 0, m.Advance(499*time.Millisecond))
	assert.Empty(t, fired)

	assert.Equal(t, 1, m.Advance(time.Millisecond))
	assert.Equal(t, []string{"fast"}, fired)

	assert.Equal(t, 1, m.Advance(500*time.Millisecond))
	assert.Equal(t, []string{"fast", "slow"}, fired)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, time.Second, m.Now())
}

func TestManual_SameDeadlineKeepsScheduleOrder(t *testing.T) {
	m := eventloop.NewManual()

	var fired []int
	for i := range 3 {
		m.AfterFunc(time.Second, func() { fired = append(fired, i) })
	}
	m.Advance(time.Second)

	assert.Equal(t, []int{0, 1, 2}, fired)
}

func TestManual_NestedTimersWithinWindow(t *testing.T) {
	m := eventloop.NewManual()

	var fired []string
	m.AfterFunc(100*time.Millisecond, func() {
		fired = append(fired, "outer")
		m.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "inner") })
	})

	m.Advance(250 * time.Millisecond)
	assert.Equal(t, []string{"outer", "inner"}, fired)
}

func TestManual_Flush(t *testing.T) {
	m := eventloop.NewManual()
	m.AfterFunc(time.Hour, func() {})
	m.AfterFunc(time.Minute, func() {})

	assert.Equal(t, 2, m.Flush())
	assert.Equal(t, 0, m.Pending())
}
