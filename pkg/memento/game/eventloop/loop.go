// Package eventloop runs game transitions on a single goroutine. Deferred work
// is posted back to the tail of the same queue, so callbacks never overlap.
package eventloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned when work is posted after Run has returned.
var ErrStopped = errors.New("event loop stopped")

// Loop is a FIFO of tasks executed one at a time by Run.
type Loop struct {
	mu      sync.Mutex
	tasks   []func()
	stopped bool
	wake    chan struct{}
	done    chan struct{}
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post appends f to the queue.
func (l *Loop) Post(f func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.tasks = append(l.tasks, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do posts f and waits until it has run.
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	err := l.Post(func() {
		defer close(finished)
		f()
	})
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The task may have completed just before the loop exited.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// AfterFunc posts f once d has elapsed. If the loop has stopped by then, f is
// dropped.
func (l *Loop) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() {
		if err := l.Post(f); err != nil {
			slog.Debug("Dropped timer after event loop stopped", "delay", d)
		}
	})
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes tasks until ctx is cancelled. Pending tasks are discarded when
// it returns.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		batch := l.tasks
		l.tasks = nil
		l.mu.Unlock()

		for _, task := range batch {
			l.run(task)
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event loop task panicked", "panic", r)
		}
	}()
	task()
}

func (l *Loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.tasks = nil
	close(l.done)
}
